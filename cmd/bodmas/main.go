// Command bodmas evaluates arithmetic expressions.
//
// Each argument is an expression. With no arguments, or with -in, input is
// read from a file or standard input, either as one expression or, with -n,
// one expression per line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/zephyrtronium/bodmas"
)

func main() {
	log.SetFlags(0)
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		inname, verb    string
		nl, echo        bool
		prec            int
		maxLen, maxDeep int
	)
	flags := flag.NewFlagSet("bodmas", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flags.StringVar(&verb, "fmt", "%g", "result formatting string")
	flags.IntVar(&prec, "p", bodmas.DefaultPrec, "precision of calculations in bits")
	flags.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	flags.BoolVar(&echo, "echo", false, "print parse trees")
	flags.IntVar(&maxLen, "max-len", bodmas.DefaultMaxLength, "maximum expression length in characters, or 0 for no limit")
	flags.IntVar(&maxDeep, "max-depth", bodmas.DefaultMaxDepth, "maximum nesting depth, or 0 for no limit")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	logger := log.New(stderr, "", 0)
	if prec <= 0 {
		logger.Printf("precision (%d) must be positive", prec)
		return 2
	}
	opts := []bodmas.Option{bodmas.Prec(uint(prec)), bodmas.MaxLength(maxLen), bodmas.MaxDepth(maxDeep)}

	var srcs []string
	in, err := infile(inname, flags.NArg() == 0, stdin)
	if err != nil {
		logger.Print(err)
		return 1
	}
	if in != nil {
		s, err := readExprs(in, nl)
		if c, ok := in.(io.Closer); ok && in != stdin {
			c.Close()
		}
		if err != nil {
			logger.Print(err)
			return 1
		}
		srcs = append(srcs, s...)
	}
	srcs = append(srcs, flags.Args()...)

	status := 0
	verb += "\n"
	for _, src := range srcs {
		a, err := bodmas.ParseString(src, opts...)
		if err != nil {
			fmt.Fprintf(stdout, "%s error: %v\n", bodmas.Kind(err), err)
			status = 1
			continue
		}
		if echo {
			fmt.Fprintf(stdout, "%v : ", a)
		}
		r, err := a.Eval(opts...)
		if err == nil {
			if f, _ := r.Float64(); math.IsInf(f, 0) {
				_, err = a.Float64(opts...)
			}
		}
		if err != nil {
			fmt.Fprintf(stdout, "%s error: %v\n", bodmas.Kind(err), err)
			status = 1
			continue
		}
		fmt.Fprintf(stdout, verb, r)
	}
	return status
}

// infile opens the input named by the -in flag. The name "-" means stdin,
// which is also used when no name is given and std is set.
func infile(inname string, std bool, stdin io.Reader) (io.Reader, error) {
	switch {
	case inname != "" && inname != "-":
		return os.Open(inname)
	case inname == "-", std:
		return stdin, nil
	}
	return nil, nil
}

// readExprs reads either the whole input as one expression, or each
// non-blank line as its own expression.
func readExprs(in io.Reader, lines bool) ([]string, error) {
	if !lines {
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, err
		}
		return []string{string(b)}, nil
	}
	var r []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		r = append(r, sc.Text())
	}
	return r, sc.Err()
}
