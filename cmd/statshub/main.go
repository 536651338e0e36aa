// Command statshub serves the statistics dashboard API.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zephyrtronium/bodmas/config"
	"github.com/zephyrtronium/bodmas/formulas"
	"github.com/zephyrtronium/bodmas/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := run(ctx, os.Args[1:], os.Stderr, nil)
	stop()
	os.Exit(status)
}

// options are the command-line settings.
type options struct {
	configFile string
	// explicit is set when the config file was named on the command line.
	explicit bool
	listen   string
	watch    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	flags := flag.NewFlagSet("statshub", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&o.configFile, "config.file", config.DefaultFile, "config file location")
	flags.StringVar(&o.listen, "listen", "", "listen address (overrides the config file)")
	flags.BoolVar(&o.watch, "watch", true, "reload the config file when it changes")
	if err := flags.Parse(args); err != nil {
		return o, err
	}
	flags.Visit(func(f *flag.Flag) { o.explicit = o.explicit || f.Name == "config.file" })
	return o, nil
}

// load reads the config file and applies flag overrides. The default file is
// optional. One named explicitly must exist.
func (o options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configFile, !o.explicit)
	if err != nil {
		return nil, err
	}
	o.override(cfg)
	return cfg, nil
}

func (o options) override(cfg *config.Config) {
	if o.listen != "" {
		cfg.Listen = o.listen
	}
}

// reload returns the callback for config.Watch.
func (o options) reload(srv *server.Server, logger *log.Logger) func(*config.Config, error) {
	return func(cfg *config.Config, err error) {
		if err != nil {
			logger.Printf("reloading config: %v", err)
			return
		}
		o.override(cfg)
		srv.SetConfig(cfg)
		logger.Printf("reloaded %s", o.configFile)
	}
}

// run serves until ctx is done. If ready is not nil, it receives the
// listener's address once the server is accepting connections.
func run(ctx context.Context, args []string, stderr io.Writer, ready chan<- net.Addr) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	logger := log.New(stderr, "statshub: ", log.LstdFlags)
	cfg, err := o.load()
	if err != nil {
		logger.Print(err)
		return 1
	}
	grace, err := cfg.Shutdown()
	if err != nil {
		logger.Print(err)
		return 1
	}

	catalog, err := formulas.Load()
	if err != nil {
		logger.Print(err)
		return 1
	}
	if err := catalog.Check(cfg.Options()...); err != nil {
		logger.Print(err)
		return 1
	}

	srv := server.New(cfg, catalog, logger)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if o.watch {
		go func() {
			if err := config.Watch(ctx, o.configFile, o.reload(srv, logger)); err != nil {
				logger.Printf("config watcher: %v", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		logger.Print(err)
		return 1
	}
	hs := &http.Server{Handler: srv}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Println("stop signal received")
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s", ln.Addr())
	if ready != nil {
		ready <- ln.Addr()
	}
	if err := hs.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		logger.Print(err)
		cancel()
		<-done
		return 1
	}
	<-done
	return 0
}
