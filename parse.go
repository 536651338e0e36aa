package bodmas

import (
	"io"
	"strings"
)

// Expr   = Sum
// Sum    = Term { ('+' | '-') Term }
// Term   = Unary { ('*' | '/') Unary }
// Unary  = ('-' | '+') Unary | Power
// Power  = Primary [ ('**' | '^') Unary ]
// Primary = num | '(' Expr ')'

// Expr is a parsed expression. An Expr is never modified after parsing, so it
// is safe to evaluate concurrently.
type Expr struct {
	// n is the root node of the expression.
	n *node
}

// parsectx holds general data for parsing.
type parsectx struct {
	// depth is the current recursion depth of parseterm.
	depth int
	// max is the maximum depth, or nonpositive for no limit.
	max int
}

// Parse parses an expression so it can be evaluated. The given options are
// applied in order. Every error resulting from invalid input implements
// InputError.
func Parse(src io.RuneScanner, opts ...Option) (*Expr, error) {
	s := configure(opts)
	scan := lex(src, s.maxLen)
	p := parsectx{max: s.maxDepth}
	n, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, err
	}
	switch tok := scan.must(); tok.kind {
	case tokenEOF:
	case tokenClose:
		return nil, &SyntaxError{Col: tok.pos, Token: tok.text, Msg: "close bracket with no open bracket"}
	default:
		panic("bodmas: parse ended on " + tok.String())
	}
	return &Expr{n: n}, nil
}

// ParseString is a shortcut to parse a string.
func ParseString(src string, opts ...Option) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// parseterm parses a single term containing only operators more binding than
// until. If there is no error, then parseterm pushes the last token it scans,
// which is always a close bracket or EOF, and the result is non-nil.
func parseterm(scan *lexer, p *parsectx, until operator) (*node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.max > 0 && p.depth > p.max {
		return nil, &LimitError{Col: scan.col(), Limit: "depth", Max: p.max}
	}
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := scan.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenPlus, tokenMinus, tokenStar, tokenSlash, tokenPow:
			prec := binop(tok.kind)
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: prec.op, pos: tok.pos, left: n, right: rhs}
		case tokenNum, tokenOpen:
			// Implicit multiplication is not part of the language.
			return nil, &SyntaxError{Col: tok.pos, Token: tok.text, Msg: "missing operator before"}
		case tokenClose, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("bodmas: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary,
// and any encountered token must be valid as the start of a subexpression.
func parselhs(scan *lexer, p *parsectx, until operator) (*node, error) {
	tok, err := scan.next()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokenNum:
		return &node{kind: nodeNum, text: tok.text, pos: tok.pos}, nil
	case tokenPlus, tokenMinus:
		prec := unop(tok.kind)
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		return &node{kind: prec.op, pos: tok.pos, left: rhs}, nil
	case tokenOpen:
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			return nil, &SyntaxError{Col: end.pos, Msg: "open bracket ( with no close bracket"}
		}
		return rhs, nil
	case tokenClose:
		return nil, &SyntaxError{Col: tok.pos, Token: tok.text, Msg: "no expression up to"}
	case tokenEOF:
		if tok.pos <= 1 {
			return nil, &SyntaxError{Col: tok.pos, Msg: "no expression"}
		}
		return nil, &SyntaxError{Col: tok.pos, Msg: "no expression at end"}
	case tokenStar, tokenSlash, tokenPow:
		return nil, &SyntaxError{Col: tok.pos, Token: tok.text, Msg: "unknown unary operator"}
	default:
		panic("bodmas: unknown token: " + tok.String())
	}
}

// String creates a string representation of the parsed expression with every
// operation in brackets.
func (e *Expr) String() string {
	return e.n.String()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets the binary operator for a token kind. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(kind tokenKind) operator {
	switch kind {
	case tokenPlus:
		return operator{1, false, nodeAdd}
	case tokenMinus:
		return operator{1, false, nodeSub}
	case tokenStar:
		return operator{5, false, nodeMul}
	case tokenSlash:
		return operator{5, false, nodeDiv}
	case tokenPow:
		return operator{15, true, nodePow}
	default:
		return operator{}
	}
}

// unop gets the unary operator for a token kind. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(kind tokenKind) operator {
	switch kind {
	case tokenPlus:
		return operator{10, true, nodePlus}
	case tokenMinus:
		return operator{10, true, nodeNeg}
	default:
		return operator{}
	}
}

// exprprec is the precedence required to parse an entire subexpression.
var exprprec = operator{-128, true, nodeNone}
