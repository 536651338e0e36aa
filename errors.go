package bodmas

import (
	"errors"
	"math/big"
	"strconv"
)

// SyntaxError is an error indicating input that does not match the grammar:
// an empty expression, a missing operand or operator, an unbalanced bracket,
// or a malformed number. It implements InputError.
type SyntaxError struct {
	// Col is the position of the token where parsing failed. At the end of
	// input, this is one past the last rune.
	Col int
	// Token is the offending token. It is empty at the end of input.
	Token string
	// Msg describes the problem.
	Msg string
}

func (err *SyntaxError) Error() string {
	if err.Token == "" {
		return errpos(err.Col, err.Msg)
	}
	return errpos(err.Col, err.Msg+" "+strconv.Quote(err.Token))
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

// DisallowedTokenError is an error indicating a character or word that can
// never appear in an expression, e.g. a letter. It implements InputError.
type DisallowedTokenError struct {
	// Col is the position of the token.
	Col int
	// Text is the disallowed rune, or the whole word if it began with a
	// letter.
	Text string
}

func (err *DisallowedTokenError) Error() string {
	return errpos(err.Col, "disallowed token "+strconv.Quote(err.Text)+" (only numbers, operators, and brackets are allowed)")
}

func (err *DisallowedTokenError) Pos() int {
	return err.Col
}

// DomainError is an error indicating an operation whose result is undefined
// or cannot be represented, such as division by zero. It implements
// InputError.
type DomainError struct {
	// Col is the position of the operator.
	Col int
	// Op is the operator, or the empty string if the error is not due to a
	// single operation.
	Op string
	// X is the left operand, if there is one.
	X *big.Float
	// Reason describes the problem.
	Reason string
}

func (err *DomainError) Error() string {
	if err.Op == "" {
		return errpos(err.Col, err.Reason)
	}
	r := err.Reason + " in " + strconv.Quote(err.Op)
	if err.X != nil {
		r += " with left operand " + err.X.Text('g', 10)
	}
	return errpos(err.Col, r)
}

func (err *DomainError) Pos() int {
	return err.Col
}

// LimitError is an error indicating an input which exceeds a resource limit.
// It implements InputError.
type LimitError struct {
	// Col is the position at which the limit was exceeded.
	Col int
	// Limit is the limit which was exceeded, either "length" or "depth".
	Limit string
	// Max is the value of the limit.
	Max int
}

func (err *LimitError) Error() string {
	switch err.Limit {
	case "length":
		return errpos(err.Col, "input longer than "+strconv.Itoa(err.Max)+" characters")
	case "depth":
		return errpos(err.Col, "expression nested deeper than "+strconv.Itoa(err.Max)+" levels")
	default:
		return errpos(err.Col, "exceeded "+err.Limit+" limit "+strconv.Itoa(err.Max))
	}
}

func (err *LimitError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*DisallowedTokenError)(nil)
	_ InputError = (*DomainError)(nil)
	_ InputError = (*LimitError)(nil)
)

// Error kinds returned by Kind.
const (
	KindSyntax     = "syntax"
	KindDisallowed = "disallowed"
	KindDomain     = "domain"
	KindLimit      = "limit"
)

// Kind classifies an error returned from this package. The result is the empty
// string if err is nil or does not come from invalid input.
func Kind(err error) string {
	var (
		s *SyntaxError
		t *DisallowedTokenError
		d *DomainError
		l *LimitError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &s):
		return KindSyntax
	case errors.As(err, &t):
		return KindDisallowed
	case errors.As(err, &d):
		return KindDomain
	case errors.As(err, &l):
		return KindLimit
	default:
		return ""
	}
}
