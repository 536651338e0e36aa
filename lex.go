package bodmas

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is a decimal number.
	tokenNum
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	// tokenPow is exponentiation, either ** or ^.
	tokenPow
	tokenOpen
	tokenClose
)

var tokenNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenNum:   "Num",
	tokenPlus:  "Plus",
	tokenMinus: "Minus",
	tokenStar:  "Star",
	tokenSlash: "Slash",
	tokenPow:   "Pow",
	tokenOpen:  "Open",
	tokenClose: "Close",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// Operators contains the runes which are considered to be operators. The
// power operator may be written either as ** or as ^.
const Operators = "+-*/^"

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	max  int
	p    lexToken
	eof  bool
}

// lex creates a lexer over src. If max is positive, reading more than max
// runes is an error.
func lex(src io.RuneScanner, max int) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
		max:  max,
	}
}

// push unreads a token so that it is the next token returned from next. Panics
// if there is already a pushed token.
func (l *lexer) push(tok lexToken) {
	if l.p.kind != tokenNone {
		panic("bodmas: double push")
	}
	l.p = tok
}

// must scans the pushed token. Panics if there is no pushed token.
func (l *lexer) must() lexToken {
	tok := l.p
	if tok.kind == tokenNone {
		panic("bodmas: no pushed token")
	}
	l.p = lexToken{}
	return tok
}

// col returns the column of the last rune read.
func (l *lexer) col() int {
	return l.rune - 1
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
		if l.max > 0 && l.col() > l.max {
			return r, &LimitError{Col: l.col(), Limit: "length", Max: l.max}
		}
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. The first time EOF is encountered,
// the result is an EOF token with a nil error. Subsequent times, if the EOF
// token is not pushed, the result is an empty token with io.EOF.
func (l *lexer) next() (lexToken, error) {
	if l.p.kind != tokenNone {
		tok := l.p
		l.p = lexToken{}
		return tok, nil
	}
	if l.eof {
		return lexToken{}, io.EOF
	}
	defer l.buf.Reset()
	tok := lexToken{pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			tok.pos++
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune()
			if err := l.scanNum(tok.pos); err != nil {
				return tok, err
			}
			tok.text = l.buf.String()
			tok.kind = tokenNum
			return tok, nil
		case r == '+':
			tok.text, tok.kind = "+", tokenPlus
			return tok, nil
		case r == '-':
			tok.text, tok.kind = "-", tokenMinus
			return tok, nil
		case r == '*':
			tok.text, tok.kind = "*", tokenStar
			r, err := l.readRune()
			switch {
			case err == nil && r == '*':
				tok.text, tok.kind = "**", tokenPow
			case err == nil:
				l.unreadRune()
			case !errors.Is(err, io.EOF):
				return tok, err
			}
			return tok, nil
		case r == '/':
			tok.text, tok.kind = "/", tokenSlash
			return tok, nil
		case r == '^':
			tok.text, tok.kind = "^", tokenPow
			return tok, nil
		case r == '(':
			tok.text, tok.kind = "(", tokenOpen
			return tok, nil
		case r == ')':
			tok.text, tok.kind = ")", tokenClose
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			// Report whole words so that attempts like "import os" show up
			// legibly in error messages.
			l.buf.WriteRune(r)
			if err := l.scanWord(); err != nil {
				return tok, err
			}
			return tok, &DisallowedTokenError{Col: tok.pos, Text: l.buf.String()}
		default:
			return tok, &DisallowedTokenError{Col: tok.pos, Text: string(r)}
		}
	}
}

// scanNum scans a decimal number with at most one decimal point and at least
// one digit. pos is the column of the first rune.
func (l *lexer) scanNum(pos int) error {
	var dig, dot bool
scan:
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		switch {
		case '0' <= r && r <= '9':
			dig = true
		case r == '.':
			if dot {
				l.buf.WriteRune(r)
				return &SyntaxError{Col: pos, Token: l.buf.String(), Msg: "invalid number"}
			}
			dot = true
		default:
			l.unreadRune()
			break scan
		}
		l.buf.WriteRune(r)
	}
	if !dig {
		return &SyntaxError{Col: pos, Token: l.buf.String(), Msg: "invalid number"}
	}
	return nil
}

// scanWord consumes the rest of a word-like run of runes into the buffer.
func (l *lexer) scanWord() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch {
		case r == '_', r == '.', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}
