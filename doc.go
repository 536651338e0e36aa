// Package bodmas implements a safe arithmetic calculator.
//
// The accepted language is deliberately small: decimal numbers, the binary
// operators + - * / and ** (also written ^), unary + and -, and parentheses.
// There are no names of any kind, so an expression can never refer to
// anything but the numbers written in it. Any other character is rejected
// with a DisallowedTokenError.
//
// Operators follow the usual order of operations. "2 + 3 * 4" is 14, and
// powers bind tighter than unary minus, so "-2**2" is the same as "-(2**2)".
// Powers associate to the right: "2^3^2" is "2^(3^2)".
//
// Evaluation is done with math/big at a configurable precision and has no
// IEEE special values: division by zero and other undefined operations are
// reported as a DomainError instead of producing infinities or NaN.
package bodmas
