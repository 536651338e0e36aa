package bodmas

import (
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// machine is the value stack for evaluating one expression. Each evaluation
// uses its own machine, so there is no state shared between evaluations.
type machine struct {
	stack []*big.Float
	prec  uint
}

// push adds a settable value to the stack.
func (m *machine) push() *big.Float {
	r := new(big.Float).SetPrec(m.prec)
	m.stack = append(m.stack, r)
	return r
}

// pop removes the top from the stack and returns it.
func (m *machine) pop() *big.Float {
	r := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (m *machine) top() *big.Float {
	return m.stack[len(m.stack)-1]
}

// Eval evaluates the expression to the precision given in opts, default 64
// bits. Options other than Prec are ignored. If an operation is undefined, the
// result is nil and the error is a *DomainError.
func (e *Expr) Eval(opts ...Option) (r *big.Float, err error) {
	s := configure(opts)
	m := machine{stack: make([]*big.Float, 0, 8), prec: s.prec}
	defer func() {
		x := recover()
		if x == nil {
			return
		}
		// Operations on infinities from exponent overflow are the only
		// source of NaN.
		nan, ok := x.(big.ErrNaN)
		if !ok {
			panic(x)
		}
		r, err = nil, &DomainError{Col: e.n.pos, Reason: nan.Error()}
	}()
	if err := e.n.eval(&m); err != nil {
		return nil, err
	}
	if len(m.stack) != 1 {
		panic("bodmas: inconsistent stack: " + strconv.Itoa(len(m.stack)) + " items (bad AST?)")
	}
	return m.stack[0], nil
}

// Float64 evaluates the expression and converts the result to the nearest
// float64. A result too large in magnitude for a float64 is a *DomainError.
func (e *Expr) Float64(opts ...Option) (float64, error) {
	r, err := e.Eval(opts...)
	if err != nil {
		return 0, err
	}
	f, _ := r.Float64()
	if math.IsInf(f, 0) {
		return 0, &DomainError{Col: e.n.pos, Reason: "result " + r.Text('g', 10) + " out of range"}
	}
	return f, nil
}

// eval pushes the node's value to the machine's stack.
func (n *node) eval(m *machine) error {
	switch n.kind {
	case nodeNum:
		if _, _, err := m.push().Parse(n.text, 10); err != nil {
			// The lexer only produces valid literals, so this can only be an
			// exponent overflow from an absurdly long number.
			return &DomainError{Col: n.pos, Reason: "number out of range"}
		}
	case nodeNeg:
		if err := n.left.eval(m); err != nil {
			return err
		}
		v := m.top()
		v.Neg(v)
	case nodePlus:
		if err := n.left.eval(m); err != nil {
			return err
		}
	case nodeAdd:
		if err := n.left.eval(m); err != nil {
			return err
		}
		if err := n.right.eval(m); err != nil {
			return err
		}
		r := m.pop()
		l := m.top()
		l.Add(l, r)
	case nodeSub:
		if err := n.left.eval(m); err != nil {
			return err
		}
		if err := n.right.eval(m); err != nil {
			return err
		}
		r := m.pop()
		l := m.top()
		l.Sub(l, r)
	case nodeMul:
		if err := n.left.eval(m); err != nil {
			return err
		}
		if err := n.right.eval(m); err != nil {
			return err
		}
		r := m.pop()
		l := m.top()
		l.Mul(l, r)
	case nodeDiv:
		if err := n.left.eval(m); err != nil {
			return err
		}
		if err := n.right.eval(m); err != nil {
			return err
		}
		r := m.pop()
		l := m.top()
		if r.Sign() == 0 {
			return &DomainError{Col: n.pos, Op: "/", X: new(big.Float).Copy(l), Reason: "division by zero"}
		}
		l.Quo(l, r)
	case nodePow:
		if err := n.left.eval(m); err != nil {
			return err
		}
		if err := n.right.eval(m); err != nil {
			return err
		}
		r := m.pop()
		l := m.top()
		x := new(big.Float).Copy(l)
		if reason := pow(l, l, r); reason != "" {
			return &DomainError{Col: n.pos, Op: "**", X: x, Reason: reason}
		}
	default:
		panic("bodmas: invalid AST node " + n.kind.String())
	}
	return nil
}

// maxPowBits is the largest binary exponent, in magnitude, that a power may
// produce. Larger results are reported as overflow, and smaller ones become 0.
const maxPowBits = 1 << 16

// pow sets z to x**y. z may alias x but not y. If the power is undefined, the
// result is a description of the reason, and z is unchanged.
func pow(z, x, y *big.Float) string {
	switch {
	case y.Sign() == 0:
		z.SetInt64(1)
		return ""
	case x.Sign() == 0:
		if y.Sign() < 0 {
			return "zero to a negative power"
		}
		z.SetInt64(0)
		return ""
	}
	neg := false
	if x.Signbit() {
		if !y.IsInt() {
			return "negative base with non-integer exponent"
		}
		k, _ := y.Int(nil)
		neg = k.Bit(0) == 1
	}
	ax := new(big.Float).Abs(x)
	if ax.Cmp(one) == 0 {
		z.SetInt64(1)
		if neg {
			z.Neg(z)
		}
		return ""
	}
	// Estimate log2|x**y| = y log2|x| to refuse results which can't be
	// represented usefully before spending time on them.
	var l2 float64
	d, _ := new(big.Float).Sub(ax, one).Float64()
	if math.Abs(d) < 0.5 {
		l2 = math.Log1p(d) / math.Ln2
	} else {
		mant := new(big.Float)
		exp := ax.MantExp(mant)
		mf, _ := mant.Float64()
		l2 = float64(exp) + math.Log2(mf)
	}
	yf, _ := y.Float64()
	bits := l2 * yf
	switch {
	case math.IsNaN(bits), bits > maxPowBits:
		return "overflow"
	case bits < -maxPowBits:
		z.SetInt64(0)
		return ""
	}
	if k, acc := y.Int64(); acc == big.Exact {
		ipow(z, ax, k)
	} else {
		// Pow may return a different Float than the one it is given.
		z.Set(bigfloat.Pow(new(big.Float).SetPrec(z.Prec()), ax, y))
	}
	if neg {
		z.Neg(z)
	}
	return ""
}

// ipow sets z to x**k by repeated squaring, which is exact where the
// precision allows rather than going through exp and log.
func ipow(z, x *big.Float, k int64) {
	u := uint64(k)
	if k < 0 {
		u = uint64(-(k + 1)) + 1
	}
	prec := z.Prec()
	b := new(big.Float).SetPrec(prec).Set(x)
	r := new(big.Float).SetPrec(prec).SetInt64(1)
	for u > 0 {
		if u&1 == 1 {
			r.Mul(r, b)
		}
		u >>= 1
		if u > 0 {
			b.Mul(b, b)
		}
	}
	if k < 0 {
		r.Quo(one, r)
	}
	z.Set(r)
}

var one = big.NewFloat(1)

// Eval is a shortcut to parse an expression and return its value as a
// float64. The options apply to both parsing and evaluation.
func Eval(src io.RuneScanner, opts ...Option) (float64, error) {
	a, err := Parse(src, opts...)
	if err != nil {
		return 0, err
	}
	return a.Float64(opts...)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...Option) (float64, error) {
	return Eval(strings.NewReader(src), opts...)
}
