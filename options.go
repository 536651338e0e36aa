package bodmas

// Defaults for options which are not given.
const (
	// DefaultMaxLength is the default maximum number of runes in an input.
	DefaultMaxLength = 4096
	// DefaultMaxDepth is the default maximum parser recursion depth. Each
	// bracket, unary operator, and operator of higher precedence than its
	// left neighbor uses at least one level.
	DefaultMaxDepth = 512
	// DefaultPrec is the default precision of calculations in bits.
	DefaultPrec = 64
)

// Option is an option for parsing or evaluation.
type Option interface {
	apply(*settings)
}

type settings struct {
	maxLen   int
	maxDepth int
	prec     uint
}

type (
	lenopt   int
	depthopt int
	precopt  uint
)

func (o lenopt) apply(s *settings)   { s.maxLen = int(o) }
func (o depthopt) apply(s *settings) { s.maxDepth = int(o) }
func (o precopt) apply(s *settings)  { s.prec = uint(o) }

// MaxLength limits the number of runes the parser reads. Zero or negative
// removes the limit.
func MaxLength(n int) Option {
	return lenopt(n)
}

// MaxDepth limits the parser recursion depth, which bounds the stack used by
// deeply nested inputs. Zero or negative removes the limit.
func MaxDepth(n int) Option {
	return depthopt(n)
}

// Prec sets the precision of calculations in bits. Zero selects the default.
func Prec(prec uint) Option {
	return precopt(prec)
}

// configure applies options in order over the defaults.
func configure(opts []Option) settings {
	s := settings{
		maxLen:   DefaultMaxLength,
		maxDepth: DefaultMaxDepth,
		prec:     DefaultPrec,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&s)
	}
	if s.prec == 0 {
		s.prec = DefaultPrec
	}
	return s
}
