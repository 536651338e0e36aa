package stats

import (
	"fmt"
	"math"

	mstats "github.com/aclements/go-moremath/stats"
)

var stdNormal = mstats.NormalDist{Mu: 0, Sigma: 1}

// Critical returns the two-sided critical value of the standard normal
// distribution for a confidence level in (0, 1), e.g. about 1.96 for 0.95.
func Critical(level float64) (float64, error) {
	if !(level > 0 && level < 1) {
		return 0, fmt.Errorf("%w: confidence level %g not in (0, 1)", ErrBadParam, level)
	}
	return stdNormal.InvCDF(1 - (1-level)/2), nil
}

// ZResult is the result of a Z-score computation with the confidence interval
// around the observed value.
type ZResult struct {
	X     float64 `json:"x"`
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
	N     int     `json:"n"`
	Level float64 `json:"level"`

	// StdErr is σ/√n.
	StdErr float64 `json:"stderr"`
	// Z is (x-μ)/(σ/√n).
	Z float64 `json:"z"`
	// Critical is the normal critical value for Level.
	Critical float64 `json:"critical"`
	// Margin is Critical·StdErr, and the interval is X ± Margin.
	Margin float64 `json:"margin"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// ZScore computes the Z-score of an observation x against a population with
// mean mu and standard deviation sigma for a sample of size n, along with the
// confidence interval for the given level. With n = 1 this is the plain
// Z-score (x-μ)/σ.
func ZScore(x, mu, sigma float64, n int, level float64) (ZResult, error) {
	if err := finite(named{"x", x}, named{"mu", mu}, named{"x - mu", x - mu}); err != nil {
		return ZResult{}, err
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return ZResult{}, fmt.Errorf("%w: standard deviation %g must be positive", ErrBadParam, sigma)
	}
	if n < 1 {
		return ZResult{}, fmt.Errorf("%w: sample size %d", ErrSampleSize, n)
	}
	crit, err := Critical(level)
	if err != nil {
		return ZResult{}, err
	}
	se := StdErr(sigma, n)
	r := ZResult{
		X:        x,
		Mu:       mu,
		Sigma:    sigma,
		N:        n,
		Level:    level,
		StdErr:   se,
		Z:        (x - mu) / se,
		Critical: crit,
		Margin:   crit * se,
	}
	r.Lower = x - r.Margin
	r.Upper = x + r.Margin
	if err := finite(named{"z", r.Z}, named{"lower bound", r.Lower}, named{"upper bound", r.Upper}); err != nil {
		return ZResult{}, err
	}
	return r, nil
}

// TResult is the result of a one-sample t-test.
type TResult struct {
	Mean   float64 `json:"mean"`
	Mu0    float64 `json:"mu0"`
	S      float64 `json:"s"`
	N      int     `json:"n"`
	StdErr float64 `json:"stderr"`
	// T is (x̄-μ0)/(s/√n).
	T float64 `json:"t"`
	// DF is the degrees of freedom, n-1.
	DF float64 `json:"df"`
	// P is the two-sided p-value.
	P float64 `json:"p"`
}

// moments is a sample known only through its summary statistics.
type moments struct {
	n, mean, variance float64
}

func (m moments) Weight() float64   { return m.n }
func (m moments) Mean() float64     { return m.mean }
func (m moments) Variance() float64 { return m.variance }

// TTest computes the one-sample t-statistic for a sample of size n with mean
// and sample standard deviation s against the hypothesized mean mu0.
func TTest(mean, mu0, s float64, n int) (TResult, error) {
	if n < 2 {
		return TResult{}, fmt.Errorf("%w: t-test needs at least 2 observations, have %d", ErrSampleSize, n)
	}
	if !(s > 0) || math.IsInf(s, 0) {
		return TResult{}, fmt.Errorf("%w: standard deviation %g must be positive", ErrBadParam, s)
	}
	if err := finite(named{"mean", mean}, named{"mu0", mu0}, named{"mean - mu0", mean - mu0}, named{"variance", s * s}); err != nil {
		return TResult{}, err
	}
	res, err := mstats.OneSampleTTest(moments{float64(n), mean, s * s}, mu0, mstats.LocationDiffers)
	if err != nil {
		return TResult{}, fmt.Errorf("stats: t-test: %w", err)
	}
	if err := finite(named{"t", res.T}, named{"p", res.P}); err != nil {
		return TResult{}, err
	}
	return TResult{
		Mean:   mean,
		Mu0:    mu0,
		S:      s,
		N:      n,
		StdErr: StdErr(s, n),
		T:      res.T,
		DF:     res.DoF,
		P:      res.P,
	}, nil
}

// TTestSample runs TTest on the summary statistics of xs.
func TTestSample(xs []float64, mu0 float64) (TResult, error) {
	sum, err := Describe(xs)
	if err != nil {
		return TResult{}, err
	}
	return TTest(sum.Mean, mu0, sum.StdDev, sum.N)
}

// Correlation returns the Pearson correlation coefficient of paired samples.
func Correlation(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("%w: %d x values but %d y values", ErrBadParam, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("%w: correlation needs at least 2 pairs, have %d", ErrSampleSize, len(xs))
	}
	mx, my := mstats.Mean(xs), mstats.Mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, fmt.Errorf("%w: correlation of a constant sample", ErrBadParam)
	}
	return sxy / math.Sqrt(sxx*syy), nil
}

// named is a value with a name for error messages.
type named struct {
	name string
	x    float64
}

// finite returns an error for the first value that is NaN or infinite.
func finite(vs ...named) error {
	for _, v := range vs {
		if math.IsNaN(v.x) || math.IsInf(v.x, 0) {
			return fmt.Errorf("%w: %s is %g", ErrBadParam, v.name, v.x)
		}
	}
	return nil
}
