// Package stats computes the descriptive and inferential statistics shown on
// the dashboard: sample moments, standard errors, Z-scores with confidence
// intervals, one-sample t-statistics, and correlation.
package stats

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	mstats "github.com/aclements/go-moremath/stats"
)

var (
	// ErrEmpty is returned when a computation is given no data.
	ErrEmpty = errors.New("stats: no data")
	// ErrSampleSize is returned when a sample is too small for a statistic.
	ErrSampleSize = errors.New("stats: sample is too small")
	// ErrBadParam is returned for parameters outside their valid range, e.g.
	// a negative standard deviation.
	ErrBadParam = errors.New("stats: invalid parameter")
)

// Summary describes a sample.
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	// Modes are the most frequent values, in increasing order. It is empty
	// if no value occurs more than once.
	Modes []float64 `json:"modes"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Range float64   `json:"range"`
	// Variance and StdDev are the sample statistics, with n-1 in the
	// denominator. They are 0 for a single observation.
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"stddev"`
	// PopVariance and PopStdDev use n in the denominator.
	PopVariance float64 `json:"pop_variance"`
	PopStdDev   float64 `json:"pop_stddev"`
	// StdErr is the standard error of the mean, StdDev/√n.
	StdErr float64 `json:"stderr"`
}

// Describe computes a Summary of xs. xs is not modified.
func Describe(xs []float64) (Summary, error) {
	if len(xs) == 0 {
		return Summary{}, ErrEmpty
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	s := mstats.Sample{Xs: sorted, Sorted: true}
	lo, hi := s.Bounds()
	sum := Summary{
		N:      len(xs),
		Mean:   s.Mean(),
		Median: s.Quantile(0.5),
		Modes:  modes(sorted),
		Min:    lo,
		Max:    hi,
		Range:  hi - lo,
	}
	if sum.N > 1 {
		n := float64(sum.N)
		sum.Variance = s.Variance()
		sum.StdDev = math.Sqrt(sum.Variance)
		sum.PopVariance = sum.Variance * (n - 1) / n
		sum.PopStdDev = math.Sqrt(sum.PopVariance)
		sum.StdErr = StdErr(sum.StdDev, sum.N)
	}
	if err := finite(named{"mean", sum.Mean}, named{"range", sum.Range}, named{"variance", sum.Variance}); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// modes finds the most frequent values of a sorted slice.
func modes(sorted []float64) []float64 {
	best := 1
	var r []float64
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		switch k := j - i; {
		case k > best:
			best = k
			r = append(r[:0], sorted[i])
		case k == best && best > 1:
			r = append(r, sorted[i])
		}
		i = j
	}
	return r
}

// StdErr returns the standard error s/√n.
func StdErr(s float64, n int) float64 {
	return s / math.Sqrt(float64(n))
}

// Generate draws n values from a normal distribution with the given mean and
// standard deviation, rounded to two decimal places. The same seed always
// produces the same sample.
func Generate(seed int64, n int, mean, stddev float64) []float64 {
	r := rand.New(rand.NewSource(seed))
	d := mstats.NormalDist{Mu: mean, Sigma: stddev}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = math.Round(d.Rand(r)*100) / 100
	}
	return xs
}
