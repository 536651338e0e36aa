package stats

import (
	"errors"
	"math"
	"testing"
)

func TestCritical(t *testing.T) {
	cases := []struct {
		level float64
		want  float64
	}{
		{0.90, 1.644854},
		{0.95, 1.959964},
		{0.99, 2.575829},
	}
	for _, c := range cases {
		got, err := Critical(c.level)
		if err != nil {
			t.Errorf("level %g: %v", c.level, err)
			continue
		}
		if !near(got, c.want, 1e-3) {
			t.Errorf("level %g: want %g, got %g", c.level, c.want, got)
		}
	}
	for _, level := range []float64{0, 1, -0.5, 95, math.NaN()} {
		if _, err := Critical(level); !errors.Is(err, ErrBadParam) {
			t.Errorf("level %g: want ErrBadParam, got %v", level, err)
		}
	}
}

func TestZScore(t *testing.T) {
	r, err := ZScore(55, 50, 10, 30, 0.95)
	if err != nil {
		t.Fatal(err)
	}
	se := 10 / math.Sqrt(30)
	if !near(r.StdErr, se, 1e-12) {
		t.Errorf("wrong standard error: want %g, got %g", se, r.StdErr)
	}
	if !near(r.Z, 5/se, 1e-12) {
		t.Errorf("wrong z: want %g, got %g", 5/se, r.Z)
	}
	if !near(r.Margin, 1.959964*se, 1e-3) {
		t.Errorf("wrong margin: got %g", r.Margin)
	}
	if !near(r.Lower+r.Margin, 55, 1e-12) || !near(r.Upper-r.Margin, 55, 1e-12) {
		t.Errorf("interval [%g, %g] is not centered on 55", r.Lower, r.Upper)
	}

	plain, err := ZScore(70, 50, 10, 1, 0.95)
	if err != nil {
		t.Fatal(err)
	}
	if plain.Z != 2 {
		t.Errorf("plain z-score: want 2, got %g", plain.Z)
	}
}

func TestZScoreErrors(t *testing.T) {
	cases := []struct {
		name  string
		sigma float64
		n     int
		level float64
		err   error
	}{
		{"zero-sigma", 0, 30, 0.95, ErrBadParam},
		{"neg-sigma", -1, 30, 0.95, ErrBadParam},
		{"inf-sigma", math.Inf(1), 30, 0.95, ErrBadParam},
		{"zero-n", 10, 0, 0.95, ErrSampleSize},
		{"level", 10, 30, 1.5, ErrBadParam},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := ZScore(55, 50, c.sigma, c.n, c.level); !errors.Is(err, c.err) {
				t.Errorf("want %v, got %v", c.err, err)
			}
		})
	}
}

func TestTTest(t *testing.T) {
	r, err := TTest(52, 50, 4, 16)
	if err != nil {
		t.Fatal(err)
	}
	if r.StdErr != 1 {
		t.Errorf("wrong standard error: want 1, got %g", r.StdErr)
	}
	if !near(r.T, 2, 1e-12) {
		t.Errorf("wrong t: want 2, got %g", r.T)
	}
	if r.DF != 15 {
		t.Errorf("wrong degrees of freedom: want 15, got %g", r.DF)
	}
	// Two-sided p for t=2 with 15 degrees of freedom.
	if !near(r.P, 0.0639, 1e-3) {
		t.Errorf("wrong p: want about 0.0639, got %g", r.P)
	}

	if _, err := TTest(52, 50, 4, 1); !errors.Is(err, ErrSampleSize) {
		t.Errorf("n=1: want ErrSampleSize, got %v", err)
	}
	if _, err := TTest(52, 50, 0, 16); !errors.Is(err, ErrBadParam) {
		t.Errorf("s=0: want ErrBadParam, got %v", err)
	}
}

func TestTTestSample(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	r, err := TTestSample(xs, 3)
	if err != nil {
		t.Fatal(err)
	}
	if r.T != 0 || r.Mean != 3 || r.N != 5 {
		t.Errorf("wrong result %+v", r)
	}
	if !near(r.P, 1, 1e-9) {
		t.Errorf("want p 1 for t 0, got %g", r.P)
	}
	if _, err := TTestSample(nil, 0); !errors.Is(err, ErrEmpty) {
		t.Errorf("want ErrEmpty, got %v", err)
	}
}

func TestCorrelation(t *testing.T) {
	cases := []struct {
		name   string
		xs, ys []float64
		want   float64
	}{
		{"perfect", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"inverse", []float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}, -1},
		{"partial", []float64{1, 2, 3, 4, 5}, []float64{2, 4, 5, 4, 5}, 0.7745966692414834},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Correlation(c.xs, c.ys)
			if err != nil {
				t.Fatal(err)
			}
			if !near(got, c.want, 1e-12) {
				t.Errorf("want %g, got %g", c.want, got)
			}
		})
	}
	if _, err := Correlation([]float64{1, 2}, []float64{1}); !errors.Is(err, ErrBadParam) {
		t.Errorf("mismatched lengths: want ErrBadParam, got %v", err)
	}
	if _, err := Correlation([]float64{1}, []float64{1}); !errors.Is(err, ErrSampleSize) {
		t.Errorf("one pair: want ErrSampleSize, got %v", err)
	}
	if _, err := Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}); !errors.Is(err, ErrBadParam) {
		t.Errorf("constant sample: want ErrBadParam, got %v", err)
	}
}

func TestNonFiniteParams(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	zcases := []struct {
		name      string
		x, mu, sd float64
	}{
		{"nan-x", nan, 0, 1},
		{"inf-mu", 0, inf, 1},
		{"overflow-diff", 1e308, -1e308, 1},
		{"overflow-z", 1e308, 0, 1e-10},
	}
	for _, c := range zcases {
		if _, err := ZScore(c.x, c.mu, c.sd, 1, 0.95); !errors.Is(err, ErrBadParam) {
			t.Errorf("z %s: want ErrBadParam, got %v", c.name, err)
		}
	}
	tcases := []struct {
		name         string
		mean, mu0, s float64
	}{
		{"inf-mean", inf, 0, 1},
		{"nan-mu0", 0, nan, 1},
		{"overflow-diff", 1e308, -1e308, 1},
		{"overflow-variance", 0, 0, 1e200},
	}
	for _, c := range tcases {
		if _, err := TTest(c.mean, c.mu0, c.s, 5); !errors.Is(err, ErrBadParam) {
			t.Errorf("t %s: want ErrBadParam, got %v", c.name, err)
		}
	}
}
