package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zephyrtronium/bodmas/stats"
)

// params reads numeric query parameters, remembering the first failure.
type params struct {
	q   url.Values
	err error
}

func (p *params) float(name string, def *float64) float64 {
	if p.err != nil {
		return 0
	}
	v := p.q.Get(name)
	if v == "" {
		if def == nil {
			p.err = fmt.Errorf("missing parameter %s", name)
			return 0
		}
		return *def
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = fmt.Errorf("parameter %s: %q is not a number", name, v)
	}
	return x
}

func (p *params) int(name string, def *int) int {
	if p.err != nil {
		return 0
	}
	v := p.q.Get(name)
	if v == "" {
		if def == nil {
			p.err = fmt.Errorf("missing parameter %s", name)
			return 0
		}
		return *def
	}
	x, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("parameter %s: %q is not an integer", name, v)
	}
	return x
}

type sampleResponse struct {
	Seed    int64         `json:"seed"`
	Values  []float64     `json:"values"`
	Summary stats.Summary `json:"summary"`
}

func (s *Server) sample(w http.ResponseWriter, r *http.Request) {
	c := s.Config().Sample
	seed := c.Seed
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.paramError(w, fmt.Errorf("parameter seed: %q is not an integer", v))
			return
		}
		seed = n
	}
	xs := stats.Generate(seed, c.Size, c.Mean, c.StdDev)
	sum, err := stats.Describe(xs)
	if err != nil {
		s.paramError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sampleResponse{Seed: seed, Values: xs, Summary: sum})
}

type describeRequest struct {
	Values []float64 `json:"values"`
}

func (s *Server) describe(w http.ResponseWriter, r *http.Request) {
	b, err := s.readBody(w, r)
	if err != nil {
		s.bodyError(w, err)
		return
	}
	var req describeRequest
	if err := json.Unmarshal(b, &req); err != nil {
		s.paramError(w, fmt.Errorf("decoding request: %w", err))
		return
	}
	sum, err := stats.Describe(req.Values)
	if err != nil {
		s.paramError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}

func (s *Server) zscore(w http.ResponseWriter, r *http.Request) {
	cfg := s.Config()
	size, level := cfg.Sample.Size, cfg.Confidence.Level
	p := params{q: r.URL.Query()}
	x := p.float("x", nil)
	mu := p.float("mu", nil)
	sigma := p.float("sigma", nil)
	n := p.int("n", &size)
	level = p.float("level", &level)
	if p.err != nil {
		s.paramError(w, p.err)
		return
	}
	res, err := stats.ZScore(x, mu, sigma, n, level)
	if err != nil {
		s.statsError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) ttest(w http.ResponseWriter, r *http.Request) {
	p := params{q: r.URL.Query()}
	mean := p.float("mean", nil)
	mu0 := p.float("mu0", nil)
	sd := p.float("s", nil)
	n := p.int("n", nil)
	if p.err != nil {
		s.paramError(w, p.err)
		return
	}
	res, err := stats.TTest(mean, mu0, sd, n)
	if err != nil {
		s.statsError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// statsError writes an error from the stats package. Anything other than a
// bad parameter is unexpected.
func (s *Server) statsError(w http.ResponseWriter, err error) {
	if errors.Is(err, stats.ErrBadParam) || errors.Is(err, stats.ErrSampleSize) || errors.Is(err, stats.ErrEmpty) {
		s.paramError(w, err)
		return
	}
	s.log.Printf("stats: %v", err)
	s.writeError(w, http.StatusInternalServerError, apiError{Kind: KindInternal, Message: "internal error"})
}

func (s *Server) formulas(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) section(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("section")
	sec := s.catalog.Section(id)
	if sec == nil {
		s.writeError(w, http.StatusNotFound, apiError{Kind: KindParam, Message: fmt.Sprintf("no section %q", id)})
		return
	}
	s.writeJSON(w, http.StatusOK, sec)
}
