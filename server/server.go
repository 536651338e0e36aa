// Package server implements the statshub JSON API over the calculator, the
// statistics package, and the formula catalog.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zephyrtronium/bodmas/config"
	"github.com/zephyrtronium/bodmas/formulas"
)

// Server handles API requests. Its configuration can be replaced while it is
// serving.
type Server struct {
	cfg     atomic.Pointer[config.Config]
	catalog *formulas.Catalog
	log     *log.Logger
	mux     *http.ServeMux
}

// New creates a server. cfg must already be valid.
func New(cfg *config.Config, catalog *formulas.Catalog, logger *log.Logger) *Server {
	s := &Server{
		catalog: catalog,
		log:     logger,
		mux:     http.NewServeMux(),
	}
	s.cfg.Store(cfg)
	s.mux.HandleFunc("GET /healthz", s.health)
	s.mux.HandleFunc("GET /api/eval", s.evalQuery)
	s.mux.HandleFunc("POST /api/eval", s.evalBody)
	s.mux.HandleFunc("GET /api/sample", s.sample)
	s.mux.HandleFunc("POST /api/describe", s.describe)
	s.mux.HandleFunc("GET /api/zscore", s.zscore)
	s.mux.HandleFunc("GET /api/ttest", s.ttest)
	s.mux.HandleFunc("GET /api/formulas", s.formulas)
	s.mux.HandleFunc("GET /api/formulas/{section}", s.section)
	return s
}

// Config returns the current configuration.
func (s *Server) Config() *config.Config {
	return s.cfg.Load()
}

// SetConfig replaces the configuration for subsequent requests.
func (s *Server) SetConfig(cfg *config.Config) {
	old := s.cfg.Swap(cfg)
	if old.Listen != cfg.Listen {
		s.log.Printf("listen address changed from %s to %s; restart to apply", old.Listen, cfg.Listen)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Printf("%s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Error kinds which are not evaluator error kinds.
const (
	KindParam    = "param"
	KindInternal = "internal"
)

// apiError is the body of every failed request.
type apiError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Pos     int    `json:"pos,omitempty"`
}

// writeJSON encodes v before writing anything, so that a value which cannot
// be encoded becomes an internal error and not a truncated response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("encoding response: %v", err)
		status = http.StatusInternalServerError
		b = []byte(`{"error":{"kind":"` + KindInternal + `","message":"internal error"}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		s.log.Printf("writing response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, e apiError) {
	s.writeJSON(w, status, struct {
		Error apiError `json:"error"`
	}{e})
}

// bodyError writes an error from readBody.
func (s *Server) bodyError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) || errors.Is(err, errTooLarge) {
		s.writeError(w, http.StatusRequestEntityTooLarge, apiError{Kind: KindParam, Message: err.Error()})
		return
	}
	s.paramError(w, err)
}

func (s *Server) paramError(w http.ResponseWriter, err error) {
	s.writeError(w, http.StatusBadRequest, apiError{Kind: KindParam, Message: err.Error()})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
