package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/golang/snappy"

	"github.com/zephyrtronium/bodmas"
)

type evalRequest struct {
	Expression string `json:"expression"`
}

type evalResponse struct {
	Expression string `json:"expression"`
	// Result is the value at the configured precision.
	Result string  `json:"result"`
	Value  float64 `json:"value"`
	// Tree is the fully bracketed form of the expression.
	Tree string `json:"tree"`
}

func (s *Server) evalQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("expr") {
		s.paramError(w, errors.New("missing parameter expr"))
		return
	}
	s.eval(w, q.Get("expr"))
}

func (s *Server) evalBody(w http.ResponseWriter, r *http.Request) {
	b, err := s.readBody(w, r)
	if err != nil {
		s.bodyError(w, err)
		return
	}
	var req evalRequest
	if err := json.Unmarshal(b, &req); err != nil {
		s.paramError(w, fmt.Errorf("decoding request: %w", err))
		return
	}
	s.eval(w, req.Expression)
}

func (s *Server) eval(w http.ResponseWriter, src string) {
	opts := s.Config().Options()
	a, err := bodmas.Parse(strings.NewReader(src), opts...)
	if err != nil {
		s.inputError(w, err)
		return
	}
	r, err := a.Eval(opts...)
	if err != nil {
		s.inputError(w, err)
		return
	}
	f, _ := r.Float64()
	if math.IsInf(f, 0) {
		// Float64 reports out of range results with their position.
		_, err := a.Float64(opts...)
		s.inputError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, evalResponse{
		Expression: src,
		Result:     r.Text('g', -1),
		Value:      f,
		Tree:       a.String(),
	})
}

// inputError writes an evaluator error with its kind and position.
func (s *Server) inputError(w http.ResponseWriter, err error) {
	var ie bodmas.InputError
	if !errors.As(err, &ie) {
		s.log.Printf("unclassified evaluation error: %v", err)
		s.writeError(w, http.StatusInternalServerError, apiError{Kind: KindInternal, Message: "internal error"})
		return
	}
	s.writeError(w, http.StatusUnprocessableEntity, apiError{
		Kind:    bodmas.Kind(err),
		Message: err.Error(),
		Pos:     ie.Pos(),
	})
}

var errTooLarge = errors.New("request body too large")

// readBody reads a request body of at most the configured size, decoding it
// first if it is snappy compressed.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	max := s.Config().MaxBody
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, max))
	if err != nil {
		return nil, err
	}
	switch enc := r.Header.Get("Content-Encoding"); enc {
	case "", "identity":
		return b, nil
	case "snappy":
		n, err := snappy.DecodedLen(b)
		if err != nil {
			return nil, fmt.Errorf("decoding snappy body: %w", err)
		}
		if int64(n) > max {
			return nil, fmt.Errorf("%w: %d bytes decompressed", errTooLarge, n)
		}
		d, err := snappy.Decode(nil, b)
		if err != nil {
			return nil, fmt.Errorf("decoding snappy body: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
}
