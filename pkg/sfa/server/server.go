// Package server exposes fundamentals, screening and CSV export over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/komsit37/sfa/pkg/sfa/columns"
	"github.com/komsit37/sfa/pkg/sfa/fetch"
	"github.com/komsit37/sfa/pkg/sfa/pipeline"
	"github.com/komsit37/sfa/pkg/sfa/render"
	"github.com/komsit37/sfa/pkg/sfa/screen"
	"github.com/komsit37/sfa/pkg/sfa/source"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

// MaxSymbols caps the symbols accepted by one screen request.
const MaxSymbols = 50

type Server struct {
	runner   *pipeline.Runner
	policy   types.Policy
	criteria screen.Criteria
	basis    screen.Basis
	log      zerolog.Logger
}

// New returns a Server. criteria and basis supply the screen settings used
// when a request leaves them out.
func New(runner *pipeline.Runner, policy types.Policy, criteria screen.Criteria, basis screen.Basis, log zerolog.Logger) *Server {
	return &Server{runner: runner, policy: policy, criteria: criteria, basis: basis, log: log}
}

// Routes returns a chi.Router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.healthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/fundamentals/{symbol}", s.fundamentals)
		r.Get("/screen", s.screen)
		r.Get("/export/{file}", s.export)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) fundamentals(w http.ResponseWriter, r *http.Request) {
	syms := source.ParseSymbols([]string{chi.URLParam(r, "symbol")})
	if len(syms) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one symbol required")
		return
	}
	opts := pipeline.Options{Policy: s.policy, IncludeHistory: boolParam(r, "history")}
	reps, err := s.runner.Run(r.Context(), syms, opts)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	rep := reps[0]
	writeJSON(w, statusFor(rep.Err), render.ToJSON(reps, render.RenderOptions{})[0])
}

type screenResponse struct {
	Criteria screen.Criteria `json:"criteria"`
	Policy   string          `json:"policy"`
	On       screen.Basis    `json:"on"`
	Results  []render.Report `json:"results"`
}

func (s *Server) screen(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	syms := source.ParseSymbols(q["symbols"])
	if len(syms) == 0 {
		writeError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	if len(syms) > MaxSymbols {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d symbols per request", MaxSymbols))
		return
	}

	c, p, on, err := s.criteriaFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := pipeline.Options{Policy: p, Criteria: &c, ScreenOn: on, OnlyIncluded: boolParam(r, "only_included")}
	reps, err := s.runner.Run(r.Context(), syms, opts)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, screenResponse{
		Criteria: c,
		Policy:   p.String(),
		On:       on,
		Results:  render.ToJSON(reps, render.RenderOptions{}),
	})
}

func (s *Server) criteriaFrom(r *http.Request) (screen.Criteria, types.Policy, screen.Basis, error) {
	q := r.URL.Query()
	c := s.criteria
	p := s.policy
	on := s.basis
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"min_roe", &c.MinROE},
		{"max_de", &c.MaxDebtEquity},
		{"min_mcap", &c.MinMarketCap},
	} {
		v := strings.TrimSpace(q.Get(f.name))
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c, p, on, fmt.Errorf("invalid %s: %q", f.name, v)
		}
		*f.dst = n
	}
	if v := q.Get("unit"); v != "" {
		u, err := screen.ParseUnit(v)
		if err != nil {
			return c, p, on, err
		}
		c.Unit = u
	}
	if v := q.Get("policy"); v != "" {
		pp, err := types.ParsePolicy(v)
		if err != nil {
			return c, p, on, err
		}
		p = pp
	}
	if v := q.Get("on"); v != "" {
		b, err := screen.ParseBasis(v)
		if err != nil {
			return c, p, on, err
		}
		on = b
	}
	if err := c.Validate(); err != nil {
		return c, p, on, err
	}
	return c, p, on, nil
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if !strings.HasSuffix(strings.ToLower(file), ".csv") {
		writeError(w, http.StatusNotFound, "export must end in .csv")
		return
	}
	syms := source.ParseSymbols([]string{file[:len(file)-len(".csv")]})
	if len(syms) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one symbol required")
		return
	}
	reps, err := s.runner.Run(r.Context(), syms, pipeline.Options{Policy: s.policy})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if reps[0].Err != nil {
		writeError(w, statusFor(reps[0].Err), reps[0].Err.Error())
		return
	}
	cols, err := columns.Resolve(nil, nil, []string{"export"})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.ExportFileName(syms[0])))
	if err := render.NewCSVRenderer().Render(w, reps, render.RenderOptions{Columns: cols}); err != nil {
		s.log.Error().Err(err).Str("symbol", syms[0]).Msg("csv export failed")
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, fetch.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, fetch.ErrEmptySymbol):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func boolParam(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
