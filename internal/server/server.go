// Package server exposes the retrieval engine over HTTP: boolean search,
// ranked search, rebuild, and health endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/LudwigAndreas/Infopoisk/internal/engine"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/executor"
	"github.com/LudwigAndreas/Infopoisk/internal/searcher/ranker"
	"github.com/LudwigAndreas/Infopoisk/pkg/config"
	apperrors "github.com/LudwigAndreas/Infopoisk/pkg/errors"
	"github.com/LudwigAndreas/Infopoisk/pkg/health"
	"github.com/LudwigAndreas/Infopoisk/pkg/metrics"
	"github.com/LudwigAndreas/Infopoisk/pkg/middleware"
	"github.com/LudwigAndreas/Infopoisk/pkg/resilience"
)

// Server wires the engine into an http.Server.
type Server struct {
	cfg     *config.Config
	engine  *engine.Engine
	checker *health.Checker
	metrics *metrics.Metrics
	logger  *slog.Logger
	httpSrv *http.Server
}

type searchResponse struct {
	Query   string            `json:"query"`
	Count   int               `json:"count"`
	Results []executor.Result `json:"results"`
}

type rankResponse struct {
	Query     string             `json:"query"`
	TermSpace string             `json:"term_space"`
	Count     int                `json:"count"`
	Results   []ranker.ScoredDoc `json:"results"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Results []any  `json:"results"`
}

// New creates a Server. metrics may be nil when the scrape endpoint is
// disabled.
func New(cfg *config.Config, eng *engine.Engine, m *metrics.Metrics, checker *health.Checker) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  eng,
		checker: checker,
		metrics: m,
		logger:  slog.Default().With("component", "server"),
	}
	handler := http.Handler(s.routes())
	if m != nil {
		handler = middleware.Metrics(m)(handler)
	}
	if cfg.Search.QueryTimeout > 0 {
		handler = middleware.Timeout(cfg.Search.QueryTimeout)(handler)
	}
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", s.handleBooleanSearch)
	mux.HandleFunc("GET /api/v1/rank", s.handleRankedSearch)
	mux.HandleFunc("POST /api/v1/rebuild", s.handleRebuild)
	mux.HandleFunc("GET /healthz", s.checker.LiveHandler())
	mux.HandleFunc("GET /readyz", s.checker.ReadyHandler())
	return mux
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("search service listening", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleBooleanSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results, err := s.engine.BooleanSearch(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	})
}

func (s *Server) handleRankedSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	space := ranker.SpaceTerms
	if r.URL.Query().Get("space") == "lemmas" {
		space = ranker.SpaceLemmas
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	results, err := s.engine.RankedSearch(r.Context(), query, space, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rankResponse{
		Query:     query,
		TermSpace: space.String(),
		Count:     len(results),
		Results:   results,
	})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	err := resilience.WithTimeout(r.Context(), s.cfg.Search.RebuildTimeout, "rebuild",
		func(ctx context.Context) error {
			return s.engine.Rebuild(ctx, true)
		})
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap := s.engine.Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "rebuilt",
		"documents": snap.Catalog.Len(),
		"terms":     snap.Index.TermCount(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{
		Error:   err.Error(),
		Results: []any{},
	})
}
