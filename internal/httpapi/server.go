// Package httpapi exposes the threat history and the analyzer as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/classifier"
	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/explorer"
	"github.com/xkilldash9x/phishguard/internal/metrics"
	"github.com/xkilldash9x/phishguard/internal/records"
)

const maxBodyBytes = 1 << 20

// Analyzer classifies a URL and records the verdict.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (*schemas.ThreatRecord, error)
}

// Server holds the handlers. It owns no state of its own.
type Server struct {
	analyzer       Analyzer
	history        *records.Store
	metrics        *metrics.Metrics
	explorer       config.ExplorerConfig
	analyzeTimeout time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// New builds a Server. m may be nil, in which case /metrics is not mounted.
func New(analyzer Analyzer, history *records.Store, m *metrics.Metrics, cfg config.Interface, logger *zap.Logger) *Server {
	return &Server{
		analyzer:       analyzer,
		history:        history,
		metrics:        m,
		explorer:       cfg.Explorer(),
		analyzeTimeout: cfg.Server().AnalyzeTimeout,
		logger:         logger.Named("http"),
		now:            time.Now,
	}
}

// Routes returns the chi.Router serving every endpoint.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/threats", s.handleListThreats)
		r.Get("/threats/{id}", s.handleGetThreat)
		r.Get("/stats/types", s.handleTypeStats)
		r.Get("/stats/timeline", s.handleTimeline)
		r.Get("/stats/summary", s.handleSummary)
	})
	return r
}

// observe logs and counts every request by its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, strconv.Itoa(status), elapsed)
		}
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type analyzeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be a JSON object with a url field")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, http.StatusBadRequest, classifier.ErrEmptyURL.Error())
		return
	}

	ctx := r.Context()
	if s.analyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.analyzeTimeout)
		defer cancel()
	}

	rec, err := s.analyzer.Analyze(ctx, req.URL)
	if err != nil {
		s.writeClassificationError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toView(*rec))
}

func (s *Server) writeClassificationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, classifier.ErrEmptyURL):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, classifier.ErrMalformedOracleResponse):
		s.writeError(w, http.StatusBadGateway,
			"Failed to get a valid analysis from the AI. It may have returned an unexpected format. Please try again.")
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusGatewayTimeout, "The analysis took too long. Please try again.")
	case errors.Is(err, classifier.ErrOracleUnavailable):
		s.writeError(w, http.StatusServiceUnavailable,
			"Failed to analyze URL. The AI service may be temporarily unavailable.")
	default:
		s.logger.Error("Unexpected analyze failure", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// pageResponse decorates a page with the resolved type of each item and the
// pagination control flag.
type pageResponse struct {
	Items        []threatView `json:"items"`
	TotalCount   int          `json:"totalCount"`
	TotalPages   int          `json:"totalPages"`
	Page         int          `json:"page"`
	PageSize     int          `json:"pageSize"`
	StartItem    int          `json:"startItem"`
	EndItem      int          `json:"endItem"`
	ShowControls bool         `json:"showControls"`
}

type threatView struct {
	schemas.ThreatRecord
	Type    string `json:"type"`
	Verdict string `json:"verdict"`
}

func toView(rec schemas.ThreatRecord) threatView {
	return threatView{ThreatRecord: rec, Type: explorer.ResolveType(rec), Verdict: rec.Verdict()}
}

func (s *Server) handleListThreats(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r.URL.Query(), s.explorer)
	if err == nil {
		var page schemas.PageResult
		page, err = s.history.Query(q.Criteria, q.Page, q.PageSize)
		if err == nil {
			s.observeQuery(true)
			s.writeJSON(w, http.StatusOK, toPageResponse(page))
			return
		}
	}
	s.observeQuery(false)
	s.writeError(w, http.StatusBadRequest, err.Error())
}

func toPageResponse(p schemas.PageResult) pageResponse {
	items := make([]threatView, len(p.Items))
	for i, rec := range p.Items {
		items[i] = toView(rec)
	}
	return pageResponse{
		Items:        items,
		TotalCount:   p.TotalCount,
		TotalPages:   p.TotalPages,
		Page:         p.Page,
		PageSize:     p.PageSize,
		StartItem:    p.StartItem,
		EndItem:      p.EndItem,
		ShowControls: p.ShowControls(),
	}
}

func (s *Server) observeQuery(ok bool) {
	if s.metrics != nil {
		s.metrics.ObserveQuery(ok)
	}
}

func (s *Server) handleGetThreat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.history.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "threat record not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toView(rec))
}

func (s *Server) handleTypeStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.history.AggregateByType())
}

func (s *Server) handleTimeline(w http.ResponseWriter, _ *http.Request) {
	buckets := explorer.RelativeBuckets(s.now(), explorer.DefaultTimelineOffsets...)
	counts, err := s.history.AggregateByTimeBucket(buckets)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.history.Summary())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": s.history.Len()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
