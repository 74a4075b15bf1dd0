// Package http exposes the runoff engine over HTTP: a compute endpoint plus
// health, readiness, and metrics routes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/runmeter/internal/config"
	"github.com/couchcryptid/runmeter/internal/domain"
	"github.com/couchcryptid/runmeter/internal/observability"
	"github.com/couchcryptid/runmeter/internal/table"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReadyFunc adapts a plain function to ReadinessChecker.
type ReadyFunc func(ctx context.Context) error

func (f ReadyFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// ResultsPublisher forwards a computed batch to downstream consumers.
// A nil publisher disables forwarding.
type ResultsPublisher interface {
	PublishBatch(ctx context.Context, batchID string, res domain.BatchResult) error
}

// Server exposes the compute, health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer     *http.Server
	logger         *slog.Logger
	metrics        *observability.Metrics
	publisher      ResultsPublisher
	maxUploadBytes int64
}

// NewServer creates an HTTP server with /v1/runoff, /healthz, /readyz, and
// /metrics routes.
func NewServer(cfg *config.Config, ready ReadinessChecker, publisher ResultsPublisher, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:         logger,
		metrics:        metrics,
		publisher:      publisher,
		maxUploadBytes: cfg.MaxUploadBytes,
	}

	mux.HandleFunc("POST /v1/runoff", s.handleCompute)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type computeResponse struct {
	BatchID    string                       `json:"batch_id"`
	Method     string                       `json:"method"`
	ComputedAt time.Time                    `json:"computed_at"`
	Results    []domain.ResultRow           `json:"results"`
	Skipped    []domain.RowComputationError `json:"skipped"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Column string `json:"column,omitempty"`
	Row    int    `json:"row,omitempty"`
}

// handleCompute validates the uploaded table and computes runoff for every
// row with the selected method. Row-level failures never fail the request;
// they are reported alongside the results.
func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	batchID := uuid.NewString()

	model, err := domain.ParseMethodLabel(r.URL.Query().Get("method"))
	if err != nil {
		s.metrics.ComputeRequests.WithLabelValues("unknown", "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	ds, err := table.Read(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.metrics.ComputeRequests.WithLabelValues(model.String(), "bad_request").Inc()
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "uploaded table too large"})
			return
		}
		s.metrics.ComputeRequests.WithLabelValues(model.String(), "bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rows, err := domain.Validate(ds, model)
	if err != nil {
		s.metrics.ValidationFailures.Inc()
		s.metrics.ComputeRequests.WithLabelValues(model.String(), "validation_error").Inc()

		resp := errorResponse{Error: err.Error()}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			resp.Column = verr.Column
			resp.Row = verr.Row
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	res := domain.Compute(rows, model)

	s.metrics.RowsComputed.Add(float64(len(res.Rows)))
	s.metrics.RowsSkipped.Add(float64(len(res.Skipped)))
	s.metrics.BatchRows.Observe(float64(len(rows)))
	s.metrics.ComputeDuration.Observe(time.Since(start).Seconds())
	s.metrics.ComputeRequests.WithLabelValues(model.String(), "ok").Inc()

	s.logger.Info("batch computed",
		"batch_id", batchID,
		"method", model.String(),
		"rows", len(res.Rows),
		"skipped", len(res.Skipped),
	)

	s.publishBatch(r.Context(), batchID, res)

	if r.URL.Query().Get("format") == "csv" {
		s.writeCSV(w, batchID, res)
		return
	}

	skipped := res.Skipped
	if skipped == nil {
		skipped = []domain.RowComputationError{}
	}
	writeJSON(w, http.StatusOK, computeResponse{
		BatchID:    batchID,
		Method:     model.String(),
		ComputedAt: res.ComputedAt,
		Results:    res.Rows,
		Skipped:    skipped,
	})
}

// publishBatch forwards results to the optional publisher. Best-effort: a
// publish failure is logged and counted but never fails the request.
func (s *Server) publishBatch(ctx context.Context, batchID string, res domain.BatchResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBatch(ctx, batchID, res); err != nil {
		s.logger.Warn("publish results failed", "batch_id", batchID, "error", err)
		s.metrics.PublishErrors.Inc()
		return
	}
	s.metrics.ResultsPublished.Add(float64(len(res.Rows)))
}

func (s *Server) writeCSV(w http.ResponseWriter, batchID string, res domain.BatchResult) {
	if len(res.Skipped) > 0 {
		w.Header().Set("X-Runmeter-Skipped-Rows", skippedRowsHeader(res.Skipped))
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := table.WriteResults(w, res.Rows); err != nil {
		s.logger.Error("write csv response", "batch_id", batchID, "error", err)
	}
}

// skippedRowsHeader renders 1-based skipped row indexes as "2,7,9".
func skippedRowsHeader(skipped []domain.RowComputationError) string {
	rows := make([]string, len(skipped))
	for i, e := range skipped {
		rows[i] = strconv.Itoa(e.Row)
	}
	return strings.Join(rows, ",")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
