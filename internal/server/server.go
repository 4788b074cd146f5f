// Package server provides the HTTP REST API for the career coach.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/pipeline"
	"github.com/victorzhu443/firstplay-backend/internal/server/ratelimit"
	"github.com/victorzhu443/firstplay-backend/internal/service"
	"github.com/victorzhu443/firstplay-backend/internal/types"
)

// Coach is the set of operations the API exposes. *service.Coach implements it.
type Coach interface {
	UploadCandidate(ctx context.Context, filename, contentType string, data []byte) (*service.Submission, error)
	SubmitJobURL(ctx context.Context, url string) (*service.Submission, error)
	SubmitJobText(ctx context.Context, text string) (*service.Submission, error)
	ParseCandidate(ctx context.Context, id uuid.UUID) (*types.ParsedCandidate, error)
	ParseJob(ctx context.Context, id uuid.UUID) (*types.ParsedJob, error)
	Analyze(ctx context.Context, candidateID, jobID uuid.UUID) (*types.GapAnalysisRecord, error)
	GenerateProjects(ctx context.Context, analysisID uuid.UUID) (*types.ProjectPlanRecord, error)
	Rewrite(ctx context.Context, candidateID, jobID uuid.UUID) (*types.RewrittenProfileRecord, error)
	RunPipeline(ctx context.Context, candidateID, jobID uuid.UUID, onProgress pipeline.ProgressCallback) (*pipeline.State, error)
	Enqueue(ctx context.Context, candidateID, jobID uuid.UUID) (uuid.UUID, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*service.RunStatus, error)
	ExportGapReport(ctx context.Context, analysisID uuid.UUID, w io.Writer) error
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	coach          Coach
	logger         *zap.Logger
	rateLimiter    *ratelimit.Limiter
	allowedOrigins []string
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	// RateLimit nil uses the limiter defaults.
	RateLimit *ratelimit.Config
}

// New creates a new server instance
func New(cfg Config, coach Coach, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		coach:          coach,
		logger:         logger,
		rateLimiter:    ratelimit.NewLimiter(cfg.RateLimit),
		allowedOrigins: cfg.AllowedOrigins,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for pipeline runs
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/resume/upload", s.handleUploadResume)
	mux.HandleFunc("POST /api/resume/parse", s.handleParseResume)
	mux.HandleFunc("POST /api/resume/improve", s.handleImproveResume)

	mux.HandleFunc("POST /api/job/url", s.handleSubmitJobURL)
	mux.HandleFunc("POST /api/job/description/manual", s.handleSubmitJobText)
	mux.HandleFunc("POST /api/job/parse", s.handleParseJob)

	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/projects", s.handleProjects)
	mux.HandleFunc("GET /api/analysis/{id}/export.xlsx", s.handleExportAnalysis)

	mux.HandleFunc("POST /api/pipeline/run", s.handlePipelineRun)
	mux.HandleFunc("POST /api/pipeline/run/stream", s.handlePipelineRunStream)
	mux.HandleFunc("POST /api/pipeline/enqueue", s.handlePipelineEnqueue)
	mux.HandleFunc("GET /api/pipeline/runs/{id}", s.handleGetRun)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	defer s.rateLimiter.Stop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	if len(s.allowedOrigins) == 0 || slices.Contains(s.allowedOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(s.allowedOrigins, origin) {
		return origin
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("error encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handleError maps err to a status and writes it. Server errors are logged.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.errorResponse(w, status, errorMessage(err))
}

// extractClientID returns the client IP from RemoteAddr.
// X-Forwarded-For is not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
