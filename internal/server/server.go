package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/consultant-match/internal/logging"
	"github.com/jonathan/consultant-match/internal/pipeline"
	"github.com/jonathan/consultant-match/internal/server/middleware"
	"github.com/jonathan/consultant-match/internal/server/ratelimit"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 16 << 20

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Options configures a Server
type Options struct {
	Port        int
	CORSOrigins []string
	Runner      *pipeline.Runner
	// RateLimiter may be nil to disable rate limiting
	RateLimiter *ratelimit.Limiter
	// Auth may be nil; when set every route except /health requires a bearer token
	Auth   middleware.TokenValidator
	Checks map[string]HealthCheck
	Logger *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	runner      *pipeline.Runner
	rateLimiter *ratelimit.Limiter
	auth        middleware.TokenValidator
	corsOrigins []string
	checks      map[string]HealthCheck
	logger      *zap.Logger
}

// New creates a new server instance
func New(opts Options) *Server {
	logger := logging.OrNop(opts.Logger)
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, pipeline.Options{Logger: logger})
	}

	s := &Server{
		runner:      runner,
		rateLimiter: opts.RateLimiter,
		auth:        opts.Auth,
		corsOrigins: opts.CORSOrigins,
		checks:      opts.Checks,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /matches", s.protect(s.handleScore))
	mux.Handle("POST /assignments/{id}/matches", s.protect(s.handleMatchAssignment))
	mux.Handle("POST /assignments/{id}/matches/stream", s.protect(s.handleMatchAssignmentStream))
	mux.Handle("GET /assignments/{id}/matches", s.protect(s.handleLatestMatches))
	mux.Handle("GET /assignments", s.protect(s.handleListAssignments))
	mux.Handle("POST /assignments", s.protect(s.handleCreateAssignment))
	mux.Handle("POST /consultants", s.protect(s.handleImportConsultants))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Letters for ten candidates can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens for requests until ctx is cancelled, then shuts down gracefully
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
	case err, ok := <-errCh:
		if ok {
			s.stopLimiter()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.stopLimiter()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) stopLimiter() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// protect wraps h with bearer authentication when it is configured
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	if s.auth == nil {
		return h
	}
	return middleware.AuthMiddleware(s.auth)(h)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowedOrigin returns the Access-Control-Allow-Origin value for a request origin
func (s *Server) allowedOrigin(origin string) string {
	if slices.Contains(s.corsOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(s.corsOrigins, origin) {
		return origin
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder
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
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client", extractClientID(r)),
		)
	})
}

// handleHealth returns server health status. Each configured check is run
// with a short timeout; any failure reports the service as degraded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if len(s.checks) == 0 {
		s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	s.jsonResponse(w, code, map[string]any{"status": status, "checks": results})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFromErr maps err onto a status code and writes it. Server errors are
// logged and their detail hidden from the client.
func (s *Server) errorFromErr(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
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
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := max(1, int(info.RetryAfter.Seconds()))
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID),
		zap.Int("limit", info.Limit),
		zap.Duration("retry_after", info.RetryAfter),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
