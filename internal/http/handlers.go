package http

import (
	"context"
	"net/http"
	"time"

	"spendwise/internal/cache"
	"spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady verifies the store answers within a few seconds
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				log.NewFields().WithError(err).WithErrorType(log.ErrorTypeDatabase).ToSlice()...)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type metricsResponse struct {
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rate_limit"`
	Security  security.DetectionMetrics `json:"security"`
	Cache     *cache.Stats              `json:"trend_cache,omitempty"`
}

// handleMetrics reports the in-process counters as JSON
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	resp := metricsResponse{
		Requests:  s.traceMiddleware.GetMetrics(),
		RateLimit: s.rateLimiter.GetMetrics(),
		Security:  s.securityDetector.GetMetrics(),
	}
	if s.trends != nil {
		stats := s.trends.Stats()
		resp.Cache = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}
