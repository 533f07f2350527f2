package trace

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spendwise/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	m := NewMiddleware(log.NewText(io.Discard, slog.LevelError, log.ComponentHTTP), nil)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.HasPrefix(seen, "req_") || w.Header().Get(RequestIDHeader) != seen {
		t.Errorf("request id %q, header %q", seen, w.Header().Get(RequestIDHeader))
	}
	if got := m.GetMetrics(); got.TotalRequests != 1 || got.ErrorResponses != 1 {
		t.Errorf("metrics = %+v", got)
	}
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("request ids must be unique")
	}
}
