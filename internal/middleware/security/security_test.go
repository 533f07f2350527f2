package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
		agent  string
		method string
		want   bool
	}{
		{"plain api call", "/api/dashboard?month=2025-03", "Mozilla/5.0", http.MethodGet, false},
		{"path traversal", "/api/../../etc/passwd", "", http.MethodGet, true},
		{"dotenv scan", "/.env", "", http.MethodGet, true},
		{"scanner agent", "/", "sqlmap/1.7", http.MethodGet, true},
		{"trace method", "/", "", "TRACE", true},
	}
	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest = %v, want %v", got, tt.want)
			}
		})
	}
	if got := d.GetMetrics().SuspiciousRequests; got != 4 {
		t.Errorf("SuspiciousRequests = %d, want 4", got)
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:4000"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := d.ExtractClientIP(r); got != "203.0.113.9" {
		t.Errorf("untrusted proxy: got %q", got)
	}

	r.RemoteAddr = "10.0.0.2:4000"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.2")
	if got := d.ExtractClientIP(r); got != "198.51.100.1" {
		t.Errorf("trusted proxy: got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "not-an-ip")
	if got := d.ExtractClientIP(r); got != "10.0.0.2" {
		t.Errorf("bad forwarded value: got %q", got)
	}
	if d.GetMetrics().InvalidIPAttempts != 1 {
		t.Errorf("metrics = %+v", d.GetMetrics())
	}
}

func TestHeadersAndCORS(t *testing.T) {
	cfg := DefaultHeadersConfig()
	cfg.AllowedOrigin = "https://app.example.com"
	called := false
	h := NewHeadersMiddleware(cfg).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	r.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if !called {
		t.Fatal("handler not called")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Errorf("headers = %v", w.Header())
	}

	called = false
	pre := httptest.NewRequest(http.MethodOptions, "/api/expenses", nil)
	pre.Header.Set("Origin", "https://app.example.com")
	pre.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, pre)
	if w.Code != http.StatusNoContent || called {
		t.Errorf("preflight = %d, handler called %v", w.Code, called)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, other)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("foreign origin allowed: %v", w.Header())
	}
}
