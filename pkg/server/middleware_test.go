package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func withRemote(req *http.Request, addr string) *http.Request {
	req.RemoteAddr = addr
	return req
}

func TestRateLimiting(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Options.EnableRateLimit = true
	cfg.RateLimit = 1
	cfg.RateLimitBurst = 1

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	handler := s.withMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// First request from a client passes, the second in the same window is
	// rejected.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withRemote(httptest.NewRequest(http.MethodGet, "/", nil), "192.0.2.1:1111"))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: expected %d, got %d", http.StatusOK, w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, withRemote(httptest.NewRequest(http.MethodGet, "/", nil), "192.0.2.1:2222"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected %d, got %d", http.StatusTooManyRequests, w.Code)
	}
	if got := w.Body.String(); got != "Too many requests. Please try again later." {
		t.Errorf("unexpected body %q", got)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429")
	}

	// A different client IP has its own window.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, withRemote(httptest.NewRequest(http.MethodGet, "/", nil), "192.0.2.99:3333"))
	if w.Code != http.StatusOK {
		t.Errorf("other client: expected %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRateLimitHonorsForwardedFor(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Options.EnableRateLimit = true
	cfg.RateLimit = 1
	cfg.RateLimitBurst = 1

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	handler := s.withMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Same proxy address, distinct forwarded clients: both pass.
	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		req := withRemote(httptest.NewRequest(http.MethodGet, "/", nil), "10.0.0.1:80")
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("client %s: expected %d, got %d", client, http.StatusOK, w.Code)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Options.EnableRateLimit = false
	h := newTestServer(t, cfg)

	for i := 0; i < 5; i++ {
		w := do(t, h, http.MethodGet, "/", "")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected %d, got %d", i, http.StatusOK, w.Code)
		}
	}
}

func TestCORSHeaders(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Options.EnableCORS = true
	h := newTestServer(t, cfg)

	w := do(t, h, http.MethodGet, "/latestImage", "")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard CORS origin, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Options.EnableCORS = true
	h := newTestServer(t, cfg)

	w := do(t, h, http.MethodOptions, "/graph", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("expected %d for preflight, got %d", http.StatusNoContent, w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("expected Access-Control-Allow-Methods on preflight")
	}
}

func TestCORSDisabled(t *testing.T) {
	h := newTestServer(t, nil)

	w := do(t, h, http.MethodGet, "/latestImage", "")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers, got %q", got)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	h := newTestServer(t, nil)

	w := do(t, h, http.MethodGet, "/latestImage", "")
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("expected generated X-Request-Id header")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	h := newTestServer(t, nil)

	const id = "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"
	req := withRemote(httptest.NewRequest(http.MethodGet, "/latestImage", nil), "192.0.2.1:1")
	req.Header.Set("X-Request-Id", id)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != id {
		t.Errorf("expected request id %q to be preserved, got %q", id, got)
	}
}

func TestPanicRecovery(t *testing.T) {
	cfg := newTestConfig(t)
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	handler := s.withMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withRemote(httptest.NewRequest(http.MethodGet, "/", nil), "192.0.2.1:1"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected %d after panic, got %d", http.StatusInternalServerError, w.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{name: "remote addr only", remoteAddr: "192.0.2.1:1234", expected: "192.0.2.1"},
		{name: "forwarded single", remoteAddr: "10.0.0.1:80", forwarded: "203.0.113.7", expected: "203.0.113.7"},
		{name: "forwarded chain", remoteAddr: "10.0.0.1:80", forwarded: "203.0.113.7, 10.0.0.2", expected: "203.0.113.7"},
		{name: "unparseable remote", remoteAddr: "bogus", expected: "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withRemote(httptest.NewRequest(http.MethodGet, "/", nil), tt.remoteAddr)
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := clientIP(req); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
