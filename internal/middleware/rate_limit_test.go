package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestIPRateLimiterReturnsRateLimitedEnvelope(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Minute)
	handler := limiter.Middleware("Too many requests")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/api/suppliers", nil)
	req1.RemoteAddr = "127.0.0.1:12345"
	handler.ServeHTTP(first, req1)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request status 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/suppliers", nil)
	req2.RemoteAddr = "127.0.0.1:12345"
	handler.ServeHTTP(second, req2)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request status 429, got %d", second.Code)
	}
	body := second.Body.String()
	if !strings.Contains(body, `"code":"rate_limited"`) {
		t.Fatalf("expected rate_limited error code in response body, got %s", body)
	}
}

func TestIPRateLimiterScopesByIP(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Minute)
	handler := limiter.Middleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, addr := range []string{"10.0.0.1:1000", "10.0.0.2:1000"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/suppliers", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for first request from %s, got %d", addr, rec.Code)
		}
	}
}
