package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newLimitedHandler(limit int, window time.Duration) (*RateLimiter, http.Handler) {
	rl := NewRateLimiter(RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            window,
	}, zap.NewNop())

	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return rl, handler
}

func hit(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	_, handler := newLimitedHandler(3, time.Minute)

	for i := 0; i < 3; i++ {
		rec := hit(handler, "10.0.0.1:5000")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d blocked: %d", i+1, rec.Code)
		}
	}

	rec := hit(handler, "10.0.0.1:5000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"success":false,"error":"rate limit exceeded"}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestRateLimiterHeaders(t *testing.T) {
	_, handler := newLimitedHandler(5, time.Minute)

	rec := hit(handler, "10.0.0.2:5000")
	if rec.Header().Get("X-RateLimit-Limit") != "5" {
		t.Fatalf("unexpected limit header: %s", rec.Header().Get("X-RateLimit-Limit"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "4" {
		t.Fatalf("unexpected remaining header: %s", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	_, handler := newLimitedHandler(1, time.Minute)

	if rec := hit(handler, "10.0.0.3:5000"); rec.Code != http.StatusOK {
		t.Fatalf("first client blocked: %d", rec.Code)
	}
	if rec := hit(handler, "10.0.0.3:5000"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("first client not limited: %d", rec.Code)
	}
	if rec := hit(handler, "10.0.0.4:5000"); rec.Code != http.StatusOK {
		t.Fatalf("second client blocked by first client's budget: %d", rec.Code)
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl, handler := newLimitedHandler(1, time.Minute)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }

	if rec := hit(handler, "10.0.0.5:5000"); rec.Code != http.StatusOK {
		t.Fatalf("first request blocked: %d", rec.Code)
	}
	if rec := hit(handler, "10.0.0.5:5000"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request not limited: %d", rec.Code)
	}

	rl.now = func() time.Time { return base.Add(61 * time.Second) }

	if rec := hit(handler, "10.0.0.5:5000"); rec.Code != http.StatusOK {
		t.Fatalf("request after window expiry still blocked: %d", rec.Code)
	}
}
