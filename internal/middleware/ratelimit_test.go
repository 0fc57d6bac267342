package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		if !rl.Allow("login:10.0.0.7", 3, time.Minute) {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	if rl.Allow("login:10.0.0.7", 3, time.Minute) {
		t.Error("attempt over the limit should be denied")
	}

	// A different key has its own budget.
	if !rl.Allow("login:10.0.0.8", 3, time.Minute) {
		t.Error("separate key should not share the exhausted budget")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter()
	window := 20 * time.Millisecond

	for i := 0; i < 2; i++ {
		rl.Allow("burst", 2, window)
	}
	if rl.Allow("burst", 2, window) {
		t.Error("should be denied inside the window")
	}

	time.Sleep(window + 10*time.Millisecond)

	if !rl.Allow("burst", 2, window) {
		t.Error("should be allowed again once the window rolls over")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()

	rl.Allow("stale", 5, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	rl.Allow("fresh", 5, time.Minute)

	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.entries["stale"]; ok {
		t.Error("stale entry should have been dropped")
	}
	if _, ok := rl.entries["fresh"]; !ok {
		t.Error("fresh entry should survive cleanup")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter()
	keyFunc := func(r *http.Request) string { return RealIP(r) }

	var hits int
	limited := RateLimit(rl, keyFunc, 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/login", nil)
		req.RemoteAddr = "192.168.1.20:55001"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest("POST", "/api/login", nil)
	req.RemoteAddr = "192.168.1.20:55001"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("request over limit: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if hits != 2 {
		t.Errorf("handler reached %d times, want 2", hits)
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr only", "10.1.2.3:40000", "", "10.1.2.3"},
		{"single forwarded", "127.0.0.1:40000", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain keeps first hop", "127.0.0.1:40000", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"unparseable remote addr", "not-an-addr", "", "not-an-addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := RealIP(req); got != tt.want {
				t.Errorf("RealIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
