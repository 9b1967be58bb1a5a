package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lumina-fans/idolcms/internal/clock"
)

func TestWriteHeaders(t *testing.T) {
	w := httptest.NewRecorder()

	result := Result{
		Allowed:    true,
		Limit:      60,
		Remaining:  45,
		ResetAt:    time.Unix(1706012345, 0),
		RetryAfter: 0,
	}

	WriteHeaders(w, result)

	if got := w.Header().Get("X-RateLimit-Limit"); got != "60" {
		t.Errorf("X-RateLimit-Limit = %s, want 60", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "45" {
		t.Errorf("X-RateLimit-Remaining = %s, want 45", got)
	}
	if got := w.Header().Get("X-RateLimit-Reset"); got != "1706012345" {
		t.Errorf("X-RateLimit-Reset = %s, want 1706012345", got)
	}
	if got := w.Header().Get("Retry-After"); got != "" {
		t.Errorf("Retry-After should not be set for allowed requests, got %s", got)
	}
}

func TestWriteHeaders_RateLimited(t *testing.T) {
	w := httptest.NewRecorder()

	result := Result{
		Allowed:    false,
		Limit:      60,
		Remaining:  0,
		ResetAt:    time.Unix(1706012345, 0),
		RetryAfter: 29*time.Second + 100*time.Millisecond,
	}

	WriteHeaders(w, result)

	if got := w.Header().Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After = %s, want 30", got)
	}
}

func TestBuildKey(t *testing.T) {
	tests := []struct {
		scope Scope
		want  string
	}{
		{ScopeIP, "ip:1.2.3.4:read"},
		{ScopeUser, "user:1.2.3.4:read"},
		{Scope(9), "unknown:1.2.3.4:read"},
	}
	for _, tt := range tests {
		if got := BuildKey(tt.scope, "1.2.3.4", "read"); got != tt.want {
			t.Errorf("BuildKey() = %q, want %q", got, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Write.Max = 2
	l := NewLimiter(clock.NewFake(time.Unix(1700000000, 0)))

	identify := func(r *http.Request, s Scope) (string, Scope) {
		if id := r.Header.Get("X-User-ID"); id != "" && s == ScopeUser {
			return id, ScopeUser
		}
		return "10.0.0.1", ScopeIP
	}
	reject := func(w http.ResponseWriter, _ *http.Request, _ Result) {
		w.WriteHeader(http.StatusTooManyRequests)
	}
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	})
	h := Middleware(l, &cfg, identify, reject)(next)

	do := func(method, path, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if user != "" {
			req.Header.Set("X-User-ID", user)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	for i := range 2 {
		if w := do("POST", "/api/posts", "usr_1"); w.Code != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	w := do("POST", "/api/posts", "usr_1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third write: status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}

	// Another user has its own budget.
	if w := do("POST", "/api/posts", "usr_2"); w.Code != http.StatusNoContent {
		t.Errorf("other user: status %d", w.Code)
	}
	// Reads are a separate tier.
	w = do("GET", "/api/posts", "usr_1")
	if w.Code != http.StatusNoContent {
		t.Errorf("read: status %d", w.Code)
	}
	if got := w.Header().Get("X-RateLimit-Limit"); got != "600" {
		t.Errorf("read X-RateLimit-Limit = %q, want 600", got)
	}
	// Unlimited paths get no headers.
	w = do("GET", "/api/health", "")
	if got := w.Header().Get("X-RateLimit-Limit"); got != "" {
		t.Errorf("health X-RateLimit-Limit = %q", got)
	}
}
