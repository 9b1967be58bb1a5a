// Provides HTTP middleware and response writers for rate limiting.

package ratelimit

import (
	"math"
	"net/http"
	"strconv"
)

// WriteHeaders writes rate limit headers to the response.
// Headers are written on all responses (both success and 429).
func WriteHeaders(w http.ResponseWriter, result Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	// Retry-After only on 429 responses
	if !result.Allowed {
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds(result)))
	}
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds.
func RetryAfterSeconds(result Result) int {
	return int(math.Ceil(result.RetryAfter.Seconds()))
}

// rateLimitResponseWriter wraps http.ResponseWriter to inject rate limit headers
// before any response is written.
type rateLimitResponseWriter struct {
	http.ResponseWriter
	result      Result
	wroteHeader bool
}

// NewResponseWriter creates a response writer that injects rate limit headers.
func NewResponseWriter(w http.ResponseWriter, result Result) http.ResponseWriter {
	return &rateLimitResponseWriter{
		ResponseWriter: w,
		result:         result,
	}
}

// WriteHeader injects rate limit headers before writing the status code.
func (rw *rateLimitResponseWriter) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		WriteHeaders(rw.ResponseWriter, rw.result)
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write ensures headers are written before any body content.
func (rw *rateLimitResponseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		WriteHeaders(rw.ResponseWriter, rw.result)
		rw.wroteHeader = true
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for middleware that needs it.
func (rw *rateLimitResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// BuildKey creates a rate limit bucket key from scope, identifier, and tier name.
func BuildKey(scope Scope, identifier, tierName string) string {
	var prefix string
	switch scope {
	case ScopeIP:
		prefix = "ip"
	case ScopeUser:
		prefix = "user"
	default:
		prefix = "unknown"
	}
	return prefix + ":" + identifier + ":" + tierName
}

// Middleware limits requests routed to a tier by cfg. identify returns the
// caller identity for the tier's scope and the scope actually used; reject
// writes the 429 response. Requests that pass get rate limit headers on their
// response.
func Middleware(
	l *Limiter,
	cfg *Config,
	identify func(r *http.Request, s Scope) (string, Scope),
	reject func(w http.ResponseWriter, r *http.Request, result Result),
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tier := cfg.Match(r.Method, r.URL.Path)
			if !tier.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			id, scope := identify(r, tier.Scope)
			result := l.Check(BuildKey(scope, id, tier.Name), tier.Max, tier.Window)
			w = NewResponseWriter(w, result)
			if !result.Allowed {
				reject(w, r, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
