// Package reqctx carries request metadata through context.Context.
package reqctx

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/lumina-fans/idolcms/internal/storage/entity"
)

// Headers the caller identifies itself with. They are trusted as sent.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderRequestID = "X-Request-ID"
)

// GetClientIP extracts the client IP from an HTTP request, checking the
// X-Forwarded-For and X-Real-IP headers for proxied requests.
func GetClientIP(r *http.Request) string {
	// The leftmost X-Forwarded-For entry is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.Trim(r.RemoteAddr, "[]")
}

// GetActor reads the caller from the identity headers. A missing or unknown
// role yields an anonymous actor that passes no role check.
func GetActor(r *http.Request) entity.Actor {
	role := entity.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))))
	if !role.Valid() {
		role = ""
	}
	return entity.Actor{
		UserID: strings.TrimSpace(r.Header.Get(HeaderUserID)),
		Role:   role,
	}
}

type contextKey string

const (
	keyClientIP  contextKey = "clientIP"
	keyUserAgent contextKey = "userAgent"
	keyActor     contextKey = "actor"
	keyRequestID contextKey = "requestID"
)

// WithClientIP adds the client IP to the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, keyClientIP, ip)
}

// ClientIP extracts the client IP from the context.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(keyClientIP).(string); ok {
		return v
	}
	return ""
}

// WithUserAgent adds the User-Agent to the context.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, keyUserAgent, ua)
}

// UserAgent extracts the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(keyUserAgent).(string); ok {
		return v
	}
	return ""
}

// WithActor adds the caller to the context.
func WithActor(ctx context.Context, a entity.Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

// Actor extracts the caller from the context, anonymous when absent.
func Actor(ctx context.Context) entity.Actor {
	if v, ok := ctx.Value(keyActor).(entity.Actor); ok {
		return v
	}
	return entity.Actor{}
}

// WithRequestID adds the request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// RequestID extracts the request ID from the context.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(keyRequestID).(string); ok {
		return v
	}
	return ""
}
