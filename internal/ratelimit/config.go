// Defines rate limit tiers and routing rules.

package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// Scope defines how rate limit keys are determined.
type Scope int

const (
	// ScopeIP uses client IP address as the rate limit key.
	ScopeIP Scope = iota
	// ScopeUser buckets per caller. identify decides what a caller is; the
	// server uses the client IP since user IDs are not authenticated.
	ScopeUser
)

// Tier is a named request budget.
type Tier struct {
	Name   string
	Max    int
	Window time.Duration
	Scope  Scope
}

// Enabled reports whether the tier limits anything. A Max of 0 means
// unlimited.
func (t *Tier) Enabled() bool {
	return t != nil && t.Max > 0 && t.Window > 0
}

// Config holds the tiers requests are routed to.
type Config struct {
	Auth      Tier
	Write     Tier
	Read      Tier
	Telemetry Tier
}

// DefaultConfig returns the default tiers:
//   - Auth: 5 req/min, IP scope
//   - Write: 60 req/min, User scope
//   - Read: 600 req/min, IP scope
//   - Telemetry: 120 req/min, IP scope.
func DefaultConfig() Config {
	return Config{
		Auth:      Tier{Name: "auth", Max: 5, Window: time.Minute, Scope: ScopeIP},
		Write:     Tier{Name: "write", Max: 60, Window: time.Minute, Scope: ScopeUser},
		Read:      Tier{Name: "read", Max: 600, Window: time.Minute, Scope: ScopeIP},
		Telemetry: Tier{Name: "telemetry", Max: 120, Window: time.Minute, Scope: ScopeIP},
	}
}

// Match returns the tier for a request, or nil for paths that are not rate
// limited.
func (c *Config) Match(method, path string) *Tier {
	if path == "/api/health" {
		return nil
	}
	if !strings.HasPrefix(path, "/api/") && !strings.HasPrefix(path, "/media/") {
		return nil
	}
	if isAuthEndpoint(method, path) {
		return &c.Auth
	}
	if method == http.MethodPost && path == "/api/events" {
		return &c.Telemetry
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return &c.Write
	case http.MethodGet, http.MethodHead:
		return &c.Read
	}
	return nil
}

// isAuthEndpoint checks if the path handles credentials.
func isAuthEndpoint(method, path string) bool {
	if method != http.MethodPost {
		return false
	}
	return path == "/api/auth/login" || path == "/api/users"
}
