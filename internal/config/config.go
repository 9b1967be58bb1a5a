// Package config manages the server configuration stored in
// <data-dir>/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lumina-fans/idolcms/internal/notify"
	"github.com/lumina-fans/idolcms/internal/query"
	"github.com/lumina-fans/idolcms/internal/ratelimit"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name inside the data directory.
const FileName = "config.yaml"

// Config stores all server-wide configuration.
// Loaded from config.yaml, created with defaults if missing.
type Config struct {
	// RateLimits defines the request budgets per tier.
	RateLimits RateLimits `yaml:"rate_limits"`

	// Quotas defines size and bandwidth limits.
	Quotas Quotas `yaml:"quotas"`

	// VAPID holds the Web Push identity. Auto-generated if empty on first
	// load.
	VAPID VAPID `yaml:"vapid"`

	// Similar configures similar track ranking.
	Similar Similar `yaml:"similar_tracks"`
}

// RateLimit is one tier's budget. A Max of 0 means unlimited.
type RateLimit struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// RateLimits defines the rate limiting tiers.
type RateLimits struct {
	// Auth limits login and registration attempts per IP.
	Auth RateLimit `yaml:"auth"`
	// Write limits mutations per user.
	Write RateLimit `yaml:"write"`
	// Read limits reads per IP.
	Read RateLimit `yaml:"read"`
	// Telemetry limits telemetry events per IP.
	Telemetry RateLimit `yaml:"telemetry"`
}

// DefaultRateLimits returns the default rate limits.
func DefaultRateLimits() RateLimits {
	d := ratelimit.DefaultConfig()
	return RateLimits{
		Auth:      RateLimit{Max: d.Auth.Max, Window: d.Auth.Window},
		Write:     RateLimit{Max: d.Write.Max, Window: d.Write.Window},
		Read:      RateLimit{Max: d.Read.Max, Window: d.Read.Window},
		Telemetry: RateLimit{Max: d.Telemetry.Max, Window: d.Telemetry.Window},
	}
}

// Validate checks that rate limit values are non-negative.
func (r *RateLimits) Validate() error {
	for _, t := range []struct {
		name string
		rl   RateLimit
	}{{"auth", r.Auth}, {"write", r.Write}, {"read", r.Read}, {"telemetry", r.Telemetry}} {
		if t.rl.Max < 0 {
			return fmt.Errorf("%s.max must be non-negative", t.name)
		}
		if t.rl.Max > 0 && t.rl.Window <= 0 {
			return fmt.Errorf("%s.window must be positive", t.name)
		}
	}
	return nil
}

// Tiers converts the limits into rate limiter tiers, keeping the default
// names and scopes.
func (r *RateLimits) Tiers() ratelimit.Config {
	c := ratelimit.DefaultConfig()
	c.Auth.Max, c.Auth.Window = r.Auth.Max, r.Auth.Window
	c.Write.Max, c.Write.Window = r.Write.Max, r.Write.Window
	c.Read.Max, c.Read.Window = r.Read.Max, r.Read.Window
	c.Telemetry.Max, c.Telemetry.Window = r.Telemetry.Max, r.Telemetry.Window
	return c
}

// Quotas defines size and bandwidth limits.
type Quotas struct {
	// MaxRequestBodyBytes limits the size of any JSON request body.
	MaxRequestBodyBytes int64 `yaml:"max_request_body_bytes"`

	// MaxUploadBytes limits the size of a media upload.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// MediaBandwidthBps limits total media egress in bytes per second.
	// 0 means unlimited.
	MediaBandwidthBps int64 `yaml:"media_bandwidth_bps"`
}

// DefaultQuotas returns the default quotas.
func DefaultQuotas() Quotas {
	return Quotas{
		MaxRequestBodyBytes: 1 * 1024 * 1024,  // 1 MiB
		MaxUploadBytes:      20 * 1024 * 1024, // 20 MiB
		MediaBandwidthBps:   0,                // unlimited
	}
}

// Validate checks that all quota values are valid.
func (q *Quotas) Validate() error {
	if q.MaxRequestBodyBytes <= 0 {
		return errors.New("max_request_body_bytes must be positive")
	}
	if q.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}
	if q.MediaBandwidthBps < 0 {
		return errors.New("media_bandwidth_bps must be non-negative")
	}
	return nil
}

// VAPID is the server's Web Push key pair.
type VAPID struct {
	PublicKey  string `yaml:"public_key"`
	PrivateKey string `yaml:"private_key"`
	// Subject is a mailto: or https: contact for push services.
	Subject string `yaml:"subject"`
}

// Keys converts to notify.Keys.
func (v *VAPID) Keys() notify.Keys {
	return notify.Keys{Public: v.PublicKey, Private: v.PrivateKey, Subject: v.Subject}
}

// Similar configures similar track ranking.
type Similar struct {
	Limit     int     `yaml:"limit"`
	Mood      int     `yaml:"mood_weight"`
	Tag       int     `yaml:"tag_weight"`
	Tempo     int     `yaml:"tempo_weight"`
	Album     int     `yaml:"album_weight"`
	Tolerance float64 `yaml:"tempo_tolerance"`
}

// DefaultSimilar mirrors query.DefaultWeights.
func DefaultSimilar() Similar {
	w := query.DefaultWeights
	return Similar{
		Limit:     w.Limit,
		Mood:      w.Category,
		Tag:       w.Tag,
		Tempo:     w.Proximity,
		Album:     w.Parent,
		Tolerance: w.Tolerance,
	}
}

// Weights converts to query.Weights.
func (s *Similar) Weights() query.Weights {
	return query.Weights{
		Category:  s.Mood,
		Tag:       s.Tag,
		Proximity: s.Tempo,
		Parent:    s.Album,
		Tolerance: s.Tolerance,
		Limit:     s.Limit,
	}
}

// Validate checks that weights are non-negative.
func (s *Similar) Validate() error {
	if s.Limit < 0 || s.Mood < 0 || s.Tag < 0 || s.Tempo < 0 || s.Album < 0 || s.Tolerance < 0 {
		return errors.New("weights and limit must be non-negative")
	}
	return nil
}

// Default returns the configuration written on first start, without VAPID
// keys.
func Default() Config {
	return Config{
		RateLimits: DefaultRateLimits(),
		Quotas:     DefaultQuotas(),
		Similar:    DefaultSimilar(),
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.RateLimits.Validate(); err != nil {
		return fmt.Errorf("rate_limits: %w", err)
	}
	if err := c.Quotas.Validate(); err != nil {
		return fmt.Errorf("quotas: %w", err)
	}
	if err := c.Similar.Validate(); err != nil {
		return fmt.Errorf("similar_tracks: %w", err)
	}
	if (c.VAPID.PublicKey == "") != (c.VAPID.PrivateKey == "") {
		return errors.New("vapid: public_key and private_key must be set together")
	}
	return nil
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("VAPID_PUBLIC_KEY"); ok && v != "" {
		c.VAPID.PublicKey = v
	}
	if v, ok := lookup("VAPID_PRIVATE_KEY"); ok && v != "" {
		c.VAPID.PrivateKey = v
	}
	if v, ok := lookup("VAPID_SUBJECT"); ok && v != "" {
		c.VAPID.Subject = v
	}
}

// Load loads configuration from dataDir/config.yaml.
// Creates the file with defaults if it doesn't exist.
// Auto-generates the VAPID keys if empty.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, FileName)

	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from dataDir, not user input
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	modified := false
	if cfg.VAPID.PublicKey == "" && cfg.VAPID.PrivateKey == "" {
		pub, priv, err := notify.GenerateKeys()
		if err != nil {
			return nil, fmt.Errorf("failed to generate VAPID keys: %w", err)
		}
		cfg.VAPID.PublicKey, cfg.VAPID.PrivateKey = pub, priv
		modified = true
	}

	if modified || errors.Is(err, os.ErrNotExist) {
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Save saves configuration to dataDir/config.yaml.
func (c *Config) Save(dataDir string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil { //nolint:gosec // G301: data directories are world readable
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, FileName), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return nil
}
