package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_CreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VAPID.PublicKey == "" || cfg.VAPID.PrivateKey == "" {
		t.Error("VAPID keys not generated")
	}
	if cfg.RateLimits.Auth.Max != 5 || cfg.RateLimits.Auth.Window != time.Minute {
		t.Errorf("auth = %+v", cfg.RateLimits.Auth)
	}
	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	if !strings.Contains(string(raw), "window: 1m0s") {
		t.Errorf("durations not written as strings:\n%s", raw)
	}

	again, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if again.VAPID != cfg.VAPID {
		t.Error("VAPID keys regenerated on second load")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	data := `rate_limits:
  read:
    max: 10
    window: 30s
quotas:
  max_request_body_bytes: 2048
  max_upload_bytes: 4096
  media_bandwidth_bps: 1000
vapid:
  public_key: pub
  private_key: priv
  subject: mailto:fans@example.com
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RateLimits.Read != (RateLimit{Max: 10, Window: 30 * time.Second}) {
		t.Errorf("read = %+v", cfg.RateLimits.Read)
	}
	if cfg.RateLimits.Write.Max != 60 {
		t.Errorf("write default lost: %+v", cfg.RateLimits.Write)
	}
	if cfg.Quotas.MediaBandwidthBps != 1000 || cfg.VAPID.PublicKey != "pub" {
		t.Errorf("cfg = %+v", cfg)
	}
	tiers := cfg.RateLimits.Tiers()
	if tiers.Read.Max != 10 || tiers.Read.Window != 30*time.Second || tiers.Read.Name != "read" {
		t.Errorf("tiers.Read = %+v", tiers.Read)
	}
	if w := cfg.Similar.Weights(); w.Category != 3 || w.Limit != 5 {
		t.Errorf("weights = %+v", w)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "rate_limits: ["},
		{"negative", "rate_limits:\n  auth:\n    max: -1\n"},
		{"no window", "rate_limits:\n  auth:\n    max: 3\n    window: 0s\n"},
		{"quota", "quotas:\n  max_upload_bytes: 0\n"},
		{"half vapid", "vapid:\n  public_key: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tt.data), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(dir); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{"VAPID_PUBLIC_KEY": "envpub", "VAPID_PRIVATE_KEY": "envpriv"}
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.VAPID.PublicKey != "envpub" || cfg.VAPID.PrivateKey != "envpriv" {
		t.Errorf("VAPID = %+v", cfg.VAPID)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}
