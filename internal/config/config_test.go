package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Relay.Param != "url" {
		t.Errorf("default relay param = %q, want url", cfg.Relay.Param)
	}
	if !strings.Contains(cfg.Origin.DetailURL, "%s") {
		t.Errorf("default detail url %q lacks id placeholder", cfg.Origin.DetailURL)
	}
	if cfg.Discovery.CoordPrecision != 4 {
		t.Errorf("default coord precision = %d, want 4", cfg.Discovery.CoordPrecision)
	}
	if cfg.FetchTimeout() != 15*time.Second {
		t.Errorf("default fetch timeout = %v, want 15s", cfg.FetchTimeout())
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
relay:
  host: https://relay.internal/raw
  param: target
origin:
  list_url: https://cams.example/nearby
  detail_url: https://cams.example/cam/%s
  snapshot_url: https://cams.example/snap/%s.jpg
  name_suffix: "即時影像"
http:
  timeout_seconds: 30
  user_agent: test-agent
discovery:
  coord_precision: 5
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Relay.Host != "https://relay.internal/raw" || cfg.Relay.Param != "target" {
		t.Errorf("relay = %+v", cfg.Relay)
	}
	if cfg.Origin.ListURL != "https://cams.example/nearby" {
		t.Errorf("list url = %q", cfg.Origin.ListURL)
	}
	if cfg.HTTP.UserAgent != "test-agent" {
		t.Errorf("user agent = %q", cfg.HTTP.UserAgent)
	}
	if cfg.Discovery.CoordPrecision != 5 {
		t.Errorf("coord precision = %d, want 5", cfg.Discovery.CoordPrecision)
	}
	if cfg.Logging.Development {
		t.Error("expected development logging disabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"empty relay host", func(c *Config) { c.Relay.Host = "" }},
		{"empty list url", func(c *Config) { c.Origin.ListURL = "" }},
		{"detail url without placeholder", func(c *Config) { c.Origin.DetailURL = "https://x.example/cam" }},
		{"snapshot url with two placeholders", func(c *Config) { c.Origin.SnapshotURL = "%s%s" }},
		{"zero timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }},
		{"precision out of range", func(c *Config) { c.Discovery.CoordPrecision = 12 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}
