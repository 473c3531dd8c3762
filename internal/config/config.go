// Package config loads and validates camradar configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Origin    OriginConfig    `mapstructure:"origin"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// RelayConfig addresses the CORS-bypass relay the origin is reached through.
type RelayConfig struct {
	Host  string `mapstructure:"host"`
	Param string `mapstructure:"param"`
}

// OriginConfig describes the scraped site's URL shapes. The templated values
// take the camera id as their single %s.
type OriginConfig struct {
	ListURL     string `mapstructure:"list_url"`
	DetailURL   string `mapstructure:"detail_url"`
	SnapshotURL string `mapstructure:"snapshot_url"`
	NameSuffix  string `mapstructure:"name_suffix"`
}

// HTTPConfig configures outbound HTTP client behavior.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// DiscoveryConfig tunes the discovery pipeline.
type DiscoveryConfig struct {
	CoordPrecision int `mapstructure:"coord_precision"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CAMRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("relay.host", "https://api.allorigins.win/raw")
	v.SetDefault("relay.param", "url")
	v.SetDefault("origin.list_url", "https://www.roadcam.tw/nearby")
	v.SetDefault("origin.detail_url", "https://www.roadcam.tw/cam/%s")
	v.SetDefault("origin.snapshot_url", "https://www.roadcam.tw/snapshot/%s.jpg")
	v.SetDefault("origin.name_suffix", "即時影像")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "camradar/0.1")
	v.SetDefault("discovery.coord_precision", 4)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Relay.Host == "" {
		return fmt.Errorf("relay.host must be set")
	}
	if c.Origin.ListURL == "" {
		return fmt.Errorf("origin.list_url must be set")
	}
	if strings.Count(c.Origin.DetailURL, "%s") != 1 {
		return fmt.Errorf("origin.detail_url must contain exactly one %%s")
	}
	if strings.Count(c.Origin.SnapshotURL, "%s") != 1 {
		return fmt.Errorf("origin.snapshot_url must contain exactly one %%s")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Discovery.CoordPrecision < 0 || c.Discovery.CoordPrecision > 8 {
		return fmt.Errorf("discovery.coord_precision must be between 0 and 8")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
