package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the storykeeper CLI.
//
// Fields:
//   - APIBaseURL: base URL of the story API, without a trailing slash.
//   - DataDir: directory holding store.db and guest.db.
//   - OnlineCheckInterval: how often the client probes API reachability.
//   - RequestTimeout: per-request bound of the HTTP client.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL          string
	DataDir             string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://story-api.dicoding.dev/v1"
	c.DataDir = ".storykeeper"
	c.OnlineCheckInterval = 10 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// StorePath is the durable store database inside DataDir.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "store.db")
}

// GuestPath is the key-value database inside DataDir.
func (c *Config) GuestPath() string {
	return filepath.Join(c.DataDir, "guest.db")
}
