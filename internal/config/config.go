// Package config provides TOML/YAML configuration for minerdeck with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration.
type Config struct {
	Bridge   BridgeConfig   `toml:"bridge" yaml:"bridge"`
	Poll     PollConfig     `toml:"poll" yaml:"poll"`
	Auth     AuthConfig     `toml:"auth" yaml:"auth"`
	Events   EventsConfig   `toml:"events" yaml:"events"`
	Hardware HardwareConfig `toml:"hardware" yaml:"hardware"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// BridgeConfig locates the backend command bridge.
type BridgeConfig struct {
	URL                string   `toml:"url" yaml:"url"`
	Username           string   `toml:"username" yaml:"username"`
	Password           string   `toml:"password" yaml:"password"`
	RequestTimeout     Duration `toml:"request_timeout" yaml:"request_timeout"`
	InsecureSkipVerify bool     `toml:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// PollConfig controls the status and details pollers and the readiness tracker.
type PollConfig struct {
	Interval        Duration `toml:"interval" yaml:"interval"`
	StuckTimeout    Duration `toml:"stuck_timeout" yaml:"stuck_timeout"`
	DetailsInterval Duration `toml:"details_interval" yaml:"details_interval"`
}

// AuthConfig controls the airdrop token refresh manager.
type AuthConfig struct {
	RefreshURL      string   `toml:"refresh_url" yaml:"refresh_url"`
	RefreshInterval Duration `toml:"refresh_interval" yaml:"refresh_interval"`
	AccessToken     string   `toml:"access_token" yaml:"access_token"`
	RefreshToken    string   `toml:"refresh_token" yaml:"refresh_token"`
	ExpiresAt       int64    `toml:"expires_at" yaml:"expires_at"`
}

// EventsConfig controls the backend push-event listener.
type EventsConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// HardwareConfig controls the local hardware sampler.
type HardwareConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled"`
	Interval Duration `toml:"interval" yaml:"interval"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	File  string `toml:"file" yaml:"file"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Bridge: BridgeConfig{
			URL:            "http://127.0.0.1:18130",
			RequestTimeout: Duration{5 * time.Second},
		},
		Poll: PollConfig{
			Interval:        Duration{time.Second},
			StuckTimeout:    Duration{5 * time.Second},
			DetailsInterval: Duration{5 * time.Second},
		},
		Auth: AuthConfig{
			RefreshURL:      "https://airdrop.tari.com/api/auth/local/refresh",
			RefreshInterval: Duration{time.Hour},
		},
		Events: EventsConfig{
			Enabled: true,
			Path:    "/events",
		},
		Hardware: HardwareConfig{
			Enabled:  true,
			Interval: Duration{2 * time.Second},
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(xdgStateHome(home), "minerdeck", "minerdeck.log"),
		},
	}
}

// Validate rejects configurations the runtime cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if err := validateURL("bridge.url", c.Bridge.URL); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.RefreshURL != "" {
		if err := validateURL("auth.refresh_url", c.Auth.RefreshURL); err != nil {
			errs = append(errs, err)
		}
	}

	positive := []struct {
		name string
		d    Duration
	}{
		{"bridge.request_timeout", c.Bridge.RequestTimeout},
		{"poll.interval", c.Poll.Interval},
		{"poll.stuck_timeout", c.Poll.StuckTimeout},
		{"poll.details_interval", c.Poll.DetailsInterval},
		{"auth.refresh_interval", c.Auth.RefreshInterval},
	}
	if c.Hardware.Enabled {
		positive = append(positive, struct {
			name string
			d    Duration
		}{"hardware.interval", c.Hardware.Interval})
	}
	for _, p := range positive {
		if p.d.Duration <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", p.name))
		}
	}

	if c.Auth.AccessToken != "" && c.Auth.RefreshToken == "" {
		errs = append(errs, errors.New("auth.refresh_token is required when auth.access_token is set"))
	}

	return errors.Join(errs...)
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL %q: %w", field, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: unsupported scheme %q (must be http or https)", field, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%s: invalid URL %q: host is required", field, raw)
	}
	return nil
}

func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}

func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}
