package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MINERDECK_BRIDGE_URL", "MINERDECK_AUTH_URL", "MINERDECK_ACCESS_TOKEN",
		"MINERDECK_REFRESH_TOKEN", "MINERDECK_TOKEN_EXPIRES_AT",
		"MINERDECK_LOG_LEVEL", "MINERDECK_LOG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.Poll.Interval.Duration)
	assert.Equal(t, time.Hour, cfg.Auth.RefreshInterval.Duration)
	assert.True(t, cfg.Events.Enabled)
}

func TestLoadFromReader_TOML(t *testing.T) {
	clearEnv(t)
	src := `
[bridge]
url = "http://localhost:9000"
request_timeout = "2s"

[poll]
interval = "500ms"
details_interval = "10s"

[auth]
refresh_interval = "30m"
`
	cfg, err := LoadFromReader(strings.NewReader(src), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Bridge.URL)
	assert.Equal(t, 2*time.Second, cfg.Bridge.RequestTimeout.Duration)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval.Duration)
	assert.Equal(t, 10*time.Second, cfg.Poll.DetailsInterval.Duration)
	assert.Equal(t, 30*time.Minute, cfg.Auth.RefreshInterval.Duration)
	// Untouched sections keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.Poll.StuckTimeout.Duration)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromReader_YAML(t *testing.T) {
	clearEnv(t)
	src := `
bridge:
  url: http://10.0.0.5:18130
poll:
  interval: 2s
hardware:
  enabled: false
`
	cfg, err := LoadFromReader(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:18130", cfg.Bridge.URL)
	assert.Equal(t, 2*time.Second, cfg.Poll.Interval.Duration)
	assert.False(t, cfg.Hardware.Enabled)
}

func TestLoadFromReader_EmptyYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Bridge.URL, cfg.Bridge.URL)
}

func TestLoadFromReader_BadDuration(t *testing.T) {
	clearEnv(t)
	_, err := LoadFromReader(strings.NewReader("[poll]\ninterval = \"soon\"\n"), FormatTOML)
	assert.Error(t, err)
}

func TestLoadFromReader_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MINERDECK_BRIDGE_URL", "http://override:1")
	t.Setenv("MINERDECK_REFRESH_TOKEN", "r1")
	t.Setenv("MINERDECK_TOKEN_EXPIRES_AT", "1700000000")

	cfg, err := LoadFromReader(strings.NewReader(""), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "http://override:1", cfg.Bridge.URL)
	assert.Equal(t, "r1", cfg.Auth.RefreshToken)
	assert.Equal(t, int64(1700000000), cfg.Auth.ExpiresAt)
}

func TestLoadFromFile_MissingReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Bridge.URL, cfg.Bridge.URL)
}

func TestLoadFromFile_ChoosesDecoderByExtension(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad scheme", func(c *Config) { c.Bridge.URL = "ftp://host" }, "unsupported scheme"},
		{"no host", func(c *Config) { c.Bridge.URL = "http://" }, "host is required"},
		{"zero poll", func(c *Config) { c.Poll.Interval = Duration{} }, "poll.interval must be positive"},
		{"zero details poll", func(c *Config) { c.Poll.DetailsInterval = Duration{} }, "poll.details_interval must be positive"},
		{"zero refresh", func(c *Config) { c.Auth.RefreshInterval = Duration{} }, "auth.refresh_interval must be positive"},
		{"hardware disabled ignores interval", func(c *Config) {
			c.Hardware.Enabled = false
			c.Hardware.Interval = Duration{}
		}, ""},
		{"access without refresh", func(c *Config) { c.Auth.AccessToken = "a" }, "auth.refresh_token is required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	require.NoError(t, d.UnmarshalText([]byte("")))
	assert.Equal(t, time.Duration(0), d.Duration)

	assert.Error(t, d.UnmarshalText([]byte("-1s")))

	out, err := Duration{time.Minute}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m0s", string(out))
}
