package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format selects the decoder used for a config file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/minerdeck/config.toml
//  2. $XDG_CONFIG_HOME/minerdeck/config.yaml
//
// If no file exists, returns DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	dir := filepath.Join(xdgConfigHome(home), "minerdeck")
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. The decoder is
// chosen by extension; anything other than .yaml/.yml is read as TOML.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	format := FormatTOML
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}
	cfg, err := LoadFromReader(f, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes configuration on top of DefaultConfig() and applies
// environment overrides.
func LoadFromReader(r io.Reader, format Format) (*Config, error) {
	cfg := DefaultConfig()
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	cfg.Bridge.URL = getEnv("MINERDECK_BRIDGE_URL", cfg.Bridge.URL)
	cfg.Auth.RefreshURL = getEnv("MINERDECK_AUTH_URL", cfg.Auth.RefreshURL)
	cfg.Auth.AccessToken = getEnv("MINERDECK_ACCESS_TOKEN", cfg.Auth.AccessToken)
	cfg.Auth.RefreshToken = getEnv("MINERDECK_REFRESH_TOKEN", cfg.Auth.RefreshToken)
	cfg.Auth.ExpiresAt = getInt64("MINERDECK_TOKEN_EXPIRES_AT", cfg.Auth.ExpiresAt)
	cfg.Log.Level = getEnv("MINERDECK_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("MINERDECK_LOG_FILE", cfg.Log.File)
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
