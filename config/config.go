package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskdeck/log"

	"github.com/BurntSushi/toml"
)

const ConfigFileName = "config.toml"

// PaletteConfig tunes the command palette
type PaletteConfig struct {
	DebounceMs        int `toml:"debounce_ms"`
	Limit             int `toml:"limit"`
	ProviderTimeoutMs int `toml:"provider_timeout_ms"`
	MaxConcurrency    int `toml:"max_concurrency"`
	// CacheTTLSeconds caches slow provider results; zero disables the cache.
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
	RecentsSize     int `toml:"recents_size"`
}

// LogSettings mirrors log.LogConfig in the config file
type LogSettings struct {
	Enabled    bool   `toml:"enabled"`
	Dir        string `toml:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxFiles   int    `toml:"max_files"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
	Debug      bool   `toml:"debug"`
}

// UserConfig identifies who is using the app
type UserConfig struct {
	ID   string `toml:"id"`
	Role string `toml:"role"`
}

// Config represents the application configuration
type Config struct {
	Palette PaletteConfig `toml:"palette"`
	Log     LogSettings   `toml:"log"`
	User    UserConfig    `toml:"user"`
	// RepoPath is searched for git branches; empty means the working directory.
	RepoPath string `toml:"repo_path"`
	// Keys overrides the default keys of commands, by command id.
	Keys map[string][]string `toml:"keys"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Palette: PaletteConfig{
			DebounceMs:        150,
			Limit:             50,
			ProviderTimeoutMs: 1000,
			MaxConcurrency:    0,
			CacheTTLSeconds:   30,
			RecentsSize:       8,
		},
		Log: LogSettings{
			Enabled:    true,
			MaxSizeMB:  10,
			MaxFiles:   5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		User: UserConfig{
			ID:   "u-1",
			Role: "member",
		},
		Keys: map[string][]string{},
	}
}

// GetConfigDir returns the path to the application's configuration directory
func GetConfigDir() (string, error) {
	return log.GetConfigDir()
}

// DefaultConfigPath returns where the config file lives when no path is given
func DefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadConfig reads the config file at path, or the default path when empty.
// A missing file yields the defaults; fields absent from the file keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return DefaultConfig(), err
		}
	}

	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.WarningLog.Printf("config %s: unknown keys %v", path, undecoded)
	}
	if cfg.Keys == nil {
		cfg.Keys = map[string][]string{}
	}
	return cfg, nil
}

// Save writes the config to path atomically
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to atomically update config file: %w", err)
	}
	return nil
}

// Validate returns warnings for settings that will be replaced at runtime
func (c *Config) Validate() []string {
	var warnings []string
	if c.Palette.DebounceMs < 0 {
		warnings = append(warnings, "palette.debounce_ms is negative; using 0")
	}
	if c.Palette.Limit <= 0 {
		warnings = append(warnings, "palette.limit is not positive; using the default")
	}
	if c.Palette.ProviderTimeoutMs <= 0 {
		warnings = append(warnings, "palette.provider_timeout_ms is not positive; using the default")
	}
	if c.User.ID == "" {
		warnings = append(warnings, "user.id is empty; issue assignment will not work")
	}
	return warnings
}

// Debounce returns the palette debounce delay
func (c *Config) Debounce() time.Duration {
	return time.Duration(max(c.Palette.DebounceMs, 0)) * time.Millisecond
}

// ProviderTimeout returns the per-provider deadline, zero meaning the engine default
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(max(c.Palette.ProviderTimeoutMs, 0)) * time.Millisecond
}

// CacheTTL returns how long provider results are cached
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(max(c.Palette.CacheTTLSeconds, 0)) * time.Second
}

// LogConfig converts the log section for log.Initialize
func (c *Config) LogConfig() *log.LogConfig {
	return &log.LogConfig{
		LogsEnabled: c.Log.Enabled,
		LogsDir:     c.Log.Dir,
		LogMaxSize:  c.Log.MaxSizeMB,
		LogMaxFiles: c.Log.MaxFiles,
		LogMaxAge:   c.Log.MaxAgeDays,
		LogCompress: c.Log.Compress,
		Debug:       c.Log.Debug,
	}
}
