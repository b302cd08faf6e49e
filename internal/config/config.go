// Package config handles persistent user configuration for flowmetrics.
//
// Configuration is stored as JSON at ~/.config/flowmetrics/config.json
// (or the platform-equivalent path returned by os.UserConfigDir).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"oikenops/flowmetrics/internal/retry"
)

const (
	appDir   = "flowmetrics"
	fileName = "config.json"
)

// Defaults for settings left unset in the config file.
const (
	DefaultTimezoneOffsetHours = 1
	DefaultRequestDelayMs      = 100
	DefaultDataDir             = "data"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds collector settings that persist across invocations.
// Zero values mean "use the default"; the accessor methods resolve them.
type Config struct {
	// Endpoint is the metrics API URL. Empty selects the built-in
	// production endpoint.
	Endpoint string `json:"endpoint,omitempty"`

	// DataDir is where dataset CSV files are written.
	DataDir string `json:"data_dir,omitempty"`

	// TimezoneOffsetHours converts local window times to UTC. Static;
	// it does not track daylight-saving transitions.
	TimezoneOffsetHours *int `json:"timezone_offset_hours,omitempty"`

	// RequestDelayMs is the pacing delay between API requests.
	RequestDelayMs *int `json:"request_delay_ms,omitempty"`

	// RetryAttempts is the per-window fetch attempt budget. Values
	// below 2 disable retries.
	RetryAttempts int `json:"retry_attempts,omitempty"`
}

// EffectiveDataDir returns DataDir or the default.
func (c *Config) EffectiveDataDir() string {
	if c.DataDir == "" {
		return DefaultDataDir
	}
	return c.DataDir
}

// EffectiveOffsetHours returns TimezoneOffsetHours or the default.
func (c *Config) EffectiveOffsetHours() int {
	if c.TimezoneOffsetHours == nil {
		return DefaultTimezoneOffsetHours
	}
	return *c.TimezoneOffsetHours
}

// EffectiveRequestDelay returns the pacing delay as a duration.
func (c *Config) EffectiveRequestDelay() time.Duration {
	ms := DefaultRequestDelayMs
	if c.RequestDelayMs != nil {
		ms = *c.RequestDelayMs
	}
	return time.Duration(ms) * time.Millisecond
}

// EffectiveRetry returns the retry configuration implied by RetryAttempts.
func (c *Config) EffectiveRetry() retry.Config {
	if c.RetryAttempts < 2 {
		return retry.Config{}
	}
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = c.RetryAttempts
	return cfg
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
// Otherwise it uses os.UserConfigDir which resolves to
// ~/Library/Application Support on macOS, ~/.config on Linux, and
// %AppData% on Windows.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Config.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}
