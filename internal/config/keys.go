package config

import (
	"fmt"
	"strconv"
	"strings"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "data-dir").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory
	// only; the caller is responsible for calling Save). It fails when
	// the value cannot be parsed for the key.
	Set func(cfg *Config, value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "endpoint",
		Description: "Metrics API URL (empty uses the production endpoint)",
		Get:         func(cfg *Config) string { return cfg.Endpoint },
		Set: func(cfg *Config, v string) error {
			cfg.Endpoint = v
			return nil
		},
	},
	{
		Name:        "data-dir",
		Description: "Directory for hourly/daily dataset CSV files",
		Get:         func(cfg *Config) string { return cfg.DataDir },
		Set: func(cfg *Config, v string) error {
			cfg.DataDir = v
			return nil
		},
	},
	{
		Name:        "timezone-offset",
		Description: "Local timezone offset from UTC in hours (static, no DST tracking)",
		Get:         func(cfg *Config) string { return strconv.Itoa(cfg.EffectiveOffsetHours()) },
		Set: func(cfg *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("timezone-offset must be an integer: %q", v)
			}
			if n < -12 || n > 14 {
				return fmt.Errorf("timezone-offset %d out of range [-12, 14]", n)
			}
			cfg.TimezoneOffsetHours = &n
			return nil
		},
	},
	{
		Name:        "request-delay-ms",
		Description: "Pacing delay between API requests, in milliseconds",
		Get: func(cfg *Config) string {
			return strconv.Itoa(int(cfg.EffectiveRequestDelay().Milliseconds()))
		},
		Set: func(cfg *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("request-delay-ms must be a non-negative integer: %q", v)
			}
			cfg.RequestDelayMs = &n
			return nil
		},
	},
	{
		Name:        "retry-attempts",
		Description: "Fetch attempts per window (1 disables retries)",
		Get: func(cfg *Config) string {
			if cfg.RetryAttempts < 2 {
				return "1"
			}
			return strconv.Itoa(cfg.RetryAttempts)
		},
		Set: func(cfg *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return fmt.Errorf("retry-attempts must be a positive integer: %q", v)
			}
			cfg.RetryAttempts = n
			return nil
		},
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	// Find the longest key name for alignment.
	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
