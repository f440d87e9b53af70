// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or come from
// CLI flags, which always win.
type Config struct {
	// Endpoints
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"` // Evaluation portal root
	SSOURL  string `json:"sso_url,omitempty" validate:"omitempty,url"`  // SSO login endpoint

	// Credentials
	Username string `json:"username,omitempty"` // SSO account; password is never stored in the file

	// Behavior
	Strategy        string   `json:"strategy,omitempty" validate:"omitempty,oneof=best random worst_passing worst"`
	DelayMillis     int      `json:"delay_ms,omitempty" validate:"gte=0"` // Pause between submissions
	SpecialTeachers []string `json:"special_teachers,omitempty"`          // Teachers evaluated with worst_passing regardless of strategy
	Verbose         bool     `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		Strategy:    "best",
		DelayMillis: 1000,
	}
}

// Load loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration values against their constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. CLI flag values are merged by the caller before this runs, so
// flags win over the file, which wins over the built-ins.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.SSOURL == "" {
		result.SSOURL = defaults.SSOURL
	}
	if result.Username == "" {
		result.Username = defaults.Username
	}
	if result.Strategy == "" {
		result.Strategy = defaults.Strategy
	}
	if result.DelayMillis == 0 {
		result.DelayMillis = defaults.DelayMillis
	}
	if len(result.SpecialTeachers) == 0 {
		result.SpecialTeachers = defaults.SpecialTeachers
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
