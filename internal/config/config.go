// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/leadscout/internal/types"
)

// Default search parameters, used when neither the config file nor the
// request specifies a value.
const (
	DefaultMaxIterations        = 5
	DefaultVariantsPerIteration = 8
	DefaultBeamWidth            = 3
	DefaultConcurrency          = 4
	DefaultListenAddr           = ":8080"
)

// Config represents the application configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults, environment
// variables, or must be provided via CLI flags.
type Config struct {
	// Credentials and endpoints
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	ListenAddr  string `json:"listen_addr,omitempty"`  // HTTP listen address

	// Data
	Dataset string `json:"dataset,omitempty"` // Path to ground-truth leads JSON file
	Persona string `json:"persona,omitempty"` // Persona name; empty selects the default persona

	// Search parameters
	MaxIterations        int `json:"max_iterations,omitempty"`
	VariantsPerIteration int `json:"variants_per_iteration,omitempty"`
	BeamWidth            int `json:"beam_width,omitempty"`

	// Behavior
	Concurrency int  `json:"concurrency,omitempty"` // Bounded fan-out for scoring calls
	Verbose     bool `json:"verbose,omitempty"`     // Print detailed progress information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
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

// FromEnv fills credential fields from the environment when the config file
// left them empty. Environment variables never override explicit values.
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.ListenAddr == "" {
		c.ListenAddr = os.Getenv("LEADSCOUT_ADDR")
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.MaxIterations != 0 && (c.MaxIterations < 1 || c.MaxIterations > 10) {
		return fmt.Errorf("config error: 'max_iterations' must be between 1 and 10")
	}
	if c.VariantsPerIteration != 0 && (c.VariantsPerIteration < 4 || c.VariantsPerIteration > 16) {
		return fmt.Errorf("config error: 'variants_per_iteration' must be between 4 and 16")
	}
	if c.BeamWidth != 0 && (c.BeamWidth < 2 || c.BeamWidth > 5) {
		return fmt.Errorf("config error: 'beam_width' must be between 2 and 5")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.Dataset != "" {
		if _, err := os.Stat(c.Dataset); os.IsNotExist(err) {
			return fmt.Errorf("config error: dataset file not found: %s", c.Dataset)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.Dataset == "" {
		result.Dataset = defaults.Dataset
	}
	if result.Persona == "" {
		result.Persona = defaults.Persona
	}

	// Int fields: use default if zero
	if result.MaxIterations == 0 {
		result.MaxIterations = defaults.MaxIterations
	}
	if result.VariantsPerIteration == 0 {
		result.VariantsPerIteration = defaults.VariantsPerIteration
	}
	if result.BeamWidth == 0 {
		result.BeamWidth = defaults.BeamWidth
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// OptimizationConfig builds the search parameters for a run, falling back to
// the package defaults for any unset field.
func (c *Config) OptimizationConfig() types.OptimizationConfig {
	cfg := types.OptimizationConfig{
		MaxIterations:        c.MaxIterations,
		VariantsPerIteration: c.VariantsPerIteration,
		BeamWidth:            c.BeamWidth,
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.VariantsPerIteration == 0 {
		cfg.VariantsPerIteration = DefaultVariantsPerIteration
	}
	if cfg.BeamWidth == 0 {
		cfg.BeamWidth = DefaultBeamWidth
	}
	return cfg
}
