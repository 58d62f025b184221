// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-builder/internal/engine"
	"github.com/jonathan/resume-builder/internal/layout"
)

// Defaults applied by MergeWithDefaults when neither the file nor the flags set a value.
const (
	DefaultPort           = 8080
	DefaultTimeoutSeconds = 60
	DefaultOutputDir      = "."
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Rendering
	Template       string `json:"template,omitempty"`        // Template id (classic, modern, minimal, creative)
	Engine         string `json:"engine,omitempty"`          // PDF engine (native, chrome)
	ChromePath     string `json:"chrome_path,omitempty"`     // Chrome/Chromium executable for the chrome engine
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"` // Engine timeout per export
	ProfilesPath   string `json:"profiles_path,omitempty"`   // JSON file with extra or overriding layout profiles

	// Output
	OutputDir string `json:"output_dir,omitempty"` // Directory exported PDFs are written to

	// Server
	Port        int    `json:"port,omitempty"`         // HTTP port for serve
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
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

// Validate checks that the configuration has valid values. Unknown template ids are not an
// error here; they fall back to the default template at export time.
func (c *Config) Validate() error {
	if c.Engine != "" {
		if _, err := engine.New(c.Engine, engine.Options{}); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}

	if c.ProfilesPath != "" {
		if _, err := os.Stat(c.ProfilesPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: profiles file not found: %s", c.ProfilesPath)
		}
	}
	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome executable not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults, then from
// the package defaults. This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.Template == "" {
		result.Template = layout.DefaultTemplate
	}
	if result.Engine == "" {
		result.Engine = defaults.Engine
	}
	if result.Engine == "" {
		result.Engine = engine.KindNative
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.ProfilesPath == "" {
		result.ProfilesPath = defaults.ProfilesPath
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.OutputDir == "" {
		result.OutputDir = DefaultOutputDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Port == 0 {
		result.Port = DefaultPort
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// EngineOptions converts the rendering settings to engine options.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		ChromePath: c.ChromePath,
		Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
		Verbose:    c.Verbose,
	}
}

// Profiles returns the built-in layout profiles, overlaid with ProfilesPath when set.
func (c *Config) Profiles() (*layout.Registry, error) {
	reg := layout.Builtin()
	if c.ProfilesPath == "" {
		return reg, nil
	}
	if err := reg.LoadProfiles(c.ProfilesPath); err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return reg, nil
}
