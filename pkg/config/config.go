// Package config loads the optional pivot.yaml configuration file.
//
// Everything has a working zero-config default; the file exists so an
// embedding application can tune the dispatch core without code changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bzczb/pivot/pkg/dispatch"
)

// Config represents the optional pivot.yaml configuration.
type Config struct {
	Dispatch DispatchConfig `yaml:"dispatch"`
	Host     HostConfig     `yaml:"host"`
}

// DispatchConfig contains dispatch registry settings.
type DispatchConfig struct {
	// MaxCallsPerFrame caps callback admissions per drain cycle.
	// Zero selects the built-in default.
	MaxCallsPerFrame int `yaml:"max_calls_per_frame,omitempty"`
	// ManualCallbackManagement stages callback invocations as jobs for
	// the embedder to pull instead of auto-running them.
	ManualCallbackManagement bool `yaml:"manual_callback_management,omitempty"`
}

// HostConfig contains host loop settings.
type HostConfig struct {
	// FrameInterval is the loop tick period as a duration string
	// (e.g. "16ms"). Empty selects the built-in default.
	FrameInterval string `yaml:"frame_interval,omitempty"`
}

// LoadOptional reads pivot.yaml from dir if present. A missing file
// yields an empty Config, not an error.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, "pivot.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read pivot.yaml: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse pivot.yaml: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Dispatch.MaxCallsPerFrame < 0 {
		return fmt.Errorf("dispatch.max_calls_per_frame must not be negative, got %d", c.Dispatch.MaxCallsPerFrame)
	}
	if c.Host.FrameInterval != "" {
		if _, err := time.ParseDuration(c.Host.FrameInterval); err != nil {
			return fmt.Errorf("host.frame_interval: %w", err)
		}
	}
	return nil
}

// DispatchOptions converts the dispatch section into registry options.
// The capability fields (Retainer, Invoker) are left for the caller.
func (c *Config) DispatchOptions() dispatch.Options {
	return dispatch.Options{
		MaxCallsPerFrame:         c.Dispatch.MaxCallsPerFrame,
		ManualCallbackManagement: c.Dispatch.ManualCallbackManagement,
	}
}

// FrameInterval returns the configured tick period, or fallback when the
// configuration leaves it unset.
func (c *Config) FrameInterval(fallback time.Duration) time.Duration {
	if c.Host.FrameInterval == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.Host.FrameInterval)
	if err != nil {
		return fallback
	}
	return d
}
