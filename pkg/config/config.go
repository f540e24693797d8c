// Package config provides configuration loading and management for contourdim.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many goroutines march the field
		NumCores int `yaml:"numCores"`

		// Isovalue is the luma threshold that separates inside from outside
		Isovalue float64 `yaml:"isovalue"`

		// TemplateWidth is the physical width of the image
		TemplateWidth float64 `yaml:"templateWidth"`

		// WeldTolerance merges contour vertices closer than this distance.
		// Zero welds bit-identical vertices only.
		WeldTolerance float64 `yaml:"weldTolerance"`

		// RequireSquare rejects images whose width and height differ
		RequireSquare bool `yaml:"requireSquare"`
	} `yaml:"processing"`

	// Image loading parameters
	Image struct {
		// ReverseRows flips Targa rows, which are stored bottom-up
		ReverseRows bool `yaml:"reverseRows"`

		// SwapChannels reads Targa pixels as BGR
		SwapChannels bool `yaml:"swapChannels"`

		// BlackBorder forces a one-pixel black border so contours close
		BlackBorder bool `yaml:"blackBorder"`
	} `yaml:"image"`

	// Output parameters
	Output struct {
		// SaveIntermediaryResults determines whether to save the field and mesh images
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir is where intermediary results are written
		IntermediaryDir string `yaml:"intermediaryDir"`

		// RenderSize is the width in pixels of rendered mesh images
		RenderSize int `yaml:"renderSize"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.Isovalue = 0.5
	cfg.Processing.TemplateWidth = 1.0
	cfg.Processing.WeldTolerance = 0
	cfg.Processing.RequireSquare = false

	// Set default image parameters
	cfg.Image.ReverseRows = true
	cfg.Image.SwapChannels = true
	cfg.Image.BlackBorder = true

	// Set default output parameters
	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.RenderSize = 800
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that the configured values can be used
func (c *Config) Validate() error {
	if !(c.Processing.Isovalue > 0 && c.Processing.Isovalue < 1) {
		return fmt.Errorf("isovalue must be in (0, 1), got %g", c.Processing.Isovalue)
	}
	if !(c.Processing.TemplateWidth > 0) {
		return fmt.Errorf("template width must be positive, got %g", c.Processing.TemplateWidth)
	}
	if c.Processing.WeldTolerance < 0 {
		return fmt.Errorf("weld tolerance must not be negative, got %g", c.Processing.WeldTolerance)
	}
	if c.Output.RenderSize <= 0 {
		return fmt.Errorf("render size must be positive, got %d", c.Output.RenderSize)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
