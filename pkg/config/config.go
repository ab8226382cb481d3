// Package config provides configuration loading and management for a reconstruction session.
// It handles loading configuration from YAML files, environment overrides and default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"opticalct/internal/models"
)

// CropConfig selects the axis-aligned region of interest in every projection
type CropConfig struct {
	// TopLeft is the [x, y] pixel coordinate of the upper left corner
	TopLeft []int `yaml:"top_left"`

	// Width and Height are the size of the region in pixels
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// PerspectiveConfig describes a four corner perspective correction
type PerspectiveConfig struct {
	// Source lists the four [x, y] corners as they appear in the raw image
	Source [][]float64 `yaml:"source"`

	// Destination lists where those corners should land in the corrected image
	Destination [][]float64 `yaml:"destination"`
}

// Config represents a reconstruction session loaded from YAML
type Config struct {
	// Directory contains the raw projection images
	Directory string `yaml:"directory" env:"TOMO_DIRECTORY"`

	// AngleStep is the rotation in degrees between consecutive projections
	AngleStep float64 `yaml:"angle_step" env:"TOMO_ANGLE_STEP"`

	// Crop is optional; nil leaves the images untouched
	Crop *CropConfig `yaml:"crop,omitempty"`

	// Perspective is optional; nil skips perspective correction
	Perspective *PerspectiveConfig `yaml:"perspective,omitempty"`

	// Scale is the isotropic resize factor, 1 is a no-op
	Scale float64 `yaml:"scale" env:"TOMO_SCALE"`

	// StdRange is the clip width multiplier k in median ± k·σ
	StdRange float64 `yaml:"std_range" env:"TOMO_STD_RANGE"`

	// ChannelWise reconstructs every colour channel separately and recombines them
	ChannelWise bool `yaml:"channel_wise" env:"TOMO_CHANNEL_WISE"`

	// Save persists every reconstructed slice to disk
	Save bool `yaml:"save" env:"TOMO_SAVE"`

	// Processing parameters
	Processing struct {
		// Workers bounds the number of slices reconstructed concurrently
		Workers int `yaml:"workers" env:"TOMO_WORKERS"`
	} `yaml:"processing"`

	// Solver parameters
	Solver struct {
		// Algorithm is "sart" or "fbp"
		Algorithm string `yaml:"algorithm" env:"TOMO_SOLVER"`

		// Iterations is the number of SART sweeps over all projections
		Iterations int `yaml:"iterations" env:"TOMO_SOLVER_ITERATIONS"`

		// Relaxation is the SART update step
		Relaxation float64 `yaml:"relaxation" env:"TOMO_SOLVER_RELAXATION"`
	} `yaml:"solver"`

	// Output parameters
	Output struct {
		// Directory overrides the default <parent-of-source>/volumes location
		Directory string `yaml:"directory" env:"TOMO_OUTPUT_DIR"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose" env:"TOMO_VERBOSE"`

		// LogLevel is a zerolog level name
		LogLevel string `yaml:"log_level" env:"TOMO_LOG_LEVEL"`

		// SaveIntermediary writes preprocessed projections and sinograms
		SaveIntermediary bool `yaml:"save_intermediary" env:"TOMO_SAVE_INTERMEDIARY"`

		// IntermediaryDir defaults to <output directory>/intermediary
		IntermediaryDir string `yaml:"intermediary_dir" env:"TOMO_INTERMEDIARY_DIR"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Scale = 1
	cfg.StdRange = 1
	cfg.ChannelWise = true
	cfg.Save = true

	cfg.Processing.Workers = runtime.NumCPU()

	// Match the usual SART defaults: one sweep with a conservative step
	cfg.Solver.Algorithm = "sart"
	cfg.Solver.Iterations = 1
	cfg.Solver.Relaxation = 0.15

	cfg.Output.LogLevel = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v: %w", err, models.ErrIO)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v: %w", err, models.ErrConfiguration)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from TOMO_* environment variables.
// Unset variables leave the current values in place.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %v: %w", err, models.ErrConfiguration)
	}
	return nil
}

// Validate checks every required parameter and returns an ErrConfiguration on the first problem
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return fmt.Errorf("directory is required: %w", models.ErrConfiguration)
	}
	if c.AngleStep <= 0 {
		return fmt.Errorf("angle_step must be positive, got %g: %w", c.AngleStep, models.ErrConfiguration)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g: %w", c.Scale, models.ErrConfiguration)
	}
	if c.StdRange <= 0 {
		return fmt.Errorf("std_range must be positive, got %g: %w", c.StdRange, models.ErrConfiguration)
	}
	if c.Crop != nil {
		if len(c.Crop.TopLeft) != 2 {
			return fmt.Errorf("crop.top_left must be [x, y]: %w", models.ErrConfiguration)
		}
		if c.Crop.Width <= 0 || c.Crop.Height <= 0 {
			return fmt.Errorf("crop width and height must be positive: %w", models.ErrConfiguration)
		}
	}
	if c.Perspective != nil {
		if err := checkCorners("perspective.source", c.Perspective.Source); err != nil {
			return err
		}
		if err := checkCorners("perspective.destination", c.Perspective.Destination); err != nil {
			return err
		}
	}
	if c.Processing.Workers < 1 {
		return fmt.Errorf("processing.workers must be at least 1: %w", models.ErrConfiguration)
	}
	switch strings.ToLower(c.Solver.Algorithm) {
	case "sart", "fbp":
	default:
		return fmt.Errorf("unknown solver %q: %w", c.Solver.Algorithm, models.ErrConfiguration)
	}
	if c.Solver.Iterations < 1 {
		return fmt.Errorf("solver.iterations must be at least 1: %w", models.ErrConfiguration)
	}
	if c.Solver.Relaxation <= 0 || c.Solver.Relaxation >= 2 {
		return fmt.Errorf("solver.relaxation must be in (0, 2), got %g: %w",
			c.Solver.Relaxation, models.ErrConfiguration)
	}
	return nil
}

func checkCorners(name string, corners [][]float64) error {
	if len(corners) != 4 {
		return fmt.Errorf("%s needs four corners, got %d: %w", name, len(corners), models.ErrConfiguration)
	}
	for i, p := range corners {
		if len(p) != 2 {
			return fmt.Errorf("%s corner %d must be [x, y]: %w", name, i, models.ErrConfiguration)
		}
	}
	return nil
}

// OutputDirectory resolves where reconstructed volumes are written
func (c *Config) OutputDirectory() string {
	if c.Output.Directory != "" {
		return c.Output.Directory
	}
	return filepath.Join(filepath.Dir(filepath.Clean(c.Directory)), "volumes")
}

// IntermediaryDirectory resolves where debugging images are written
func (c *Config) IntermediaryDirectory() string {
	if c.Output.IntermediaryDir != "" {
		return c.Output.IntermediaryDir
	}
	return filepath.Join(c.OutputDirectory(), "intermediary")
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %v: %w", err, models.ErrIO)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %v: %w", err, models.ErrIO)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
