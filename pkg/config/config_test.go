package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"opticalct/internal/models"
)

// validConfig mirrors the phantom session shipped with the project
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Directory = "/data/phantom/raw"
	cfg.AngleStep = 11.25
	return cfg
}

// TestDefaultConfig verifies the documented defaults
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scale != 1 {
		t.Errorf("Expected scale 1, got %f", cfg.Scale)
	}
	if cfg.StdRange != 1 {
		t.Errorf("Expected std_range 1, got %f", cfg.StdRange)
	}
	if !cfg.ChannelWise {
		t.Error("Expected channel_wise to default to true")
	}
	if !cfg.Save {
		t.Error("Expected save to default to true")
	}
	if cfg.Solver.Algorithm != "sart" {
		t.Errorf("Expected sart solver, got %s", cfg.Solver.Algorithm)
	}
	if cfg.Processing.Workers < 1 {
		t.Errorf("Expected at least one worker, got %d", cfg.Processing.Workers)
	}
}

// TestLoadConfig verifies YAML parsing on top of defaults
func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phantom.yaml")
	content := `directory: /data/phantom/raw
angle_step: 11.25
crop:
  top_left: [1356, 1080]
  width: 1300
  height: 1405
scale: 0.25
channel_wise: true
std_range: 1
solver:
  iterations: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.AngleStep != 11.25 {
		t.Errorf("Expected angle step 11.25, got %f", cfg.AngleStep)
	}
	if cfg.Crop == nil || cfg.Crop.TopLeft[0] != 1356 || cfg.Crop.TopLeft[1] != 1080 {
		t.Fatalf("Unexpected crop: %+v", cfg.Crop)
	}
	if cfg.Crop.Width != 1300 || cfg.Crop.Height != 1405 {
		t.Errorf("Unexpected crop size %dx%d", cfg.Crop.Width, cfg.Crop.Height)
	}
	if cfg.Scale != 0.25 {
		t.Errorf("Expected scale 0.25, got %f", cfg.Scale)
	}
	if cfg.Solver.Iterations != 2 {
		t.Errorf("Expected 2 iterations, got %d", cfg.Solver.Iterations)
	}
	// Untouched keys keep their defaults
	if cfg.Solver.Relaxation != 0.15 {
		t.Errorf("Expected default relaxation 0.15, got %f", cfg.Solver.Relaxation)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected loaded config to be valid, got %v", err)
	}
}

// TestLoadConfigMissingFile verifies defaults are returned when no file exists
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.StdRange != 1 {
		t.Errorf("Expected default config, got std_range %f", cfg.StdRange)
	}
}

// TestLoadConfigInvalidYAML verifies parse errors are configuration errors
func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("angle_step: [not a number"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

// TestApplyEnv verifies environment overrides
func TestApplyEnv(t *testing.T) {
	t.Setenv("TOMO_WORKERS", "3")
	t.Setenv("TOMO_SOLVER", "fbp")
	t.Setenv("TOMO_SAVE", "false")

	cfg := validConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Processing.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", cfg.Processing.Workers)
	}
	if cfg.Solver.Algorithm != "fbp" {
		t.Errorf("Expected fbp solver, got %s", cfg.Solver.Algorithm)
	}
	if cfg.Save {
		t.Error("Expected save to be disabled")
	}
	// Unset variables keep prior values
	if cfg.AngleStep != 11.25 {
		t.Errorf("Expected angle step to survive, got %f", cfg.AngleStep)
	}
}

// TestApplyEnvInvalid verifies malformed values surface as configuration errors
func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("TOMO_WORKERS", "many")
	if err := ApplyEnv(validConfig()); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

// TestValidate covers each rejected parameter
func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing directory", func(c *Config) { c.Directory = "" }},
		{"zero angle step", func(c *Config) { c.AngleStep = 0 }},
		{"negative scale", func(c *Config) { c.Scale = -1 }},
		{"zero std range", func(c *Config) { c.StdRange = 0 }},
		{"short top left", func(c *Config) { c.Crop = &CropConfig{TopLeft: []int{1}, Width: 1, Height: 1} }},
		{"empty crop", func(c *Config) { c.Crop = &CropConfig{TopLeft: []int{0, 0}} }},
		{"three corners", func(c *Config) {
			c.Perspective = &PerspectiveConfig{
				Source:      [][]float64{{0, 0}, {1, 0}, {1, 1}},
				Destination: [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
			}
		}},
		{"no workers", func(c *Config) { c.Processing.Workers = 0 }},
		{"unknown solver", func(c *Config) { c.Solver.Algorithm = "mlem" }},
		{"zero iterations", func(c *Config) { c.Solver.Iterations = 0 }},
		{"relaxation too large", func(c *Config) { c.Solver.Relaxation = 2 }},
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, models.ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration, got %v", err)
			}
		})
	}
}

// TestOutputDirectory verifies the default save location sits next to the source folder
func TestOutputDirectory(t *testing.T) {
	cfg := validConfig()
	if got := cfg.OutputDirectory(); got != filepath.Join("/data/phantom", "volumes") {
		t.Errorf("Expected /data/phantom/volumes, got %s", got)
	}

	cfg.Directory = "/data/phantom/raw/"
	if got := cfg.OutputDirectory(); got != filepath.Join("/data/phantom", "volumes") {
		t.Errorf("Expected trailing slash to be ignored, got %s", got)
	}

	cfg.Output.Directory = "/tmp/out"
	if got := cfg.OutputDirectory(); got != "/tmp/out" {
		t.Errorf("Expected explicit output directory, got %s", got)
	}
}

// TestSaveConfigRoundTrip verifies a saved config loads back
func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	cfg := validConfig()
	cfg.Crop = &CropConfig{TopLeft: []int{4, 5}, Width: 10, Height: 12}

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Crop == nil || loaded.Crop.Width != 10 || loaded.Crop.TopLeft[1] != 5 {
		t.Errorf("Crop did not survive round trip: %+v", loaded.Crop)
	}
	if loaded.Directory != cfg.Directory {
		t.Errorf("Expected directory %s, got %s", cfg.Directory, loaded.Directory)
	}
}

// TestIntermediaryDirectory verifies debugging output defaults below the output directory
func TestIntermediaryDirectory(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Directory = "/tmp/out"
	if got := cfg.IntermediaryDirectory(); got != filepath.Join("/tmp/out", "intermediary") {
		t.Errorf("Expected /tmp/out/intermediary, got %s", got)
	}
	cfg.Output.IntermediaryDir = "/tmp/debug"
	if got := cfg.IntermediaryDirectory(); got != "/tmp/debug" {
		t.Errorf("Expected explicit directory, got %s", got)
	}
}
