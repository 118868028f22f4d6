package slicer

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of options a slicing run is parameterized by.
type Config struct {
	InputPath string `yaml:"input_path"`
	OutputDir string `yaml:"output_dir"`

	PixelSizeUm   float64 `yaml:"pixel_size_um"`
	LayerHeightUm float64 `yaml:"layer_height_um"`

	ZeroSlicePosition bool `yaml:"zero_slice_position"`
	DeleteBelowZero   bool `yaml:"delete_below_zero"`
	DeleteOutputDir   bool `yaml:"delete_output_dir"`
	OpenOutputDir     bool `yaml:"open_output_dir"`
}

// Default returns the CLI-default configuration; InputPath and OutputDir
// are left empty for the caller to fill in.
func Default() Config {
	return Config{
		PixelSizeUm:       33.3333,
		LayerHeightUm:     20.0,
		ZeroSlicePosition: false,
		DeleteBelowZero:   true,
		DeleteOutputDir:   true,
		OpenOutputDir:     false,
	}
}

var (
	ErrMissingInput     = errors.New("slicer: input_path is required")
	ErrMissingOutputDir = errors.New("slicer: output_dir is required")
)

// Validate reports the first configuration error found. Run calls it
// before any work begins.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return ErrMissingInput
	}
	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}
	if c.PixelSizeUm <= 0 {
		return fmt.Errorf("slicer: pixel_size_um must be positive, got %v", c.PixelSizeUm)
	}
	if c.LayerHeightUm <= 0 {
		return fmt.Errorf("slicer: layer_height_um must be positive, got %v", c.LayerHeightUm)
	}
	return nil
}

// LoadConfig reads a YAML settings file, in the shape written by SaveConfig
// (and by the CLI's `config` subcommand).
func LoadConfig(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("slicer: reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return Config{}, fmt.Errorf("slicer: parsing config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path in YAML.
func SaveConfig(path string, cfg Config) error {
	buf, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("slicer: encoding config: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("slicer: writing config: %w", err)
	}
	return nil
}
