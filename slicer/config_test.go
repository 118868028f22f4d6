package slicer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 33.3333, cfg.PixelSizeUm)
	assert.Equal(t, 20.0, cfg.LayerHeightUm)
	assert.False(t, cfg.ZeroSlicePosition)
	assert.True(t, cfg.DeleteBelowZero)
	assert.True(t, cfg.DeleteOutputDir)
	assert.False(t, cfg.OpenOutputDir)
}

func TestConfigValidate(t *testing.T) {
	cfg := Default()
	cfg.InputPath = "model.stl"
	cfg.OutputDir = "out"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.InputPath = ""
	assert.ErrorIs(t, bad.Validate(), ErrMissingInput)

	bad = cfg
	bad.OutputDir = ""
	assert.ErrorIs(t, bad.Validate(), ErrMissingOutputDir)

	bad = cfg
	bad.PixelSizeUm = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.LayerHeightUm = -1
	assert.Error(t, bad.Validate())
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slaslice.yml")

	cfg := Default()
	cfg.InputPath = "model.stl"
	cfg.OutputDir = "layers"
	cfg.PixelSizeUm = 50
	cfg.ZeroSlicePosition = true
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
