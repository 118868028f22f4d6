package slicer

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCubeSTL writes a binary STL of an axis-aligned cube from lo to hi
// and returns its path.
func writeCubeSTL(t *testing.T, dir string, lo, hi float32) string {
	t.Helper()

	type vtx = [3]float32
	c := [8]vtx{
		{lo, lo, lo}, {hi, lo, lo}, {hi, hi, lo}, {lo, hi, lo},
		{lo, lo, hi}, {hi, lo, hi}, {hi, hi, hi}, {lo, hi, hi},
	}
	// Fan each face around an off-centroid point; a symmetric diagonal
	// split would put its shared edge exactly through the pixel centers of
	// a grid-aligned cube, double-counting those crossings.
	fan := func(a, b, cc, d vtx) [][3]vtx {
		var ctr vtx
		for i := 0; i < 3; i++ {
			ctr[i] = 0.27*a[i] + 0.24*b[i] + 0.26*cc[i] + 0.23*d[i]
		}
		return [][3]vtx{{a, b, ctr}, {b, cc, ctr}, {cc, d, ctr}, {d, a, ctr}}
	}
	var facets [][3]vtx
	facets = append(facets, fan(c[0], c[1], c[2], c[3])...)
	facets = append(facets, fan(c[4], c[5], c[6], c[7])...)
	facets = append(facets, fan(c[0], c[1], c[5], c[4])...)
	facets = append(facets, fan(c[3], c[2], c[6], c[7])...)
	facets = append(facets, fan(c[0], c[3], c[7], c[4])...)
	facets = append(facets, fan(c[1], c[2], c[6], c[5])...)

	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	binary.Write(&buf, binary.LittleEndian, uint32(len(facets)))
	for _, f := range facets {
		binary.Write(&buf, binary.LittleEndian, [3]float32{0, 0, 0})
		binary.Write(&buf, binary.LittleEndian, f[0])
		binary.Write(&buf, binary.LittleEndian, f[1])
		binary.Write(&buf, binary.LittleEndian, f[2])
		binary.Write(&buf, binary.LittleEndian, uint16(0))
	}

	path := filepath.Join(dir, "cube.stl")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func layerLabels(t *testing.T, dir string) []int64 {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var labels []int64
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSuffix(e.Name(), ".png"), 10, 64)
		require.NoError(t, err)
		labels = append(labels, n)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

func TestRunUnitCubeAxisAligned(t *testing.T) {
	dir := t.TempDir()
	stlPath := writeCubeSTL(t, dir, 0, 10)
	outDir := filepath.Join(dir, "out")

	cfg := Default()
	cfg.InputPath = stlPath
	cfg.OutputDir = outDir
	cfg.PixelSizeUm = 1000
	cfg.LayerHeightUm = 1000
	cfg.DeleteBelowZero = false

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 10, res.WidthPx)
	assert.Equal(t, 10, res.HeightPx)
	assert.Equal(t, 10, res.NumLayers)
	assert.Equal(t, 10, res.EmittedLayers)

	labels := layerLabels(t, outDir)
	require.Len(t, labels, 10)
	for i, l := range labels {
		assert.Equal(t, int64(i*1000), l)
	}

	// Every pixel of every layer must be white: a full 10x10 cube slab.
	for _, l := range labels {
		f, err := os.Open(filepath.Join(outDir, strconv.FormatInt(l, 10)+".png"))
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				gray := color16(img, x, y)
				assert.True(t, gray == 0 || gray == 255)
				assert.Equal(t, uint32(255), gray)
			}
		}
	}
}

func color16(img image.Image, x, y int) uint32 {
	r, _, _, _ := img.At(x, y).RGBA()
	return r >> 8
}

func TestRunOffsetCubeDeleteBelowZero(t *testing.T) {
	dir := t.TempDir()
	stlPath := writeCubeSTL(t, dir, -5, 5)
	outDir := filepath.Join(dir, "out")

	cfg := Default()
	cfg.InputPath = stlPath
	cfg.OutputDir = outDir
	cfg.PixelSizeUm = 1000
	cfg.LayerHeightUm = 1000
	cfg.DeleteBelowZero = true

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, res.NumLayers)
	assert.Equal(t, 5, res.EmittedLayers)

	labels := layerLabels(t, outDir)
	require.Len(t, labels, 5)
	assert.Equal(t, []int64{0, 1000, 2000, 3000, 4000}, labels)
}

func TestRunOffsetCubeZeroSlicePosition(t *testing.T) {
	dir := t.TempDir()
	stlPath := writeCubeSTL(t, dir, -5, 5)
	outDir := filepath.Join(dir, "out")

	cfg := Default()
	cfg.InputPath = stlPath
	cfg.OutputDir = outDir
	cfg.PixelSizeUm = 1000
	cfg.LayerHeightUm = 1000
	cfg.DeleteBelowZero = false
	cfg.ZeroSlicePosition = true

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, res.EmittedLayers)

	labels := layerLabels(t, outDir)
	require.Len(t, labels, 10)
	for i, l := range labels {
		assert.Equal(t, int64(i*1000), l)
		assert.GreaterOrEqual(t, l, int64(0))
	}
}

func TestRunOffsetCubeZeroSlicePositionDeleteBelowZero(t *testing.T) {
	dir := t.TempDir()
	stlPath := writeCubeSTL(t, dir, -5, 5)
	outDir := filepath.Join(dir, "out")

	cfg := Default()
	cfg.InputPath = stlPath
	cfg.OutputDir = outDir
	cfg.PixelSizeUm = 1000
	cfg.LayerHeightUm = 1000
	cfg.DeleteBelowZero = true
	cfg.ZeroSlicePosition = true

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, res.EmittedLayers)

	// The stamp counts from the bottommost emitted layer, not from the
	// bottom of the mesh: five layers labeled 0..4000.
	labels := layerLabels(t, outDir)
	assert.Equal(t, []int64{0, 1000, 2000, 3000, 4000}, labels)
}

func TestRunEmptyFootprintBelowZero(t *testing.T) {
	dir := t.TempDir()
	stlPath := writeCubeSTL(t, dir, -10, -5)
	outDir := filepath.Join(dir, "out")

	cfg := Default()
	cfg.InputPath = stlPath
	cfg.OutputDir = outDir
	cfg.PixelSizeUm = 1000
	cfg.LayerHeightUm = 1000
	cfg.DeleteBelowZero = true

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.EmittedLayers)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".png")
	}
}

func TestRunWritesManifest(t *testing.T) {
	dir := t.TempDir()
	stlPath := writeCubeSTL(t, dir, 0, 10)
	outDir := filepath.Join(dir, "out")

	cfg := Default()
	cfg.InputPath = stlPath
	cfg.OutputDir = outDir
	cfg.PixelSizeUm = 1000
	cfg.LayerHeightUm = 1000
	cfg.DeleteBelowZero = false

	_, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	buf, err := os.ReadFile(filepath.Join(outDir, "manifest.json"))
	require.NoError(t, err)

	var res Result
	require.NoError(t, json.Unmarshal(buf, &res))
	assert.Equal(t, 24, res.TriangleCount)
	assert.Equal(t, 10, res.NumLayers)
}

func TestRunRerunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	stlPath := writeCubeSTL(t, dir, 0, 10)
	outDir := filepath.Join(dir, "out")

	cfg := Default()
	cfg.InputPath = stlPath
	cfg.OutputDir = outDir
	cfg.PixelSizeUm = 1000
	cfg.LayerHeightUm = 1000
	cfg.DeleteBelowZero = false
	cfg.DeleteOutputDir = true

	res1, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	labels1 := layerLabels(t, outDir)

	res2, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	labels2 := layerLabels(t, outDir)

	assert.Equal(t, res1.EmittedLayers, res2.EmittedLayers)
	assert.Equal(t, labels1, labels2)
}

func TestRunRejectsMissingConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{}, nil)
	assert.ErrorIs(t, err, ErrMissingInput)
}
