// Package slicer is the coordinator: it computes the raster grid and layer
// schedule from the mesh bounds and a Config, drives the BVH build and the
// two fork-join passes (columns, then layers) in order, and owns the
// progress channel.
package slicer

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/arl/slaslice/bvh"
	"github.com/arl/slaslice/mesh"
	"github.com/arl/slaslice/progress"
	"github.com/arl/slaslice/raster"
	"github.com/arl/slaslice/stl"
	"github.com/aurelien-rainone/math32"
	"golang.org/x/sync/errgroup"
)

// Run slices the STL mesh at cfg.InputPath into the layer stack at
// cfg.OutputDir. Progress anchors per phase: loading 0.0, triangle
// conversion 0.05, BVH build 0.1, column pass 0.15 to 0.5, layer pass 0.5
// to 1.0.
//
// The layer phase's worker pool runs under a group context derived from
// ctx: the first fatal encoder error stops the sibling workers, and so does
// cancelling ctx, checked before each layer. The earlier phases do not
// observe ctx and run to completion.
func Run(ctx context.Context, cfg Config, sink *progress.Sink) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	bctx := NewContext(sink)

	bctx.Progress(0.0, "loading mesh")
	bctx.StartTimer(PhaseLoad)
	tris, err := loadMesh(cfg.InputPath)
	bctx.StopTimer(PhaseLoad)
	if err != nil {
		return Result{}, err
	}

	bctx.Progress(0.05, "computing mesh bounds")
	bctx.StartTimer(PhaseConvert)
	bounds := mesh.MeshBounds(tris)
	bctx.StopTimer(PhaseConvert)

	pixelSizeMM := float32(cfg.PixelSizeUm / 1000)
	layerHeightMM := float32(cfg.LayerHeightUm / 1000)
	extent := bounds.Extent()

	width := gridDim(extent.X, pixelSizeMM)
	height := gridDim(extent.Y, pixelSizeMM)
	numLayers := raster.NumLayers(extent.Z, layerHeightMM)

	bctx.Progress(0.1, "building spatial index")
	bctx.StartTimer(PhaseBVH)
	tree := bvh.Build(tris)
	bctx.StopTimer(PhaseBVH)

	bctx.StartTimer(PhaseColumns)
	grid := raster.BuildSpanGrid(tree, bounds, width, height, pixelSizeMM, sink)
	bctx.StopTimer(PhaseColumns)

	if err := prepareOutputDir(cfg); err != nil {
		return Result{}, err
	}

	bctx.StartTimer(PhaseLayers)
	emitted, err := runLayers(ctx, cfg, bounds, grid, numLayers, layerHeightMM, sink)
	bctx.StopTimer(PhaseLayers)
	if err != nil {
		return Result{}, fmt.Errorf("slicer: layer phase: %w", err)
	}

	res := Result{
		TriangleCount:    len(tris),
		WidthPx:          width,
		HeightPx:         height,
		NumLayers:        numLayers,
		EmittedLayers:    emitted,
		OddParityColumns: grid.OddParityColumns,
		Bounds:           bounds,
		PhaseDurationsMs: phaseDurations(bctx),
	}

	if grid.OddParityColumns > 0 {
		bctx.Warnf("%d columns had an odd crossing count", grid.OddParityColumns)
	}

	if err := writeManifest(cfg.OutputDir, res); err != nil {
		return res, err
	}

	bctx.Progress(1.0, fmt.Sprintf("done: %d layers", emitted))
	return res, nil
}

func loadMesh(path string) ([]mesh.Triangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("slicer: opening input: %w", err)
	}
	defer f.Close()

	tris, err := stl.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("slicer: loading mesh: %w", err)
	}
	return tris, nil
}

// gridDim returns ⌈extent/pixelSizeMM⌉, floored at 1 so a mesh with
// zero extent along an axis still produces a usable raster column.
func gridDim(extent, pixelSizeMM float32) int {
	if extent <= 0 {
		return 1
	}
	n := int(math32.Ceil(extent / pixelSizeMM))
	if n < 1 {
		n = 1
	}
	return n
}

func prepareOutputDir(cfg Config) error {
	if cfg.DeleteOutputDir {
		if err := os.RemoveAll(cfg.OutputDir); err != nil {
			return fmt.Errorf("slicer: removing output dir: %w", err)
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("slicer: creating output dir: %w", err)
	}
	return nil
}

// runLayers partitions [0, numLayers) across a worker per GOMAXPROCS, each
// reading the shared immutable span grid and writing one PNG per non-
// skipped layer. A fatal encoder error cancels sibling workers via ctx.
func runLayers(ctx context.Context, cfg Config, bounds mesh.AABB, grid *raster.SpanGrid, numLayers int, layerHeightMM float32, sink *progress.Sink) (int, error) {
	g, gctx := errgroup.WithContext(ctx)

	workers := runtime.GOMAXPROCS(0)
	if workers > numLayers {
		workers = numLayers
	}
	if workers < 1 {
		workers = 1
	}

	var completed, emitted int64

	// Layers skipped by DeleteBelowZero form a prefix of the schedule.
	// With ZeroSlicePosition the stamp counts from the bottommost emitted
	// layer, so the label index is offset past that prefix.
	skipped := 0
	if cfg.DeleteBelowZero {
		for i := 0; i < numLayers; i++ {
			if raster.LayerZ(bounds.Min.Z, layerHeightMM, i) >= 0 {
				break
			}
			skipped++
		}
	}

	chunk := (numLayers + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > numLayers {
			hi = numLayers
		}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				z := raster.LayerZ(bounds.Min.Z, layerHeightMM, i)
				if cfg.DeleteBelowZero && z < 0 {
					reportLayerProgress(sink, atomic.AddInt64(&completed, 1), int64(numLayers))
					continue
				}

				bmp := raster.Rasterize(grid, z)
				zLabel := raster.ZLabelMicrometers(z, i-skipped, cfg.LayerHeightUm, cfg.ZeroSlicePosition)
				if err := writeLayerPNG(cfg.OutputDir, zLabel, bmp); err != nil {
					return err
				}
				atomic.AddInt64(&emitted, 1)
				reportLayerProgress(sink, atomic.AddInt64(&completed, 1), int64(numLayers))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(emitted), err
	}
	return int(emitted), nil
}

// reportLayerProgress fires every five completed layers and again on the
// final one.
func reportLayerProgress(sink *progress.Sink, completed, total int64) {
	if total == 0 {
		return
	}
	if completed%5 == 0 || completed == total {
		frac := 0.5 + 0.5*float32(completed)/float32(total)
		sink.Send(frac, fmt.Sprintf("rasterized %d/%d layers", completed, total))
	}
}
