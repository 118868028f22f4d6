// Package raster turns a BVH-indexed triangle set into a grid of per-column
// inside-intervals (the span grid) and, from that grid, a sequence of
// binary layer bitmaps. The two passes are independent fork-join phases
// over an immutable, read-only-shared input, matching the scheduling model
// the coordinator drives them under.
package raster

import (
	"math"
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/arl/slaslice/bvh"
	"github.com/arl/slaslice/mesh"
	"github.com/arl/slaslice/progress"
	"golang.org/x/sync/errgroup"
)

// Span is one closed, disjoint [Enter, Exit] interval during which a
// column lies inside the solid.
type Span struct {
	Enter, Exit float32
}

// SpanGrid is the row-major W×H array of per-column span lists produced by
// BuildSpanGrid. It is written once and read-only for the remainder of the
// run.
type SpanGrid struct {
	Width, Height int
	Bounds        mesh.AABB
	PixelSizeMM   float32

	spans [][]Span

	// OddParityColumns counts columns whose raw crossing count was odd
	// before the trailing unpaired crossing was discarded: a diagnostic,
	// not a correctness signal (grazing hits and non-watertight meshes both
	// produce it).
	OddParityColumns int32
}

// At returns the span list for pixel column (x, y).
func (g *SpanGrid) At(x, y int) []Span {
	return g.spans[y*g.Width+x]
}

// pixelCenter returns the world (x, y) sampled by column (x, y): pixel
// centers, not corners, so sampling never lands exactly on a grid boundary.
func pixelCenter(bounds mesh.AABB, pixelSizeMM float32, x, y int) (px, py float32) {
	px = bounds.Min.X + (float32(x)+0.5)*pixelSizeMM
	py = bounds.Min.Y + (float32(y)+0.5)*pixelSizeMM
	return
}

// BuildSpanGrid computes the span grid for a width×height raster over
// bounds, querying tree for ray/triangle candidates one column at a time.
// Columns are partitioned across a worker per GOMAXPROCS; each worker only
// ever writes its own disjoint slice of cells, so no locking is needed.
func BuildSpanGrid(tree *bvh.Tree, bounds mesh.AABB, width, height int, pixelSizeMM float32, sink *progress.Sink) *SpanGrid {
	grid := &SpanGrid{
		Width:       width,
		Height:      height,
		Bounds:      bounds,
		PixelSizeMM: pixelSizeMM,
		spans:       make([][]Span, width*height),
	}

	sink.Send(0.15, "computing column spans")

	total := width * height
	workers := runtime.GOMAXPROCS(0)
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}

	var oddParity int64
	var g errgroup.Group

	chunk := (total + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > total {
			hi = total
		}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			for idx := lo; idx < hi; idx++ {
				x := idx % width
				y := idx / width
				spans, odd := columnSpans(tree, bounds, pixelSizeMM, x, y)
				grid.spans[idx] = spans
				if odd {
					atomic.AddInt64(&oddParity, 1)
				}
			}
			return nil
		})
	}
	// Column workers are purely computational, no I/O and no fallible
	// steps, so Wait never returns an error.
	_ = g.Wait()

	grid.OddParityColumns = int32(oddParity)
	sink.Send(0.5, "column spans complete")
	return grid
}

// columnSpans casts the vertical ray through (x, y), pairs its crossings
// greedily into intervals, and reports whether the raw crossing count was
// odd (a trailing crossing was discarded).
func columnSpans(tree *bvh.Tree, bounds mesh.AABB, pixelSizeMM float32, x, y int) ([]Span, bool) {
	px, py := pixelCenter(bounds, pixelSizeMM, x, y)

	ray := mesh.Ray{
		Origin: mesh.Vec3{X: px, Y: py, Z: bounds.Min.Z - 1},
		Dir:    mesh.Vec3{X: 0, Y: 0, Z: 1},
	}

	candidates := tree.CandidatesAlongColumn(px, py, bounds)

	zs := make([]float32, 0, 4)
	for _, tri := range candidates {
		t, ok := mesh.Intersect(tri, ray)
		if !ok {
			continue
		}
		z := ray.Origin.Z + t
		if math.IsNaN(float64(z)) || math.IsInf(float64(z), 0) {
			continue
		}
		zs = append(zs, z)
	}
	sort.Slice(zs, func(i, j int) bool { return zs[i] < zs[j] })

	odd := len(zs)%2 != 0
	spans := make([]Span, 0, len(zs)/2)
	for i := 0; i+1 < len(zs); i += 2 {
		spans = append(spans, Span{Enter: zs[i], Exit: zs[i+1]})
	}
	return spans, odd
}
