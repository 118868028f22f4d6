package raster

import (
	"math"

	"github.com/aurelien-rainone/math32"
)

// slabEps widens a span's membership test by an order of magnitude below a
// typical layer height and two below typical pixel size, absorbing the
// float32 error accumulated in mesh.Intersect and making facets exactly
// coplanar with a layer (including top/bottom caps) render solid.
const slabEps = 1e-4

// Bitmap is one layer's W×H binary image; every pixel is 0 or 255.
type Bitmap struct {
	Width, Height int
	Pix           []byte
}

// At returns the pixel value at image-space (x, y).
func (b *Bitmap) At(x, y int) byte {
	return b.Pix[y*b.Width+x]
}

// NumLayers returns the layer count spanning bounds at layerHeightMM,
// satisfying num_layers·layer_height_mm ≥ max.z−min.z.
func NumLayers(extentZ, layerHeightMM float32) int {
	if extentZ <= 0 {
		return 0
	}
	return int(math32.Ceil(extentZ / layerHeightMM))
}

// LayerZ returns the world z of layer i: min.z + i·layer_height_mm.
func LayerZ(minZ, layerHeightMM float32, i int) float32 {
	return minZ + float32(i)*layerHeightMM
}

// Rasterize writes a binary bitmap for the z-plane at zWorld: pixel (x, y)
// is white iff grid's column (x, y) contains zWorld within the slab
// epsilon. The image's y-axis is flipped on emission, so image row 0
// corresponds to maximum world-y.
func Rasterize(grid *SpanGrid, zWorld float32) *Bitmap {
	bmp := &Bitmap{
		Width:  grid.Width,
		Height: grid.Height,
		Pix:    make([]byte, grid.Width*grid.Height),
	}
	for y := 0; y < grid.Height; y++ {
		imgY := grid.Height - 1 - y
		row := bmp.Pix[imgY*grid.Width : imgY*grid.Width+grid.Width]
		for x := 0; x < grid.Width; x++ {
			if columnInside(grid.At(x, y), zWorld) {
				row[x] = 255
			}
		}
	}
	return bmp
}

func columnInside(spans []Span, z float32) bool {
	for _, s := range spans {
		if z >= s.Enter-slabEps && z <= s.Exit+slabEps {
			return true
		}
	}
	return false
}

// ZLabelMicrometers returns the signed integer micrometer stamp emitted for
// layer i at world elevation zWorld. With zeroSlicePosition it counts from
// zero at the bottommost layer instead of reporting world z, and the
// result is always non-negative.
func ZLabelMicrometers(zWorld float32, i int, layerHeightUm float64, zeroSlicePosition bool) int64 {
	if zeroSlicePosition {
		return int64(math.Round(float64(i) * layerHeightUm))
	}
	return int64(math.Round(float64(zWorld) * 1000))
}
