package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func gridOfSpans(spans [][]Span, w, h int) *SpanGrid {
	return &SpanGrid{Width: w, Height: h, spans: spans}
}

func TestRasterizeFlipsYAndSetsBinaryPixels(t *testing.T) {
	// 2x2 grid; only column (0,1) (top-left in world space) is inside.
	spans := make([][]Span, 4)
	spans[1*2+0] = []Span{{Enter: 0, Exit: 10}} // (x=0,y=1)

	grid := gridOfSpans(spans, 2, 2)
	bmp := Rasterize(grid, 5)

	for i, px := range bmp.Pix {
		if px != 0 && px != 255 {
			t.Fatalf("pixel %d not binary: %d", i, px)
		}
	}
	// span-grid row 1 maps to image row height-1-1 = 0.
	assert.Equal(t, byte(255), bmp.At(0, 0))
	assert.Equal(t, byte(0), bmp.At(1, 0))
	assert.Equal(t, byte(0), bmp.At(0, 1))
}

func TestRasterizeSlabEpsilonIncludesCoplanarFacet(t *testing.T) {
	spans := [][]Span{{Span{Enter: 0, Exit: 5}}}
	grid := gridOfSpans(spans, 1, 1)

	bmp := Rasterize(grid, 5) // exactly on the top face
	assert.Equal(t, byte(255), bmp.At(0, 0))
}

func TestNumLayers(t *testing.T) {
	assert.Equal(t, 10, NumLayers(10, 1))
	assert.Equal(t, 5, NumLayers(4.1, 1))
	assert.Equal(t, 0, NumLayers(0, 1))
}

func TestZLabelMicrometers(t *testing.T) {
	assert.Equal(t, int64(-5000), ZLabelMicrometers(-5, 0, 1000, false))
	assert.Equal(t, int64(0), ZLabelMicrometers(-5, 0, 1000, true))
	assert.Equal(t, int64(9000), ZLabelMicrometers(4, 9, 1000, true))
}
