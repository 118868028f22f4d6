package slicer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/arl/slaslice/raster"
)

// writeLayerPNG encodes bmp as an 8-bit grayscale PNG named {zLabel}.png in
// dir. Any failure here is fatal to the run; a partial stack is not a
// useful artifact.
func writeLayerPNG(dir string, zLabel int64, bmp *raster.Bitmap) error {
	img := &image.Gray{
		Pix:    bmp.Pix,
		Stride: bmp.Width,
		Rect:   image.Rect(0, 0, bmp.Width, bmp.Height),
	}

	path := filepath.Join(dir, fmt.Sprintf("%d.png", zLabel))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("slicer: creating %s: %w", path, err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("slicer: encoding %s: %w", path, err)
	}
	return f.Close()
}
