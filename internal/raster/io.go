package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

// LoadPNG loads a PNG file as a grayscale raster.
func LoadPNG(path string) (*Raster, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("raster: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodePNG(f)
}

// DecodePNG decodes a PNG image from r, converting color images to gray.
func DecodePNG(r io.Reader) (*Raster, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("raster: decode PNG: %w", err)
	}
	return FromImage(img), nil
}

// SavePNG writes the raster to path as an 8-bit grayscale PNG.
func (r *Raster) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("raster: create file: %w", err)
	}

	if err := r.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// EncodePNG encodes the raster as PNG to w.
func (r *Raster) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, r.toPacked()); err != nil {
		return fmt.Errorf("raster: encode PNG: %w", err)
	}
	return nil
}

// toPacked returns an *image.Gray whose Pix covers every row in full,
// which png.Encode requires for sub-raster views.
func (r *Raster) toPacked() *image.Gray {
	if r.stride == r.width {
		return r.Gray()
	}
	return r.Clone().Gray()
}
