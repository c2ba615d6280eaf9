// Package raster provides the single-channel 8-bit pixel buffers used for
// source glyphs and composited canvases.
//
// A Raster stores pixels in a contiguous byte slice with an optional stride
// so that sub-rasters can share storage with their parent. It converts to
// and from the standard library's *image.Gray without copying where the
// layouts agree.
package raster

import (
	"errors"
	"image"
)

// Common errors for raster operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("raster: invalid dimensions")

	// ErrInvalidStride is returned when stride is less than the width.
	ErrInvalidStride = errors.New("raster: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("raster: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside raster bounds.
	ErrOutOfBounds = errors.New("raster: coordinates out of bounds")
)

// Raster is a single-channel 8-bit image with intensities in [0, 255].
//
// Thread safety: Raster is safe for concurrent read access. Writes require
// external synchronization.
type Raster struct {
	data   []byte
	width  int
	height int
	stride int
}

// New creates a zero-filled raster with the given dimensions.
func New(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Raster{
		data:   make([]byte, width*height),
		width:  width,
		height: height,
		stride: width,
	}, nil
}

// FromRaw wraps existing pixel data without copying.
// The caller must ensure data remains valid for the lifetime of the Raster.
// Stride must be at least width.
func FromRaw(data []byte, width, height, stride int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if stride < width {
		return nil, ErrInvalidStride
	}
	required := stride*(height-1) + width
	if len(data) < required {
		return nil, ErrDataTooSmall
	}
	return &Raster{
		data:   data[:required],
		width:  width,
		height: height,
		stride: stride,
	}, nil
}

// Clone creates a tightly packed deep copy of the raster.
func (r *Raster) Clone() *Raster {
	out := &Raster{
		data:   make([]byte, r.width*r.height),
		width:  r.width,
		height: r.height,
		stride: r.width,
	}
	for y := range r.height {
		copy(out.data[y*out.stride:], r.RowBytes(y))
	}
	return out
}

// Width returns the raster width in pixels.
func (r *Raster) Width() int {
	return r.width
}

// Height returns the raster height in pixels.
func (r *Raster) Height() int {
	return r.height
}

// Stride returns the number of bytes between the starts of adjacent rows.
func (r *Raster) Stride() int {
	return r.stride
}

// Bounds returns the raster dimensions as (width, height).
func (r *Raster) Bounds() (int, int) {
	return r.width, r.height
}

// SameSize reports whether r and o have identical dimensions.
func (r *Raster) SameSize(o *Raster) bool {
	return r.width == o.width && r.height == o.height
}

// Data returns the raw pixel data slice.
func (r *Raster) Data() []byte {
	return r.data
}

// RowBytes returns the pixels of row y.
// Returns nil if y is out of bounds.
func (r *Raster) RowBytes(y int) []byte {
	if y < 0 || y >= r.height {
		return nil
	}
	start := y * r.stride
	return r.data[start : start+r.width]
}

// PixelOffset returns the byte offset of pixel (x, y) in the data slice.
// Returns -1 if coordinates are out of bounds.
func (r *Raster) PixelOffset(x, y int) int {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return -1
	}
	return y*r.stride + x
}

// GrayAt returns the intensity at (x, y), or 0 outside the raster.
func (r *Raster) GrayAt(x, y int) uint8 {
	off := r.PixelOffset(x, y)
	if off < 0 {
		return 0
	}
	return r.data[off]
}

// SetGray sets the intensity at (x, y).
// Returns ErrOutOfBounds if coordinates are outside raster bounds.
func (r *Raster) SetGray(x, y int, v uint8) error {
	off := r.PixelOffset(x, y)
	if off < 0 {
		return ErrOutOfBounds
	}
	r.data[off] = v
	return nil
}

// Clear sets all pixels to zero.
func (r *Raster) Clear() {
	r.Fill(0)
}

// Fill sets all pixels to v.
func (r *Raster) Fill(v uint8) {
	for y := range r.height {
		row := r.RowBytes(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Equal reports whether both rasters have the same size and pixels.
func (r *Raster) Equal(o *Raster) bool {
	if o == nil || !r.SameSize(o) {
		return false
	}
	for y := range r.height {
		a, b := r.RowBytes(y), o.RowBytes(y)
		for x := range a {
			if a[x] != b[x] {
				return false
			}
		}
	}
	return true
}

// SubRaster returns a view into a rectangular region of the raster.
// The returned Raster shares the underlying data with the original.
// Returns nil if the region is empty or outside the raster.
func (r *Raster) SubRaster(x, y, width, height int) *Raster {
	if x < 0 || y < 0 || width <= 0 || height <= 0 {
		return nil
	}
	if x+width > r.width || y+height > r.height {
		return nil
	}

	offset := y*r.stride + x
	end := (y+height-1)*r.stride + x + width

	return &Raster{
		data:   r.data[offset:end],
		width:  width,
		height: height,
		stride: r.stride,
	}
}

// Gray returns an *image.Gray that shares storage with the raster.
// Writes through the returned image are visible in the raster.
func (r *Raster) Gray() *image.Gray {
	return &image.Gray{
		Pix:    r.data,
		Stride: r.stride,
		Rect:   image.Rect(0, 0, r.width, r.height),
	}
}

// FromImage converts any image to a raster using the standard luminance
// conversion of image/color.GrayModel.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	out, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil
	}

	if g, ok := img.(*image.Gray); ok {
		for y := range out.height {
			start := (y+b.Min.Y-g.Rect.Min.Y)*g.Stride + (b.Min.X - g.Rect.Min.X)
			copy(out.RowBytes(y), g.Pix[start:start+out.width])
		}
		return out
	}

	dst := out.Gray()
	for y := range out.height {
		for x := range out.width {
			dst.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// ByteSize returns the size of the pixel data in bytes.
func (r *Raster) ByteSize() int {
	return len(r.data)
}
