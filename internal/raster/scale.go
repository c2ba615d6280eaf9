package raster

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ScaleInto resamples all of src into the rectangle of dst whose top-left
// corner is (x, y) and whose size is width×height. Destination pixels are
// replaced, not blended. The target rectangle must lie within dst.
func ScaleInto(dst *Raster, x, y, width, height int, src *Raster, mode InterpolationMode) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	if x < 0 || y < 0 || x+width > dst.width || y+height > dst.height {
		return ErrOutOfBounds
	}

	dr := image.Rect(x, y, x+width, y+height)
	s := src.Gray()

	// Equal sizes are a straight copy for every mode.
	if width == src.width && height == src.height {
		for row := range height {
			copy(dst.RowBytes(y + row)[x:x+width], src.RowBytes(row))
		}
		return nil
	}

	mode.scaler().Scale(dst.Gray(), dr, s, s.Bounds(), xdraw.Src, nil)
	return nil
}

// Scale returns a new width×height raster resampled from src.
func Scale(src *Raster, width, height int, mode InterpolationMode) (*Raster, error) {
	dst, err := New(width, height)
	if err != nil {
		return nil, err
	}
	if err := ScaleInto(dst, 0, 0, width, height, src, mode); err != nil {
		return nil, err
	}
	return dst, nil
}

// Blit copies src into dst with its top-left corner at (x, y).
// Pixels falling outside dst are clipped.
func Blit(dst *Raster, x, y int, src *Raster) {
	for row := range src.height {
		dy := y + row
		if dy < 0 || dy >= dst.height {
			continue
		}
		srow := src.RowBytes(row)
		drow := dst.RowBytes(dy)
		for col, v := range srow {
			dx := x + col
			if dx < 0 || dx >= dst.width {
				continue
			}
			drow[dx] = v
		}
	}
}
