package raster

import (
	"fmt"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// InterpolationMode defines how glyphs are resampled when scaled.
type InterpolationMode uint8

const (
	// InterpBilinear performs linear interpolation between 4 neighboring pixels.
	// This is the default and matches the resampling used to build the
	// reference synthetic MNIST datasets.
	InterpBilinear InterpolationMode = iota

	// InterpNearest selects the closest pixel (no interpolation).
	// Fast but produces blocky results when scaling.
	InterpNearest

	// InterpApproxBilinear is a faster bilinear approximation that samples
	// a single source pixel per destination pixel when downscaling.
	InterpApproxBilinear

	// InterpCatmullRom performs cubic interpolation using Catmull-Rom splines.
	// Highest quality but slower than bilinear.
	InterpCatmullRom
)

// String returns a string representation of the interpolation mode.
func (m InterpolationMode) String() string {
	switch m {
	case InterpBilinear:
		return "bilinear"
	case InterpNearest:
		return "nearest"
	case InterpApproxBilinear:
		return "approx-bilinear"
	case InterpCatmullRom:
		return "catmull-rom"
	default:
		return "unknown"
	}
}

// IsValid reports whether m is a known interpolation mode.
func (m InterpolationMode) IsValid() bool {
	return m <= InterpCatmullRom
}

// ParseInterpolation parses the name produced by String.
// Matching is case-insensitive; "bicubic" is accepted as an alias of catmull-rom.
func ParseInterpolation(s string) (InterpolationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bilinear":
		return InterpBilinear, nil
	case "nearest":
		return InterpNearest, nil
	case "approx-bilinear":
		return InterpApproxBilinear, nil
	case "catmull-rom", "bicubic":
		return InterpCatmullRom, nil
	default:
		return 0, fmt.Errorf("raster: unknown interpolation %q", s)
	}
}

// scaler returns the x/image scaler implementing the mode.
func (m InterpolationMode) scaler() xdraw.Scaler {
	switch m {
	case InterpNearest:
		return xdraw.NearestNeighbor
	case InterpApproxBilinear:
		return xdraw.ApproxBiLinear
	case InterpCatmullRom:
		return xdraw.CatmullRom
	default:
		return xdraw.BiLinear
	}
}
