package mnistseq

import "github.com/gogpu/mnistseq/internal/raster"

// Raster is a single-channel 8-bit image. Source glyphs and composited
// canvases are both Rasters.
type Raster = raster.Raster

// InterpolationMode selects the resampling filter used to scale glyphs.
type InterpolationMode = raster.InterpolationMode

// Glyph interpolation modes.
const (
	// InterpBilinear performs linear interpolation between 4 neighboring pixels.
	// It is the default.
	InterpBilinear = raster.InterpBilinear

	// InterpNearest selects the closest pixel (no interpolation).
	InterpNearest = raster.InterpNearest

	// InterpApproxBilinear is a faster approximation of bilinear.
	InterpApproxBilinear = raster.InterpApproxBilinear

	// InterpCatmullRom performs cubic interpolation with Catmull-Rom splines.
	InterpCatmullRom = raster.InterpCatmullRom
)

// NewRaster creates a zero-filled raster.
func NewRaster(width, height int) (*Raster, error) {
	return raster.New(width, height)
}

// RasterFromPixels wraps a tightly packed row-major pixel slice.
func RasterFromPixels(pix []byte, width, height int) (*Raster, error) {
	return raster.FromRaw(pix, width, height, width)
}

// ParseInterpolation parses an interpolation mode name such as "bilinear".
func ParseInterpolation(s string) (InterpolationMode, error) {
	return raster.ParseInterpolation(s)
}
