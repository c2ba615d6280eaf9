package mnistseq

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/mnistseq/internal/raster"
)

// Sentinel is the label value marking an unused digit slot.
const Sentinel = 10

// footprintEpsilon absorbs float error in srcSize*scale so that products
// which are mathematically whole (e.g. 28*0.5) are not floored one short.
const footprintEpsilon = 1e-9

// CanvasOptions describes the output canvas and how glyphs are placed on it.
type CanvasOptions struct {
	// Height and Width of the canvas in pixels.
	Height, Width int

	// MaxDigits is the length of every sequence label and the largest
	// number of glyphs one canvas may hold.
	MaxDigits int

	// GlyphScale is applied to the source glyph resolution. The scaled
	// footprint is floor(src*GlyphScale) in each dimension.
	GlyphScale float64

	// Interpolation is the resampling filter. The zero value is bilinear.
	Interpolation InterpolationMode
}

// DefaultCanvasOptions returns the 64×64, five-digit layout with 28×28
// glyphs scaled by 0.45 to 12×12.
func DefaultCanvasOptions() CanvasOptions {
	return CanvasOptions{
		Height:        64,
		Width:         64,
		MaxDigits:     5,
		GlyphScale:    0.45,
		Interpolation: InterpBilinear,
	}
}

// Validate checks the options independently of any glyph resolution.
func (o CanvasOptions) Validate() error {
	if o.Height <= 0 || o.Width <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidCanvas, o.Width, o.Height)
	}
	if o.MaxDigits < 1 {
		return fmt.Errorf("%w: max digits %d", ErrInvalidSequenceLength, o.MaxDigits)
	}
	if !(o.GlyphScale > 0) || math.IsInf(o.GlyphScale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, o.GlyphScale)
	}
	if !o.Interpolation.IsValid() {
		return fmt.Errorf("mnistseq: invalid interpolation %d", o.Interpolation)
	}
	return nil
}

// Footprint returns the scaled glyph size for a srcW×srcH glyph.
// Each dimension is floor(src*scale); a footprint below one pixel is an error.
func Footprint(srcW, srcH int, scale float64) (w, h int, err error) {
	w = int(math.Floor(float64(srcW)*scale + footprintEpsilon))
	h = int(math.Floor(float64(srcH)*scale + footprintEpsilon))
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("%w: %dx%d scaled by %v", ErrInvalidScale, srcW, srcH, scale)
	}
	return w, h, nil
}

// GlyphRects returns the canvas rectangle of each of num glyphs of source
// size srcW×srcH. Padding is (canvas-extent)/2 with integer division, so
// when the free space is odd the top and left margins are one pixel
// smaller than the bottom and right margins.
func GlyphRects(num, srcW, srcH int, opts CanvasOptions) ([]image.Rectangle, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if num < 1 || num > opts.MaxDigits {
		return nil, fmt.Errorf("%w: %d glyphs, max %d", ErrInvalidSequenceLength, num, opts.MaxDigits)
	}
	gw, gh, err := Footprint(srcW, srcH, opts.GlyphScale)
	if err != nil {
		return nil, err
	}
	if gh > opts.Height || num*gw > opts.Width {
		return nil, fmt.Errorf("%w: %d glyphs of %dx%d on %dx%d",
			ErrCanvasOverflow, num, gw, gh, opts.Width, opts.Height)
	}

	yPad := (opts.Height - gh) / 2
	xPad := (opts.Width - num*gw) / 2

	rects := make([]image.Rectangle, num)
	for i := range rects {
		x0 := xPad + i*gw
		rects[i] = image.Rect(x0, yPad, x0+gw, yPad+gh)
	}
	return rects, nil
}

// ComposeLabels builds a sequence label of length maxDigits: the digits in
// order followed by Sentinel in every remaining slot.
func ComposeLabels(labels []uint8, maxDigits int) ([]int32, error) {
	out := make([]int32, maxDigits)
	if err := composeLabelsInto(out, labels); err != nil {
		return nil, err
	}
	return out, nil
}

func composeLabelsInto(dst []int32, labels []uint8) error {
	if len(labels) < 1 || len(labels) > len(dst) {
		return fmt.Errorf("%w: %d labels, max %d", ErrInvalidSequenceLength, len(labels), len(dst))
	}
	for i := range dst {
		if i >= len(labels) {
			dst[i] = Sentinel
			continue
		}
		if labels[i] > 9 {
			return fmt.Errorf("%w: %d at position %d", ErrInvalidLabel, labels[i], i)
		}
		dst[i] = int32(labels[i])
	}
	return nil
}

// Compose scales the glyphs, lays them out left to right centered on a new
// canvas, and returns the canvas with its sequence label.
//
// Compose is pure: the inputs are not modified or retained and identical
// inputs produce identical output.
func Compose(images []*Raster, labels []uint8, opts CanvasOptions) (*Raster, []int32, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	canvas, err := raster.New(opts.Width, opts.Height)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCanvas, err)
	}
	label := make([]int32, opts.MaxDigits)
	if err := ComposeInto(canvas, label, images, labels, opts); err != nil {
		return nil, nil, err
	}
	return canvas, label, nil
}

// ComposeInto is Compose writing into caller-owned storage. canvas must be
// opts.Width×opts.Height and label must have opts.MaxDigits slots. All
// inputs are checked before either destination is written.
func ComposeInto(canvas *Raster, label []int32, images []*Raster, labels []uint8, opts CanvasOptions) error {
	if len(images) != len(labels) {
		return fmt.Errorf("%w: %d images, %d labels", ErrShapeMismatch, len(images), len(labels))
	}
	if len(images) == 0 {
		return fmt.Errorf("%w: empty sequence", ErrInvalidSequenceLength)
	}
	first := images[0]
	for i, img := range images {
		if img == nil {
			return fmt.Errorf("%w: nil image at position %d", ErrShapeMismatch, i)
		}
		if !img.SameSize(first) {
			return fmt.Errorf("%w: image %d is %dx%d, image 0 is %dx%d",
				ErrShapeMismatch, i, img.Width(), img.Height(), first.Width(), first.Height())
		}
	}
	for i, l := range labels {
		if l > 9 {
			return fmt.Errorf("%w: %d at position %d", ErrInvalidLabel, l, i)
		}
	}

	rects, err := GlyphRects(len(images), first.Width(), first.Height(), opts)
	if err != nil {
		return err
	}
	if canvas.Width() != opts.Width || canvas.Height() != opts.Height {
		return fmt.Errorf("%w: destination is %dx%d, want %dx%d",
			ErrShapeMismatch, canvas.Width(), canvas.Height(), opts.Width, opts.Height)
	}
	if len(label) != opts.MaxDigits {
		return fmt.Errorf("%w: label has %d slots, want %d", ErrShapeMismatch, len(label), opts.MaxDigits)
	}

	canvas.Clear()
	for i, r := range rects {
		err := raster.ScaleInto(canvas, r.Min.X, r.Min.Y, r.Dx(), r.Dy(), images[i], opts.Interpolation)
		if err != nil {
			return fmt.Errorf("mnistseq: place glyph %d: %w", i, err)
		}
	}
	return composeLabelsInto(label, labels)
}
