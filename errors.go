package mnistseq

import "errors"

// Errors returned by the compositor, the sampler and the splitter.
// They are wrapped with call-specific context; match them with errors.Is.
var (
	// ErrInvalidSequenceLength is returned when a sequence has no glyphs or
	// more glyphs than the label vector has slots.
	ErrInvalidSequenceLength = errors.New("mnistseq: invalid sequence length")

	// ErrShapeMismatch is returned when parallel inputs disagree in length
	// or when glyphs of one sequence have different resolutions.
	ErrShapeMismatch = errors.New("mnistseq: shape mismatch")

	// ErrCanvasOverflow is returned when the scaled glyphs do not fit the canvas.
	ErrCanvasOverflow = errors.New("mnistseq: glyphs do not fit canvas")

	// ErrInvalidScale is returned when the glyph scale yields an empty footprint.
	ErrInvalidScale = errors.New("mnistseq: invalid glyph scale")

	// ErrInvalidCanvas is returned for non-positive canvas dimensions.
	ErrInvalidCanvas = errors.New("mnistseq: invalid canvas size")

	// ErrInvalidLabel is returned for glyph labels outside 0..9.
	ErrInvalidLabel = errors.New("mnistseq: invalid digit label")

	// ErrEmptyCorpus is returned when the source corpus holds no glyphs.
	ErrEmptyCorpus = errors.New("mnistseq: empty corpus")

	// ErrInsufficientCorpus is returned when the corpus is smaller than the
	// longest sequence, so distinct glyphs cannot be drawn.
	ErrInsufficientCorpus = errors.New("mnistseq: corpus too small for sequence length")

	// ErrUnbalancedTargetSize is returned when the target size cannot be split
	// into equal groups, one per sequence length.
	ErrUnbalancedTargetSize = errors.New("mnistseq: target size not divisible by max digits")

	// ErrNilRand is returned when no randomness source is supplied.
	ErrNilRand = errors.New("mnistseq: nil random source")

	// ErrInvalidSplit is returned for split fractions outside [0, 1).
	ErrInvalidSplit = errors.New("mnistseq: invalid split fraction")
)
