package mnistseq

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/gogpu/mnistseq/internal/parallel"
	"github.com/gogpu/mnistseq/internal/raster"
)

// Corpus is a read-only collection of single-digit glyphs.
// Images[i] depicts the digit Labels[i].
type Corpus struct {
	Images []*Raster
	Labels []uint8
}

// Len returns the number of glyphs in the corpus.
func (c Corpus) Len() int {
	return len(c.Images)
}

// Validate checks that the corpus is non-empty, that images and labels are
// parallel, and that every glyph has the same resolution and a digit label.
func (c Corpus) Validate() error {
	if len(c.Images) == 0 && len(c.Labels) == 0 {
		return ErrEmptyCorpus
	}
	if len(c.Images) != len(c.Labels) {
		return fmt.Errorf("%w: corpus has %d images and %d labels", ErrShapeMismatch, len(c.Images), len(c.Labels))
	}
	first := c.Images[0]
	for i, img := range c.Images {
		if img == nil || !img.SameSize(first) {
			return fmt.Errorf("%w: corpus image %d differs from image 0", ErrShapeMismatch, i)
		}
		if c.Labels[i] > 9 {
			return fmt.Errorf("%w: corpus label %d is %d", ErrInvalidLabel, i, c.Labels[i])
		}
	}
	return nil
}

// Hooks receive progress callbacks during Generate.
// Callbacks run on the goroutine that called Generate.
type Hooks struct {
	// OnGroup is called after every sample of one sequence length has been
	// composited.
	OnGroup func(length, samples int, elapsed time.Duration)
}

// GenerateOptions configures Generate.
type GenerateOptions struct {
	Canvas CanvasOptions

	// TargetSize is the total number of samples. It must be a positive
	// multiple of Canvas.MaxDigits.
	TargetSize int

	// Rand is the only source of randomness. Equal seeds give equal datasets.
	Rand *rand.Rand

	// Workers bounds the goroutines used for compositing. Values below 2
	// composite on the calling goroutine.
	Workers int

	Hooks Hooks
}

// sampleGrain is the number of samples per worker task.
const sampleGrain = 64

// Generate builds a balanced dataset of TargetSize samples.
//
// The output is split into Canvas.MaxDigits contiguous groups of equal size;
// group g (1-indexed) holds samples with exactly g digits. For each sample,
// g distinct corpus indices are drawn uniformly without replacement; the
// same glyph may appear in different samples. All draws are made in output
// order from opts.Rand before the group is composited, so the dataset does
// not depend on Workers.
//
// Every argument is checked before any sample is produced. On error or
// cancellation no dataset is returned.
func Generate(ctx context.Context, corpus Corpus, opts GenerateOptions) (*Dataset, error) {
	if err := corpus.Validate(); err != nil {
		return nil, err
	}
	c := opts.Canvas
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if opts.TargetSize <= 0 || opts.TargetSize%c.MaxDigits != 0 {
		return nil, fmt.Errorf("%w: %d samples over %d lengths", ErrUnbalancedTargetSize, opts.TargetSize, c.MaxDigits)
	}
	if c.MaxDigits > corpus.Len() {
		return nil, fmt.Errorf("%w: need %d distinct glyphs, corpus has %d", ErrInsufficientCorpus, c.MaxDigits, corpus.Len())
	}
	if opts.Rand == nil {
		return nil, ErrNilRand
	}
	src := corpus.Images[0]
	if _, err := GlyphRects(c.MaxDigits, src.Width(), src.Height(), c); err != nil {
		return nil, err
	}

	log := Logger()
	groupSize := opts.TargetSize / c.MaxDigits
	ds := newDataset(opts.TargetSize, c.Height, c.Width, c.MaxDigits)

	var pool *parallel.WorkerPool
	workers := 1
	if opts.Workers > 1 {
		pool = parallel.NewWorkerPool(opts.Workers)
		defer pool.Close()
		workers = pool.Workers()
	}
	canvases := raster.NewPool(workers * 2)
	log.Debug("generating dataset", "samples", opts.TargetSize, "group_size", groupSize, "workers", workers)

	start := time.Now()
	for length := 1; length <= c.MaxDigits; length++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		groupStart := time.Now()
		lo := (length - 1) * groupSize

		for i := lo; i < lo+groupSize; i++ {
			ds.Draws[i] = drawDistinct(opts.Rand, corpus.Len(), length)
		}

		errs := make([]error, groupSize)
		body := func(j int) {
			errs[j] = composeSample(ds, lo+j, corpus, c, canvases)
		}
		if pool != nil {
			if err := pool.For(ctx, groupSize, sampleGrain, body); err != nil {
				return nil, err
			}
		} else {
			for j := range groupSize {
				body(j)
			}
		}
		for j, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("mnistseq: sample %d: %w", lo+j, err)
			}
		}

		elapsed := time.Since(groupStart)
		log.Debug("group generated", "length", length, "samples", groupSize, "elapsed", elapsed)
		if opts.Hooks.OnGroup != nil {
			opts.Hooks.OnGroup(length, groupSize, elapsed)
		}
	}

	log.Info("dataset generated",
		"samples", ds.N, "max_digits", c.MaxDigits,
		"canvas", fmt.Sprintf("%dx%d", c.Width, c.Height),
		"elapsed", time.Since(start))
	return ds, nil
}

// composeSample composites sample i from its recorded draw into the dataset.
func composeSample(ds *Dataset, i int, corpus Corpus, c CanvasOptions, canvases *raster.Pool) error {
	draw := ds.Draws[i]
	images := make([]*Raster, len(draw))
	labels := make([]uint8, len(draw))
	for k, idx := range draw {
		images[k] = corpus.Images[idx]
		labels[k] = corpus.Labels[idx]
	}

	canvas := canvases.Get(c.Width, c.Height)
	defer canvases.Put(canvas)

	if err := ComposeInto(canvas, ds.Label(i), images, labels, c); err != nil {
		return err
	}
	copy(ds.imagePix(i), canvas.Data())
	return nil
}

// drawDistinct returns k distinct indices in [0, n), in draw order, each
// ordered k-tuple being equally likely. k is small relative to n, so
// rejecting repeats is cheaper than permuting the index range.
func drawDistinct(rng *rand.Rand, n, k int) []int {
	out := make([]int, 0, k)
	for len(out) < k {
		idx := rng.IntN(n)
		dup := false
		for _, v := range out {
			if v == idx {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, idx)
		}
	}
	return out
}
