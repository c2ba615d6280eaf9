package mnistseq

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/mnistseq/internal/raster"
)

// Dataset is a set of composited canvases with their sequence labels.
//
// Pixels and labels are stored in contiguous row-major arenas so that they
// can be written out as (N, Height, Width) uint8 and (N, MaxDigits) int32
// arrays without copying. Nothing in this package modifies a Dataset after
// construction: Shuffle, Subset and Split return new datasets. The fields
// and the views returned by Image and Label are shared, so callers must not
// mutate them either.
type Dataset struct {
	// N is the number of samples.
	N int

	// Height and Width of every canvas.
	Height, Width int

	// MaxDigits is the length of every label vector.
	MaxDigits int

	// Images holds N*Height*Width pixels, sample-major.
	Images []uint8

	// Labels holds N*MaxDigits label slots, sample-major.
	Labels []int32

	// Draws records the corpus indices composited into each sample, in
	// placement order. It is nil for datasets read back from disk.
	Draws [][]int
}

func newDataset(n, height, width, maxDigits int) *Dataset {
	return &Dataset{
		N:         n,
		Height:    height,
		Width:     width,
		MaxDigits: maxDigits,
		Images:    make([]uint8, n*height*width),
		Labels:    make([]int32, n*maxDigits),
		Draws:     make([][]int, n),
	}
}

// DatasetFromArrays wraps existing arenas, checking their lengths.
func DatasetFromArrays(images []uint8, labels []int32, n, height, width, maxDigits int) (*Dataset, error) {
	if n < 0 || height <= 0 || width <= 0 || maxDigits <= 0 {
		return nil, fmt.Errorf("%w: n=%d %dx%d digits=%d", ErrShapeMismatch, n, width, height, maxDigits)
	}
	if len(images) != n*height*width || len(labels) != n*maxDigits {
		return nil, fmt.Errorf("%w: %d pixels and %d labels for %d samples", ErrShapeMismatch, len(images), len(labels), n)
	}
	return &Dataset{
		N:         n,
		Height:    height,
		Width:     width,
		MaxDigits: maxDigits,
		Images:    images,
		Labels:    labels,
	}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return d.N
}

func (d *Dataset) imagePix(i int) []uint8 {
	sz := d.Height * d.Width
	return d.Images[i*sz : (i+1)*sz]
}

// Image returns a view of canvas i. The view shares storage with the dataset
// and must not be modified.
//
// Image panics if i is out of range or if the fields no longer describe the
// Images arena, like indexing a slice out of bounds.
func (d *Dataset) Image(i int) *Raster {
	if i < 0 || i >= d.N {
		panic(fmt.Sprintf("mnistseq: sample %d out of range [0, %d)", i, d.N))
	}
	if len(d.Images) != d.N*d.Height*d.Width {
		panic(fmt.Sprintf("mnistseq: %d pixels do not hold %d samples of %dx%d", len(d.Images), d.N, d.Width, d.Height))
	}
	r, err := raster.FromRaw(d.imagePix(i), d.Width, d.Height, d.Width)
	if err != nil {
		panic(fmt.Sprintf("mnistseq: sample %d: %v", i, err))
	}
	return r
}

// Label returns the label vector of sample i, sharing storage with the dataset.
func (d *Dataset) Label(i int) []int32 {
	return d.Labels[i*d.MaxDigits : (i+1)*d.MaxDigits]
}

// SequenceLength returns the number of non-sentinel slots of sample i.
func (d *Dataset) SequenceLength(i int) int {
	n := 0
	for _, v := range d.Label(i) {
		if v != Sentinel {
			n++
		}
	}
	return n
}

// GroupBounds returns the half-open sample range [lo, hi) holding sequences
// of the given length in a freshly generated, unshuffled dataset.
func (d *Dataset) GroupBounds(length int) (lo, hi int) {
	if length < 1 || length > d.MaxDigits {
		return 0, 0
	}
	size := d.N / d.MaxDigits
	return (length - 1) * size, length * size
}

// Subset returns a new dataset holding copies of the samples at idx, in order.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := newDataset(len(idx), d.Height, d.Width, d.MaxDigits)
	if d.Draws == nil {
		out.Draws = nil
	}
	for j, i := range idx {
		copy(out.imagePix(j), d.imagePix(i))
		copy(out.Label(j), d.Label(i))
		if d.Draws != nil {
			out.Draws[j] = d.Draws[i]
		}
	}
	return out
}

// Shuffle returns a copy of d with samples permuted in lockstep.
func Shuffle(d *Dataset, rng *rand.Rand) (*Dataset, error) {
	if rng == nil {
		return nil, ErrNilRand
	}
	return d.Subset(rng.Perm(d.N)), nil
}
