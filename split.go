package mnistseq

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// SplitOptions sizes the train/test/validation partitions.
type SplitOptions struct {
	// TestFraction of all samples is held out for testing, rounded up.
	TestFraction float64

	// ValidFraction of the held-out samples is moved to validation, rounded down.
	ValidFraction float64
}

// DefaultSplitOptions holds out a quarter of the samples and moves a fifth
// of those to validation.
func DefaultSplitOptions() SplitOptions {
	return SplitOptions{TestFraction: 0.25, ValidFraction: 0.20}
}

// Validate checks that both fractions lie in [0, 1).
func (o SplitOptions) Validate() error {
	for _, f := range []float64{o.TestFraction, o.ValidFraction} {
		if !(f >= 0 && f < 1) {
			return fmt.Errorf("%w: %v", ErrInvalidSplit, f)
		}
	}
	return nil
}

// Splits are the three disjoint partitions of a dataset.
type Splits struct {
	Train, Test, Valid *Dataset
}

// Split partitions d into disjoint train, test and validation sets.
//
// Samples are permuted with rng; the first ceil(N*TestFraction) become the
// held-out set and the rest the training set. Then
// floor(held*ValidFraction) held-out samples, chosen at random, move to
// validation; the test set keeps the others in their permuted order.
func Split(d *Dataset, rng *rand.Rand, opts SplitOptions) (Splits, error) {
	if rng == nil {
		return Splits{}, ErrNilRand
	}
	if err := opts.Validate(); err != nil {
		return Splits{}, err
	}

	perm := rng.Perm(d.N)
	nHeld := int(math.Ceil(float64(d.N) * opts.TestFraction))
	held, train := perm[:nHeld], perm[nHeld:]

	nValid := int(float64(len(held)) * opts.ValidFraction)
	pick := rng.Perm(len(held))[:nValid]

	chosen := make([]bool, len(held))
	valid := make([]int, 0, nValid)
	for _, p := range pick {
		chosen[p] = true
		valid = append(valid, held[p])
	}
	test := make([]int, 0, len(held)-nValid)
	for p, idx := range held {
		if !chosen[p] {
			test = append(test, idx)
		}
	}

	s := Splits{
		Train: d.Subset(train),
		Test:  d.Subset(test),
		Valid: d.Subset(valid),
	}
	Logger().Info("dataset split",
		"train", s.Train.N, "test", s.Test.N, "valid", s.Valid.N)
	return s, nil
}
