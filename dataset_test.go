package mnistseq

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/mnistseq/internal/idx"
)

// indexedDataset returns n 2×2 samples whose pixels and first label slot
// all encode the sample index, so lockstep moves can be checked.
func indexedDataset(t *testing.T, n int) *Dataset {
	t.Helper()
	require.LessOrEqual(t, n, 256)
	images := make([]uint8, n*4)
	labels := make([]int32, n*3)
	for i := range n {
		for p := range 4 {
			images[i*4+p] = uint8(i)
		}
		labels[i*3] = int32(i)
		labels[i*3+1] = Sentinel
		labels[i*3+2] = Sentinel
	}
	ds, err := DatasetFromArrays(images, labels, n, 2, 2, 3)
	require.NoError(t, err)
	return ds
}

func sampleIDs(d *Dataset) []int {
	ids := make([]int, d.N)
	for i := range ids {
		ids[i] = int(d.Label(i)[0])
	}
	return ids
}

func assertLockstep(t *testing.T, d *Dataset) {
	t.Helper()
	for i := range d.N {
		id := d.Label(i)[0]
		for _, v := range d.Image(i).Data() {
			require.Equal(t, uint8(id), v, "sample %d", i)
		}
	}
}

func TestDatasetFromArraysChecksLengths(t *testing.T) {
	_, err := DatasetFromArrays(make([]uint8, 7), make([]int32, 3), 1, 2, 2, 3)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = DatasetFromArrays(nil, nil, 0, 0, 2, 3)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	ds, err := DatasetFromArrays(nil, nil, 0, 2, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestImagePanicsOnBadIndexOrShape(t *testing.T) {
	d := indexedDataset(t, 3)
	assert.Equal(t, uint8(2), d.Image(2).GrayAt(1, 1))

	assert.PanicsWithValue(t, "mnistseq: sample 3 out of range [0, 3)", func() { d.Image(3) })
	assert.Panics(t, func() { d.Image(-1) })

	d.Images = d.Images[:5]
	assert.Panics(t, func() { d.Image(0) })

	bad := &Dataset{N: 1, Height: 0, Width: 4, MaxDigits: 1, Labels: []int32{0}}
	assert.Panics(t, func() { bad.Image(0) })
}

func TestSubsetCopies(t *testing.T) {
	d := indexedDataset(t, 10)
	sub := d.Subset([]int{7, 2, 2})

	assert.Equal(t, []int{7, 2, 2}, sampleIDs(sub))
	assertLockstep(t, sub)

	sub.Images[0] = 200
	assert.Equal(t, uint8(7), d.Image(7).Data()[0])
	assert.Nil(t, sub.Draws)
}

func TestShuffleIsLockstepPermutation(t *testing.T) {
	d := indexedDataset(t, 50)
	orig := append([]uint8(nil), d.Images...)

	s, err := Shuffle(d, seeded(4))
	require.NoError(t, err)
	assert.Equal(t, 50, s.N)
	assert.ElementsMatch(t, sampleIDs(d), sampleIDs(s))
	assert.NotEqual(t, sampleIDs(d), sampleIDs(s))
	assertLockstep(t, s)
	assert.Equal(t, orig, d.Images, "source must not change")

	again, err := Shuffle(d, seeded(4))
	require.NoError(t, err)
	assert.Equal(t, sampleIDs(s), sampleIDs(again))

	_, err = Shuffle(d, nil)
	assert.ErrorIs(t, err, ErrNilRand)
}

func TestShuffleKeepsDraws(t *testing.T) {
	corpus := testCorpus(t, 20, 28)
	ds, err := Generate(context.Background(), corpus, GenerateOptions{
		Canvas: DefaultCanvasOptions(), TargetSize: 20, Rand: seeded(2),
	})
	require.NoError(t, err)

	s, err := Shuffle(ds, seeded(3))
	require.NoError(t, err)
	for i := range s.N {
		assert.Equal(t, len(s.Draws[i]), s.SequenceLength(i))
	}
}

func TestSplitSizes(t *testing.T) {
	tests := []struct {
		n                       int
		opts                    SplitOptions
		train, test, validCount int
	}{
		{50000, DefaultSplitOptions(), 37500, 10000, 2500},
		{10, DefaultSplitOptions(), 7, 3, 0},
		{20, DefaultSplitOptions(), 15, 4, 1},
		{7, SplitOptions{}, 7, 0, 0},
		{9, SplitOptions{TestFraction: 0.5, ValidFraction: 0.5}, 4, 3, 2},
	}
	for _, tt := range tests {
		d := &Dataset{N: tt.n, Height: 1, Width: 1, MaxDigits: 1,
			Images: make([]uint8, tt.n), Labels: make([]int32, tt.n)}
		s, err := Split(d, seeded(1), tt.opts)
		require.NoError(t, err)
		assert.Equal(t, tt.train, s.Train.N, "n=%d train", tt.n)
		assert.Equal(t, tt.test, s.Test.N, "n=%d test", tt.n)
		assert.Equal(t, tt.validCount, s.Valid.N, "n=%d valid", tt.n)
	}
}

func TestSplitIsDisjointPartition(t *testing.T) {
	d := indexedDataset(t, 200)
	s, err := Split(d, seeded(8), DefaultSplitOptions())
	require.NoError(t, err)

	seen := map[int]string{}
	for name, part := range map[string]*Dataset{"train": s.Train, "test": s.Test, "valid": s.Valid} {
		assertLockstep(t, part)
		for _, id := range sampleIDs(part) {
			prev, dup := seen[id]
			require.False(t, dup, "sample %d in %s and %s", id, prev, name)
			seen[id] = name
		}
	}
	assert.Len(t, seen, 200)
}

func TestSplitErrors(t *testing.T) {
	d := indexedDataset(t, 10)
	_, err := Split(d, nil, DefaultSplitOptions())
	assert.ErrorIs(t, err, ErrNilRand)

	for _, o := range []SplitOptions{{TestFraction: 1}, {TestFraction: -0.1}, {ValidFraction: 1.2}} {
		_, err := Split(d, seeded(1), o)
		assert.ErrorIs(t, err, ErrInvalidSplit)
	}
}

func TestComputeStats(t *testing.T) {
	labels := []int32{
		1, 10, 10,
		2, 3, 10,
		4, 4, 4,
		0, 10, 10,
	}
	d, err := DatasetFromArrays(make([]uint8, 4), labels, 4, 1, 1, 3)
	require.NoError(t, err)

	s := ComputeStats(d)
	assert.Equal(t, []int{0, 2, 1, 1}, s.Lengths)
	assert.Equal(t, 1, s.Classes[0])
	assert.Equal(t, 3, s.Classes[4])
	assert.Equal(t, 5, s.Classes[Sentinel])
	assert.False(t, s.Balanced())

	assert.True(t, Stats{Lengths: []int{0, 3, 3}}.Balanced())
	assert.False(t, Stats{Lengths: []int{1, 3, 3}}.Balanced())
	assert.False(t, Stats{Lengths: []int{0}}.Balanced())
}

func TestContactSheet(t *testing.T) {
	d := indexedDataset(t, 5)
	sheet, err := ContactSheet(d, ContactSheetOptions{Rows: 2, Cols: 3, Gap: 1, Background: 255})
	require.NoError(t, err)
	assert.Equal(t, 3*3+1, sheet.Width())
	assert.Equal(t, 2*3+1, sheet.Height())

	assert.Equal(t, uint8(255), sheet.GrayAt(0, 0))
	assert.Equal(t, uint8(0), sheet.GrayAt(1, 1))
	assert.Equal(t, uint8(2), sheet.GrayAt(7, 2))
	assert.Equal(t, uint8(4), sheet.GrayAt(4, 5))
	// Sixth tile is empty.
	assert.Equal(t, uint8(255), sheet.GrayAt(7, 4))

	_, err = ContactSheet(d, ContactSheetOptions{Rows: 0, Cols: 1})
	assert.Error(t, err)
}

func TestSaveLoadSplits(t *testing.T) {
	ds, err := Generate(context.Background(), testCorpus(t, 30, 28), GenerateOptions{
		Canvas: DefaultCanvasOptions(), TargetSize: 40, Rand: seeded(5),
	})
	require.NoError(t, err)
	splits, err := Split(ds, seeded(6), DefaultSplitOptions())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "synthetic.npz")
	require.NoError(t, SaveSplits(path, splits))

	got, err := LoadSplits(path)
	require.NoError(t, err)
	for _, pair := range [][2]*Dataset{
		{splits.Train, got.Train}, {splits.Test, got.Test}, {splits.Valid, got.Valid},
	} {
		want, have := pair[0], pair[1]
		assert.Equal(t, want.N, have.N)
		assert.Equal(t, 64, have.Height)
		assert.Equal(t, 64, have.Width)
		assert.Equal(t, 5, have.MaxDigits)
		assert.Equal(t, want.Images, have.Images)
		assert.Equal(t, want.Labels, have.Labels)
	}
}

func TestSaveLoadSplitsEmptyPartition(t *testing.T) {
	d := indexedDataset(t, 10)
	splits, err := Split(d, seeded(1), DefaultSplitOptions())
	require.NoError(t, err)
	require.Equal(t, 0, splits.Valid.N)

	path := filepath.Join(t.TempDir(), "small.npz")
	require.NoError(t, SaveSplits(path, splits))

	got, err := LoadSplits(path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Valid.N)
	assert.Equal(t, 2, got.Valid.Height)
	assert.Equal(t, 3, got.Valid.MaxDigits)
	assert.Equal(t, sampleIDs(splits.Train), sampleIDs(got.Train))
	assertLockstep(t, got.Test)
}

func TestSaveSplitsRejectsNil(t *testing.T) {
	err := SaveSplits(filepath.Join(t.TempDir(), "x.npz"), Splits{Train: indexedDataset(t, 2)})
	assert.Error(t, err)
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	im := &idx.Images{Count: 3, Rows: 28, Cols: 28, Pix: make([]byte, 3*28*28)}
	for i := range im.Pix {
		im.Pix[i] = uint8(i)
	}
	var buf bytes.Buffer
	require.NoError(t, idx.WriteImages(&buf, im))
	imgPath := filepath.Join(dir, "img")
	require.NoError(t, os.WriteFile(imgPath, buf.Bytes(), 0o600))

	buf.Reset()
	require.NoError(t, idx.WriteLabels(&buf, []uint8{3, 1, 4}))
	lblPath := filepath.Join(dir, "lbl")
	require.NoError(t, os.WriteFile(lblPath, buf.Bytes(), 0o600))

	c, err := LoadCorpus(imgPath, lblPath)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []uint8{3, 1, 4}, c.Labels)
	assert.Equal(t, im.At(2), c.Images[2].Data())

	buf.Reset()
	require.NoError(t, idx.WriteLabels(&buf, []uint8{3, 1, 11}))
	require.NoError(t, os.WriteFile(lblPath, buf.Bytes(), 0o600))
	_, err = LoadCorpus(imgPath, lblPath)
	assert.ErrorIs(t, err, ErrInvalidLabel)
}
