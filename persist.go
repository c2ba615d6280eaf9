package mnistseq

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/gogpu/mnistseq/internal/npz"
)

// Field names of the persisted splits.
const (
	FieldTrainDataset = "train_dataset"
	FieldTrainLabels  = "train_labels"
	FieldTestDataset  = "test_dataset"
	FieldTestLabels   = "test_labels"
	FieldValidDataset = "valid_dataset"
	FieldValidLabels  = "valid_labels"
)

type splitField struct {
	images, labels string
	ds             **Dataset
}

func (s *Splits) fields() []splitField {
	return []splitField{
		{FieldTrainDataset, FieldTrainLabels, &s.Train},
		{FieldTestDataset, FieldTestLabels, &s.Test},
		{FieldValidDataset, FieldValidLabels, &s.Valid},
	}
}

// SaveSplits writes the three partitions to a deflated .npz archive at
// path. Images are stored as uint8 arrays of shape (N, Height, Width, 1) and
// labels as int32 arrays of shape (N, MaxDigits). An empty partition is
// stored with shape (0,), which is how NumPy round-trips it through npyio.
func SaveSplits(path string, s Splits) (err error) {
	for _, fl := range s.fields() {
		if *fl.ds == nil {
			return fmt.Errorf("mnistseq: split %s is nil", fl.images)
		}
	}

	w, err := npz.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("mnistseq: create %s: %w", path, err)
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("mnistseq: finish %s: %w", path, cerr)
		}
	}()

	for _, fl := range s.fields() {
		d := *fl.ds
		if err := w.WriteUint8(fl.images, []int{d.N, d.Height, d.Width, 1}, d.Images); err != nil {
			return err
		}
		if err := w.WriteInt32(fl.labels, []int{d.N, d.MaxDigits}, d.Labels); err != nil {
			return err
		}
	}

	Logger().Info("splits saved", "path", path,
		"train", s.Train.N, "test", s.Test.N, "valid", s.Valid.N)
	return nil
}

// LoadSplits reads an archive written by SaveSplits. All partitions must
// share one canvas size and label length.
func LoadSplits(path string) (Splits, error) {
	r, err := npz.Open(path)
	if err != nil {
		return Splits{}, err
	}
	defer func() { _ = r.Close() }()

	var (
		s     Splits
		arrs  [3]splitArrays
		shape []int
	)
	for i, fl := range s.fields() {
		a, err := readSplitArrays(r, fl.images, fl.labels)
		if err != nil {
			return Splits{}, err
		}
		if a.dims != nil {
			if shape != nil && !slices.Equal(shape, a.dims) {
				return Splits{}, fmt.Errorf("%w: %s is %v, other splits are %v", ErrShapeMismatch, fl.images, a.dims, shape)
			}
			shape = a.dims
		}
		arrs[i] = a
	}
	if shape == nil {
		return Splits{}, fmt.Errorf("%w: every split in %s is empty", ErrShapeMismatch, path)
	}

	for i, fl := range s.fields() {
		a := arrs[i]
		d, err := DatasetFromArrays(a.pix, a.labels, a.n, shape[0], shape[1], shape[2])
		if err != nil {
			return Splits{}, fmt.Errorf("%s: %w", fl.images, err)
		}
		*fl.ds = d
	}
	return s, nil
}

type splitArrays struct {
	n      int
	dims   []int // height, width, max digits; nil for an empty split
	pix    []uint8
	labels []int32
}

func readSplitArrays(r *npz.Reader, imagesName, labelsName string) (splitArrays, error) {
	pix, imgShape, err := r.ReadUint8(imagesName)
	if err != nil {
		return splitArrays{}, err
	}
	labels, lblShape, err := r.ReadInt32(labelsName)
	if err != nil {
		return splitArrays{}, err
	}

	if len(pix) == 0 && len(labels) == 0 {
		return splitArrays{pix: pix, labels: labels}, nil
	}
	if len(imgShape) != 4 || imgShape[3] != 1 || len(lblShape) != 2 || imgShape[0] != lblShape[0] {
		return splitArrays{}, fmt.Errorf("%w: %s %v, %s %v", ErrShapeMismatch, imagesName, imgShape, labelsName, lblShape)
	}
	return splitArrays{
		n:      imgShape[0],
		dims:   []int{imgShape[1], imgShape[2], lblShape[1]},
		pix:    pix,
		labels: labels,
	}, nil
}
