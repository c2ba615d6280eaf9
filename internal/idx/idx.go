// Package idx reads and writes the IDX file format used to distribute the
// MNIST digit database.
//
// An IDX file starts with a four byte magic number: two zero bytes, a type
// code and the number of dimensions. The dimensions follow as big-endian
// uint32 values, then the data in row-major order. Only the unsigned byte
// type (0x08) is supported, which covers the MNIST image (3 dimensions) and
// label (1 dimension) files. Gzip-compressed files are detected by their
// magic bytes and decompressed transparently.
package idx

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TypeUnsignedByte is the IDX type code for uint8 data.
const TypeUnsignedByte = 0x08

// Errors for malformed input.
var (
	// ErrBadMagic is returned when the header is not an IDX uint8 header
	// with the expected number of dimensions.
	ErrBadMagic = errors.New("idx: bad magic number")

	// ErrTruncated is returned when the file ends before its declared size.
	ErrTruncated = errors.New("idx: truncated data")

	// ErrCountMismatch is returned when image and label files disagree.
	ErrCountMismatch = errors.New("idx: image and label counts differ")
)

// maxElements bounds the declared size of a file to reject corrupt headers
// before allocating.
const maxElements = 1 << 30

// Images is a stack of Count single-channel Rows×Cols images.
type Images struct {
	Count, Rows, Cols int

	// Pix holds Count*Rows*Cols bytes, image-major.
	Pix []byte
}

// At returns the pixels of image i.
func (im *Images) At(i int) []byte {
	sz := im.Rows * im.Cols
	return im.Pix[i*sz : (i+1)*sz]
}

// ReadImages decodes a three-dimensional uint8 IDX stream.
func ReadImages(r io.Reader) (*Images, error) {
	dims, data, err := read(r, 3)
	if err != nil {
		return nil, err
	}
	return &Images{Count: dims[0], Rows: dims[1], Cols: dims[2], Pix: data}, nil
}

// ReadLabels decodes a one-dimensional uint8 IDX stream.
func ReadLabels(r io.Reader) ([]uint8, error) {
	_, data, err := read(r, 1)
	return data, err
}

// LoadImages reads an images file, gzip-compressed or not.
func LoadImages(path string) (*Images, error) {
	var out *Images
	err := withFile(path, func(r io.Reader) error {
		var err error
		out, err = ReadImages(r)
		return err
	})
	return out, err
}

// LoadLabels reads a labels file, gzip-compressed or not.
func LoadLabels(path string) ([]uint8, error) {
	var out []uint8
	err := withFile(path, func(r io.Reader) error {
		var err error
		out, err = ReadLabels(r)
		return err
	})
	return out, err
}

// Load reads a matching pair of image and label files.
func Load(imagesPath, labelsPath string) (*Images, []uint8, error) {
	images, err := LoadImages(imagesPath)
	if err != nil {
		return nil, nil, err
	}
	labels, err := LoadLabels(labelsPath)
	if err != nil {
		return nil, nil, err
	}
	if images.Count != len(labels) {
		return nil, nil, fmt.Errorf("%w: %d images, %d labels", ErrCountMismatch, images.Count, len(labels))
	}
	return images, labels, nil
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("idx: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r, err := maybeGzip(bufio.NewReader(f))
	if err != nil {
		return fmt.Errorf("idx: %s: %w", path, err)
	}
	if err := fn(r); err != nil {
		return fmt.Errorf("idx: %s: %w", path, err)
	}
	return nil
}

// maybeGzip wraps br in a gzip reader when the stream starts with the gzip
// magic bytes.
func maybeGzip(br *bufio.Reader) (io.Reader, error) {
	head, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(head) == 2 && head[0] == 0x1f && head[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}

func read(r io.Reader, ndims int) ([]int, []byte, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if magic[0] != 0 || magic[1] != 0 || magic[2] != TypeUnsignedByte || int(magic[3]) != ndims {
		return nil, nil, fmt.Errorf("%w: % x (want %d dimensions of uint8)", ErrBadMagic, magic, ndims)
	}

	dims := make([]int, ndims)
	total := 1
	for i := range dims {
		var d uint32
		if err := binary.Read(r, binary.BigEndian, &d); err != nil {
			return nil, nil, fmt.Errorf("%w: dimension %d: %v", ErrTruncated, i, err)
		}
		dims[i] = int(d)
		total *= dims[i]
		if total > maxElements {
			return nil, nil, fmt.Errorf("%w: declared size exceeds %d elements", ErrBadMagic, maxElements)
		}
	}

	data := make([]byte, total)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, nil, fmt.Errorf("%w: want %d bytes: %v", ErrTruncated, total, err)
	}
	return dims, data, nil
}

// Write encodes data as a uint8 IDX stream with the given dimensions.
func Write(w io.Writer, dims []int, data []byte) error {
	if len(dims) == 0 || len(dims) > 255 {
		return fmt.Errorf("idx: %d dimensions", len(dims))
	}
	total := 1
	for _, d := range dims {
		total *= d
	}
	if total != len(data) {
		return fmt.Errorf("idx: dimensions %v need %d bytes, have %d", dims, total, len(data))
	}

	hdr := make([]byte, 4+4*len(dims))
	hdr[2] = TypeUnsignedByte
	hdr[3] = byte(len(dims))
	for i, d := range dims {
		binary.BigEndian.PutUint32(hdr[4+4*i:], uint32(d))
	}
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("idx: write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("idx: write data: %w", err)
	}
	return nil
}

// WriteImages encodes im as a three-dimensional IDX stream.
func WriteImages(w io.Writer, im *Images) error {
	return Write(w, []int{im.Count, im.Rows, im.Cols}, im.Pix)
}

// WriteLabels encodes labels as a one-dimensional IDX stream.
func WriteLabels(w io.Writer, labels []uint8) error {
	return Write(w, []int{len(labels)}, labels)
}
