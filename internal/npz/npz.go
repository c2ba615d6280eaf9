// Package npz stores shaped uint8 and int32 arrays in NumPy .npz archives,
// on top of github.com/sbinet/npyio.
//
// npyio derives an array's shape from its Go type, so a flat C-order buffer
// of shape (d0, d1, ..., dn) is handed to it as a slice of d0 nested
// fixed-size arrays [d1]...[dn]T built with reflect. Entries are named
// "<name>.npy" so that numpy.load exposes them under <name>.
package npz

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"unsafe"

	"github.com/sbinet/npyio/npz"
)

// Errors for missing or unexpected arrays.
var (
	// ErrMissing is returned when a named array is not in the archive.
	ErrMissing = errors.New("npz: array not found")

	// ErrShape is returned when data does not fill the declared shape.
	ErrShape = errors.New("npz: shape does not match data")
)

const entrySuffix = ".npy"

// Writer adds arrays to an .npz archive. Entries are deflated.
type Writer struct {
	zw *npz.Writer
}

// Create creates the archive at path. Close closes the file.
func Create(path string) (*Writer, error) {
	zw, err := npz.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{zw: zw}, nil
}

// NewWriter returns a Writer on w. Close does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: npz.NewWriter(w)}
}

// WriteUint8 adds name.npy holding data with the given C-order shape.
func (w *Writer) WriteUint8(name string, shape []int, data []uint8) error {
	if err := checkShape(shape, len(data)); err != nil {
		return fmt.Errorf("npz: %s: %w", name, err)
	}
	if len(data) == 0 {
		return w.zw.Write(name+entrySuffix, []uint8{})
	}
	return w.zw.Write(name+entrySuffix, shaped(unsafe.Pointer(unsafe.SliceData(data)), reflect.TypeFor[uint8](), shape))
}

// WriteInt32 adds name.npy holding data with the given C-order shape.
func (w *Writer) WriteInt32(name string, shape []int, data []int32) error {
	if err := checkShape(shape, len(data)); err != nil {
		return fmt.Errorf("npz: %s: %w", name, err)
	}
	if len(data) == 0 {
		return w.zw.Write(name+entrySuffix, []int32{})
	}
	return w.zw.Write(name+entrySuffix, shaped(unsafe.Pointer(unsafe.SliceData(data)), reflect.TypeFor[int32](), shape))
}

// Close finishes the archive.
func (w *Writer) Close() error {
	return w.zw.Close()
}

func checkShape(shape []int, n int) error {
	if len(shape) == 0 {
		return fmt.Errorf("%w: empty shape", ErrShape)
	}
	total := 1
	for _, d := range shape {
		if d < 0 {
			return fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		total *= d
	}
	if total != n {
		return fmt.Errorf("%w: %v needs %d elements, have %d", ErrShape, shape, total, n)
	}
	return nil
}

// shaped views the non-empty buffer at p as a []([shape[1]]...[shape[n]]elem)
// of length shape[0], without copying.
func shaped(p unsafe.Pointer, elem reflect.Type, shape []int) any {
	row := elem
	for _, d := range slices.Backward(shape[1:]) {
		row = reflect.ArrayOf(d, row)
	}
	all := reflect.NewAt(reflect.ArrayOf(shape[0], row), p).Elem()
	return all.Slice(0, shape[0]).Interface()
}

// Reader reads arrays from an .npz archive.
type Reader struct {
	zr *npz.Reader
}

// Open opens the archive at path.
func Open(path string) (*Reader, error) {
	zr, err := npz.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{zr: zr}, nil
}

// NewReader reads an archive of the given size from r.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := npz.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return &Reader{zr: zr}, nil
}

// Close releases the file opened by Open.
func (r *Reader) Close() error {
	return r.zr.Close()
}

// Shape returns the shape of the named array.
func (r *Reader) Shape(name string) ([]int, error) {
	if !slices.Contains(r.zr.Keys(), name+entrySuffix) {
		return nil, fmt.Errorf("%w: %s", ErrMissing, name)
	}
	hdr := r.zr.Header(name + entrySuffix)
	if hdr == nil {
		return nil, fmt.Errorf("npz: %s: unreadable header", name)
	}
	if hdr.Descr.Fortran {
		return nil, fmt.Errorf("npz: %s: Fortran-ordered arrays are not supported", name)
	}
	return slices.Clone(hdr.Descr.Shape), nil
}

// ReadUint8 returns the named uint8 array and its shape.
func (r *Reader) ReadUint8(name string) ([]uint8, []int, error) {
	var data []uint8
	shape, err := r.read(name, &data)
	return data, shape, err
}

// ReadInt32 returns the named int32 array and its shape.
func (r *Reader) ReadInt32(name string) ([]int32, []int, error) {
	var data []int32
	shape, err := r.read(name, &data)
	return data, shape, err
}

func (r *Reader) read(name string, ptr any) ([]int, error) {
	shape, err := r.Shape(name)
	if err != nil {
		return nil, err
	}
	if err := r.zr.Read(name+entrySuffix, ptr); err != nil {
		return nil, err
	}
	return shape, nil
}
