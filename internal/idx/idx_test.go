package idx

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleImages() *Images {
	im := &Images{Count: 3, Rows: 2, Cols: 4, Pix: make([]byte, 24)}
	for i := range im.Pix {
		im.Pix[i] = byte(i * 7)
	}
	return im
}

func TestImagesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteImages(&buf, sampleImages()))

	// magic 0x00000803 followed by big-endian dims
	assert.Equal(t, []byte{0, 0, 8, 3, 0, 0, 0, 3, 0, 0, 0, 2, 0, 0, 0, 4}, buf.Bytes()[:16])

	got, err := ReadImages(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleImages(), got)
	assert.Equal(t, []byte{56, 63, 70, 77, 84, 91, 98, 105}, got.At(1))
}

func TestLabelsRoundTrip(t *testing.T) {
	labels := []uint8{5, 0, 4, 1, 9}
	var buf bytes.Buffer
	require.NoError(t, WriteLabels(&buf, labels))
	assert.Equal(t, []byte{0, 0, 8, 1, 0, 0, 0, 5}, buf.Bytes()[:8])

	got, err := ReadLabels(&buf)
	require.NoError(t, err)
	assert.Equal(t, labels, got)
}

func TestReadErrors(t *testing.T) {
	var labels bytes.Buffer
	require.NoError(t, WriteLabels(&labels, []uint8{1, 2, 3}))
	raw := labels.Bytes()

	tests := []struct {
		name    string
		data    []byte
		read    func([]byte) error
		wantErr error
	}{
		{"empty", nil, readLabels, ErrTruncated},
		{"labels as images", raw, readImages, ErrBadMagic},
		{"wrong type code", []byte{0, 0, 0x0d, 1, 0, 0, 0, 0}, readLabels, ErrBadMagic},
		{"nonzero prefix", []byte{1, 0, 8, 1, 0, 0, 0, 0}, readLabels, ErrBadMagic},
		{"short dims", []byte{0, 0, 8, 1, 0, 0}, readLabels, ErrTruncated},
		{"short data", raw[:len(raw)-1], readLabels, ErrTruncated},
		{"huge declared size", []byte{0, 0, 8, 3, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 1}, readImages, ErrBadMagic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.read(tt.data), tt.wantErr)
		})
	}
}

func readLabels(b []byte) error {
	_, err := ReadLabels(bytes.NewReader(b))
	return err
}

func readImages(b []byte) error {
	_, err := ReadImages(bytes.NewReader(b))
	return err
}

func TestWriteRejectsSizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, []int{2, 2}, []byte{1, 2, 3}))
	assert.Error(t, Write(&buf, nil, nil))
}

func writeFile(t *testing.T, path string, gz bool, write func(*bytes.Buffer) error) {
	t.Helper()
	var raw bytes.Buffer
	require.NoError(t, write(&raw))
	data := raw.Bytes()
	if gz {
		var z bytes.Buffer
		zw := gzip.NewWriter(&z)
		_, err := zw.Write(data)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		data = z.Bytes()
	}
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestLoadPlainAndGzip(t *testing.T) {
	for _, gz := range []bool{false, true} {
		dir := t.TempDir()
		imgPath := filepath.Join(dir, "images")
		lblPath := filepath.Join(dir, "labels")
		writeFile(t, imgPath, gz, func(b *bytes.Buffer) error { return WriteImages(b, sampleImages()) })
		writeFile(t, lblPath, gz, func(b *bytes.Buffer) error { return WriteLabels(b, []uint8{7, 8, 9}) })

		images, labels, err := Load(imgPath, lblPath)
		require.NoError(t, err, "gzip=%v", gz)
		assert.Equal(t, sampleImages(), images)
		assert.Equal(t, []uint8{7, 8, 9}, labels)
	}
}

func TestLoadCountMismatch(t *testing.T) {
	dir := t.TempDir()
	imgPath := filepath.Join(dir, "images")
	lblPath := filepath.Join(dir, "labels")
	writeFile(t, imgPath, false, func(b *bytes.Buffer) error { return WriteImages(b, sampleImages()) })
	writeFile(t, lblPath, false, func(b *bytes.Buffer) error { return WriteLabels(b, []uint8{1}) })

	_, _, err := Load(imgPath, lblPath)
	assert.ErrorIs(t, err, ErrCountMismatch)

	_, _, err = Load(filepath.Join(dir, "nope"), lblPath)
	assert.Error(t, err)
}
