package raster

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolGetPut(t *testing.T) {
	pool := NewPool(2)

	r := pool.Get(8, 8)
	require.NotNil(t, r)
	r.Fill(5)
	pool.Put(r)
	assert.Equal(t, 1, pool.pooled(8, 8))

	again := pool.Get(8, 8)
	assert.Same(t, r, again)
	for _, v := range again.Data() {
		require.Equal(t, byte(0), v, "pooled raster must be cleared")
	}
	assert.Equal(t, 0, pool.pooled(8, 8))
}

func TestPoolBucketLimit(t *testing.T) {
	pool := NewPool(1)
	pool.Put(pool.Get(4, 4))
	pool.Put(pool.Get(4, 4))
	r, _ := New(4, 4)
	pool.Put(r)
	assert.Equal(t, 1, pool.pooled(4, 4))
}

func TestPoolRejectsViewsAndNil(t *testing.T) {
	pool := NewPool(0)
	pool.Put(nil)

	parent, _ := New(8, 8)
	pool.Put(parent.SubRaster(0, 0, 4, 4))
	assert.Equal(t, 0, pool.pooled(4, 4))
	assert.Nil(t, pool.Get(0, 4))
}

func TestPoolConcurrent(t *testing.T) {
	pool := NewPool(16)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				r := pool.Get(16, 16)
				r.Fill(1)
				pool.Put(r)
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, pool.pooled(16, 16), 16)
}

func TestPNGRoundTrip(t *testing.T) {
	src := gradient(7, 5)

	var buf bytes.Buffer
	require.NoError(t, src.EncodePNG(&buf))
	got, err := DecodePNG(&buf)
	require.NoError(t, err)
	assert.True(t, got.Equal(src))

	path := filepath.Join(t.TempDir(), "sub.png")
	parent := gradient(10, 10)
	sub := parent.SubRaster(2, 2, 5, 4)
	require.NoError(t, sub.SavePNG(path))
	loaded, err := LoadPNG(path)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(sub))

	_, err = LoadPNG(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
