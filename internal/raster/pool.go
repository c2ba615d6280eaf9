package raster

import "sync"

// Pool is a thread-safe pool for reusing Raster instances.
//
// Pool groups rasters by their dimensions so that the per-sample canvases
// of a generation run are recycled instead of reallocated.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Raster
	maxSize int // max rasters per bucket
}

// poolKey identifies a bucket of identically sized rasters.
type poolKey struct {
	width  int
	height int
}

// NewPool creates a new raster pool with the given maximum rasters per bucket.
// A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Raster),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a zeroed raster from the pool or creates a new one.
// Returns nil if the dimensions are invalid.
func (p *Pool) Get(width, height int) *Raster {
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if len(bucket) > 0 {
		r := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		return r
	}
	p.mu.Unlock()

	r, err := New(width, height)
	if err != nil {
		return nil
	}
	return r
}

// Put clears r and returns it to the pool for reuse.
// If r is nil, is a sub-raster view, or the bucket is full, it is discarded.
func (p *Pool) Put(r *Raster) {
	if r == nil || r.stride != r.width {
		return
	}

	r.Clear()
	key := poolKey{width: r.width, height: r.height}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, r)
}

// pooled returns the number of pooled rasters of the given size.
func (p *Pool) pooled(width, height int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[poolKey{width: width, height: height}])
}
