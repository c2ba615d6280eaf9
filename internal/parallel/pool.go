// Package parallel provides the worker pool that composites the samples of
// a generation group concurrently.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of goroutines that execute index-addressed work.
//
// Each worker owns a queue of index ranges. A worker that drains its own
// queue steals ranges from the others, which keeps workers busy when some
// samples take longer to composite than others.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int

	// queues holds per-worker queues of pending ranges.
	queues []chan task

	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// task is a half-open index range [lo, hi) bound to a body.
type task struct {
	lo, hi int
	body   func(i int)
	wg     *sync.WaitGroup
}

func (t task) run() {
	defer t.wg.Done()
	for i := t.lo; i < t.hi; i++ {
		t.body(i)
	}
}

// NewWorkerPool creates a pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan task, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan task, queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case t := <-own:
			t.run()
		default:
			if t, ok := p.steal(id); ok {
				t.run()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case t := <-own:
				t.run()
			}
		}
	}
}

func (p *WorkerPool) drain(q chan task) {
	for {
		select {
		case t := <-q:
			t.run()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) (task, bool) {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case t := <-p.queues[i]:
			return t, true
		default:
		}
	}
	return task{}, false
}

// For calls body(i) for every i in [0, n) and waits for all calls to return.
// Indices are split into contiguous chunks of grain elements (the last may
// be shorter) and distributed round-robin over the workers. Each index is visited exactly
// once; no ordering between indices is guaranteed.
//
// If ctx is canceled before all chunks are queued, For stops queueing,
// waits for the queued chunks, and returns ctx.Err(). If the pool is closed
// the remaining chunks run on the calling goroutine. Close must not be
// called while a For is in flight.
func (p *WorkerPool) For(ctx context.Context, n, grain int, body func(i int)) error {
	if n <= 0 {
		return nil
	}
	if grain <= 0 {
		grain = 1
	}
	chunks := (n + grain - 1) / grain

	var wg sync.WaitGroup
	var err error
	for c := range chunks {
		if err = ctx.Err(); err != nil {
			break
		}
		lo := c * grain
		t := task{lo: lo, hi: min(lo+grain, n), body: body, wg: &wg}
		wg.Add(1)

		if !p.running.Load() {
			t.run()
			continue
		}
		select {
		case p.queues[c%p.workers] <- t:
		case <-p.done:
			t.run()
		case <-ctx.Done():
			wg.Done()
			err = ctx.Err()
		}
		if err != nil {
			break
		}
	}

	wg.Wait()
	return err
}

// Close stops the workers after they finish any queued work.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}
