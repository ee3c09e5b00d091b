// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel fans kernel invocations out over a fixed set of
// goroutines for the host device.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// chunk is a half-open range of invocation indices.
type chunk struct {
	first, last uint64
	fn          func(first, last uint64)
	wg          *sync.WaitGroup
	fault       *fault
}

// fault keeps the first panic raised by any chunk of one Range call.
type fault struct {
	once  sync.Once
	value any
}

// Pool is a pool of worker goroutines that execute index ranges.
//
// Each worker owns a queue. Range dispatches are split into chunks that
// are dealt round-robin across the queues; an idle worker steals from the
// others before blocking on its own queue.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan chunk
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// mu keeps Close from shutting workers down while Range is queueing.
	mu sync.RWMutex

	// minChunk is the smallest range handed to a single worker.
	minChunk uint64
}

// DefaultMinChunk is the smallest number of invocations per chunk.
const DefaultMinChunk = 1024

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers:  workers,
		queues:   make([]chan chunk, workers),
		done:     make(chan struct{}),
		minChunk: DefaultMinChunk,
	}
	for i := range workers {
		p.queues[i] = make(chan chunk, 4)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case c := <-own:
			run(c)
		default:
			if c, ok := p.steal(id); ok {
				run(c)
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case c := <-own:
				run(c)
			}
		}
	}
}

func run(c chunk) {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			c.fault.once.Do(func() { c.fault.value = r })
		}
	}()
	c.fn(c.first, c.last)
}

func (p *Pool) drain(queue chan chunk) {
	for {
		select {
		case c := <-queue:
			run(c)
		default:
			return
		}
	}
}

func (p *Pool) steal(self int) (chunk, bool) {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case c := <-p.queues[i]:
			return c, true
		default:
		}
	}
	return chunk{}, false
}

// Range calls fn over [0, n) split into contiguous chunks and waits for
// every chunk to finish. fn receives a half-open range [first, last).
// On a closed pool the whole range runs on the caller's goroutine.
// A panic inside fn is re-raised on the caller's goroutine.
func (p *Pool) Range(n uint64, fn func(first, last uint64)) {
	if n == 0 {
		return
	}

	p.mu.RLock()
	if !p.running.Load() || p.workers == 1 || n <= p.minChunk {
		p.mu.RUnlock()
		fn(0, n)
		return
	}

	size := n / uint64(p.workers)
	if n%uint64(p.workers) != 0 {
		size++
	}
	size = max(size, p.minChunk)

	var (
		wg sync.WaitGroup
		f  fault
	)
	i := 0
	for first := uint64(0); first < n; first += size {
		wg.Add(1)
		p.queues[i%p.workers] <- chunk{first: first, last: min(first+size, n), fn: fn, wg: &wg, fault: &f}
		i++
	}
	p.mu.RUnlock()
	wg.Wait()

	if f.value != nil {
		panic(f.value)
	}
}

// Close stops the workers after they finish queued chunks.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int { return p.workers }

// IsRunning reports whether the pool accepts work.
func (p *Pool) IsRunning() bool { return p.running.Load() }
