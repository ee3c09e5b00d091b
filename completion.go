// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// result is the single value carried by a completion handle.
type result[T Element] struct {
	values []T
	err    error
}

// Future is the producer's side of a completion handle. It yields the
// output of exactly one submitted Work item.
//
// A Future is single-use: the first Wait that observes the value consumes
// it, later calls return ErrHandleClosed. Only the producer that submitted
// the work should wait on it.
type Future[T Element] struct {
	id        uuid.UUID
	ch        chan result[T]
	abandoned atomic.Bool
}

// ID returns the job id shared by the Future, its envelope and log lines.
func (f *Future[T]) ID() uuid.UUID { return f.id }

// Wait blocks until the loop delivers the result, the handle is closed
// without a value, or ctx ends.
//
// On ctx expiry Wait returns ctx.Err() and the result may still arrive
// later; call Abandon to have it discarded.
func (f *Future[T]) Wait(ctx context.Context) ([]T, error) {
	select {
	case r, ok := <-f.ch:
		if !ok {
			return nil, ErrHandleClosed
		}
		return r.values, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Abandon tells the loop that nobody will read this Future. A result
// delivered afterwards is dropped and counted as abandoned.
func (f *Future[T]) Abandon() {
	f.abandoned.Store(true)
}

// completion is the loop's side of a completion handle.
type completion[T Element] struct {
	future  *Future[T]
	written atomic.Bool
}

// newCompletion creates a paired writer and Future for one job.
func newCompletion[T Element](id uuid.UUID) (*completion[T], *Future[T]) {
	f := &Future[T]{
		id: id,
		ch: make(chan result[T], 1),
	}
	return &completion[T]{future: f}, f
}

// fulfill writes the job outcome. It never blocks and never panics.
// It reports false when the value was discarded, either because the
// receiver was abandoned or because the handle was already written.
func (c *completion[T]) fulfill(values []T, err error) bool {
	if !c.written.CompareAndSwap(false, true) {
		return false
	}
	defer close(c.future.ch)
	if c.future.abandoned.Load() {
		return false
	}
	c.future.ch <- result[T]{values: values, err: err}
	return true
}

// discard closes the handle without a value so that Wait returns
// ErrHandleClosed. It is a no-op after fulfill.
func (c *completion[T]) discard() {
	if c.written.CompareAndSwap(false, true) {
		close(c.future.ch)
	}
}
