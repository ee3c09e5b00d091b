// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"context"
	"fmt"
	"sync"
)

// DefaultCapacity is the queue bound used when NewQueue is given a
// non-positive capacity.
const DefaultCapacity = 100

// Queue is the bounded multi-producer, single-consumer submission channel.
//
// Any number of goroutines may call Submit concurrently. Exactly one Loop
// consumes the queue.
type Queue struct {
	envelopes chan Envelope

	// done is closed first on Close so producers blocked on a full
	// channel give up before envelopes is closed.
	done      chan struct{}
	closeOnce sync.Once

	// mu guards sends on envelopes against close(envelopes).
	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a queue holding at most capacity pending envelopes.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{
		envelopes: make(chan Envelope, capacity),
		done:      make(chan struct{}),
	}
}

// Submit wraps w in its envelope and enqueues it, returning the Future
// for its result.
//
// Submit blocks while the queue is full. It fails with ErrQueueClosed when
// the queue is closed, before or during the wait, and with ctx.Err() when
// ctx ends first. Work is never dropped once Submit returns nil.
func Submit[T Element](ctx context.Context, q *Queue, w Work[T]) (*Future[T], error) {
	t, f := newTask(w)
	if err := q.push(ctx, t); err != nil {
		return nil, err
	}
	return f, nil
}

// TrySubmit is Submit without blocking: it returns ErrQueueFull instead of
// waiting for space.
func TrySubmit[T Element](q *Queue, w Work[T]) (*Future[T], error) {
	t, f := newTask(w)
	if err := q.tryPush(t); err != nil {
		return nil, err
	}
	return f, nil
}

func (q *Queue) push(ctx context.Context, env Envelope) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.envelopes <- env:
		q.logEnqueued(env)
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) tryPush(env Envelope) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.envelopes <- env:
		q.logEnqueued(env)
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(q.envelopes))
	}
}

func (q *Queue) logEnqueued(env Envelope) {
	Logger().Debug("gpgpu: job enqueued",
		"job", env.ID(),
		"kind", env.Kind(),
		"program", env.Program(),
		"queue_len", len(q.envelopes),
		"queue_cap", cap(q.envelopes))
}

// Close stops accepting submissions. Envelopes already queued are still
// delivered to the Loop, which returns once they are drained.
// Close is safe to call multiple times and from any goroutine.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)

		q.mu.Lock()
		q.closed = true
		close(q.envelopes)
		q.mu.Unlock()

		Logger().Info("gpgpu: queue closed", "pending", len(q.envelopes))
	})
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Len returns the number of envelopes waiting for the Loop.
func (q *Queue) Len() int { return len(q.envelopes) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.envelopes) }
