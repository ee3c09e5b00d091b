// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewQueueCapacity(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultCapacity},
		{-5, DefaultCapacity},
		{1, 1},
		{250, 250},
	}
	for _, tt := range tests {
		if got := NewQueue(tt.in).Cap(); got != tt.want {
			t.Errorf("NewQueue(%d).Cap() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSubmitEnqueuesEnvelope(t *testing.T) {
	q := NewQueue(2)
	w := NewWork("double", 3, []uint32{1, 2, 3})

	f, err := Submit(context.Background(), q, w)
	if err != nil {
		t.Fatal(err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}

	env := <-q.envelopes
	task, ok := env.(*Task[uint32])
	if !ok {
		t.Fatalf("envelope is %T, want *Task[uint32]", env)
	}
	if task.ID() != f.ID() {
		t.Error("envelope and future ids differ")
	}
	if task.Kind() != KindUint32 || task.Program() != "double" {
		t.Errorf("envelope kind/program = %v/%q", task.Kind(), task.Program())
	}
	if task.SubmittedAt().IsZero() {
		t.Error("SubmittedAt not set")
	}
}

func TestTrySubmitFull(t *testing.T) {
	q := NewQueue(1)
	if _, err := TrySubmit(q, NewWork[int16]("p", 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := TrySubmit(q, NewWork[int16]("p", 1)); !errors.Is(err, ErrQueueFull) {
		t.Errorf("TrySubmit on full queue error = %v, want ErrQueueFull", err)
	}
}

func TestSubmitAfterClose(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	q.Close()

	if !q.Closed() {
		t.Error("Closed() = false after Close")
	}
	if _, err := Submit(context.Background(), q, NewWork[uint8]("p", 1)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Submit after Close error = %v, want ErrQueueClosed", err)
	}
	if _, err := TrySubmit(q, NewWork[uint8]("p", 1)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("TrySubmit after Close error = %v, want ErrQueueClosed", err)
	}
}

func TestCloseReleasesBlockedProducers(t *testing.T) {
	q := NewQueue(1)
	if _, err := Submit(context.Background(), q, NewWork[uint8]("p", 1)); err != nil {
		t.Fatal(err)
	}

	const producers = 4
	errs := make(chan error, producers)
	var started sync.WaitGroup
	for range producers {
		started.Add(1)
		go func() {
			started.Done()
			_, err := Submit(context.Background(), q, NewWork[uint8]("p", 1))
			errs <- err
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	q.Close()

	for range producers {
		select {
		case err := <-errs:
			if !errors.Is(err, ErrQueueClosed) {
				t.Errorf("blocked Submit error = %v, want ErrQueueClosed", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("blocked producer not released by Close")
		}
	}
}

func TestSubmitContextCancelWhileBlocked(t *testing.T) {
	q := NewQueue(1)
	if _, err := Submit(context.Background(), q, NewWork[float32]("p", 1)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := Submit(ctx, q, NewWork[float32]("p", 1)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Submit error = %v, want DeadlineExceeded", err)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (cancelled submit must not enqueue)", q.Len())
	}
}

func TestSubmitCancelledContextWithSpace(t *testing.T) {
	q := NewQueue(1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := range 200 {
		if _, err := Submit(ctx, q, NewWork[uint32]("p", 1)); !errors.Is(err, context.Canceled) {
			t.Fatalf("attempt %d: Submit() error = %v, want context.Canceled", i, err)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestBackpressureThenDrain(t *testing.T) {
	const capacity = 3
	q := NewQueue(capacity)
	for range capacity {
		if _, err := Submit(context.Background(), q, NewWork[int32]("p", 1)); err != nil {
			t.Fatal(err)
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := Submit(context.Background(), q, NewWork[int32]("p", 1))
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("Submit on full queue returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	<-q.envelopes // the consumer takes one

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Submit after drain error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Submit still blocked after the queue drained")
	}
	if q.Len() != capacity {
		t.Errorf("Len() = %d, want %d", q.Len(), capacity)
	}
}

func TestCloseKeepsQueuedEnvelopes(t *testing.T) {
	q := NewQueue(4)
	for range 3 {
		if _, err := Submit(context.Background(), q, NewWork[uint64]("p", 1)); err != nil {
			t.Fatal(err)
		}
	}
	q.Close()

	n := 0
	for range q.envelopes {
		n++
	}
	if n != 3 {
		t.Errorf("drained %d envelopes after Close, want 3", n)
	}
}
