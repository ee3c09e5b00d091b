// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCompletionDeliversOnce(t *testing.T) {
	c, f := newCompletion[uint32](uuid.New())

	if !c.fulfill([]uint32{1, 2}, nil) {
		t.Fatal("first fulfill reported discarded")
	}
	if c.fulfill([]uint32{9}, nil) {
		t.Error("second fulfill reported delivered")
	}

	got, err := f.Wait(context.Background())
	if err != nil || !slices.Equal(got, []uint32{1, 2}) {
		t.Errorf("Wait() = %v, %v, want [1 2], nil", got, err)
	}
	if _, err := f.Wait(context.Background()); !errors.Is(err, ErrHandleClosed) {
		t.Errorf("second Wait() error = %v, want ErrHandleClosed", err)
	}
}

func TestCompletionDeliversError(t *testing.T) {
	c, f := newCompletion[int8](uuid.New())
	c.fulfill(nil, ErrExecution)

	if _, err := f.Wait(context.Background()); !errors.Is(err, ErrExecution) {
		t.Errorf("Wait() error = %v, want ErrExecution", err)
	}
}

func TestCompletionAbandoned(t *testing.T) {
	c, f := newCompletion[float64](uuid.New())
	f.Abandon()

	if c.fulfill([]float64{1}, nil) {
		t.Error("fulfill on abandoned handle reported delivered")
	}
	if _, err := f.Wait(context.Background()); !errors.Is(err, ErrHandleClosed) {
		t.Errorf("Wait() after abandon = %v, want ErrHandleClosed", err)
	}
}

func TestCompletionDiscard(t *testing.T) {
	c, f := newCompletion[int64](uuid.New())
	c.discard()
	c.discard()

	if c.fulfill([]int64{1}, nil) {
		t.Error("fulfill after discard reported delivered")
	}
	if _, err := f.Wait(context.Background()); !errors.Is(err, ErrHandleClosed) {
		t.Errorf("Wait() = %v, want ErrHandleClosed", err)
	}
}

func TestFutureWaitContext(t *testing.T) {
	c, f := newCompletion[uint16](uuid.New())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want DeadlineExceeded", err)
	}

	// The value still arrives after the caller timed out once.
	c.fulfill([]uint16{5}, nil)
	got, err := f.Wait(context.Background())
	if err != nil || !slices.Equal(got, []uint16{5}) {
		t.Errorf("Wait() = %v, %v, want [5]", got, err)
	}
}

func TestFutureID(t *testing.T) {
	id := uuid.New()
	_, f := newCompletion[uint8](id)
	if f.ID() != id {
		t.Errorf("ID() = %v, want %v", f.ID(), id)
	}
}
