// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import "errors"

var (
	// ErrProgramLoad is returned on a job's Future when the referenced
	// program cannot be found or fails to compile.
	ErrProgramLoad = errors.New("gpgpu: program load failed")

	// ErrExecution is returned on a job's Future when the device rejects
	// the bindings or the launch, or the read-back fails.
	ErrExecution = errors.New("gpgpu: execution failed")

	// ErrQueueClosed is returned by Submit after the queue has been closed.
	ErrQueueClosed = errors.New("gpgpu: queue is closed")

	// ErrQueueFull is returned by TrySubmit when the queue is at capacity.
	ErrQueueFull = errors.New("gpgpu: queue is full")

	// ErrHandleClosed is returned by Future.Wait when no value will ever
	// arrive: the writer terminated without writing, or the value was
	// already taken by an earlier Wait.
	ErrHandleClosed = errors.New("gpgpu: completion handle closed without result")

	// ErrLoopStarted is returned by Loop.Run when the loop is already running
	// or has already run.
	ErrLoopStarted = errors.New("gpgpu: loop already started")
)
