// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is a type-tagged wrapper that carries one Work item and its
// completion handle through the Queue.
//
// The set of implementations is closed: Envelope can only be satisfied by
// *Task[T] for the ten Element types. Loop unwraps it with a single type
// switch over those ten arms.
type Envelope interface {
	// ID returns the job id.
	ID() uuid.UUID

	// Kind returns the element type of the wrapped Work item.
	Kind() ElementKind

	// Program returns the wrapped Work item's program reference.
	Program() string

	// SubmittedAt returns when the envelope was created.
	SubmittedAt() time.Time

	sealed()
}

// Task is the envelope arm for element type T. Producers never build a
// Task directly; Submit and TrySubmit create one per call.
type Task[T Element] struct {
	id        uuid.UUID
	work      Work[T]
	done      *completion[T]
	submitted time.Time
}

func (t *Task[T]) ID() uuid.UUID          { return t.id }
func (t *Task[T]) Kind() ElementKind      { return KindOf[T]() }
func (t *Task[T]) Program() string        { return t.work.Program }
func (t *Task[T]) SubmittedAt() time.Time { return t.submitted }
func (t *Task[T]) sealed()                {}

// newTask wraps w in its envelope arm and returns the paired Future.
// Ownership of w moves into the Task.
func newTask[T Element](w Work[T]) (*Task[T], *Future[T]) {
	id := uuid.New()
	c, f := newCompletion[T](id)
	return &Task[T]{
		id:        id,
		work:      w,
		done:      c,
		submitted: time.Now(),
	}, f
}

// One arm per Element type.
var (
	_ Envelope = (*Task[int8])(nil)
	_ Envelope = (*Task[int16])(nil)
	_ Envelope = (*Task[int32])(nil)
	_ Envelope = (*Task[int64])(nil)
	_ Envelope = (*Task[uint8])(nil)
	_ Envelope = (*Task[uint16])(nil)
	_ Envelope = (*Task[uint32])(nil)
	_ Envelope = (*Task[uint64])(nil)
	_ Envelope = (*Task[float32])(nil)
	_ Envelope = (*Task[float64])(nil)
)
