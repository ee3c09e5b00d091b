// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the execution state of a Loop.
type State int32

const (
	// StateIdle means the loop is waiting for the next envelope.
	StateIdle State = iota

	// StateExecuting means the device is in use by a job.
	StateExecuting

	// StateStopped means Run has returned and the device is closed.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateExecuting:
		return "Executing"
	case StateStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// JobInfo describes a job as it starts executing.
type JobInfo struct {
	ID      uuid.UUID
	Kind    ElementKind
	Program string

	// Seq is the 1-based execution order within the Loop.
	Seq uint64

	// Waited is the time between submission and the start of execution.
	Waited time.Duration
}

// Stats counts job outcomes since the Loop started.
type Stats struct {
	Executed  uint64 // result delivered or discarded, no error
	Failed    uint64 // program load or execution error
	Abandoned uint64 // result dropped because the receiver was abandoned
	Panicked  uint64 // device panicked; handle closed without a value
}

// LoopOption configures a Loop.
type LoopOption func(*loopOptions)

type loopOptions struct {
	observer func(JobInfo)
}

// WithObserver registers fn to be called on the loop goroutine each time
// a job starts executing. fn must not block.
func WithObserver(fn func(JobInfo)) LoopOption {
	return func(o *loopOptions) {
		o.observer = fn
	}
}

// Loop is the execution loop: the only consumer of a Queue and the sole
// owner of a Device.
//
// Jobs run one at a time in dequeue order and are not preemptible: a slow
// kernel delays everything queued behind it. A failing job only affects
// its own Future.
type Loop struct {
	queue  *Queue
	device Device
	opts   loopOptions
	ins    *instruments

	started atomic.Bool
	state   atomic.Int32
	seq     uint64 // owned by the loop goroutine

	executed  atomic.Uint64
	failed    atomic.Uint64
	abandoned atomic.Uint64
	panicked  atomic.Uint64

	done chan struct{}
	err  error // device close error, readable after done
}

// NewLoop creates a Loop consuming q and owning dev. Nothing runs until
// Run is called. dev must not be used by anything else afterwards.
func NewLoop(q *Queue, dev Device, opts ...LoopOption) *Loop {
	var o loopOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Loop{
		queue:  q,
		device: dev,
		opts:   o,
		ins:    newInstruments(),
		done:   make(chan struct{}),
	}
}

// Serve creates a Loop and runs it on a new goroutine.
// Use Done and Err to observe its termination.
func Serve(q *Queue, dev Device, opts ...LoopOption) *Loop {
	l := NewLoop(q, dev, opts...)
	go func() {
		_ = l.Run()
	}()
	return l
}

// Run executes envelopes until the queue is closed and drained, then
// closes the device and returns its Close error.
// Run may be called only once.
func (l *Loop) Run() (err error) {
	if !l.started.CompareAndSwap(false, true) {
		return ErrLoopStarted
	}
	trackDevice(l.device)
	log := Logger()
	log.Info("gpgpu: loop started", "device", l.device.Name(), "capacity", l.queue.Cap())

	defer func() {
		untrackDevice(l.device)
		l.err = l.device.Close()
		l.state.Store(int32(StateStopped))
		s := l.Stats()
		Logger().Info("gpgpu: loop stopped",
			"device", l.device.Name(),
			"executed", s.Executed,
			"failed", s.Failed,
			"abandoned", s.Abandoned,
			"panicked", s.Panicked,
			"close_err", l.err)
		err = l.err
		close(l.done)
	}()

	for env := range l.queue.envelopes {
		l.handle(env)
	}
	return nil
}

// Done is closed after Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Err returns the device Close error once Done is closed.
func (l *Loop) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// State returns the current execution state.
func (l *Loop) State() State { return State(l.state.Load()) }

// Stats returns a snapshot of the job counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Executed:  l.executed.Load(),
		Failed:    l.failed.Load(),
		Abandoned: l.abandoned.Load(),
		Panicked:  l.panicked.Load(),
	}
}

func (l *Loop) handle(env Envelope) {
	l.state.Store(int32(StateExecuting))
	defer l.state.Store(int32(StateIdle))

	l.seq++
	if l.opts.observer != nil {
		l.opts.observer(JobInfo{
			ID:      env.ID(),
			Kind:    env.Kind(),
			Program: env.Program(),
			Seq:     l.seq,
			Waited:  time.Since(env.SubmittedAt()),
		})
	}
	l.dispatch(env)
}

// dispatch unwraps env into its concrete arm. Every Element type has a
// case; the default is unreachable for envelopes built by this package.
func (l *Loop) dispatch(env Envelope) {
	switch t := env.(type) {
	case *Task[int8]:
		execute(l, t)
	case *Task[int16]:
		execute(l, t)
	case *Task[int32]:
		execute(l, t)
	case *Task[int64]:
		execute(l, t)
	case *Task[uint8]:
		execute(l, t)
	case *Task[uint16]:
		execute(l, t)
	case *Task[uint32]:
		execute(l, t)
	case *Task[uint64]:
		execute(l, t)
	case *Task[float32]:
		execute(l, t)
	case *Task[float64]:
		execute(l, t)
	default:
		Logger().Error("gpgpu: dropping envelope of unknown type", "type", fmt.Sprintf("%T", env))
	}
}

// execute runs one job and fulfills its completion handle. A device panic
// is recovered and closes the handle without a value.
func execute[T Element](l *Loop, t *Task[T]) {
	log := Logger().With("job", t.id, "kind", t.Kind(), "program", t.work.Program, "seq", l.seq)
	ctx, span := l.ins.startJob(t, l.seq, l.device.Name())

	defer func() {
		if r := recover(); r != nil {
			l.panicked.Add(1)
			t.done.discard()
			err := fmt.Errorf("%w: panic: %v", ErrExecution, r)
			l.ins.panicJob(ctx, span, t, err)
			log.Error("gpgpu: device panicked", "panic", r)
		}
	}()

	start := time.Now()
	values, err := runWork(l.device, &t.work)
	delivered := t.done.fulfill(values, err)

	if err != nil {
		l.failed.Add(1)
		log.Warn("gpgpu: job failed", "err", err, "elapsed", time.Since(start))
	} else {
		l.executed.Add(1)
		log.Debug("gpgpu: job done", "elements", len(values), "elapsed", time.Since(start))
	}
	if !delivered {
		l.abandoned.Add(1)
		log.Debug("gpgpu: receiver abandoned, result discarded")
	}
	l.ins.endJob(ctx, span, t, err, delivered)
}
