// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
)

var errNoProgram = errors.New("fake: no such program")

// fakeRun is the body of a fake program.
type fakeRun func(k *Kernel) ([]byte, error)

// fakeDevice is a Device whose programs are Go closures.
type fakeDevice struct {
	mu       sync.Mutex
	programs map[string]fakeRun
	logger   *slog.Logger

	loads    atomic.Int32
	released atomic.Int32
	closed   atomic.Bool
	closeErr error
}

func newFakeDevice(programs map[string]fakeRun) *fakeDevice {
	return &fakeDevice{programs: programs}
}

func (d *fakeDevice) Name() string { return "fake" }

func (d *fakeDevice) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l
}

func (d *fakeDevice) currentLogger() *slog.Logger {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logger
}

type fakeProgram struct {
	ref string
	run fakeRun
	dev *fakeDevice
}

func (p *fakeProgram) Ref() string { return p.ref }
func (p *fakeProgram) Release()    { p.dev.released.Add(1) }

func (d *fakeDevice) LoadProgram(ref string) (Program, error) {
	d.loads.Add(1)
	run, ok := d.programs[ref]
	if !ok {
		return nil, errNoProgram
	}
	return &fakeProgram{ref: ref, run: run, dev: d}, nil
}

func (d *fakeDevice) Run(p Program, k *Kernel) ([]byte, error) {
	return p.(*fakeProgram).run(k)
}

func (d *fakeDevice) Close() error {
	d.closed.Store(true)
	return d.closeErr
}

// copyInput returns the first input resized to the output binding.
func copyInput(k *Kernel) ([]byte, error) {
	out := make([]byte, k.Output().Size)
	if in := k.Inputs(); len(in) > 0 {
		copy(out, in[0].Data)
	}
	return out, nil
}

// serveFake starts a loop on a fresh queue and stops it at test end.
func serveFake(t *testing.T, dev Device, capacity int, opts ...LoopOption) (*Queue, *Loop) {
	t.Helper()
	q := NewQueue(capacity)
	l := Serve(q, dev, opts...)
	t.Cleanup(func() {
		q.Close()
		<-l.Done()
	})
	return q, l
}
