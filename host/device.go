// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package host

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/backend"
	"github.com/gogpu/gpgpu/internal/parallel"
)

var (
	// ErrUnknownProgram is returned by LoadProgram when no kernel is
	// registered under the reference.
	ErrUnknownProgram = errors.New("host: unknown program")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("host: device closed")

	// ErrEntryPoint is returned by Run for an entry point other than "main".
	ErrEntryPoint = errors.New("host: unsupported entry point")
)

func init() {
	backend.Register(backend.Host, func() (gpgpu.Device, error) {
		return New(WithKernels(Builtins())), nil
	})
}

// Option configures a Device.
type Option func(*options)

type options struct {
	workers int
	kernels map[string]Kernel
}

// WithWorkers sets the number of goroutines invocations are spread over.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithKernels registers every kernel in m under its key.
func WithKernels(m map[string]Kernel) Option {
	return func(o *options) {
		for ref, k := range m {
			o.kernels[ref] = k
		}
	}
}

// WithKernel registers one kernel.
func WithKernel(ref string, k Kernel) Option {
	return func(o *options) {
		o.kernels[ref] = k
	}
}

// Device is a gpgpu.Device that runs Go kernels on the CPU.
//
// A launch executes one kernel invocation per (x, y, z) in the launch
// shape, spread over a worker pool, and blocks until all have returned.
// Programs are resolved by exact reference first, then by base name
// without extension, so "shaders/double.wgsl" finds a kernel registered
// as "double".
type Device struct {
	mu      sync.RWMutex
	kernels map[string]Kernel

	pool   *parallel.Pool
	log    atomic.Pointer[slog.Logger]
	closed atomic.Bool
}

var _ gpgpu.Device = (*Device)(nil)

// New creates a host device.
func New(opts ...Option) *Device {
	o := options{kernels: make(map[string]Kernel)}
	for _, opt := range opts {
		opt(&o)
	}
	d := &Device{
		kernels: o.kernels,
		pool:    parallel.NewPool(o.workers),
	}
	d.log.Store(gpgpu.Logger())
	return d
}

// Register adds or replaces the kernel for ref. It is safe to call while
// the device is in use by a Loop.
func (d *Device) Register(ref string, k Kernel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kernels[ref] = k
}

// SetLogger sets the device logger. gpgpu.SetLogger propagates here.
func (d *Device) SetLogger(l *slog.Logger) {
	if l != nil {
		d.log.Store(l)
	}
}

// Name returns "host".
func (d *Device) Name() string { return backend.Host }

// program is a resolved kernel.
type program struct {
	ref    string
	kernel Kernel
}

func (p *program) Ref() string { return p.ref }
func (p *program) Release()    {}

// LoadProgram resolves ref to a registered kernel.
func (d *Device) LoadProgram(ref string) (gpgpu.Program, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	if k, ok := d.kernels[ref]; ok {
		return &program{ref: ref, kernel: k}, nil
	}
	base := strings.TrimSuffix(path.Base(ref), path.Ext(ref))
	if k, ok := d.kernels[base]; ok {
		return &program{ref: ref, kernel: k}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, ref)
}

// Run executes the kernel over the launch shape and returns the output
// buffer. Inputs are copied so kernels cannot alter the caller's slices.
func (d *Device) Run(p gpgpu.Program, k *gpgpu.Kernel) ([]byte, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	prog, ok := p.(*program)
	if !ok {
		return nil, fmt.Errorf("host: foreign program %T", p)
	}
	if k.EntryPoint != gpgpu.EntryPoint {
		return nil, fmt.Errorf("%w: %q", ErrEntryPoint, k.EntryPoint)
	}
	out := k.Output()
	if out == nil || out.Access != gpgpu.ReadWrite {
		return nil, errors.New("host: kernel has no read-write output binding")
	}

	bufs := &Buffers{slots: make([][]byte, len(k.Bindings))}
	for i, b := range k.Bindings {
		buf := make([]byte, b.Size)
		copy(buf, b.Data)
		bufs.slots[i] = buf
	}

	g := k.Groups
	total := g.Invocations()
	d.log.Load().Debug("host: launch",
		"program", prog.ref,
		"groups", g.String(),
		"bindings", len(k.Bindings),
		"output_bytes", out.Size)

	d.pool.Range(total, func(first, last uint64) {
		for i := first; i < last; i++ {
			prog.kernel(bufs, invocationAt(g, i))
		}
	})
	return bufs.slots[len(bufs.slots)-1], nil
}

// Close stops the worker pool. Later calls fail with ErrClosed.
func (d *Device) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	d.pool.Close()
	return nil
}
