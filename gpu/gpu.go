// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu registers the Vulkan compute device with package backend.
//
// Import this package to run gpgpu work on a GPU through gogpu/wgpu.
// Programs are WGSL files compiled to SPIR-V with gogpu/naga; the entry
// point is always "main". If no Vulkan adapter is present, opening the
// backend fails and backend.Open(backend.Auto) falls back to the host
// device.
//
// Usage:
//
//	import _ "github.com/gogpu/gpgpu/gpu" // enable the vulkan backend
//
// Or open a device directly:
//
//	dev, err := gpu.Open(gpu.WithFenceTimeout(10 * time.Second))
//	loop := gpgpu.Serve(q, dev)
//
// Building with -tags nogpu removes the wgpu dependency; Open then fails
// with backend.ErrBackendNotAvailable.
package gpu

import (
	"io/fs"
	"time"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/backend"
	gpuimpl "github.com/gogpu/gpgpu/internal/gpu"
	"github.com/gogpu/gpucontext"
)

// Device is a wgpu/hal compute device.
type Device = gpuimpl.Device

func init() {
	Configure()
}

// Option configures a device.
type Option func(*gpuimpl.Options)

// WithFenceTimeout bounds how long one launch may run.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *gpuimpl.Options) { o.FenceTimeout = d }
}

// WithProgramCache sets how many compiled programs are kept.
// Negative means unbounded.
func WithProgramCache(n int) Option {
	return func(o *gpuimpl.Options) { o.ProgramCache = n }
}

// WithFS resolves program references inside fsys instead of the OS
// filesystem, for example shaders.FS.
func WithFS(fsys fs.FS) Option {
	return func(o *gpuimpl.Options) { o.FS = fsys }
}

func build(opts []Option) gpuimpl.Options {
	var o gpuimpl.Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open opens a Vulkan device on the first discrete or integrated GPU.
func Open(opts ...Option) (*Device, error) {
	return gpuimpl.New(build(opts))
}

// OpenShared wraps a device owned by a host application, such as a gogpu
// window. The provider must also implement HalDevice() any and
// HalQueue() any returning wgpu/hal types. Closing the returned device
// leaves the shared device alive.
func OpenShared(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	return gpuimpl.NewShared(provider, build(opts))
}

// Configure replaces the registered vulkan factory with one that applies
// opts, so backend.Open honours them.
func Configure(opts ...Option) {
	backend.Register(backend.Vulkan, func() (gpgpu.Device, error) {
		dev, err := Open(opts...)
		if err != nil {
			return nil, err
		}
		return dev, nil
	})
}
