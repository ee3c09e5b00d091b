// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

// Package gpu keeps its API in nogpu builds, but no device can be opened:
// Open and OpenShared fail with backend.ErrBackendNotAvailable and the
// vulkan backend is not registered.
package gpu

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/backend"
	"github.com/gogpu/gpgpu/internal/cache"
	"github.com/gogpu/gpucontext"
)

type options struct {
	fenceTimeout time.Duration
	programCache int
	fsys         fs.FS
}

// Option configures a device. Options are accepted and ignored.
type Option func(*options)

// WithFenceTimeout is accepted for API compatibility.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) { o.fenceTimeout = d }
}

// WithProgramCache is accepted for API compatibility.
func WithProgramCache(n int) Option {
	return func(o *options) { o.programCache = n }
}

// WithFS is accepted for API compatibility.
func WithFS(fsys fs.FS) Option {
	return func(o *options) { o.fsys = fsys }
}

// Device is never constructed in nogpu builds.
type Device struct{}

var _ gpgpu.Device = (*Device)(nil)

// Name returns "vulkan".
func (d *Device) Name() string { return backend.Vulkan }

// Adapter returns "".
func (d *Device) Adapter() string { return "" }

// SetLogger does nothing.
func (d *Device) SetLogger(*slog.Logger) {}

// CacheStats returns zero stats.
func (d *Device) CacheStats() cache.Stats { return cache.Stats{} }

// LoadProgram returns backend.ErrBackendNotAvailable.
func (d *Device) LoadProgram(string) (gpgpu.Program, error) {
	return nil, backend.ErrBackendNotAvailable
}

// Run returns backend.ErrBackendNotAvailable.
func (d *Device) Run(gpgpu.Program, *gpgpu.Kernel) ([]byte, error) {
	return nil, backend.ErrBackendNotAvailable
}

// Close does nothing.
func (d *Device) Close() error { return nil }

// Open returns backend.ErrBackendNotAvailable.
func Open(...Option) (*Device, error) {
	return nil, backend.ErrBackendNotAvailable
}

// OpenShared returns backend.ErrBackendNotAvailable.
func OpenShared(gpucontext.DeviceProvider, ...Option) (*Device, error) {
	return nil, backend.ErrBackendNotAvailable
}

// Configure does nothing in nogpu builds.
func Configure(...Option) {}
