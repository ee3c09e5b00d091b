// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/internal/cache"
	"github.com/gogpu/gpucontext"
)

// The public surface is identical with and without the nogpu tag.
var (
	_ func(...Option) (*Device, error) = Open
	_ func(...Option)                  = Configure
	_ func(time.Duration) Option       = WithFenceTimeout
	_ func(int) Option                 = WithProgramCache
	_ func(fs.FS) Option               = WithFS
	_ gpgpu.Device                     = (*Device)(nil)
)

var _ func(gpucontext.DeviceProvider, ...Option) (*Device, error) = OpenShared

var _ interface {
	SetLogger(*slog.Logger)
	Adapter() string
	CacheStats() cache.Stats
} = (*Device)(nil)

func TestOpenWithoutAdapterIsNotFatal(t *testing.T) {
	dev, err := Open(WithFenceTimeout(time.Second))
	if err != nil {
		if dev != nil {
			t.Errorf("Open() = %v, %v: device must be nil on error", dev, err)
		}
		t.Skipf("no GPU device: %v", err)
	}
	defer dev.Close()
	if dev.Name() != "vulkan" {
		t.Errorf("Name() = %q, want vulkan", dev.Name())
	}
}
