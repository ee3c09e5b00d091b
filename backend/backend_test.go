// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gpgpu"
)

// stubDevice is a gpgpu.Device that never runs anything.
type stubDevice struct{ name string }

func (d *stubDevice) Name() string                                     { return d.name }
func (d *stubDevice) LoadProgram(string) (gpgpu.Program, error)        { return nil, errors.New("stub") }
func (d *stubDevice) Run(gpgpu.Program, *gpgpu.Kernel) ([]byte, error) { return nil, errors.New("stub") }
func (d *stubDevice) Close() error                                     { return nil }

// withRegistry swaps in an empty registry for the duration of the test.
func withRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := factories
	factories = make(map[string]Factory)
	registryMu.Unlock()

	t.Cleanup(func() {
		registryMu.Lock()
		factories = saved
		registryMu.Unlock()
	})
}

func okFactory(name string) Factory {
	return func() (gpgpu.Device, error) { return &stubDevice{name: name}, nil }
}

func failFactory(err error) Factory {
	return func() (gpgpu.Device, error) { return nil, err }
}

func TestRegisterAndAvailable(t *testing.T) {
	withRegistry(t)

	Register("b", okFactory("b"))
	Register("a", okFactory("a"))

	if got, want := Available(), []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
	if !IsRegistered("a") {
		t.Error("IsRegistered(a) = false, want true")
	}

	Unregister("a")
	if IsRegistered("a") {
		t.Error("IsRegistered(a) = true after Unregister")
	}
}

func TestOpenNamed(t *testing.T) {
	withRegistry(t)
	Register(Host, okFactory(Host))

	dev, err := Open(Host)
	if err != nil {
		t.Fatalf("Open(host) error = %v", err)
	}
	if dev.Name() != Host {
		t.Errorf("Name() = %q, want %q", dev.Name(), Host)
	}
}

func TestOpenUnknown(t *testing.T) {
	withRegistry(t)

	_, err := Open("metal")
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(metal) error = %v, want ErrUnknownBackend", err)
	}
}

func TestOpenNamedDoesNotFallBack(t *testing.T) {
	withRegistry(t)
	errNoGPU := errors.New("no adapter")
	Register(Vulkan, failFactory(errNoGPU))
	Register(Host, okFactory(Host))

	_, err := Open(Vulkan)
	if !errors.Is(err, errNoGPU) {
		t.Errorf("Open(vulkan) error = %v, want %v", err, errNoGPU)
	}
}

func TestOpenAutoPriority(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		want    string
		wantErr error
	}{
		{
			name: "vulkan preferred",
			setup: func() {
				Register(Host, okFactory(Host))
				Register(Vulkan, okFactory(Vulkan))
			},
			want: Vulkan,
		},
		{
			name: "falls back to host",
			setup: func() {
				Register(Vulkan, failFactory(errors.New("no adapter")))
				Register(Host, okFactory(Host))
			},
			want: Host,
		},
		{
			name: "unlisted backend used last",
			setup: func() {
				Register("custom", okFactory("custom"))
			},
			want: "custom",
		},
		{
			name:    "nothing registered",
			setup:   func() {},
			wantErr: ErrBackendNotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withRegistry(t)
			tt.setup()

			dev, err := Open(Auto)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open(auto) error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(auto) error = %v", err)
			}
			if dev.Name() != tt.want {
				t.Errorf("Open(auto) picked %q, want %q", dev.Name(), tt.want)
			}
		})
	}
}
