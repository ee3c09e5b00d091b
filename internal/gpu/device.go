// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gpgpu/internal/cache"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Defaults for Options.
const (
	DefaultFenceTimeout = 5 * time.Second
	DefaultProgramCache = 64
)

var (
	// ErrNoAdapter is returned by New when no GPU adapter is found.
	ErrNoAdapter = errors.New("gpu: no adapter found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("gpu: device closed")

	// ErrFenceTimeout is returned by Run when the device does not signal
	// completion within the fence timeout.
	ErrFenceTimeout = errors.New("gpu: fence wait timed out")

	// ErrProvider is returned by NewShared for a provider that does not
	// expose HAL types.
	ErrProvider = errors.New("gpu: provider does not expose HAL device and queue")
)

// Options configures a Device.
type Options struct {
	// FenceTimeout bounds the wait for one launch. Zero means
	// DefaultFenceTimeout.
	FenceTimeout time.Duration

	// ProgramCache is the number of compiled programs kept. Zero means
	// DefaultProgramCache, negative means unbounded.
	ProgramCache int

	// FS resolves program references. Nil means the OS filesystem, with
	// references used as given.
	FS fs.FS
}

func (o Options) withDefaults() Options {
	if o.FenceTimeout <= 0 {
		o.FenceTimeout = DefaultFenceTimeout
	}
	if o.ProgramCache == 0 {
		o.ProgramCache = DefaultProgramCache
	}
	return o
}

// Device is a gpgpu.Device on top of wgpu/hal. Programs are WGSL files
// compiled to SPIR-V with naga; every Run builds one compute pipeline,
// uploads the inputs, dispatches once and reads the output back.
type Device struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	adapter  string

	opts     Options
	programs *cache.Cache[sourceKey, []uint32]

	externalDevice bool // true when using shared device (don't destroy on Close)
	closed         bool
}

var _ gpgpu.Device = (*Device)(nil)

// New opens the first discrete or integrated Vulkan GPU, falling back to
// the first adapter of any type.
func New(opts Options) (*Device, error) {
	opts = opts.withDefaults()

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.New("gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := selectAdapter(adapters)
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	d := newDevice(openDev.Device, openDev.Queue, opts)
	d.instance = instance
	d.adapter = selected.Info.Name
	slogger().Info("gpu: device opened", "adapter", d.adapter, "type", selected.Info.DeviceType)
	return d, nil
}

// selectAdapter prefers real GPUs over software and CPU adapters.
func selectAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// NewShared builds a Device on a device owned by a host application.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. Close leaves the shared device alive.
func NewShared(provider gpucontext.DeviceProvider, opts Options) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProvider)
	}

	d := newDevice(device, queue, opts.withDefaults())
	d.externalDevice = true
	slogger().Info("gpu: using shared device")
	return d, nil
}

func newDevice(device hal.Device, queue hal.Queue, opts Options) *Device {
	d := &Device{
		device: device,
		queue:  queue,
		opts:   opts,
	}
	d.programs = cache.New(max(opts.ProgramCache, 0), cache.WithEvict(func(k sourceKey, _ []uint32) {
		slogger().Debug("gpu: program evicted", "source", fmt.Sprintf("%x", k[:6]))
	}))
	return d
}

// Name returns "vulkan".
func (d *Device) Name() string { return "vulkan" }

// Adapter returns the adapter name, or "" for a shared device.
func (d *Device) Adapter() string { return d.adapter }

// SetLogger sets the package logger. gpgpu.SetLogger propagates here.
func (d *Device) SetLogger(l *slog.Logger) { setLogger(l) }

// CacheStats reports the compiled program cache.
func (d *Device) CacheStats() cache.Stats { return d.programs.Stats() }

// program is a shader module compiled from one WGSL source.
type program struct {
	ref    string
	module hal.ShaderModule
	device hal.Device
}

func (p *program) Ref() string { return p.ref }

func (p *program) Release() {
	if p.module != nil {
		p.device.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// LoadProgram reads the WGSL file at ref, compiles it (or reuses the
// SPIR-V of identical source) and creates a shader module.
func (d *Device) LoadProgram(ref string) (gpgpu.Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	src, err := d.readSource(ref)
	if err != nil {
		return nil, err
	}
	code, err := d.programs.GetOrLoad(keyOf(src), func() ([]uint32, error) {
		slogger().Debug("gpu: compiling program", "ref", ref, "bytes", len(src))
		return CompileWGSL(string(src))
	})
	if err != nil {
		return nil, err
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  ref,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	return &program{ref: ref, module: module, device: d.device}, nil
}

func (d *Device) readSource(ref string) ([]byte, error) {
	if d.opts.FS != nil {
		return fs.ReadFile(d.opts.FS, ref)
	}
	return os.ReadFile(ref)
}

// Close destroys the device unless it is shared. Safe to call twice.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.programs.Purge()

	if !d.externalDevice {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
	slogger().Info("gpu: device closed", "shared", d.externalDevice)
	return nil
}
