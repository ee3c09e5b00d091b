// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/gogpu/gpgpu"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// alignedSize rounds n up to the 4-byte granularity of storage buffers and
// buffer copies. Empty buffers get one word so every binding is valid.
func alignedSize(n uint64) uint64 {
	if n == 0 {
		return 4
	}
	return (n + 3) &^ 3
}

// launch holds the per-run resources. destroy releases them in reverse
// creation order.
type launch struct {
	device hal.Device

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
	bindGroup  hal.BindGroup
	buffers    []hal.Buffer
	staging    hal.Buffer
}

func (l *launch) destroy() {
	if l.bindGroup != nil {
		l.device.DestroyBindGroup(l.bindGroup)
	}
	if l.staging != nil {
		l.device.DestroyBuffer(l.staging)
	}
	for _, b := range l.buffers {
		if b != nil {
			l.device.DestroyBuffer(b)
		}
	}
	if l.pipeline != nil {
		l.device.DestroyComputePipeline(l.pipeline)
	}
	if l.pipeLayout != nil {
		l.device.DestroyPipelineLayout(l.pipeLayout)
	}
	if l.bindLayout != nil {
		l.device.DestroyBindGroupLayout(l.bindLayout)
	}
}

// Run binds k to group 0, dispatches k.Groups workgroups of p's entry point
// and returns the output binding, truncated to its unaligned size.
func (d *Device) Run(p gpgpu.Program, k *gpgpu.Kernel) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	prog, ok := p.(*program)
	if !ok || prog.module == nil {
		return nil, fmt.Errorf("gpu: foreign or released program %T", p)
	}
	out := k.Output()
	if out == nil || out.Access != gpgpu.ReadWrite {
		return nil, fmt.Errorf("gpu: kernel has no read-write output binding")
	}

	l := &launch{device: d.device}
	defer l.destroy()

	if err := d.createPipeline(l, prog, k); err != nil {
		return nil, err
	}
	if err := d.createBuffers(l, k); err != nil {
		return nil, err
	}

	outSize := alignedSize(out.Size)
	if err := d.dispatch(l, k.Groups, outSize); err != nil {
		return nil, err
	}
	readback, err := d.readback(l.staging, outSize)
	if err != nil {
		return nil, err
	}
	slogger().Debug("gpu: launch complete",
		"program", prog.ref,
		"groups", k.Groups.String(),
		"bindings", len(k.Bindings),
		"output_bytes", out.Size)
	return readback[:out.Size], nil
}

// layoutEntries maps each binding to a compute-visible storage entry in
// slot order. Inputs are read-only storage, the output is read-write.
func layoutEntries(k *gpgpu.Kernel) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, len(k.Bindings))
	for i, b := range k.Bindings {
		typ := gputypes.BufferBindingTypeReadOnlyStorage
		if b.Access == gpgpu.ReadWrite {
			typ = gputypes.BufferBindingTypeStorage
		}
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    b.Slot,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: typ},
		}
	}
	return entries
}

// createPipeline builds the bind group layout from the binding access
// modes, then the pipeline layout and compute pipeline.
func (d *Device) createPipeline(l *launch, prog *program, k *gpgpu.Kernel) error {
	var err error
	l.bindLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "gpgpu_bind_layout",
		Entries: layoutEntries(k),
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	l.pipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "gpgpu_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{l.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	l.pipeline, err = d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   prog.ref,
		Layout:  l.pipeLayout,
		Compute: hal.ComputeState{Module: prog.module, EntryPoint: k.EntryPoint},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	return nil
}

// createBuffers allocates one storage buffer per binding plus the staging
// buffer, uploads the inputs, zeroes the output and creates the bind group.
func (d *Device) createBuffers(l *launch, k *gpgpu.Kernel) error {
	entries := make([]gputypes.BindGroupEntry, len(k.Bindings))
	for i, b := range k.Bindings {
		size := alignedSize(b.Size)
		usage := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
		if b.Access == gpgpu.ReadWrite {
			usage |= gputypes.BufferUsageCopySrc
		}
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("gpgpu_binding_%d", b.Slot),
			Size:  size,
			Usage: usage,
		})
		if err != nil {
			return fmt.Errorf("create buffer for binding %d: %w", b.Slot, err)
		}
		l.buffers = append(l.buffers, buf)

		data := make([]byte, size)
		copy(data, b.Data)
		if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
			return fmt.Errorf("upload binding %d: %w", b.Slot, err)
		}

		entries[i] = gputypes.BindGroupEntry{
			Binding:  b.Slot,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: size},
		}
	}

	var err error
	l.staging, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpgpu_staging",
		Size:  alignedSize(k.Output().Size),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}

	l.bindGroup, err = d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "gpgpu_bind",
		Layout:  l.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	return nil
}

// pollInterval is the sleep between completion checks while waiting for a
// submission.
const pollInterval = 100 * time.Microsecond

// dispatch records one compute pass and the output copy, submits them and
// waits until the queue reports the submission complete.
func (d *Device) dispatch(l *launch, groups gpgpu.LaunchShape, outSize uint64) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gpgpu_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("gpgpu"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "gpgpu_pass"})
	pass.SetPipeline(l.pipeline)
	pass.SetBindGroup(0, l.bindGroup, nil)
	pass.Dispatch(uint32(groups.X), uint32(groups.Y), uint32(groups.Z))
	pass.End()

	output := l.buffers[len(l.buffers)-1]
	encoder.CopyBufferToBuffer(output, l.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: outSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	idx, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return d.waitSubmission(idx)
}

// waitSubmission blocks until the queue has completed idx or the fence
// timeout expires.
func (d *Device) waitSubmission(idx uint64) error {
	deadline := time.Now().Add(d.opts.FenceTimeout)
	for d.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %v", ErrFenceTimeout, d.opts.FenceTimeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// readback maps the first size bytes of staging and copies them out.
func (d *Device) readback(staging hal.Buffer, size uint64) ([]byte, error) {
	mapping, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), size))
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return out, nil
}
