// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"fmt"
	"unsafe"
)

// bindKernel lays out w as a Kernel: one read-only binding per input in
// declaration order, then a single read-write output binding.
// The input bindings alias w's slices; devices copy them to device memory.
func bindKernel[T Element](w *Work[T]) *Kernel {
	var zero T
	elem := uint64(unsafe.Sizeof(zero))

	bindings := make([]Binding, 0, len(w.Inputs)+1)
	for i, in := range w.Inputs {
		bindings = append(bindings, Binding{
			Slot:   uint32(i), //nolint:gosec // binding count is small
			Access: ReadOnly,
			Data:   asBytes(in),
			Size:   uint64(len(in)) * elem,
		})
	}
	bindings = append(bindings, Binding{
		Slot:   uint32(len(w.Inputs)), //nolint:gosec // binding count is small
		Access: ReadWrite,
		Size:   w.OutputLen * elem,
	})

	return &Kernel{
		EntryPoint: EntryPoint,
		Bindings:   bindings,
		Groups:     w.launchShape(),
	}
}

// runWork executes w on dev: load, bind, launch, read back.
// Load failures wrap ErrProgramLoad, everything after wraps ErrExecution.
func runWork[T Element](dev Device, w *Work[T]) ([]T, error) {
	prog, err := dev.LoadProgram(w.Program)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrProgramLoad, w.Program, err)
	}
	defer prog.Release()

	k := bindKernel(w)
	out, err := dev.Run(prog, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExecution, w.Program, err)
	}
	if uint64(len(out)) < k.Output().Size {
		return nil, fmt.Errorf("%w: %s: read back %d bytes, want %d",
			ErrExecution, w.Program, len(out), k.Output().Size)
	}
	return fromBytes[T](out, int(w.OutputLen)), nil //nolint:gosec // output length fits in memory
}
