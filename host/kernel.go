// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package host

import (
	"unsafe"

	"github.com/gogpu/gpgpu"
)

// Invocation is the global id of one kernel invocation.
type Invocation struct {
	X, Y, Z uint32

	// Index is the linear id x + y*X + z*X*Y.
	Index uint64
}

func invocationAt(g gpgpu.LaunchShape, i uint64) Invocation {
	nx, ny := uint64(g.X), uint64(g.Y)
	return Invocation{
		X:     uint32(i % nx),        //nolint:gosec // bounded by uint16
		Y:     uint32((i / nx) % ny), //nolint:gosec // bounded by uint16
		Z:     uint32(i / (nx * ny)), //nolint:gosec // bounded by uint16
		Index: i,
	}
}

// Buffers are the bound storage buffers of one launch, indexed by slot.
// Inputs come first, the output is last.
type Buffers struct {
	slots [][]byte
}

// Len returns the number of bindings.
func (b *Buffers) Len() int { return len(b.slots) }

// Bytes returns the raw buffer at slot.
func (b *Buffers) Bytes(slot int) []byte { return b.slots[slot] }

// View returns the buffer at slot as a []T sharing its memory.
// Trailing bytes that do not fill a whole element are not visible.
func View[T gpgpu.Element](b *Buffers, slot int) []T {
	raw := b.slots[slot]
	var zero T
	n := len(raw) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), n) //nolint:gosec // raw comes from make([]byte), aligned for any element type
}

// Output returns the read-write buffer as a []T.
func Output[T gpgpu.Element](b *Buffers) []T {
	return View[T](b, len(b.slots)-1)
}

// Kernel is a host program. It is called once per invocation, possibly
// from several goroutines at once; invocations must only write output
// elements they own.
type Kernel func(b *Buffers, inv Invocation)

// Map returns a kernel computing out[i] = fn(in0[i]) for every i
// within both buffers, where i is the invocation's linear index.
func Map[T gpgpu.Element](fn func(T) T) Kernel {
	return func(b *Buffers, inv Invocation) {
		in, out := View[T](b, 0), Output[T](b)
		if inv.Index >= uint64(len(in)) || inv.Index >= uint64(len(out)) {
			return
		}
		out[inv.Index] = fn(in[inv.Index])
	}
}

// Zip returns a kernel computing out[i] = fn(in0[i], in1[i]).
func Zip[T gpgpu.Element](fn func(a, b T) T) Kernel {
	return func(b *Buffers, inv Invocation) {
		x, y, out := View[T](b, 0), View[T](b, 1), Output[T](b)
		i := inv.Index
		if i >= uint64(len(x)) || i >= uint64(len(y)) || i >= uint64(len(out)) {
			return
		}
		out[i] = fn(x[i], y[i])
	}
}
