// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"fmt"
	"math"
)

// LaunchShape is the number of workgroups dispatched along each axis.
type LaunchShape struct {
	X, Y, Z uint16
}

// DefaultLaunchShape returns (65535, 1, 1), the shape used when a Work
// item does not set one.
func DefaultLaunchShape() LaunchShape {
	return LaunchShape{X: math.MaxUint16, Y: 1, Z: 1}
}

// IsZero reports whether s is the zero value.
func (s LaunchShape) IsZero() bool {
	return s == LaunchShape{}
}

// Invocations returns X*Y*Z.
func (s LaunchShape) Invocations() uint64 {
	return uint64(s.X) * uint64(s.Y) * uint64(s.Z)
}

// String returns "XxYxZ".
func (s LaunchShape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.X, s.Y, s.Z)
}

// Work describes one computation: which program to run, the input
// buffers, how many elements the program writes and the launch shape.
//
// Work is an inert value. OutputLen must match what the program writes;
// this package does not check it and only propagates device failures.
type Work[T Element] struct {
	// Program identifies the compute program. The Device decides how to
	// resolve it (a WGSL file path for the gpu device, a kernel name for
	// the host device).
	Program string

	// Inputs are bound read-only in declaration order, slot 0 first.
	Inputs [][]T

	// OutputLen is the number of T elements in the read-write output buffer.
	OutputLen uint64

	// Shape is the workgroup count. The zero value means DefaultLaunchShape.
	Shape LaunchShape
}

// NewWork builds a Work item with the default launch shape.
func NewWork[T Element](program string, outputLen uint64, inputs ...[]T) Work[T] {
	return Work[T]{
		Program:   program,
		Inputs:    inputs,
		OutputLen: outputLen,
		Shape:     DefaultLaunchShape(),
	}
}

// WithShape returns a copy of w launched with shape s.
func (w Work[T]) WithShape(s LaunchShape) Work[T] {
	w.Shape = s
	return w
}

// launchShape resolves the zero shape to the default.
func (w *Work[T]) launchShape() LaunchShape {
	if w.Shape.IsZero() {
		return DefaultLaunchShape()
	}
	return w.Shape
}
