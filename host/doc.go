// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package host provides a gpgpu.Device that executes Go kernels on the CPU.
//
// It follows the same binding protocol as the GPU device: inputs in slots
// 0..n-1, the output in slot n, one invocation per point of the launch
// shape. It serves as the CPU fallback when no GPU is available and as a
// deterministic device in tests.
//
//	dev := host.New(host.WithKernels(host.Builtins()))
//	dev.Register("square", host.Map(func(x float32) float32 { return x * x }))
//
// Importing the package registers the "host" backend, with the built-in
// kernels, in package backend.
package host
