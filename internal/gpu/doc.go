// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package gpu implements gpgpu.Device on the gogpu/wgpu HAL.
//
// Programs are WGSL files. LoadProgram compiles them to SPIR-V with
// gogpu/naga and keeps the result in an LRU keyed by a hash of the
// source, so resubmitting a program does not recompile it while an edited
// file does. Each Run:
//
//  1. builds a bind group layout with one storage entry per binding
//     (read-only for inputs, read-write for the output), a pipeline layout
//     and a compute pipeline on entry point "main";
//  2. allocates storage buffers rounded up to 4 bytes, uploads the inputs
//     and zeroes the output;
//  3. records one compute pass and a copy into a MapRead staging buffer;
//  4. submits with a fence, waits up to Options.FenceTimeout and reads the
//     staging buffer back.
//
// Devices are opened on Vulkan with New, or wrap a host application's
// device with NewShared. The public entry point is package
// github.com/gogpu/gpgpu/gpu.
package gpu
