// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpgpu is a compute-task dispatch queue for a single GPU.
//
// # Overview
//
// Many producers submit strongly typed units of parallel work to one
// exclusively owned compute device and receive results asynchronously.
// The device is owned by a single goroutine, the Loop, so device access is
// serialized structurally rather than by locking.
//
//	Producer -> Work[T] -> Submit -> Queue -> Loop -> Device
//	                         |                   |
//	                         +--- Future[T] <----+
//
// # Quick Start
//
//	dev, err := gpu.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	q := gpgpu.NewQueue(gpgpu.DefaultCapacity)
//	loop := gpgpu.Serve(q, dev)
//
//	in := make([]uint32, 10000)
//	for i := range in {
//	    in[i] = uint32(i)
//	}
//	f, err := gpgpu.Submit(ctx, q, gpgpu.NewWork("shaders/double.wgsl", 10000, in))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := f.Wait(ctx)
//
//	q.Close()
//	<-loop.Done()
//
// # Element Types
//
// Work items carry one of ten element types: int8..int64, uint8..uint64,
// float32 and float64. Each travels through the queue in its own envelope
// arm, *Task[T], and the Loop unwraps it with one exhaustive type switch.
// Whether a device can actually execute a type (WGSL has no 8-bit storage,
// for example) is a contract between the caller and the program.
//
// # Kernel Protocol
//
// Inputs are bound read-only to @group(0) @binding(0..n-1) in declaration
// order, the output is bound read-write to @binding(n), and the program's
// entry point must be named "main". The launch shape is the workgroup
// count along x, y and z, (65535, 1, 1) by default.
//
// # Failure Semantics
//
// Program load failures (ErrProgramLoad) and device failures
// (ErrExecution) are delivered on the job's Future and never stop the
// Loop. Submitting to a closed Queue fails immediately with
// ErrQueueClosed. A Future whose result can never arrive resolves to
// ErrHandleClosed.
//
// # Devices
//
// Package gpu provides the wgpu/hal device (Vulkan), package host a CPU
// device running registered Go kernels, and package backend a registry
// that picks between them.
package gpgpu

// Version is the current version of the module.
const Version = "0.1.0"
