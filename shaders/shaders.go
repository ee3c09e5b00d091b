// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shaders embeds the bundled WGSL compute programs.
//
// Every program reads its inputs from read-only storage bindings 0..n-1,
// writes binding n, and exposes entry point "main" with a workgroup size
// of 1, so one workgroup is one element. The host backend registers Go
// kernels under the same base names.
package shaders

import "embed"

// FS holds double.wgsl, collatz.wgsl and add.wgsl.
//
//go:embed *.wgsl
var FS embed.FS

// Program references inside FS.
const (
	Double  = "double.wgsl"
	Collatz = "collatz.wgsl"
	Add     = "add.wgsl"
)
