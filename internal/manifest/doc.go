// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package manifest reads YAML job manifests and submits them to a gpgpu
// queue.
//
// A manifest lists jobs; each names a program, an element type and its
// input buffers:
//
//	jobs:
//	  - name: doubled
//	    program: shaders/double.wgsl
//	    type: u32
//	    inputs:
//	      - range: {start: 0, end: 1024}
//	  - program: shaders/add.wgsl
//	    type: u32
//	    inputs:
//	      - values: [1, 2, 3]
//	      - values: ["0x10", "0x20", "0x30"]
//
// Values are parsed according to the job's type; integers accept the Go
// base prefixes.
package manifest
