// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend is the registry of compute devices.
//
// Device packages register a Factory from init(); the host application
// imports the ones it wants and opens a device by name:
//
//	import (
//		"github.com/gogpu/gpgpu/backend"
//		_ "github.com/gogpu/gpgpu/gpu"  // registers "vulkan"
//		_ "github.com/gogpu/gpgpu/host" // registers "host"
//	)
//
//	dev, err := backend.Open(backend.Auto)
//
// # Backend Selection
//
// Open(Auto) tries the registered backends in priority order (vulkan,
// then host) and returns the first one that opens. Opening a named
// backend never falls back.
package backend
