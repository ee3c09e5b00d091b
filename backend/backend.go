// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/gpgpu"
)

// Backend names registered by the device packages.
const (
	// Vulkan is the wgpu/hal device registered by package gpu.
	Vulkan = "vulkan"

	// Host is the CPU device registered by package host.
	Host = "host"

	// Auto selects the first backend in priority order that opens.
	Auto = "auto"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when no registered backend could be opened.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrUnknownBackend is returned when a backend name is not registered.
	ErrUnknownBackend = errors.New("backend: unknown backend")
)

// Factory opens a new device. Each call must return a device that no one
// else holds, since the device is handed to exactly one gpgpu.Loop.
type Factory func() (gpgpu.Device, error)
