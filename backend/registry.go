// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gpgpu"
)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)

	// Priority order for Auto selection (first that opens wins).
	// Vulkan > Host (Host is the CPU fallback).
	priority = []string{Vulkan, Host}
)

// Register registers a device factory under name.
// This is typically called from init() functions in device packages.
// A factory registered under an existing name replaces it.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open opens a device from the named backend. Auto (or "") tries every
// registered backend in priority order, then any remaining ones sorted by
// name, and returns the first device that opens.
func Open(name string) (gpgpu.Device, error) {
	if name == "" || name == Auto {
		return openAuto()
	}

	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownBackend, name, Available())
	}
	dev, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	return dev, nil
}

func openAuto() (gpgpu.Device, error) {
	order := slices.Clone(priority)
	for _, name := range Available() {
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}

	log := gpgpu.Logger()
	var errs []error
	for _, name := range order {
		registryMu.RLock()
		factory, ok := factories[name]
		registryMu.RUnlock()
		if !ok {
			continue
		}
		dev, err := factory()
		if err != nil {
			log.Warn("backend: unavailable, trying next", "backend", name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		log.Info("backend: selected", "backend", name)
		return dev, nil
	}
	return nil, errors.Join(append([]error{ErrBackendNotAvailable}, errs...)...)
}
