// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a bounded, thread-safe LRU cache with an
// eviction callback.
//
// The GPU device keeps compiled SPIR-V here, keyed by a hash of the WGSL
// source, so a program submitted many times is translated once while an
// edited file gets a fresh key.
//
//	c := cache.New[string, []uint32](64, cache.WithEvict(func(k string, _ []uint32) {
//		log.Debug("evicted", "key", k)
//	}))
//	code, err := c.GetOrLoad(key, compile)
package cache
