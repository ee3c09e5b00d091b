// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package host

import "math"

// Builtins returns host versions of the bundled WGSL programs, keyed by
// the program base name:
//
//	double   out[i] = in[i] * 2            (u32)
//	collatz  out[i] = Collatz steps of in[i] (u32, MaxUint32 on overflow)
//	add      out[i] = a[i] + b[i]          (u32)
func Builtins() map[string]Kernel {
	return map[string]Kernel{
		"double":  Map(func(x uint32) uint32 { return x * 2 }),
		"collatz": Map(CollatzSteps),
		"add":     Zip(func(a, b uint32) uint32 { return a + b }),
	}
}

// collatzLimit is the smallest n for which 3n+1 overflows a uint32.
const collatzLimit = 1431655765

// CollatzSteps returns how many steps n takes to reach 1, or MaxUint32
// when 3n+1 would overflow a uint32.
func CollatzSteps(n uint32) uint32 {
	var steps uint32
	for n > 1 {
		if n%2 == 0 {
			n /= 2
		} else {
			if n >= collatzLimit {
				return math.MaxUint32
			}
			n = 3*n + 1
		}
		steps++
	}
	return steps
}
