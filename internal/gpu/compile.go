// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// sourceKey identifies WGSL source text in the program cache.
type sourceKey [sha256.Size]byte

func keyOf(src []byte) sourceKey { return sha256.Sum256(src) }

// CompileWGSL translates WGSL source to SPIR-V words.
func CompileWGSL(src string) ([]uint32, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile wgsl: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("compile wgsl: spir-v length %d is not a multiple of 4", len(spirv))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	if len(words) == 0 || words[0] != spirvMagic {
		return nil, fmt.Errorf("compile wgsl: output is not spir-v")
	}
	return words, nil
}
