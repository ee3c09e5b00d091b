// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"math"
	"slices"
	"testing"
)

func TestKinds(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 10 {
		t.Fatalf("len(Kinds()) = %d, want 10", len(kinds))
	}
	seen := make(map[string]bool)
	for _, k := range kinds {
		name := k.String()
		if seen[name] {
			t.Errorf("duplicate kind name %q", name)
		}
		seen[name] = true

		parsed, err := ParseKind(name)
		if err != nil || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v, want %v", name, parsed, err, k)
		}
	}
}

func TestParseKindUnknown(t *testing.T) {
	for _, s := range []string{"", "u128", "float", "U32"} {
		if _, err := ParseKind(s); err == nil {
			t.Errorf("ParseKind(%q) succeeded", s)
		}
	}
}

func TestKindOfAndSize(t *testing.T) {
	tests := []struct {
		got  ElementKind
		want ElementKind
		size int
	}{
		{KindOf[int8](), KindInt8, 1},
		{KindOf[int16](), KindInt16, 2},
		{KindOf[int32](), KindInt32, 4},
		{KindOf[int64](), KindInt64, 8},
		{KindOf[uint8](), KindUint8, 1},
		{KindOf[uint16](), KindUint16, 2},
		{KindOf[uint32](), KindUint32, 4},
		{KindOf[uint64](), KindUint64, 8},
		{KindOf[float32](), KindFloat32, 4},
		{KindOf[float64](), KindFloat64, 8},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("KindOf = %v, want %v", tt.got, tt.want)
		}
		if tt.want.Size() != tt.size {
			t.Errorf("%v.Size() = %d, want %d", tt.want, tt.want.Size(), tt.size)
		}
	}
	if kindCount.Size() != 0 {
		t.Error("unknown kind should have size 0")
	}
	if s := kindCount.String(); s != "ElementKind(10)" {
		t.Errorf("unknown kind String() = %q", s)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	in := []float64{0, -1.5, math.Pi, math.Inf(1)}
	raw := asBytes(in)
	if len(raw) != 32 {
		t.Fatalf("len(asBytes) = %d, want 32", len(raw))
	}
	if got := fromBytes[float64](raw, len(in)); !slices.Equal(got, in) {
		t.Errorf("fromBytes(asBytes(x)) = %v, want %v", got, in)
	}
}

func TestFromBytesLength(t *testing.T) {
	raw := asBytes([]uint16{1, 2, 3})

	if got := fromBytes[uint16](raw, 2); !slices.Equal(got, []uint16{1, 2}) {
		t.Errorf("truncated = %v, want [1 2]", got)
	}
	if got := fromBytes[uint16](raw, 5); !slices.Equal(got, []uint16{1, 2, 3, 0, 0}) {
		t.Errorf("padded = %v, want [1 2 3 0 0]", got)
	}
	if asBytes([]int8(nil)) != nil {
		t.Error("asBytes(nil) should be nil")
	}
}
