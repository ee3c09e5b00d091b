// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"fmt"
	"unsafe"
)

// Element is the closed set of element types a Work item can carry.
//
// The constraint lists exact types (no ~ approximation) so that Task[T]
// can only ever be instantiated with one of these ten, which keeps the
// envelope dispatch in Loop exhaustive.
type Element interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// ElementKind identifies one member of the Element type set at runtime.
type ElementKind uint8

const (
	KindInt8 ElementKind = iota
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64

	// kindCount must stay last.
	kindCount
)

// Kinds returns every supported element kind in declaration order.
func Kinds() []ElementKind {
	kinds := make([]ElementKind, 0, kindCount)
	for k := ElementKind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the short type name used in manifests and logs ("u32", "f64", ...).
func (k ElementKind) String() string {
	switch k {
	case KindInt8:
		return "i8"
	case KindInt16:
		return "i16"
	case KindInt32:
		return "i32"
	case KindInt64:
		return "i64"
	case KindUint8:
		return "u8"
	case KindUint16:
		return "u16"
	case KindUint32:
		return "u32"
	case KindUint64:
		return "u64"
	case KindFloat32:
		return "f32"
	case KindFloat64:
		return "f64"
	default:
		return fmt.Sprintf("ElementKind(%d)", uint8(k))
	}
}

// Size returns the size of one element in bytes, or 0 for an unknown kind.
func (k ElementKind) Size() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// ParseKind is the inverse of ElementKind.String.
func ParseKind(s string) (ElementKind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("gpgpu: unknown element type %q", s)
}

// KindOf returns the ElementKind of the type parameter.
func KindOf[T Element]() ElementKind {
	var zero T
	switch any(zero).(type) {
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case uint8:
		return KindUint8
	case uint16:
		return KindUint16
	case uint32:
		return KindUint32
	case uint64:
		return KindUint64
	case float32:
		return KindFloat32
	default:
		return KindFloat64
	}
}

// asBytes reinterprets s as its raw host-endian bytes without copying.
func asBytes[T Element](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero))) //nolint:gosec // T is a fixed-size numeric type
}

// fromBytes copies raw device output into a freshly allocated []T of n elements.
// Missing trailing bytes are left zero; extra bytes are ignored.
func fromBytes[T Element](b []byte, n int) []T {
	out := make([]T, n)
	copy(asBytes(out), b)
	return out
}
