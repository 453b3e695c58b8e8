package common

import (
	"encoding/binary"
	"math"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// AlignUp rounds n up to the next multiple of alignment. An alignment of zero returns n unchanged.
//
// Parameters:
//   - n: the value to round
//   - alignment: the multiple to round up to
//
// Returns:
//   - uint32: the smallest multiple of alignment that is >= n
func AlignUp(n, alignment uint32) uint32 {
	if alignment == 0 {
		return n
	}
	return (n + alignment - 1) / alignment * alignment
}

// Clamp limits v to the closed range [lo, hi].
func Clamp[T ~float32 | ~float64 | ~int | ~int32 | ~uint32](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PutFloat32s writes values little-endian into buf starting at offset and returns the offset
// just past the last value. buf must be large enough.
func PutFloat32s(buf []byte, offset int, values ...float32) int {
	for _, f := range values {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(f))
		offset += 4
	}
	return offset
}
