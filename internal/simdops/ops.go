// Package simdops provides SIMD vector operations for float32 and float64 sample data.
//
// Buffers are rendered in float64 and scaled or measured as whole slices,
// so the hot paths are a handful of vector primitives from github.com/tphakala/simd.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Sum:              f32.Sum,
		Scale:            f32.Scale,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Sum:              f64.Sum,
		Scale:            f64.Scale,
	}
)

// For returns the Ops instance for type F.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Scaled returns a new slice holding a[i] * s.
func Scaled[F Float](a []F, s F) []F {
	dst := make([]F, len(a))
	if len(a) == 0 {
		return dst
	}
	For[F]().Scale(dst, a, s)
	return dst
}

// Energy returns the sum of squares of a.
func Energy[F Float](a []F) F {
	if len(a) == 0 {
		return 0
	}
	return For[F]().DotProductUnsafe(a, a)
}

// Mean returns the arithmetic mean of a, or zero for an empty slice.
func Mean[F Float](a []F) F {
	if len(a) == 0 {
		return 0
	}
	return For[F]().Sum(a) / F(len(a))
}
