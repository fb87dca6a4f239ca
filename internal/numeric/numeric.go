// Package numeric holds small scalar helpers shared by the pulse packages.
package numeric

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [lo, hi].
// Reversed bounds are swapped.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// NearlyEqual reports whether a and b agree within eps, using a relative
// comparison once the magnitudes exceed one.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest <= 1 {
		return false
	}

	return diff/largest <= eps
}

// ArgMin returns the index of the first occurrence of the smallest value.
// NaN samples are never selected. Returns -1 for an empty slice or a slice
// holding only NaN.
func ArgMin(x []float64) int {
	idx := -1
	for i, v := range x {
		if math.IsNaN(v) {
			continue
		}

		if idx < 0 || v < x[idx] {
			idx = i
		}
	}

	return idx
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
