package robust

import (
	"math"
	"slices"
)

// Median returns the median of x, averaging the two middle values for even
// lengths. Returns NaN for an empty slice. x is not modified.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}

	sorted := slices.Clone(x)
	slices.Sort(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}

	return 0.5 * (sorted[n/2-1] + sorted[n/2])
}

// AbsDeviations returns |x_i - center| for every sample.
func AbsDeviations(x []float64, center float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Abs(v - center)
	}

	return out
}

// MAD returns the median of x and the median absolute deviation around it.
// Both are NaN for an empty slice.
func MAD(x []float64) (median, mad float64) {
	median = Median(x)
	if math.IsNaN(median) {
		return median, math.NaN()
	}

	return median, Median(AbsDeviations(x, median))
}

// Outliers flags samples whose absolute deviation from the median exceeds
// k times the MAD. Nothing is flagged when the MAD is zero or undefined, or
// when k is not positive.
func Outliers(x []float64, k float64) []bool {
	flags := make([]bool, len(x))
	if k <= 0 {
		return flags
	}

	median, mad := MAD(x)
	if !(mad > 0) {
		return flags
	}

	limit := k * mad
	for i, v := range x {
		flags[i] = math.Abs(v-median) > limit
	}

	return flags
}

// Count returns the number of true entries in flags.
func Count(flags []bool) int {
	var n int
	for _, f := range flags {
		if f {
			n++
		}
	}

	return n
}
