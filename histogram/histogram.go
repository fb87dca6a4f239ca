// Package histogram summarises per-pulse features of a group.
//
// Bins and summary statistics come from gonum; rendering is delegated to a
// [Plotter] so the package does not own any graphics backend.
package histogram

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-psd/internal/numeric"
	"github.com/cwbudde/algo-psd/pulse"
)

// ErrInvalidBins is returned for a bin count below one.
var ErrInvalidBins = errors.New("histogram: bin count must be positive")

// Summary holds the moments and range of the finite values.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Histogram is a binned feature distribution. Counts[i] covers
// [Edges[i], Edges[i+1]); the last edge is nudged above the maximum so the
// largest value is counted.
type Histogram struct {
	Group   string
	Field   string
	Edges   []float64
	Counts  []float64
	Summary Summary
}

// Build bins the finite entries of values into bins equal-width bins.
// Without any finite value the result has N == 0 and no bins.
func Build(field string, values []float64, bins int) (*Histogram, error) {
	if bins < 1 {
		return nil, ErrInvalidBins
	}

	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			x = append(x, v)
		}
	}

	h := &Histogram{Field: field}
	if len(x) == 0 {
		h.Summary = Summary{Mean: math.NaN(), StdDev: math.NaN(), Min: math.NaN(), Max: math.NaN()}
		return h, nil
	}

	slices.Sort(x)

	lo, hi := x[0], x[len(x)-1]
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) == 1 {
		std = 0
	}
	h.Summary = Summary{N: len(x), Mean: mean, StdDev: std, Min: lo, Max: hi}

	// A range too narrow to split into distinct edges gets a unit width.
	if numeric.NearlyEqual(lo, hi, 0) {
		lo, hi = lo-0.5, hi+0.5
	}

	h.Edges = floats.Span(make([]float64, bins+1), lo, hi)
	h.Edges[bins] = math.Nextafter(h.Edges[bins], math.Inf(1))
	h.Counts = stat.Histogram(nil, h.Edges, x, nil)

	return h, nil
}

// FromGroup builds one histogram per scalar field from the available values
// of g.
func FromGroup(g *pulse.Group, fields []string, bins int) ([]*Histogram, error) {
	out := make([]*Histogram, 0, len(fields))
	for _, f := range fields {
		if pulse.IsArray(f) {
			return nil, pulse.ErrUnknownField
		}

		values, _, err := g.Scalars(f)
		if err != nil {
			return nil, err
		}

		h, err := Build(f, values, bins)
		if err != nil {
			return nil, err
		}
		h.Group = g.Name

		out = append(out, h)
	}

	return out, nil
}

// Separated reports whether the intervals mean ± sigmas·σ of a and b do not
// overlap.
func Separated(a, b Summary, sigmas float64) bool {
	if a.N == 0 || b.N == 0 {
		return false
	}

	aLo, aHi := a.Mean-sigmas*a.StdDev, a.Mean+sigmas*a.StdDev
	bLo, bHi := b.Mean-sigmas*b.StdDev, b.Mean+sigmas*b.StdDev

	return aHi < bLo || bHi < aLo
}
