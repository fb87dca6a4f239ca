// Package filter removes whole pulses from a group by robust outlier tests
// and explicit ranges on scalar features.
package filter

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-psd/pulse"
	"github.com/cwbudde/algo-psd/stats/robust"
)

// Threshold is one MAD-based rejection pass.
type Threshold struct {
	Field string  `json:"field"`
	K     float64 `json:"k"`
}

// Range keeps values inside [Min, Max].
type Range struct {
	Field string  `json:"field"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// RemoveOutliers drops records whose field value lies more than k MADs from
// the group median, and records for which the value is unavailable. A zero
// MAD rejects nothing on statistical grounds. It returns the number of
// records removed.
func RemoveOutliers(g *pulse.Group, field string, k float64) (int, error) {
	values, owners, err := g.Scalars(field)
	if err != nil {
		return 0, fmt.Errorf("filter: %w", err)
	}

	flags := robust.Outliers(values, k)
	drop := make(map[*pulse.Record]bool, len(flags))
	for i, bad := range flags {
		if bad {
			drop[owners[i]] = true
		}
	}

	available := make(map[*pulse.Record]bool, len(owners))
	for _, r := range owners {
		available[r] = true
	}

	return g.Retain(func(r *pulse.Record) bool {
		return available[r] && !drop[r]
	}), nil
}

// RangeFilter keeps records whose field value lies in [lo, hi]. Reversed
// bounds are swapped. Records with an unavailable value are dropped.
func RangeFilter(g *pulse.Group, field string, lo, hi float64) (int, error) {
	if _, err := pulse.ParseField(field); err != nil {
		return 0, fmt.Errorf("filter: %w", err)
	}

	if lo > hi {
		lo, hi = hi, lo
	}

	return g.Retain(func(r *pulse.Record) bool {
		v, err := r.Scalar(field)
		return err == nil && !math.IsNaN(v) && v >= lo && v <= hi
	}), nil
}

// Apply runs the threshold passes in order, each on what the previous left,
// followed by the ranges. It returns the total number removed.
func Apply(g *pulse.Group, thresholds []Threshold, ranges []Range) (int, error) {
	var total int

	for _, th := range thresholds {
		n, err := RemoveOutliers(g, th.Field, th.K)
		if err != nil {
			return total, err
		}
		total += n
	}

	for _, rg := range ranges {
		n, err := RangeFilter(g, rg.Field, rg.Min, rg.Max)
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

// Validate checks that every field names a scalar.
func Validate(thresholds []Threshold, ranges []Range) error {
	names := make([]string, 0, len(thresholds)+len(ranges))
	for _, th := range thresholds {
		names = append(names, th.Field)
	}
	for _, rg := range ranges {
		names = append(names, rg.Field)
	}

	for _, name := range names {
		f, err := pulse.ParseField(name)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		if f.Array {
			return fmt.Errorf("filter: %w: %q is an array", pulse.ErrUnknownField, name)
		}
	}

	return nil
}
