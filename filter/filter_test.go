package filter

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-psd/fit"
	"github.com/cwbudde/algo-psd/pulse"
)

func groupOf(values ...float64) *pulse.Group {
	g := pulse.NewGroup("g")
	for i, v := range values {
		r := &pulse.Record{ID: string(rune('a' + i))}
		if !math.IsNaN(v) {
			r.Integral = pulse.Available(v)
		}
		g.Records = append(g.Records, r)
	}
	return g
}

func ids(g *pulse.Group) string {
	var s string
	for _, r := range g.Records {
		s += r.ID
	}
	return s
}

func TestRemoveOutliers(t *testing.T) {
	// median 0, MAD 1; 3.5 is 3.5 MADs out.
	g := groupOf(-1, 1, -1, 1, 0, 0, 3.5)

	n, err := RemoveOutliers(g, pulse.FieldIntegral, 3)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || ids(g) != "abcdef" {
		t.Fatalf("removed %d, kept %q", n, ids(g))
	}

	g = groupOf(-1, 1, -1, 1, 0, 0, 3.5)
	if n, _ := RemoveOutliers(g, pulse.FieldIntegral, 4); n != 0 {
		t.Fatalf("k=4 removed %d", n)
	}
}

func TestRemoveOutliersZeroMADAndUnavailable(t *testing.T) {
	g := groupOf(2, 2, 2, 100, math.NaN())

	n, err := RemoveOutliers(g, pulse.FieldIntegral, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || ids(g) != "abcd" {
		t.Fatalf("removed %d, kept %q; want only the unavailable record dropped", n, ids(g))
	}
}

func TestRemoveOutliersFailedFitCost(t *testing.T) {
	g := pulse.NewGroup("g")
	for i, c := range []float64{1e-6, 2e-6, 1.5e-6, 1e-6, math.Inf(1)} {
		res := fit.Result{Terms: []fit.Term{{Amp: -1, Tau: 10}}, Cost: c, Status: fit.Converged}
		if math.IsInf(c, 1) {
			res = fit.Unusable(1, fit.Failed)
		}
		g.Records = append(g.Records, &pulse.Record{ID: string(rune('a' + i)), Fit: &res})
	}

	if n, _ := RemoveOutliers(g, pulse.FieldFitCost, 5); n != 1 || ids(g) != "abcd" {
		t.Fatalf("removed %d, kept %q", n, ids(g))
	}
}

func TestRangeFilter(t *testing.T) {
	g := groupOf(-5, 0, 5, 10)

	n, err := RangeFilter(g, pulse.FieldIntegral, 6, -1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || ids(g) != "bc" {
		t.Fatalf("removed %d, kept %q", n, ids(g))
	}
}

func TestApplySequential(t *testing.T) {
	g := groupOf(-1, 1, -1, 1, 0, 0, 3.5, 50)

	n, err := Apply(g,
		[]Threshold{{Field: pulse.FieldIntegral, K: 10}, {Field: pulse.FieldIntegral, K: 3}},
		[]Range{{Field: pulse.FieldIntegral, Min: -0.5, Max: 2}})
	if err != nil {
		t.Fatal(err)
	}

	// pass 1 drops 50; pass 2 drops 3.5; range drops the two -1s.
	if n != 4 || ids(g) != "bdef" {
		t.Fatalf("removed %d, kept %q", n, ids(g))
	}
}

func TestUnknownField(t *testing.T) {
	g := groupOf(1, 2)
	if _, err := RemoveOutliers(g, "height", 3); !errors.Is(err, pulse.ErrUnknownField) {
		t.Fatalf("err = %v", err)
	}
	if _, err := RangeFilter(g, "height", 0, 1); !errors.Is(err, pulse.ErrUnknownField) {
		t.Fatalf("err = %v", err)
	}
	if err := Validate(nil, []Range{{Field: pulse.FieldTrimmed}}); !errors.Is(err, pulse.ErrUnknownField) {
		t.Fatalf("array field err = %v", err)
	}
	if err := Validate([]Threshold{{Field: "fit_tau2", K: 5}}, nil); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
