package feature

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-psd/fit"
	"github.com/cwbudde/algo-psd/internal/testutil"
	"github.com/cwbudde/algo-psd/pulse"
)

func TestIntegralLinearRamp(t *testing.T) {
	const (
		x0, x1 = 2.0, 7.0
		y0, y1 = -3.0, 5.0
	)
	want := (y0 + y1) / 2 * (x1 - x0)

	for _, n := range []int{2, 3, 10, 101} {
		x := testutil.Ramp(n, x0, (x1-x0)/float64(n-1))
		y := testutil.Ramp(n, y0, (y1-y0)/float64(n-1))

		got, err := Integral(y, x)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		testutil.RequireNearlyEqual(t, "ramp integral", got, want, 1e-12)
	}
}

func TestIntegralNonUniformAxis(t *testing.T) {
	// midpoints x: 0 0.5 2 3; y: 1 1.5 2.5 3
	// trapezoids: 0.5*1.25 + 1.5*2 + 1*2.75
	got, err := Integral([]float64{1, 2, 3}, []float64{0, 1, 3})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNearlyEqual(t, "integral", got, 0.625+3+2.75, 1e-12)
}

func TestIntegralDegenerate(t *testing.T) {
	if v, _ := Integral([]float64{4}, nil); v != 0 {
		t.Fatalf("single point integral = %v, want 0", v)
	}
	if v, _ := Integral([]float64{1, 1, 1}, nil); v != 2 {
		t.Fatalf("index axis integral = %v, want 2", v)
	}
	if _, err := Integral([]float64{1, 2}, []float64{0}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestExtract(t *testing.T) {
	y := testutil.ExpDecay(300, []float64{-2}, []float64{50})

	feats, err := Extract(y, nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if !feats.Integral.OK || feats.Integral.Value > -90 {
		t.Fatalf("integral = %+v, want about -100", feats.Integral)
	}
	if !feats.Fit.OK() {
		t.Fatalf("fit status = %v", feats.Fit.Status)
	}
	testutil.RequireNearlyEqual(t, "tau", feats.Fit.Terms[0].Tau, 50, 1e-3)
}

func TestExtractSinglePoint(t *testing.T) {
	feats, err := Extract([]float64{-1}, nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !feats.Integral.OK || feats.Integral.Value != 0 {
		t.Fatalf("integral = %+v, want available 0", feats.Integral)
	}
	if feats.Fit.Status != fit.Skipped || !math.IsInf(feats.Fit.Cost, 1) {
		t.Fatalf("fit = %+v, want skipped", feats.Fit)
	}
}

func TestExtractConfigurationErrors(t *testing.T) {
	opts := DefaultOptions()
	opts.Exponentials = 5
	if _, err := Extract([]float64{1, 2}, nil, opts); !errors.Is(err, fit.ErrInvalidTerms) {
		t.Fatalf("err = %v, want ErrInvalidTerms", err)
	}

	opts.Fit = false
	if feats, err := Extract([]float64{1, 2}, nil, opts); err != nil || feats.Fit != nil {
		t.Fatalf("fit disabled: %+v, %v", feats, err)
	}
}

func TestApply(t *testing.T) {
	r := &pulse.Record{
		ID:       "p",
		Trimmed:  testutil.ExpDecay(100, []float64{1}, []float64{20}),
		TrimmedX: testutil.Axis(100, 1),
	}

	if err := Apply(r, DefaultOptions()); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Scalar(pulse.FieldIntegral); err != nil {
		t.Fatalf("integral unavailable: %v", err)
	}
	if tau, err := r.Scalar("fit_tau1"); err != nil || math.Abs(tau-20) > 1e-3 {
		t.Fatalf("fit_tau1 = %v, %v", tau, err)
	}
}
