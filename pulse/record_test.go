package pulse

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-psd/fit"
)

func TestScalarAvailability(t *testing.T) {
	r := &Record{ID: "a"}

	for _, name := range []string{FieldIntegral, FieldFitCost, FitAmp(1), FieldShapeIndicator} {
		if _, err := r.Scalar(name); !errors.Is(err, ErrFeatureUnavailable) {
			t.Fatalf("Scalar(%q) err = %v, want ErrFeatureUnavailable", name, err)
		}
	}

	if _, err := r.Scalar("peak"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("unknown field err = %v", err)
	}
	if _, err := r.Scalar(FieldRaw); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("array as scalar err = %v", err)
	}
}

func TestScalarFromFit(t *testing.T) {
	r := &Record{
		Integral: Available(-12.5),
		Fit: &fit.Result{
			Terms:  []fit.Term{{Amp: -2, Tau: 50}, {Amp: -1, Tau: 200}},
			Cost:   1e-9,
			Status: fit.Converged,
		},
	}

	tests := []struct {
		name string
		want float64
	}{
		{FieldIntegral, -12.5},
		{FieldFitCost, 1e-9},
		{"fit_amp1", -2},
		{"fit_tau2", 200},
	}

	for _, tt := range tests {
		got, err := r.Scalar(tt.name)
		if err != nil || got != tt.want {
			t.Fatalf("Scalar(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}

	if _, err := r.Scalar("fit_amp3"); !errors.Is(err, ErrFeatureUnavailable) {
		t.Fatalf("term beyond fit err = %v", err)
	}
}

func TestFailedFitFields(t *testing.T) {
	res := fit.Unusable(2, fit.Failed)
	r := &Record{Fit: &res}

	cost, err := r.Scalar(FieldFitCost)
	if err != nil || !math.IsInf(cost, 1) {
		t.Fatalf("fit_cost = %v, %v; want +Inf", cost, err)
	}

	if _, err := r.Scalar("fit_tau1"); !errors.Is(err, ErrFeatureUnavailable) {
		t.Fatalf("failed tau err = %v", err)
	}

	v, err := r.Values("fit_amp2")
	if err != nil || len(v) != 1 || !math.IsNaN(v[0]) {
		t.Fatalf("Values(fit_amp2) = %v, %v; want [NaN]", v, err)
	}
}

func TestSetScalarRebuildsFit(t *testing.T) {
	r := &Record{}

	for _, kv := range []struct {
		name string
		v    float64
	}{
		{"fit_amp1", 3}, {"fit_tau1", 10}, {"fit_amp2", 1},
	} {
		if err := r.SetScalar(kv.name, kv.v); err != nil {
			t.Fatalf("SetScalar(%q): %v", kv.name, err)
		}
	}

	if r.Fit.Status != fit.Failed {
		t.Fatalf("incomplete fit status = %v, want failed", r.Fit.Status)
	}

	_ = r.SetScalar("fit_tau2", 80)
	_ = r.SetScalar(FieldFitCost, 0.01)

	if !r.Fit.OK() || len(r.Fit.Terms) != 2 {
		t.Fatalf("complete fit = %+v, want converged with 2 terms", r.Fit)
	}

	_ = r.SetScalar(FieldIntegral, math.NaN())
	if r.Integral.OK {
		t.Fatal("NaN integral should be unavailable")
	}
}

func TestArrays(t *testing.T) {
	r := &Record{Raw: []float64{1, 2}}

	if got, err := r.Array(FieldRaw); err != nil || len(got) != 2 {
		t.Fatalf("Array(raw) = %v, %v", got, err)
	}
	if _, err := r.Array(FieldSmoothed); !errors.Is(err, ErrFeatureUnavailable) {
		t.Fatalf("nil smoothed err = %v", err)
	}
	if err := r.SetValues(FieldTrimmed, []float64{2}); err != nil || r.Trimmed[0] != 2 {
		t.Fatalf("SetValues(trimmed) = %v", err)
	}
	if got := r.Samples(); len(got) != 1 {
		t.Fatalf("Samples() = %v, want trimmed", got)
	}
}

func TestParseField(t *testing.T) {
	valid := []string{"integral", "fit_amp1", "fit_tau4", "trimmed_x", "shape_indicator"}
	for _, name := range valid {
		if _, err := ParseField(name); err != nil {
			t.Fatalf("ParseField(%q): %v", name, err)
		}
	}

	invalid := []string{"fit_amp0", "fit_amp5", "fit_tau01", "fit_amp", "cost", ""}
	for _, name := range invalid {
		if _, err := ParseField(name); !errors.Is(err, ErrUnknownField) {
			t.Fatalf("ParseField(%q) err = %v, want ErrUnknownField", name, err)
		}
	}

	if !IsArray(FieldX) || IsArray(FieldIntegral) {
		t.Fatal("IsArray misclassifies fields")
	}
}

func TestScalarFields(t *testing.T) {
	got := ScalarFields(2)
	want := []string{"integral", "fit_cost", "fit_amp1", "fit_tau1", "fit_amp2", "fit_tau2"}
	if len(got) != len(want) {
		t.Fatalf("ScalarFields(2) = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ScalarFields(2)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
