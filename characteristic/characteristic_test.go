package characteristic

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-psd/fit"
	"github.com/cwbudde/algo-psd/internal/testutil"
	"github.com/cwbudde/algo-psd/pulse"
)

func TestMeanAlignsToShortest(t *testing.T) {
	records := []*pulse.Record{
		{Trimmed: []float64{-2, -1, 0, 5}},
		{Trimmed: []float64{-4, -3, -2}},
		{Trimmed: nil, Raw: nil},
	}

	got, err := Mean(records, 0)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{-3, -2, -1}, 1e-15)

	got, _ = Mean(records, 2)
	testutil.RequireSliceNearlyEqual(t, got, []float64{-3, -2}, 1e-15)

	got, _ = Mean(records, 10)
	if len(got) != 3 {
		t.Fatalf("truncate above length changed length to %d", len(got))
	}
}

func TestMeanSingleSamplePulse(t *testing.T) {
	got, err := Mean([]*pulse.Record{{Trimmed: []float64{-1}}, {Trimmed: []float64{-3, 0}}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{-2}, 0)
}

func TestBuildEmptyGroup(t *testing.T) {
	if _, err := Build(pulse.NewGroup("empty"), DefaultOptions()); !errors.Is(err, ErrEmptyGroup) {
		t.Fatalf("err = %v, want ErrEmptyGroup", err)
	}
}

func TestBuildWithFit(t *testing.T) {
	g := pulse.NewGroup("slow")
	for i, amp := range []float64{1, 1.5, 2} {
		r := &pulse.Record{ID: string(rune('a' + i)), Trimmed: testutil.ExpDecay(400+i*10, []float64{-amp}, []float64{200})}
		g.Records = append(g.Records, r)
	}

	opts := DefaultOptions()
	opts.Fit = true
	opts.TimeStep = 0.5

	c, err := Build(g, opts)
	if err != nil {
		t.Fatal(err)
	}

	if g.Characteristic != c || len(c.Waveform) != 400 {
		t.Fatalf("characteristic not stored or wrong length %d", len(c.Waveform))
	}
	testutil.RequireNearlyEqual(t, "first sample", c.Waveform[0], -1.5, 1e-12)

	if c.Fit.Status != fit.Converged {
		t.Fatalf("fit status = %v", c.Fit.Status)
	}
	// tau is measured in time units: 200 samples at 0.5 per sample.
	testutil.RequireNearlyEqual(t, "tau", c.Fit.Terms[0].Tau, 100, 1e-3)
	testutil.RequireNearlyEqual(t, "amp", c.Fit.Terms[0].Amp, -1.5, 1e-6)
}

func TestBuildInvalidTerms(t *testing.T) {
	g := pulse.NewGroup("g")
	g.Records = []*pulse.Record{{Trimmed: []float64{-1, -0.5}}}

	opts := DefaultOptions()
	opts.Fit = true
	opts.Exponentials = 0

	if _, err := Build(g, opts); !errors.Is(err, fit.ErrInvalidTerms) {
		t.Fatalf("err = %v", err)
	}
}
