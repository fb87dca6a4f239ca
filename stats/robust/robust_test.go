package robust

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{-7}, -7},
		{"duplicates", []float64{1, 1, 1, 9}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.in); got != tt.want {
				t.Fatalf("Median(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if !math.IsNaN(Median(nil)) {
		t.Fatal("Median(nil) should be NaN")
	}
}

func TestMedianDoesNotModifyInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	if in[0] != 3 || in[1] != 1 || in[2] != 2 {
		t.Fatalf("input reordered: %v", in)
	}
}

func TestMAD(t *testing.T) {
	median, mad := MAD([]float64{1, 2, 3, 4, 100})
	if median != 3 {
		t.Fatalf("median = %v, want 3", median)
	}
	// deviations: 2 1 0 1 97 -> median 1
	if mad != 1 {
		t.Fatalf("mad = %v, want 1", mad)
	}

	if _, mad := MAD(nil); !math.IsNaN(mad) {
		t.Fatalf("MAD(nil) = %v, want NaN", mad)
	}
}

func TestOutliersBoundary(t *testing.T) {
	// median 0, deviations {1,1,1,1,0,0,k+eps} -> MAD 1.
	const k = 3.0
	x := []float64{-1, 1, -1, 1, 0, 0, k + 0.01}

	flags := Outliers(x, k)
	if Count(flags) != 1 || !flags[6] {
		t.Fatalf("flags = %v, want only index 6", flags)
	}

	if n := Count(Outliers(x, k+0.02)); n != 0 {
		t.Fatalf("raised threshold flagged %d samples, want 0", n)
	}
}

func TestOutliersZeroMAD(t *testing.T) {
	flags := Outliers([]float64{5, 5, 5, 5, 1000}, 1)
	if Count(flags) != 0 {
		t.Fatalf("zero MAD should flag nothing, got %v", flags)
	}
}

func TestOutliersDisabled(t *testing.T) {
	if Count(Outliers([]float64{0, 1, 2, 50}, 0)) != 0 {
		t.Fatal("k = 0 should disable flagging")
	}
}
