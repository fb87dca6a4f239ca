package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-psd/internal/testutil"
)

func TestDirect(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected []float64
	}{
		{
			name:     "simple 3x3",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 1, 1},
			expected: []float64{1, 3, 6, 5, 3},
		},
		{
			name:     "impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{1},
			expected: []float64{1, 2, 3, 4, 5},
		},
		{
			name:     "delayed impulse",
			a:        []float64{1, 2, 3, 4, 5},
			b:        []float64{0, 0, 1},
			expected: []float64{0, 0, 1, 2, 3, 4, 5},
		},
		{
			name:     "symmetric",
			a:        []float64{1, 2, 1},
			b:        []float64{1, 2, 1},
			expected: []float64{1, 4, 6, 4, 1},
		},
		{
			name:     "zero samples skipped",
			a:        []float64{0, 1, 0},
			b:        []float64{2, 3},
			expected: []float64{0, 2, 3, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Direct(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(result) != len(tt.expected) {
				t.Fatalf("length mismatch: got %d, expected %d", len(result), len(tt.expected))
			}

			for i := range result {
				if math.Abs(result[i]-tt.expected[i]) > 1e-12 {
					t.Errorf("result[%d] = %v, expected %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestDirectErrors(t *testing.T) {
	if _, err := Direct(nil, []float64{1, 2}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}

	if _, err := Direct([]float64{1, 2}, nil); !errors.Is(err, ErrEmptyKernel) {
		t.Errorf("expected ErrEmptyKernel, got %v", err)
	}

	if _, err := NewOverlapAdd([]float64{1}, -1); !errors.Is(err, ErrInvalidBlockSize) {
		t.Errorf("expected ErrInvalidBlockSize, got %v", err)
	}
}

func TestOverlapAddMatchesDirect(t *testing.T) {
	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = -math.Exp(-float64(i) / 120)
	}

	for _, width := range []int{3, 65, 300} {
		kernel := Boxcar(width)

		want, err := Direct(signal, kernel)
		if err != nil {
			t.Fatal(err)
		}

		got, err := OverlapAddConvolve(signal, kernel)
		if err != nil {
			t.Fatal(err)
		}

		diff, err := testutil.MaxAbsDiff(got, want)
		if err != nil {
			t.Fatalf("width %d: %v", width, err)
		}
		if diff > 1e-10 {
			t.Fatalf("width %d: overlap-add differs from direct by %v", width, diff)
		}
	}
}

func TestOverlapAddSmallBlocks(t *testing.T) {
	oa, err := NewOverlapAdd([]float64{1, -1}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if oa.FFTSize() != 8 {
		t.Fatalf("FFTSize = %d, want 8", oa.FFTSize())
	}

	got, err := oa.Process([]float64{1, 2, 3, 4, 5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{1, 1, 1, 1, 1, 1, 1, -7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestConvolveMode(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{1, 2, 3}

	full, _ := ConvolveMode(a, b, ModeFull)
	if len(full) != len(a)+len(b)-1 {
		t.Errorf("full mode length: got %d, expected %d", len(full), len(a)+len(b)-1)
	}

	// full = 1 4 10 16 22 22 15; same starts at (3-1)/2 = 1.
	same, _ := ConvolveMode(a, b, ModeSame)
	want := []float64{4, 10, 16, 22, 22}
	for i := range want {
		if same[i] != want[i] {
			t.Fatalf("same[%d] = %v, want %v", i, same[i], want[i])
		}
	}

	valid, _ := ConvolveMode(a, b, ModeValid)
	if len(valid) != len(a)-len(b)+1 {
		t.Errorf("valid mode length: got %d, expected %d", len(valid), len(a)-len(b)+1)
	}
}

func TestConvolveModeSameLongKernel(t *testing.T) {
	a := []float64{3, 3}
	same, err := ConvolveMode(a, Boxcar(5), ModeSame)
	if err != nil {
		t.Fatal(err)
	}

	// full = 0.6 1.2 1.2 1.2 1.2 0.6; start 2.
	want := []float64{1.2, 1.2}
	if len(same) != len(a) {
		t.Fatalf("len = %d, want %d", len(same), len(a))
	}
	for i := range want {
		if math.Abs(same[i]-want[i]) > 1e-12 {
			t.Fatalf("same[%d] = %v, want %v", i, same[i], want[i])
		}
	}
}

func TestConvolveCommutative(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 5}

	ab, _ := Convolve(a, b)
	ba, _ := Convolve(b, a)

	if len(ab) != len(ba) {
		t.Fatalf("lengths differ: %d vs %d", len(ab), len(ba))
	}

	for i := range ab {
		if math.Abs(ab[i]-ba[i]) > 1e-10 {
			t.Errorf("convolution not commutative at %d: %v vs %v", i, ab[i], ba[i])
		}
	}
}

func TestBoxcar(t *testing.T) {
	if Boxcar(0) != nil {
		t.Fatal("Boxcar(0) should be nil")
	}

	var sum float64
	for _, v := range Boxcar(7) {
		sum += v
	}
	if math.Abs(sum-1) > 1e-15 {
		t.Fatalf("Boxcar(7) sums to %v, want 1", sum)
	}
}
