package store

import (
	"math"
	"testing"
)

func TestEncodeDecodeValues(t *testing.T) {
	in := []float64{1.5, math.Inf(1), -2e-9}
	s := EncodeValues(in, ";")
	if s != "1.5;+Inf;-2e-09" {
		t.Fatalf("EncodeValues = %q", s)
	}

	out, errs := DecodeValues(s+";junk", ";")
	if len(errs) != 1 || len(out) != 3 || !math.IsInf(out[1], 1) || out[2] != -2e-9 {
		t.Fatalf("DecodeValues = %v, %v", out, errs)
	}

	nan, _ := DecodeValues("NaN", ",")
	if !math.IsNaN(nan[0]) {
		t.Fatalf("NaN decoded as %v", nan[0])
	}

	if empty, errs := DecodeValues("", ","); len(empty) != 0 || errs != nil {
		t.Fatal("empty string should decode to no values")
	}
}
