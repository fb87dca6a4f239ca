package testutil

import (
	"math"
	"math/rand"
)

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Axis returns 0, step, 2·step, ... with length samples.
func Axis(length int, step float64) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// ExpDecay evaluates Σ amps[i]·exp(-x/taus[i]) on the index axis.
func ExpDecay(length int, amps, taus []float64) []float64 {
	out := make([]float64, length)
	for i := range out {
		for k := range amps {
			out[i] += amps[k] * math.Exp(-float64(i)/taus[k])
		}
	}
	return out
}

// NegativePulse returns a zero baseline of length onset followed by
// -amp·exp(-(t-onset)/tau) up to length samples.
func NegativePulse(length, onset int, amp, tau float64) []float64 {
	out := make([]float64, length)
	for i := onset; i < length; i++ {
		out[i] = -amp * math.Exp(-float64(i-onset)/tau)
	}
	return out
}

// Add returns a+b element-wise. b may be shorter than a.
func Add(a, b []float64) []float64 {
	out := append([]float64(nil), a...)
	for i := range b {
		if i < len(out) {
			out[i] += b[i]
		}
	}
	return out
}

// Ramp returns offset + slope·i for i = 0..length-1.
func Ramp(length int, offset, slope float64) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = offset + slope*float64(i)
	}
	return out
}
