package fit

import (
	"math"

	"github.com/cwbudde/algo-psd/internal/numeric"
	"gonum.org/v1/gonum/stat"
)

// tauSpread separates the initial time constants of neighbouring terms so
// that multi-term starts are not degenerate.
const tauSpread = 4.0

// seeds returns the starting points tried by Exponentials. x starts at 0.
func seeds(x, y []float64, terms int, lo, hi float64) [][]float64 {
	span := x[len(x)-1] - x[0]
	if !(span > 0) {
		span = float64(len(x) - 1)
	}

	fallback := span / 4
	if !(fallback > 0) {
		fallback = 1
	}

	y0 := y[0]
	starts := make([][]float64, 0, 3)

	// Secant seed over the whole window.
	slope := (y[len(y)-1] - y0) / span
	tau0 := 1 / (1 + slope)
	if !numeric.Finite(tau0) || tau0 <= 0 {
		tau0 = fallback
	}
	starts = append(starts, geometricStart(terms, numeric.Clamp(y0, lo, hi), tau0, 0))

	// Log-linear regression of |y|.
	tauR := regressionTau(x, y)
	if !numeric.Finite(tauR) || tauR <= 0 {
		tauR = fallback
	}
	centre := float64(terms-1) / 2
	starts = append(starts, geometricStart(terms, numeric.Clamp(y0/float64(terms), lo, hi), tauR, centre))

	// Window-scaled seed.
	starts = append(starts, geometricStart(terms, numeric.Clamp(y0/float64(terms), lo, hi), fallback, centre))

	return starts
}

// geometricStart spaces τ_i = tau·tauSpread^(i-centre) and assigns amp to
// every term.
func geometricStart(terms int, amp, tau, centre float64) []float64 {
	params := make([]float64, 2*terms)
	for i := 0; i < terms; i++ {
		params[2*i] = amp
		params[2*i+1] = math.Log(tau) + (float64(i)-centre)*math.Log(tauSpread)
	}

	return params
}

// regressionTau estimates a single time constant from the slope of log|y|.
// It returns NaN when fewer than two usable samples exist or the slope does
// not describe a decay.
func regressionTau(x, y []float64) float64 {
	var peak float64
	for _, v := range y {
		peak = math.Max(peak, math.Abs(v))
	}

	if peak == 0 {
		return math.NaN()
	}

	floor := peak * 1e-9
	xs := make([]float64, 0, len(y))
	ls := make([]float64, 0, len(y))
	for i, v := range y {
		if a := math.Abs(v); a > floor {
			xs = append(xs, x[i])
			ls = append(ls, math.Log(a))
		}
	}

	if len(xs) < 2 {
		return math.NaN()
	}

	_, beta := stat.LinearRegression(xs, ls, nil, false)
	if !(beta < 0) {
		return math.NaN()
	}

	return -1 / beta
}
