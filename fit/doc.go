// Package fit models conditioned pulses as a bounded sum of decaying
// exponentials.
//
// The model is
//
//	f(x) = Σ A_i · exp(-x / τ_i),  i = 1..n,  n ∈ {1, 2, 3, 4}
//
// and is solved with a projected Levenberg–Marquardt iteration. Time
// constants are optimised in log space so that τ stays strictly positive,
// and amplitudes are projected onto a sign-consistent box chosen from the
// first sample: [0, U] for non-negative pulses, [-U, 0] otherwise.
//
// # Usage
//
//	opts := fit.DefaultOptions()
//	opts.Terms = 2
//	res, err := fit.Exponentials(x, y, opts)
//	if err != nil {
//		// configuration error (bad term count, mismatched axes)
//	}
//	if res.OK() {
//		fmt.Println(res.Terms[0].Amp, res.Terms[0].Tau, res.Cost)
//	}
//
// A fit that does not converge is not an error. The returned [Result] has
// status [Failed], exactly Terms entries set to NaN and Cost = +Inf, so
// callers can filter it like any other unavailable feature.
//
// # Ordering
//
// Converged terms are sorted by amplitude: descending for positive-signed
// fits, ascending for negative-signed fits. The dominant component always
// comes first.
package fit
