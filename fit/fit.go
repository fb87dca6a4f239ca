package fit

import (
	"errors"
	"math"
	"sort"
)

// Errors returned by fitting functions. Both are configuration errors; a
// fit that merely fails to converge is reported through Result.Status.
var (
	ErrInvalidTerms   = errors.New("fit: number of exponential terms must be between 1 and 4")
	ErrLengthMismatch = errors.New("fit: x and y length mismatch")
)

// MaxTerms is the largest supported number of exponential terms.
const MaxTerms = 4

// Status describes the outcome of a fit attempt.
type Status int

const (
	// Skipped means the data was too short to fit (fewer than two points).
	Skipped Status = iota
	// Converged means the optimizer met its stopping criteria.
	Converged
	// Failed means the optimizer ran out of iterations or diverged.
	Failed
)

func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Term is one amplitude/time-constant pair of the model.
type Term struct {
	Amp float64
	Tau float64
}

// Result holds the outcome of a multi-exponential fit.
type Result struct {
	Terms      []Term
	Cost       float64 // ½·Σ residual², +Inf when the fit is not usable
	Status     Status
	Iterations int
}

// OK reports whether the fit converged and its parameters may be used.
func (r *Result) OK() bool {
	return r != nil && r.Status == Converged
}

// Eval evaluates the fitted model at x. It returns NaN for unusable fits.
func (r *Result) Eval(x float64) float64 {
	if !r.OK() {
		return math.NaN()
	}

	var sum float64
	for _, t := range r.Terms {
		sum += t.Amp * math.Exp(-x/t.Tau)
	}

	return sum
}

// Curve reconstructs the model on the grid x_i = i*step, i = 0..n-1.
// It returns nil for unusable fits.
func (r *Result) Curve(n int, step float64) []float64 {
	if !r.OK() || n <= 0 {
		return nil
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = r.Eval(float64(i) * step)
	}

	return out
}

// Unusable returns a result with n NaN terms, Cost = +Inf and the given
// status. It is the shape every non-converged fit takes.
func Unusable(n int, status Status) Result {
	terms := make([]Term, n)
	for i := range terms {
		terms[i] = Term{Amp: math.NaN(), Tau: math.NaN()}
	}

	return Result{Terms: terms, Cost: math.Inf(1), Status: status}
}

// Options configures Exponentials.
type Options struct {
	// Terms is the number of exponentials, 1..4.
	Terms int
	// UpperBound caps |A_i|. Zero, negative or +Inf mean unbounded.
	UpperBound float64
	// MaxIterations bounds the number of accepted Levenberg–Marquardt steps.
	MaxIterations int
	// Tolerance is the relative cost/step change treated as convergence.
	Tolerance float64
}

// DefaultOptions returns a single-term, unbounded configuration.
func DefaultOptions() Options {
	return Options{
		Terms:         1,
		UpperBound:    math.Inf(1),
		MaxIterations: 1000,
		Tolerance:     1e-10,
	}
}

// ValidateTerms returns ErrInvalidTerms unless 1 <= n <= MaxTerms.
func ValidateTerms(n int) error {
	if n < 1 || n > MaxTerms {
		return ErrInvalidTerms
	}

	return nil
}

// Exponentials fits y(x) with a sum of opts.Terms decaying exponentials.
// A nil x selects the index axis 0..len(y)-1. Time is measured from the
// first sample, so the fitted amplitudes describe the pulse at x[0].
//
// The returned error is non-nil only for configuration problems; see the
// package documentation for how non-convergence is reported.
func Exponentials(x, y []float64, opts Options) (Result, error) {
	if err := ValidateTerms(opts.Terms); err != nil {
		return Result{}, err
	}

	if x != nil && len(x) != len(y) {
		return Result{}, ErrLengthMismatch
	}

	if len(y) < 2 {
		return Unusable(opts.Terms, Skipped), nil
	}

	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}

	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultOptions().Tolerance
	}

	xs := relativeAxis(x, len(y))
	lo, hi := amplitudeBox(y[0], opts.UpperBound)

	prob := &problem{x: xs, y: y, terms: opts.Terms, ampLo: lo, ampHi: hi}

	best := Unusable(opts.Terms, Failed)
	for _, start := range seeds(xs, y, opts.Terms, lo, hi) {
		res := prob.solve(start, opts.MaxIterations, opts.Tolerance)
		if res.Status == Converged && (best.Status != Converged || res.Cost < best.Cost) {
			best = res
		}
	}

	if best.Status != Converged {
		return Unusable(opts.Terms, Failed), nil
	}

	sortTerms(best.Terms, y[0] < 0)
	return best, nil
}

// relativeAxis returns x shifted to start at zero, or the index axis.
func relativeAxis(x []float64, n int) []float64 {
	out := make([]float64, n)
	if x == nil {
		for i := range out {
			out[i] = float64(i)
		}
		return out
	}

	for i, v := range x {
		out[i] = v - x[0]
	}

	return out
}

// amplitudeBox returns the sign-consistent amplitude bounds.
func amplitudeBox(first, upper float64) (lo, hi float64) {
	if upper <= 0 || math.IsNaN(upper) {
		upper = math.Inf(1)
	}

	if first >= 0 {
		return 0, upper
	}

	return -upper, 0
}

// sortTerms orders terms so the dominant component comes first.
func sortTerms(terms []Term, negative bool) {
	sort.SliceStable(terms, func(i, j int) bool {
		if negative {
			return terms[i].Amp < terms[j].Amp
		}
		return terms[i].Amp > terms[j].Amp
	})
}
