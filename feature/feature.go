// Package feature reduces a conditioned pulse to scalar features: its time
// integral and, optionally, a bounded multi-exponential fit.
package feature

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-psd/fit"
	"github.com/cwbudde/algo-psd/pulse"
)

// ErrLengthMismatch is returned when the axis and samples differ in length.
var ErrLengthMismatch = errors.New("feature: x and y length mismatch")

// Options configures Extract.
type Options struct {
	Exponentials        int     // number of fit terms, 1..4
	UpperBoundAmplitude float64 // |A_i| cap; +Inf or 0 for none
	Fit                 bool    // attempt the exponential fit
}

// DefaultOptions returns a single-term, unbounded fitting configuration.
func DefaultOptions() Options {
	return Options{
		Exponentials:        1,
		UpperBoundAmplitude: math.Inf(1),
		Fit:                 true,
	}
}

// Features holds the values produced by Extract.
type Features struct {
	Integral pulse.Feature
	Fit      *fit.Result // nil when Options.Fit is false
}

// Extract computes the integral of y over x and, when requested, fits it.
// A nil x selects the index axis. Empty input yields an unavailable
// integral; one sample integrates to zero and skips the fit.
func Extract(y, x []float64, opts Options) (Features, error) {
	if opts.Fit {
		if err := fit.ValidateTerms(opts.Exponentials); err != nil {
			return Features{}, err
		}
	}

	if x != nil && len(x) != len(y) {
		return Features{}, ErrLengthMismatch
	}

	var out Features
	if len(y) > 0 {
		out.Integral = pulse.Available(integral(y, x))
	}

	if opts.Fit {
		fo := fit.DefaultOptions()
		fo.Terms = opts.Exponentials
		fo.UpperBound = opts.UpperBoundAmplitude

		res, err := fit.Exponentials(x, y, fo)
		if err != nil {
			return Features{}, err
		}
		out.Fit = &res
	}

	return out, nil
}

// Apply runs Extract on the record's conditioned samples and stores the
// results on the record.
func Apply(r *pulse.Record, opts Options) error {
	feats, err := Extract(r.Samples(), trimmedAxis(r), opts)
	if err != nil {
		return err
	}

	r.Integral = feats.Integral
	r.Fit = feats.Fit

	return nil
}

func trimmedAxis(r *pulse.Record) []float64 {
	if r.Trimmed != nil {
		return r.TrimmedX
	}

	return r.X
}
