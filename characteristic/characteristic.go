// Package characteristic builds the representative waveform of a pulse
// group: the sample-wise mean of its trimmed pulses, aligned at the
// minimum and cut to the shortest pulse.
package characteristic

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-psd/fit"
	"github.com/cwbudde/algo-psd/pulse"
)

// ErrEmptyGroup is returned when no record contributes samples.
var ErrEmptyGroup = errors.New("characteristic: group has no usable pulses")

// Options configures Build.
type Options struct {
	Truncate     int     // cap on the averaged length; 0 means no cap
	TimeStep     float64 // sample spacing used for the fit axis
	Fit          bool
	Exponentials int
	UpperBound   float64
}

// DefaultOptions returns an unfitted, untruncated configuration.
func DefaultOptions() Options {
	return Options{
		TimeStep:     1,
		Exponentials: 1,
		UpperBound:   math.Inf(1),
	}
}

// Build averages the group's trimmed pulses and optionally fits the result.
// The characteristic is also stored on g.
func Build(g *pulse.Group, opts Options) (*pulse.Characteristic, error) {
	if opts.Fit {
		if err := fit.ValidateTerms(opts.Exponentials); err != nil {
			return nil, err
		}
	}

	waveform, err := Mean(g.Records, opts.Truncate)
	if err != nil {
		return nil, err
	}

	c := &pulse.Characteristic{Waveform: waveform}

	if opts.Fit {
		step := opts.TimeStep
		if !(step > 0) {
			step = 1
		}

		x := make([]float64, len(waveform))
		for i := range x {
			x[i] = float64(i) * step
		}

		fo := fit.DefaultOptions()
		fo.Terms = opts.Exponentials
		fo.UpperBound = opts.UpperBound

		res, err := fit.Exponentials(x, waveform, fo)
		if err != nil {
			return nil, err
		}
		c.Fit = &res
	}

	g.Characteristic = c

	return c, nil
}

// Mean returns the sample-wise mean of the records' conditioned samples over
// the shortest length, capped at truncate when truncate > 0. Records with no
// samples are ignored.
func Mean(records []*pulse.Record, truncate int) ([]float64, error) {
	length := -1
	var used int
	for _, r := range records {
		n := len(r.Samples())
		if n == 0 {
			continue
		}
		if length < 0 || n < length {
			length = n
		}
		used++
	}

	if used == 0 {
		return nil, ErrEmptyGroup
	}

	if truncate > 0 && truncate < length {
		length = truncate
	}

	sum := make([]float64, length)
	for _, r := range records {
		s := r.Samples()
		if len(s) == 0 {
			continue
		}
		vecmath.AddBlockInPlace(sum, s[:length])
	}

	vecmath.ScaleBlockInPlace(sum, 1/float64(used))

	return sum, nil
}
