// Package condition prepares raw pulses for feature extraction: optional
// per-sample outlier replacement, boxcar smoothing and trimming to the
// global minimum.
package condition

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-psd/dsp/conv"
	"github.com/cwbudde/algo-psd/internal/numeric"
	"github.com/cwbudde/algo-psd/pulse"
	"github.com/cwbudde/algo-psd/stats/robust"
)

// Configuration errors returned by Condition.
var (
	ErrInvalidWidth     = errors.New("condition: smoothing width must be >= 1")
	ErrInvalidThreshold = errors.New("condition: outlier threshold must be >= 0")
	ErrEmptyWaveform    = errors.New("condition: empty waveform")
	ErrAxisMismatch     = errors.New("condition: x and samples differ in length")
)

// Options configures Condition.
type Options struct {
	SmoothWidth      int     // boxcar width; 1 disables smoothing
	Trim             bool    // drop samples before the minimum
	OutlierThreshold float64 // MAD multiples; 0 disables replacement
}

// DefaultOptions returns trimming without smoothing or outlier replacement.
func DefaultOptions() Options {
	return Options{SmoothWidth: 1, Trim: true}
}

// Validate checks opts for configuration errors.
func (o Options) Validate() error {
	if o.SmoothWidth < 1 {
		return ErrInvalidWidth
	}
	if o.OutlierThreshold < 0 {
		return ErrInvalidThreshold
	}

	return nil
}

// Conditioned is the output of Condition.
type Conditioned struct {
	Samples  []float64 // raw samples after outlier replacement
	Smoothed []float64 // nil when SmoothWidth == 1
	Trimmed  []float64
	TrimmedX []float64 // nil when x is nil
	MinIndex int       // start of Trimmed within Samples
	Replaced int       // samples replaced by the median
}

// Condition runs outlier replacement, smoothing and trimming on raw. The
// input slices are not modified. A nil x selects the index axis.
func Condition(raw, x []float64, opts Options) (Conditioned, error) {
	if err := opts.Validate(); err != nil {
		return Conditioned{}, err
	}
	if len(raw) == 0 {
		return Conditioned{}, ErrEmptyWaveform
	}
	if x != nil && len(x) != len(raw) {
		return Conditioned{}, fmt.Errorf("%w: %d vs %d", ErrAxisMismatch, len(x), len(raw))
	}

	var out Conditioned
	out.Samples, out.Replaced = RejectOutliers(raw, opts.OutlierThreshold)

	reference := out.Samples
	if opts.SmoothWidth > 1 {
		smoothed, err := Smooth(out.Samples, opts.SmoothWidth)
		if err != nil {
			return Conditioned{}, err
		}
		out.Smoothed = smoothed
		reference = smoothed
	}

	if !opts.Trim {
		out.Trimmed = reference
		out.TrimmedX = x
		return out, nil
	}

	out.MinIndex = numeric.ArgMin(reference)
	if out.MinIndex < 0 {
		// All NaN: nothing to anchor on, keep everything.
		out.MinIndex = 0
	}

	out.Trimmed = out.Samples[out.MinIndex:]
	if x != nil {
		out.TrimmedX = x[out.MinIndex:]
	}

	return out, nil
}

// Smooth convolves samples with ones(width)/width and returns the centred
// "same"-length result. Width 1 returns a copy.
func Smooth(samples []float64, width int) ([]float64, error) {
	if width < 1 {
		return nil, ErrInvalidWidth
	}
	if len(samples) == 0 {
		return nil, ErrEmptyWaveform
	}
	if width == 1 {
		return append([]float64(nil), samples...), nil
	}

	return conv.ConvolveMode(samples, conv.Boxcar(width), conv.ModeSame)
}

// RejectOutliers returns a copy of samples in which every sample further
// than k MADs from the median is replaced by the median, and the number of
// replacements. k == 0 or a zero MAD leaves the copy unchanged.
func RejectOutliers(samples []float64, k float64) ([]float64, int) {
	out := append([]float64(nil), samples...)
	if k <= 0 {
		return out, 0
	}

	flags := robust.Outliers(out, k)
	n := robust.Count(flags)
	if n == 0 {
		return out, 0
	}

	median := robust.Median(out)
	for i, bad := range flags {
		if bad {
			out[i] = median
		}
	}

	return out, n
}

// Apply conditions the record's raw samples in place.
func Apply(r *pulse.Record, opts Options) error {
	c, err := Condition(r.Raw, r.X, opts)
	if err != nil {
		return fmt.Errorf("condition %s: %w", r.ID, err)
	}

	r.Smoothed = c.Smoothed
	r.Trimmed = c.Trimmed
	r.TrimmedX = c.TrimmedX

	return nil
}
