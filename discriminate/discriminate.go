package discriminate

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-psd/pulse"
)

// Errors returned by Weighting.
var (
	ErrNoCharacteristic   = errors.New("discriminate: missing characteristic waveform")
	ErrFlatCharacteristic = errors.New("discriminate: characteristic extremum is zero")
	ErrInvalidPolarity    = errors.New("discriminate: unknown polarity")
)

// Polarity selects the extremum used for normalisation.
type Polarity int

const (
	// PolarityAuto uses the maximum when the first sample is >= 0, else the
	// minimum.
	PolarityAuto Polarity = iota
	// PolarityPositive always divides by the maximum.
	PolarityPositive
	// PolarityNegative always divides by the minimum.
	PolarityNegative
)

func (p Polarity) String() string {
	switch p {
	case PolarityAuto:
		return "auto"
	case PolarityPositive:
		return "positive"
	case PolarityNegative:
		return "negative"
	default:
		return "unknown"
	}
}

// ParsePolarity converts "auto", "positive" or "negative".
func ParsePolarity(s string) (Polarity, error) {
	switch s {
	case "auto", "":
		return PolarityAuto, nil
	case "positive":
		return PolarityPositive, nil
	case "negative":
		return PolarityNegative, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPolarity, s)
	}
}

// Options configures Weighting.
type Options struct {
	UseFit   bool    // use the fitted reconstruction where the fit converged
	Polarity Polarity
	TimeStep float64 // sample spacing of the fit axis
	Truncate int     // cap on the weighting length; 0 means none
}

// DefaultOptions returns empirical waveforms with automatic polarity.
func DefaultOptions() Options {
	return Options{TimeStep: 1}
}

// Weighting returns P(t) for characteristics a and b. Its length is the
// shorter of the two waveforms, capped at opts.Truncate.
func Weighting(a, b *pulse.Characteristic, opts Options) ([]float64, error) {
	na, err := normalized(a, opts)
	if err != nil {
		return nil, fmt.Errorf("class A: %w", err)
	}

	nb, err := normalized(b, opts)
	if err != nil {
		return nil, fmt.Errorf("class B: %w", err)
	}

	n := min(len(na), len(nb))
	p := make([]float64, n)
	for i := range p {
		den := na[i] + nb[i]
		if den == 0 {
			continue
		}
		p[i] = (na[i] - nb[i]) / den
	}

	return p, nil
}

// waveform returns the fitted reconstruction when requested and available,
// and the empirical average otherwise.
func waveform(c *pulse.Characteristic, opts Options) []float64 {
	if opts.UseFit && c.Fit.OK() {
		step := opts.TimeStep
		if !(step > 0) {
			step = 1
		}
		return c.Fit.Curve(len(c.Waveform), step)
	}

	return c.Waveform
}

func normalized(c *pulse.Characteristic, opts Options) ([]float64, error) {
	if c == nil || len(c.Waveform) == 0 {
		return nil, ErrNoCharacteristic
	}

	w := waveform(c, opts)
	if opts.Truncate > 0 && opts.Truncate < len(w) {
		w = w[:opts.Truncate]
	}

	ext, err := extremum(w, opts.Polarity)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(w))
	vecmath.ScaleBlock(out, w, 1/ext)

	return out, nil
}

func extremum(w []float64, pol Polarity) (float64, error) {
	if pol == PolarityAuto {
		pol = PolarityPositive
		if w[0] < 0 {
			pol = PolarityNegative
		}
	}

	ext := w[0]
	for _, v := range w[1:] {
		switch pol {
		case PolarityPositive:
			ext = max(ext, v)
		case PolarityNegative:
			ext = min(ext, v)
		default:
			return 0, ErrInvalidPolarity
		}
	}

	if ext == 0 {
		return 0, ErrFlatCharacteristic
	}

	return ext, nil
}

// SI returns Σ s·P / Σ s over the overlap of samples and p. It reports
// pulse.ErrFeatureUnavailable for an empty overlap or a zero sum.
func SI(samples, p []float64) (float64, error) {
	n := min(len(samples), len(p))
	if n == 0 {
		return 0, pulse.ErrFeatureUnavailable
	}

	s := samples[:n]
	total := vecmath.Sum(s)
	if total == 0 {
		return 0, pulse.ErrFeatureUnavailable
	}

	return vecmath.DotProduct(s, p[:n]) / total, nil
}

// Score sets the shape indicator on every record of every group. Records
// whose SI is unavailable are left unset and counted.
func Score(groups []*pulse.Group, p []float64) (scored, unavailable int) {
	for _, g := range groups {
		for _, r := range g.Records {
			si, err := SI(r.Samples(), p)
			if err != nil {
				r.SI = pulse.Feature{}
				unavailable++
				continue
			}

			r.SI = pulse.Available(si)
			scored++
		}
	}

	return scored, unavailable
}
