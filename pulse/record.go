package pulse

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-psd/fit"
)

var (
	// ErrFeatureUnavailable is returned when a known value has not been
	// computed, or its computation failed.
	ErrFeatureUnavailable = errors.New("pulse: feature unavailable")
	// ErrUnknownField is returned for a field name outside the catalogue.
	ErrUnknownField = errors.New("pulse: unknown field")
)

// Feature is an optional scalar.
type Feature struct {
	Value float64
	OK    bool
}

// Available wraps v as a present feature.
func Available(v float64) Feature {
	return Feature{Value: v, OK: true}
}

// Record is a single pulse and its derived values.
type Record struct {
	ID     string
	Source string

	Raw []float64
	X   []float64 // nil selects the index axis

	Smoothed []float64 // nil unless smoothing width > 1
	Trimmed  []float64
	TrimmedX []float64

	Integral Feature
	Fit      *fit.Result
	SI       Feature
}

// Samples returns the conditioned samples, falling back to Raw for records
// that were never conditioned.
func (r *Record) Samples() []float64 {
	if r.Trimmed != nil {
		return r.Trimmed
	}

	return r.Raw
}

// Scalar returns the named scalar value.
//
// A fit that failed reports fit_cost as +Inf, which is available, while its
// amplitudes and time constants are unavailable.
func (r *Record) Scalar(name string) (float64, error) {
	f, err := ParseField(name)
	if err != nil {
		return 0, err
	}

	if f.Array {
		return 0, ErrUnknownField
	}

	var v float64
	switch f.Kind {
	case kindIntegral:
		if !r.Integral.OK {
			return 0, ErrFeatureUnavailable
		}
		v = r.Integral.Value
	case kindShapeIndicator:
		if !r.SI.OK {
			return 0, ErrFeatureUnavailable
		}
		v = r.SI.Value
	case kindFitCost:
		if r.Fit == nil || math.IsNaN(r.Fit.Cost) {
			return 0, ErrFeatureUnavailable
		}
		return r.Fit.Cost, nil
	case kindFitAmp, kindFitTau:
		if r.Fit == nil || f.Term > len(r.Fit.Terms) {
			return 0, ErrFeatureUnavailable
		}
		term := r.Fit.Terms[f.Term-1]
		v = term.Amp
		if f.Kind == kindFitTau {
			v = term.Tau
		}
	}

	if math.IsNaN(v) {
		return 0, ErrFeatureUnavailable
	}

	return v, nil
}

// SetScalar stores a scalar, typically one read back from persistence.
// NaN marks the value unavailable. Loading fit values rebuilds Fit with a
// status derived from the values present: converged only when the cost and
// every term are finite.
func (r *Record) SetScalar(name string, v float64) error {
	f, err := ParseField(name)
	if err != nil {
		return err
	}

	if f.Array {
		return ErrUnknownField
	}

	switch f.Kind {
	case kindIntegral:
		r.Integral = Feature{Value: v, OK: !math.IsNaN(v)}
		return nil
	case kindShapeIndicator:
		r.SI = Feature{Value: v, OK: !math.IsNaN(v)}
		return nil
	}

	// A missing value for a record that never had a fit keeps Fit nil.
	if r.Fit == nil && math.IsNaN(v) {
		return nil
	}

	r.ensureFit(f.Term)
	switch f.Kind {
	case kindFitCost:
		r.Fit.Cost = v
	case kindFitAmp:
		r.Fit.Terms[f.Term-1].Amp = v
	case kindFitTau:
		r.Fit.Terms[f.Term-1].Tau = v
	}
	r.refreshFitStatus()

	return nil
}

// Array returns the named array.
func (r *Record) Array(name string) ([]float64, error) {
	f, err := ParseField(name)
	if err != nil {
		return nil, err
	}

	if !f.Array {
		return nil, ErrUnknownField
	}

	var v []float64
	switch f.Kind {
	case kindRaw:
		v = r.Raw
	case kindX:
		v = r.X
	case kindSmoothed:
		v = r.Smoothed
	case kindTrimmed:
		v = r.Trimmed
	case kindTrimmedX:
		v = r.TrimmedX
	}

	if v == nil {
		return nil, ErrFeatureUnavailable
	}

	return v, nil
}

// SetArray stores the named array.
func (r *Record) SetArray(name string, v []float64) error {
	f, err := ParseField(name)
	if err != nil {
		return err
	}

	if !f.Array {
		return ErrUnknownField
	}

	switch f.Kind {
	case kindRaw:
		r.Raw = v
	case kindX:
		r.X = v
	case kindSmoothed:
		r.Smoothed = v
	case kindTrimmed:
		r.Trimmed = v
	case kindTrimmedX:
		r.TrimmedX = v
	}

	return nil
}

// Values returns the values of a field for persistence: a one-element slice
// for scalars, the array itself for arrays. Unavailable scalars encode as
// NaN, except fit_cost which is +Inf for any attempted fit.
func (r *Record) Values(name string) ([]float64, error) {
	f, err := ParseField(name)
	if err != nil {
		return nil, err
	}

	if f.Array {
		return r.Array(name)
	}

	v, err := r.Scalar(name)
	if errors.Is(err, ErrFeatureUnavailable) {
		return []float64{math.NaN()}, nil
	}
	if err != nil {
		return nil, err
	}

	return []float64{v}, nil
}

// SetValues is the inverse of Values.
func (r *Record) SetValues(name string, v []float64) error {
	f, err := ParseField(name)
	if err != nil {
		return err
	}

	if f.Array {
		return r.SetArray(name, v)
	}

	if len(v) == 0 {
		return nil
	}

	return r.SetScalar(name, v[0])
}

func (r *Record) ensureFit(terms int) {
	if r.Fit == nil {
		r.Fit = &fit.Result{Cost: math.Inf(1), Status: fit.Failed}
	}

	for len(r.Fit.Terms) < terms {
		r.Fit.Terms = append(r.Fit.Terms, fit.Term{Amp: math.NaN(), Tau: math.NaN()})
	}
}

func (r *Record) refreshFitStatus() {
	status := fit.Converged
	if math.IsInf(r.Fit.Cost, 0) || math.IsNaN(r.Fit.Cost) || len(r.Fit.Terms) == 0 {
		status = fit.Failed
	}

	for _, t := range r.Fit.Terms {
		if math.IsNaN(t.Amp) || math.IsNaN(t.Tau) {
			status = fit.Failed
		}
	}

	r.Fit.Status = status
}
