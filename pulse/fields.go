package pulse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-psd/fit"
)

// Field names.
const (
	FieldIntegral       = "integral"
	FieldFitCost        = "fit_cost"
	FieldShapeIndicator = "shape_indicator"
	FieldRaw            = "raw"
	FieldX              = "x"
	FieldSmoothed       = "smoothed"
	FieldTrimmed        = "trimmed"
	FieldTrimmedX       = "trimmed_x"

	fitAmpPrefix = "fit_amp"
	fitTauPrefix = "fit_tau"
)

type fieldKind int

const (
	kindIntegral fieldKind = iota
	kindFitCost
	kindFitAmp
	kindFitTau
	kindShapeIndicator
	kindRaw
	kindX
	kindSmoothed
	kindTrimmed
	kindTrimmedX
)

// Field is a parsed field name.
type Field struct {
	Name  string
	Array bool
	Term  int // 1-based term for fit_ampK / fit_tauK, else 0
	Kind  fieldKind
}

var namedFields = map[string]Field{
	FieldIntegral:       {Name: FieldIntegral, Kind: kindIntegral},
	FieldFitCost:        {Name: FieldFitCost, Kind: kindFitCost},
	FieldShapeIndicator: {Name: FieldShapeIndicator, Kind: kindShapeIndicator},
	FieldRaw:            {Name: FieldRaw, Array: true, Kind: kindRaw},
	FieldX:              {Name: FieldX, Array: true, Kind: kindX},
	FieldSmoothed:       {Name: FieldSmoothed, Array: true, Kind: kindSmoothed},
	FieldTrimmed:        {Name: FieldTrimmed, Array: true, Kind: kindTrimmed},
	FieldTrimmedX:       {Name: FieldTrimmedX, Array: true, Kind: kindTrimmedX},
}

// ParseField resolves a field name, returning ErrUnknownField for names
// outside the catalogue.
func ParseField(name string) (Field, error) {
	if f, ok := namedFields[name]; ok {
		return f, nil
	}

	for prefix, kind := range map[string]fieldKind{fitAmpPrefix: kindFitAmp, fitTauPrefix: kindFitTau} {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}

		k, err := strconv.Atoi(rest)
		if err != nil || k < 1 || k > fit.MaxTerms || rest != strconv.Itoa(k) {
			break
		}

		return Field{Name: name, Term: k, Kind: kind}, nil
	}

	return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// IsArray reports whether name is a known array field.
func IsArray(name string) bool {
	f, err := ParseField(name)
	return err == nil && f.Array
}

// FitAmp returns the field name of the k-th fitted amplitude.
func FitAmp(k int) string { return fitAmpPrefix + strconv.Itoa(k) }

// FitTau returns the field name of the k-th fitted time constant.
func FitTau(k int) string { return fitTauPrefix + strconv.Itoa(k) }

// ScalarFields lists the scalar features produced for an n-term fit, in
// the order they are usually saved.
func ScalarFields(terms int) []string {
	out := []string{FieldIntegral, FieldFitCost}
	for k := 1; k <= terms; k++ {
		out = append(out, FitAmp(k), FitTau(k))
	}

	return out
}
