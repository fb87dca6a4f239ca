package store

import (
	"strconv"
	"strings"
)

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseValue(cell string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}

// EncodeValues joins values with delim using the flat-file number format.
func EncodeValues(values []float64, delim string) string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = formatValue(v)
	}

	return strings.Join(cells, delim)
}

// DecodeValues is the inverse of EncodeValues. Cells that do not parse are
// skipped and returned as errors alongside the values that did.
func DecodeValues(s, delim string) ([]float64, []error) {
	if strings.TrimSpace(s) == "" {
		return []float64{}, nil
	}

	var errs []error
	cells := strings.Split(s, delim)
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		v, err := parseValue(c)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, v)
	}

	return out, errs
}
