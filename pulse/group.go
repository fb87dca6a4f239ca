package pulse

import (
	"errors"
	"sort"

	"github.com/cwbudde/algo-psd/fit"
)

// Characteristic is the representative waveform of a group.
type Characteristic struct {
	Waveform []float64
	Fit      *fit.Result // nil when not fitted
}

// Group is a named, ordered collection of records.
type Group struct {
	Name           string
	Records        []*Record
	Characteristic *Characteristic
}

// NewGroup returns an empty group.
func NewGroup(name string) *Group {
	return &Group{Name: name}
}

// Len returns the number of records.
func (g *Group) Len() int { return len(g.Records) }

// Index builds an id → record map.
func (g *Group) Index() map[string]*Record {
	idx := make(map[string]*Record, len(g.Records))
	for _, r := range g.Records {
		idx[r.ID] = r
	}

	return idx
}

// Retain keeps the records for which keep returns true, preserving order,
// and returns the number removed.
func (g *Group) Retain(keep func(*Record) bool) int {
	kept := g.Records[:0]
	for _, r := range g.Records {
		if keep(r) {
			kept = append(kept, r)
		}
	}

	removed := len(g.Records) - len(kept)
	for i := len(kept); i < len(g.Records); i++ {
		g.Records[i] = nil
	}
	g.Records = kept

	return removed
}

// SortByID orders records by ID.
func (g *Group) SortByID() {
	sort.SliceStable(g.Records, func(i, j int) bool {
		return g.Records[i].ID < g.Records[j].ID
	})
}

// Scalars collects the available values of a scalar field, together with
// the records they came from.
func (g *Group) Scalars(name string) ([]float64, []*Record, error) {
	if _, err := ParseField(name); err != nil {
		return nil, nil, err
	}

	values := make([]float64, 0, len(g.Records))
	owners := make([]*Record, 0, len(g.Records))
	for _, r := range g.Records {
		v, err := r.Scalar(name)
		if err != nil {
			if errors.Is(err, ErrFeatureUnavailable) {
				continue
			}
			return nil, nil, err
		}

		values = append(values, v)
		owners = append(owners, r)
	}

	return values, owners, nil
}
