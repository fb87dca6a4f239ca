package ingest

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cwbudde/algo-psd/pulse"
)

// Source is one table of named columns.
type Source struct {
	ID      string
	Columns map[string][]float64
	Order   []string // column names in header order
	Skipped int      // rows dropped while reading
}

// Options selects the columns that become records.
type Options struct {
	TimeColumn string   // matched case-insensitively; empty disables the axis
	Ignore     []string // further columns to drop, case-insensitive
	Logger     *slog.Logger
}

// DefaultOptions uses a column named "time" as the axis.
func DefaultOptions() Options {
	return Options{TimeColumn: "time"}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return o.Logger.With("module", "ingest")
}

// RecordID builds the run-unique id of column col in source id.
func RecordID(col, id string) string {
	return strings.ReplaceAll(col, " ", "_") + "_" + id
}

// Records returns one record per data column of src, in header order. A
// column whose length differs from the time column is skipped with a
// warning.
func Records(src *Source, opts Options) []*pulse.Record {
	log := opts.logger()

	var axis []float64
	timeName := ""
	if opts.TimeColumn != "" {
		for _, col := range src.Order {
			if strings.EqualFold(col, opts.TimeColumn) {
				axis, timeName = src.Columns[col], col
				break
			}
		}
	}

	records := make([]*pulse.Record, 0, len(src.Order))
	for _, col := range src.Order {
		if col == timeName || ignored(col, opts.Ignore) {
			continue
		}

		raw := src.Columns[col]
		if axis != nil && len(axis) != len(raw) {
			log.Warn(fmt.Sprintf("column %q has %d samples, time axis has %d; skipped", col, len(raw), len(axis)),
				"source", src.ID)
			continue
		}

		records = append(records, &pulse.Record{
			ID:     RecordID(col, src.ID),
			Source: src.ID,
			Raw:    raw,
			X:      axis,
		})
	}

	return records
}

func ignored(col string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(col, n) {
			return true
		}
	}

	return false
}
