package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cwbudde/algo-psd/pulse"
)

type column struct {
	id     string
	values []float64
}

// Save writes the named fields of every record in g. Records are written
// in ID order. Records without a value for an array field are left out of
// that field's series.
func Save(g *pulse.Group, fields []string, base string, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	for _, name := range fields {
		if _, err := pulse.ParseField(name); err != nil {
			return err
		}
	}

	records := slices.Clone(g.Records)
	slices.SortStableFunc(records, func(a, b *pulse.Record) int {
		return strings.Compare(a.ID, b.ID)
	})

	unlock := lockBase(base)
	defer unlock()

	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: create output dir: %w", err)
		}
	}

	for _, name := range fields {
		cols := make([]column, 0, len(records))
		for _, r := range records {
			v, err := r.Values(name)
			if errors.Is(err, pulse.ErrFeatureUnavailable) {
				continue
			}
			if err != nil {
				return fmt.Errorf("store: %s: %w", r.ID, err)
			}
			cols = append(cols, column{id: r.ID, values: v})
		}

		if err := saveField(cols, base, name, opts); err != nil {
			return err
		}
	}

	return nil
}

func saveField(cols []column, base, field string, opts Options) error {
	existing := SeriesFiles(base, field)
	next := len(existing) + 1

	if !opts.Append {
		for _, f := range existing {
			if err := os.Remove(f); err != nil {
				return fmt.Errorf("store: remove %s: %w", f, err)
			}
		}
		next = 1
	}

	// An empty series still gets a file so Load finds the field.
	if len(cols) == 0 && next == 1 {
		name := FileName(base, field, next)
		if err := writeAtomic(name, func(io.Writer) error { return nil }); err != nil {
			return fmt.Errorf("store: write %s: %w", name, err)
		}
		return nil
	}

	per := opts.MaxRecordsPerFile
	if per <= 0 {
		per = max(len(cols), 1)
	}

	for start := 0; start < len(cols); start += per {
		chunk := cols[start:min(start+per, len(cols))]

		name := FileName(base, field, next)
		err := writeAtomic(name, func(w io.Writer) error {
			if opts.Layout == Columns {
				return writeColumns(w, chunk, opts.Delimiter)
			}
			return writeRows(w, chunk, opts.Delimiter)
		})
		if err != nil {
			return fmt.Errorf("store: write %s: %w", name, err)
		}
		next++
	}

	return nil
}

func writeRows(w io.Writer, cols []column, delim string) error {
	bw := bufio.NewWriter(w)
	for _, c := range cols {
		bw.WriteString(c.id)
		for _, v := range c.values {
			bw.WriteString(delim)
			bw.WriteString(formatValue(v))
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func writeColumns(w io.Writer, cols []column, delim string) error {
	bw := bufio.NewWriter(w)

	longest := 0
	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.id
		longest = max(longest, len(c.values))
	}

	bw.WriteString(strings.Join(ids, delim))
	bw.WriteByte('\n')

	cells := make([]string, len(cols))
	for row := 0; row < longest; row++ {
		for i, c := range cols {
			switch {
			case row < len(c.values):
				cells[i] = formatValue(c.values[row])
			case len(c.values) > 0:
				cells[i] = formatValue(c.values[len(c.values)-1])
			default:
				cells[i] = ""
			}
		}
		bw.WriteString(strings.Join(cells, delim))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// writeAtomic writes through a temporary file in the destination directory
// and renames it into place.
func writeAtomic(dest string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return nil
}
