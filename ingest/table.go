package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Errors returned by ReadTable.
var (
	ErrNoHeader         = errors.New("ingest: missing header row")
	ErrInvalidDelimiter = errors.New("ingest: delimiter must be a single character")
)

// OpenError reports a table file that could not be read.
type OpenError struct {
	Filename string
	Err      error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// TableOptions configures ReadTable.
type TableOptions struct {
	Delimiter string // a single character
	SkipRows  int    // lines dropped before the header row
	Logger    *slog.Logger
}

// DefaultTableOptions reads comma separated tables.
func DefaultTableOptions() TableOptions {
	return TableOptions{Delimiter: ","}
}

// ReadTable parses a delimited table. A row with a missing or unparseable
// cell is dropped as a whole and counted in Source.Skipped, so every column
// keeps the same length. Cells beyond the header are ignored.
func ReadTable(r io.Reader, opts TableOptions) (*Source, error) {
	delim := opts.Delimiter
	if delim == "" {
		delim = ","
	}

	comma, size := utf8.DecodeRuneInString(delim)
	if size != len(delim) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, delim)
	}

	log := slog.New(slog.DiscardHandler)
	if opts.Logger != nil {
		log = opts.Logger.With("module", "ingest")
	}

	br := bufio.NewReader(r)
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				return nil, ErrNoHeader
			}
			return nil, err
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}

	src := &Source{Columns: make(map[string][]float64)}
	for _, name := range header {
		name = strings.TrimSpace(name)
		src.Order = append(src.Order, name)
		src.Columns[name] = nil
	}

	row := make([]float64, len(src.Order))
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}

		var perr *csv.ParseError
		if errors.As(err, &perr) {
			src.Skipped++
			log.Warn(fmt.Sprintf("line %d: %v; row skipped", perr.Line+opts.SkipRows, perr.Err))
			continue
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		line += opts.SkipRows

		if err := parseRow(cells, src.Order, row); err != nil {
			src.Skipped++
			log.Warn(fmt.Sprintf("line %d: %v; row skipped", line, err))
			continue
		}

		if len(cells) > len(src.Order) {
			log.Warn(fmt.Sprintf("line %d: %d cells beyond the header ignored", line, len(cells)-len(src.Order)))
		}

		for i, col := range src.Order {
			src.Columns[col] = append(src.Columns[col], row[i])
		}
	}

	return src, nil
}

// parseRow fills row from cells, failing on the first missing or invalid
// cell.
func parseRow(cells, names []string, row []float64) error {
	if len(cells) < len(names) {
		return fmt.Errorf("%d cells, header has %d", len(cells), len(names))
	}

	for i := range names {
		v, err := strconv.ParseFloat(strings.TrimSpace(cells[i]), 64)
		if err != nil {
			return fmt.Errorf("column %q: %w", names[i], err)
		}
		row[i] = v
	}

	return nil
}

// ReadFile reads one table file and sets its source id.
func ReadFile(name, id string, opts TableOptions) (*Source, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, &OpenError{Filename: name, Err: err}
	}
	defer f.Close()

	src, err := ReadTable(f, opts)
	if err != nil {
		return nil, &OpenError{Filename: name, Err: err}
	}
	src.ID = id

	return src, nil
}

// ReadDir reads every file in dir matching prefix*suffix. The source id is
// the file name without prefix and suffix, and sources are sorted by id.
func ReadDir(dir, prefix, suffix string, opts TableOptions) ([]*Source, error) {
	names, err := filepath.Glob(filepath.Join(dir, prefix+"*"+suffix))
	if err != nil {
		return nil, err
	}

	type entry struct{ id, name string }
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(name), prefix), suffix)
		entries = append(entries, entry{id: id, name: name})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	sources := make([]*Source, 0, len(entries))
	for _, e := range entries {
		src, err := ReadFile(e.name, e.id, opts)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	return sources, nil
}
