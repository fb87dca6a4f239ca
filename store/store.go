package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
)

// Errors returned by Save and Load.
var (
	ErrInvalidLayout    = errors.New("store: unknown layout")
	ErrInvalidDelimiter = errors.New("store: empty delimiter")
	ErrNoFiles          = errors.New("store: no files for field")
)

// Layout selects how records are arranged in a file.
type Layout int

const (
	// Rows writes one record per line.
	Rows Layout = iota
	// Columns writes one record per column.
	Columns
)

func (l Layout) String() string {
	switch l {
	case Rows:
		return "rows"
	case Columns:
		return "columns"
	default:
		return "unknown"
	}
}

// ParseLayout converts "rows" or "columns" to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "rows", "":
		return Rows, nil
	case "columns":
		return Columns, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLayout, s)
	}
}

// Options configures Save and Load.
type Options struct {
	MaxRecordsPerFile int // <= 0 means unlimited
	Delimiter         string
	Append            bool
	Layout            Layout
	Logger            *slog.Logger // skip warnings; nil discards
}

// DefaultOptions returns comma-delimited row files with 1000 records each.
func DefaultOptions() Options {
	return Options{
		MaxRecordsPerFile: 1000,
		Delimiter:         ",",
		Layout:            Rows,
	}
}

func (o Options) validate() error {
	if o.Delimiter == "" {
		return ErrInvalidDelimiter
	}
	if o.Layout != Rows && o.Layout != Columns {
		return ErrInvalidLayout
	}

	return nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}

	return slog.New(slog.DiscardHandler)
}

// ParseError describes a cell that could not be read.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q line %d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FileName returns the k-th file of a field series.
func FileName(base, field string, k int) string {
	return base + "_" + field + strconv.Itoa(k) + ".txt"
}

// SeriesFiles lists the contiguous series <base>_<field>1.txt,
// <base>_<field>2.txt, ... that exists on disk.
func SeriesFiles(base, field string) []string {
	var files []string
	for k := 1; ; k++ {
		name := FileName(base, field, k)
		if _, err := os.Stat(name); err != nil {
			return files
		}
		files = append(files, name)
	}
}

var baseLocks sync.Map // base → *sync.Mutex

func lockBase(base string) func() {
	m, _ := baseLocks.LoadOrStore(base, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
