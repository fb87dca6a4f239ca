package store

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cwbudde/algo-psd/pulse"
)

const maxLineBytes = 64 << 20

// Load reads the named fields of the series under base into a new group.
func Load(name, base string, fields []string, opts Options) (*pulse.Group, error) {
	g := pulse.NewGroup(name)
	if err := LoadInto(g, base, fields, opts); err != nil {
		return nil, err
	}

	return g, nil
}

// LoadInto merges the named fields into g. Values for ids already in g
// update those records; new ids append records. The group is left sorted
// by ID.
func LoadInto(g *pulse.Group, base string, fields []string, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}

	for _, name := range fields {
		if _, err := pulse.ParseField(name); err != nil {
			return err
		}
	}

	unlock := lockBase(base)
	defer unlock()

	l := &loader{group: g, index: g.Index(), opts: opts, log: opts.logger()}
	for _, field := range fields {
		files := SeriesFiles(base, field)
		if len(files) == 0 {
			return fmt.Errorf("%w: %s", ErrNoFiles, FileName(base, field, 1))
		}

		for _, f := range files {
			if err := l.readFile(f, field); err != nil {
				return err
			}
		}
	}

	g.SortByID()

	return nil
}

type loader struct {
	group *pulse.Group
	index map[string]*pulse.Record
	opts  Options
	log   *slog.Logger
}

func (l *loader) record(id string) *pulse.Record {
	if r, ok := l.index[id]; ok {
		return r
	}

	r := &pulse.Record{ID: id}
	l.index[id] = r
	l.group.Records = append(l.group.Records, r)

	return r
}

func (l *loader) readFile(path, field string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		lineNo int
		header []string
		cols   [][]float64
	)

	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := strings.Split(line, l.opts.Delimiter)

		if l.opts.Layout == Columns {
			if header == nil {
				header = trimAll(cells)
				cols = make([][]float64, len(header))
				continue
			}
			for i, cell := range cells {
				if i >= len(header) {
					break
				}
				if v, ok := l.parse(path, lineNo, cell); ok {
					cols[i] = append(cols[i], v)
				}
			}
			continue
		}

		id := strings.TrimSpace(cells[0])
		values := make([]float64, 0, len(cells)-1)
		for _, cell := range cells[1:] {
			if v, ok := l.parse(path, lineNo, cell); ok {
				values = append(values, v)
			}
		}
		if err := l.record(id).SetValues(field, values); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("store: read %s: %w", path, err)
	}

	for i, id := range header {
		if id == "" {
			continue
		}
		if err := l.record(id).SetValues(field, cols[i]); err != nil {
			return err
		}
	}

	return nil
}

func (l *loader) parse(path string, line int, cell string) (float64, bool) {
	if strings.TrimSpace(cell) == "" {
		return 0, false
	}

	v, err := parseValue(cell)
	if err != nil {
		l.log.Warn("skipping malformed value", "error", &ParseError{File: path, Line: line, Err: err})
		return 0, false
	}

	return v, true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}

	return out
}
