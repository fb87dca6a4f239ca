// Package logging provides the bracketed single-line slog handler used by
// the command line tools.
//
// A record is written as
//
//	[2006/01/02 15:04:05] [value] [value] message
//
// with one bracket per attribute value, attributes attached through
// Logger.With first.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const timeFormat = "[2006/01/02 15:04:05]"

// Handler is a slog.Handler that prints attribute values only.
type Handler struct {
	level slog.Leveler
	attrs []slog.Attr
	mu    *sync.Mutex
	out   io.Writer
}

// NewHandler returns a handler writing to out. A nil opts logs Info and
// above.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	level := slog.Leveler(slog.LevelInfo)
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &Handler{level: level, mu: &sync.Mutex{}, out: out}
}

// New returns a logger for verbosity v: 0 is Info, anything above is Debug.
func New(out io.Writer, verbosity int) *slog.Logger {
	level := slog.LevelInfo
	if verbosity > 0 {
		level = slog.LevelDebug
	}

	return slog.New(NewHandler(out, &slog.HandlerOptions{Level: level}))
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	return &Handler{level: h.level, attrs: merged, mu: h.mu, out: h.out}
}

// WithGroup implements slog.Handler. It is a no-op; only values are printed.
func (h *Handler) WithGroup(string) slog.Handler {
	return h
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	strs := make([]string, 0, 2+len(h.attrs)+r.NumAttrs())
	if !r.Time.IsZero() {
		strs = append(strs, r.Time.Format(timeFormat))
	}

	if r.Level != slog.LevelInfo {
		strs = append(strs, "["+r.Level.String()+"]")
	}

	for _, a := range h.attrs {
		strs = appendAttr(strs, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		strs = appendAttr(strs, a)
		return true
	})

	strs = append(strs, r.Message)
	line := strings.Join(strs, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.out, line)

	return err
}

func appendAttr(strs []string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return strs
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			strs = appendAttr(strs, g)
		}
		return strs
	}

	return append(strs, "["+a.Value.String()+"]")
}
