package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/cwbudde/algo-psd/pulse"
	"github.com/cwbudde/algo-psd/store"
	"github.com/cwbudde/algo-psd/store/sqlstore"
)

// Backend persists group fields between stages and runs.
type Backend interface {
	Save(ctx context.Context, g *pulse.Group, fields []string) error
	Load(ctx context.Context, g *pulse.Group, fields []string) error
	Close() error
}

// fileBackend writes the flat-file series <dir>/<group>_<field>K.txt.
type fileBackend struct {
	dir  string
	opts store.Options
}

func (b *fileBackend) base(g *pulse.Group) string {
	return filepath.Join(b.dir, g.Name)
}

func (b *fileBackend) Save(_ context.Context, g *pulse.Group, fields []string) error {
	return store.Save(g, fields, b.base(g), b.opts)
}

func (b *fileBackend) Load(_ context.Context, g *pulse.Group, fields []string) error {
	return store.LoadInto(g, b.base(g), fields, b.opts)
}

func (b *fileBackend) Close() error { return nil }

type sqlBackend struct {
	s *sqlstore.Store
}

func (b *sqlBackend) Save(ctx context.Context, g *pulse.Group, fields []string) error {
	return b.s.Save(ctx, g, fields, false)
}

func (b *sqlBackend) Load(ctx context.Context, g *pulse.Group, fields []string) error {
	return b.s.LoadInto(ctx, g, fields)
}

func (b *sqlBackend) Close() error { return b.s.Close() }

func openBackend(ctx context.Context, c Config, log *slog.Logger) (Backend, error) {
	if c.SQL == nil {
		return &fileBackend{dir: c.OutputDir, opts: c.storeOptions(log)}, nil
	}

	s, err := sqlstore.Open(ctx, c.SQL.Driver, c.SQL.dataSource())
	if err != nil {
		return nil, err
	}
	s.SetLogger(log)

	return &sqlBackend{s: s}, nil
}
