// Package sqlstore persists pulse fields in a SQL table, as an alternative
// sink to the flat-file series of package store.
//
// Values are stored one row per (group, record, field) with the same text
// encoding the flat files use, so NaN and +Inf round-trip. MySQL
// (go-sql-driver/mysql) and SQLite (modernc.org/sqlite, driver "sqlite")
// are registered.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cwbudde/algo-psd/pulse"
	"github.com/cwbudde/algo-psd/store"
)

const valueDelimiter = ","

const schema = `CREATE TABLE IF NOT EXISTS pulse_fields (
	group_name VARCHAR(191) NOT NULL,
	unique_id  VARCHAR(191) NOT NULL,
	field      VARCHAR(64)  NOT NULL,
	value      MEDIUMTEXT   NOT NULL,
	PRIMARY KEY (group_name, unique_id, field)
)`

// ErrNoRows is returned by Load when no stored values match.
var ErrNoRows = errors.New("sqlstore: no stored values")

// Store reads and writes pulse fields.
type Store struct {
	db  *sqlx.DB
	log *slog.Logger
}

type row struct {
	UniqueID string `db:"unique_id"`
	Field    string `db:"field"`
	Value    string `db:"value"`
}

// Open connects with the named driver ("mysql" or "sqlite") and creates the
// table if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connect %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// In-memory databases live per connection.
		db.SetMaxOpenConns(1)
	}

	s, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// New wraps an existing connection and creates the table if needed.
func New(ctx context.Context, db *sqlx.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("sqlstore: create schema: %w", err)
	}

	return &Store{db: db, log: slog.New(slog.DiscardHandler)}, nil
}

// SetLogger sets the logger used for skipped values.
func (s *Store) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// MySQLDSN builds a MySQL data source name for host:port.
func MySQLDSN(user, pass, host string, port int, dbname string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = dbname
	cfg.ParseTime = true

	return cfg.FormatDSN()
}

// Save writes the named fields of every record in g. Unless appendMode is
// set, previously stored values of those fields for the group are removed
// first. The write is a single transaction.
func (s *Store) Save(ctx context.Context, g *pulse.Group, fields []string, appendMode bool) error {
	for _, name := range fields {
		if _, err := pulse.ParseField(name); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer tx.Rollback()

	for _, field := range fields {
		if !appendMode {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM pulse_fields WHERE group_name = ? AND field = ?`, g.Name, field); err != nil {
				return fmt.Errorf("sqlstore: clear %s: %w", field, err)
			}
		}

		for _, r := range g.Records {
			values, err := r.Values(field)
			if errors.Is(err, pulse.ErrFeatureUnavailable) {
				continue
			}
			if err != nil {
				return fmt.Errorf("sqlstore: %s: %w", r.ID, err)
			}

			if _, err := tx.ExecContext(ctx,
				`REPLACE INTO pulse_fields (group_name, unique_id, field, value) VALUES (?, ?, ?, ?)`,
				g.Name, r.ID, field, store.EncodeValues(values, valueDelimiter)); err != nil {
				return fmt.Errorf("sqlstore: insert %s/%s: %w", r.ID, field, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}

	return nil
}

// Load reads the named fields of a group into a new group sorted by ID.
func (s *Store) Load(ctx context.Context, name string, fields []string) (*pulse.Group, error) {
	g := pulse.NewGroup(name)
	if err := s.LoadInto(ctx, g, fields); err != nil {
		return nil, err
	}

	return g, nil
}

// LoadInto merges stored fields into g by record ID.
func (s *Store) LoadInto(ctx context.Context, g *pulse.Group, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	for _, name := range fields {
		if _, err := pulse.ParseField(name); err != nil {
			return err
		}
	}

	query, args, err := sqlx.In(
		`SELECT unique_id, field, value FROM pulse_fields WHERE group_name = ? AND field IN (?) ORDER BY unique_id, field`,
		g.Name, fields)
	if err != nil {
		return fmt.Errorf("sqlstore: build query: %w", err)
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("sqlstore: select: %w", err)
	}

	if len(rows) == 0 {
		return fmt.Errorf("%w: group %q", ErrNoRows, g.Name)
	}

	index := g.Index()
	for _, rw := range rows {
		r, ok := index[rw.UniqueID]
		if !ok {
			r = &pulse.Record{ID: rw.UniqueID}
			index[rw.UniqueID] = r
			g.Records = append(g.Records, r)
		}

		values, errs := store.DecodeValues(rw.Value, valueDelimiter)
		for _, e := range errs {
			s.log.Warn("skipping malformed value", "id", rw.UniqueID, "field", rw.Field, "error", e)
		}

		if err := r.SetValues(rw.Field, values); err != nil {
			return err
		}
	}

	g.SortByID()

	return nil
}
