package database

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

// RequiredTables lists the tables the API reads and writes. Check reports
// any that are missing.
var RequiredTables = []string{
	"users",
	"rooms",
	"reservations",
	"contact_messages",
	"reservation_history",
	"pousada_settings",
	"reservation_sequences",
	"newsletter_subscriptions",
}

// Migrator applies the embedded goose migrations against MySQL.
type Migrator struct {
	db *sql.DB
}

// NewMigrator binds goose to the given filesystem of *.sql files.
func NewMigrator(db *sql.DB, migrations fs.FS) (*Migrator, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("mysql"); err != nil {
		return nil, errors.Wrap(err, "goose dialect")
	}
	return &Migrator{db: db}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() error { return goose.Up(m.db, ".") }

// Down rolls back the latest migration.
func (m *Migrator) Down() error { return goose.Down(m.db, ".") }

// Reset rolls back all migrations and applies them again.
func (m *Migrator) Reset() error {
	if err := goose.Reset(m.db, "."); err != nil {
		return errors.Wrap(err, "reset")
	}
	return goose.Up(m.db, ".")
}

// Status prints the applied state of each migration through goose's logger.
func (m *Migrator) Status() error { return goose.Status(m.db, ".") }

// Version returns the current schema version.
func (m *Migrator) Version() (int64, error) { return goose.GetDBVersion(m.db) }

// TableCount is one row of the Check report.
type TableCount struct {
	Table string
	Rows  int64
}

// Check verifies that each required table exists and counts its rows.
func (m *Migrator) Check(ctx context.Context) ([]TableCount, error) {
	const q = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`
	out := make([]TableCount, 0, len(RequiredTables))
	for _, t := range RequiredTables {
		var n int
		if err := m.db.QueryRowContext(ctx, q, t).Scan(&n); err != nil {
			return nil, errors.Wrapf(err, "inspect %s", t)
		}
		if n == 0 {
			return out, errors.Errorf("missing table: %s", t)
		}
		var rows int64
		// table names come from RequiredTables, never from input
		if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t).Scan(&rows); err != nil {
			return nil, errors.Wrapf(err, "count %s", t)
		}
		out = append(out, TableCount{Table: t, Rows: rows})
	}
	return out, nil
}
