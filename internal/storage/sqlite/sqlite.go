// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The whole collection lives in one table, one row per record, with a
// position column that preserves collection order (a sort is part of the
// saved state). Saving rewrites the table inside a transaction, so a
// crash mid-save leaves the previous snapshot intact.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/types"

	// Side-effect only: registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath and creates the
// students table if it does not already exist.
func New(cfg *config.Config) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   position        order of the record in the collection
	//   id              student id, unique across the collection
	//   origin_country  non-empty only for international students
	//   created_at/updated_at  RFC 3339 with nanoseconds
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			position        INTEGER PRIMARY KEY,
			id              TEXT    NOT NULL UNIQUE,
			name            TEXT    NOT NULL,
			birth_date      TEXT    NOT NULL,
			email           TEXT    NOT NULL,
			program         TEXT    NOT NULL,
			enrollment_year INTEGER NOT NULL,
			address         TEXT    NOT NULL DEFAULT '',
			age             INTEGER NOT NULL,
			created_at      TEXT    NOT NULL,
			updated_at      TEXT    NOT NULL,
			origin_country  TEXT    NOT NULL DEFAULT '',
			visa_number     TEXT    NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SaveSnapshot rewrites the table with records.
//
// The DELETE and every INSERT run in one transaction. If any insert fails
// (a duplicate id, a cancelled context) the deferred Rollback undoes the
// DELETE too and the previous snapshot survives.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) SaveSnapshot(ctx context.Context, records []types.Record) error {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SaveSnapshot: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM students"); err != nil {
		return fmt.Errorf("SaveSnapshot: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO students (
			position, id, name, birth_date, email, program, enrollment_year,
			address, age, created_at, updated_at, origin_country, visa_number
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("SaveSnapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx,
			i, r.ID, r.Name, r.BirthDate, r.Email, r.Program, r.EnrollmentYear,
			r.Address, r.Age,
			r.CreatedAt.Format(time.RFC3339Nano), r.UpdatedAt.Format(time.RFC3339Nano),
			r.OriginCountry, r.VisaNumber,
		)
		if err != nil {
			return fmt.Errorf("SaveSnapshot: insert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SaveSnapshot: commit: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// LoadSnapshot returns every row in position order.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) LoadSnapshot(ctx context.Context) ([]types.Record, error) {
	rows, err := s.Db.QueryContext(ctx, `
		SELECT id, name, birth_date, email, program, enrollment_year,
		       address, age, created_at, updated_at, origin_country, visa_number
		FROM students
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: query: %w", err)
	}
	defer rows.Close()

	records := make([]types.Record, 0)

	for rows.Next() {
		var (
			r                types.Record
			created, updated string
		)
		if err := rows.Scan(
			&r.ID, &r.Name, &r.BirthDate, &r.Email, &r.Program, &r.EnrollmentYear,
			&r.Address, &r.Age, &created, &updated, &r.OriginCountry, &r.VisaNumber,
		); err != nil {
			return nil, fmt.Errorf("LoadSnapshot: scan row: %w", err)
		}

		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("LoadSnapshot: %s created_at: %w", r.ID, err)
		}
		if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("LoadSnapshot: %s updated_at: %w", r.ID, err)
		}
		if r.OriginCountry != "" {
			r.Jenis = string(types.KindInternational)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadSnapshot: rows iteration: %w", err)
	}

	return records, nil
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
