// Package records is the SQLite-backed store for the relational side of
// the archive: transferring bodies, series, consignments and files. The
// browse endpoints read from here; the searchable copy of the metadata
// lives in the OpenSearch index.
//
// Listing queries are deliberately fail-soft: an SQL error is logged
// and an empty result returned, so a degraded database dims the browse
// pages instead of taking them down.
package records

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/recdex/recdex/internal/domain"
	domrec "github.com/recdex/recdex/internal/domain/records"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed persistence for the records hierarchy.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates a store at the given path, configures WAL mode and runs
// the schema migration.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database reachability.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Body fetches one transferring body. Returns domain.ErrNotFound for
// unknown ids.
func (s *Store) Body(ctx context.Context, id string) (domrec.Body, error) {
	var b domrec.Body
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM body WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Description)
	if err == sql.ErrNoRows {
		return domrec.Body{}, domain.ErrNotFound
	}
	if err != nil {
		return domrec.Body{}, fmt.Errorf("select body %s: %w", id, err)
	}
	return b, nil
}

// Series fetches one series. Returns domain.ErrNotFound for unknown ids.
func (s *Store) Series(ctx context.Context, id string) (domrec.Series, error) {
	var sr domrec.Series
	err := s.db.QueryRowContext(ctx,
		`SELECT id, body_id, name FROM series WHERE id = ?`, id,
	).Scan(&sr.ID, &sr.BodyID, &sr.Name)
	if err == sql.ErrNoRows {
		return domrec.Series{}, domain.ErrNotFound
	}
	if err != nil {
		return domrec.Series{}, fmt.Errorf("select series %s: %w", id, err)
	}
	return sr, nil
}

// Consignment fetches one consignment. Returns domain.ErrNotFound for
// unknown ids.
func (s *Store) Consignment(ctx context.Context, id string) (domrec.Consignment, error) {
	var c domrec.Consignment
	var transferDate sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, series_id, reference, transfer_complete_date FROM consignment WHERE id = ?`, id,
	).Scan(&c.ID, &c.SeriesID, &c.Reference, &transferDate)
	if err == sql.ErrNoRows {
		return domrec.Consignment{}, domain.ErrNotFound
	}
	if err != nil {
		return domrec.Consignment{}, fmt.Errorf("select consignment %s: %w", id, err)
	}
	c.TransferDate = parseNullableDate(transferDate)
	return c, nil
}

// failSoft logs a listing query failure in the fixed format and lets
// the caller return an empty result set.
func (s *Store) failSoft(err error) {
	s.logger.Error(fmt.Sprintf("Failed to return results from database with error : %v", err))
}

// parseNullableDate reads an ISO date or timestamp column.
func parseNullableDate(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, v.String); err == nil {
			return &t
		}
	}
	return nil
}

// displayToISO converts a dd/mm/yyyy filter value back to the ISO form
// stored in date columns. Placeholder or partial values yield "".
func displayToISO(display string) string {
	t, err := time.Parse("02/01/2006", display)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
