// Package sqlite stores batch results in a local SQLite database using the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"emailcount/pkg/domain"
	"emailcount/pkg/storage"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	recordsTable = "email_counts"
)

const schema = `
CREATE TABLE IF NOT EXISTS email_counts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	domain TEXT NOT NULL,
	source TEXT NOT NULL,
	total INTEGER,
	error TEXT,
	record TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS email_counts_run_id_idx ON email_counts (run_id, id);
`

type row struct {
	RunID     string         `db:"run_id"`
	Domain    string         `db:"domain"`
	Source    string         `db:"source"`
	Total     sql.NullInt64  `db:"total"`
	Error     sql.NullString `db:"error"`
	Record    string         `db:"record"`
	CreatedAt string         `db:"created_at"`
}

// Sink writes the records of one run to SQLite.
type Sink struct {
	db      *sql.DB
	builder *goqu.Database
	runID   uuid.UUID
	now     func() time.Time
}

// Open opens (creating if needed) the SQLite database at dsn and prepares the
// email_counts table. Records emitted through the Sink are stored under runID.
func Open(ctx context.Context, dsn string, runID uuid.UUID) (*Sink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite: %w", err)
	}
	// a single connection keeps in-memory databases visible to every query
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("could not create sqlite schema: %w", err)
	}

	return &Sink{
		db:      db,
		builder: goqu.Dialect("sqlite3").DB(db),
		runID:   runID,
		now:     time.Now,
	}, nil
}

// Emit implements storage.Sink. All records are inserted in one transaction.
func (s *Sink) Emit(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	createdAt := s.now().UTC().Format(time.RFC3339Nano)
	rows := make([]row, 0, len(records))
	for _, r := range records {
		b, err := r.MarshalJSON()
		if err != nil {
			return fmt.Errorf("could not marshal record of %s: %w", r.Domain, err)
		}
		rows = append(rows, row{
			RunID:     s.runID.String(),
			Domain:    r.Domain,
			Source:    r.Source,
			Total:     sql.NullInt64{Int64: r.Total(), Valid: !r.Failed()},
			Error:     sql.NullString{String: r.Error, Valid: r.Failed()},
			Record:    string(b),
			CreatedAt: createdAt,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin tx: %w", err)
	}

	if _, err := goqu.NewTx("sqlite3", tx).Insert(recordsTable).Rows(rows).Executor().ExecContext(ctx); err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("could not store records into sqlite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit tx: %w", err)
	}

	return nil
}

// Records returns the records stored under runID in insertion order.
func (s *Sink) Records(ctx context.Context, runID uuid.UUID) ([]domain.Record, error) {
	var raws []string
	if err := s.builder.From(recordsTable).
		Select("record").
		Where(goqu.I("run_id").Eq(runID.String())).
		Order(goqu.I("id").Asc()).
		ScanValsContext(ctx, &raws); err != nil {
		return nil, fmt.Errorf("could not list records from sqlite: %w", err)
	}

	out := make([]domain.Record, 0, len(raws))
	for _, raw := range raws {
		var r domain.Record
		if err := r.UnmarshalJSON([]byte(raw)); err != nil {
			return nil, fmt.Errorf("could not unmarshal record: %w", err)
		}
		out = append(out, r)
	}

	return out, nil
}

// Close implements storage.Sink.
func (s *Sink) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("could not close sqlite: %w", err)
	}

	return nil
}

var _ storage.Sink = (*Sink)(nil)
