package postgres

import (
	"context"
	"emailcount/pkg/domain"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

// RunStats aggregates the stored records of one run.
type RunStats struct {
	RunID   uuid.UUID `db:"run_id"`
	Records int       `db:"records"`
	// Failed counts failure records, i.e. rows with an error column.
	Failed     int       `db:"failed"`
	Successful int       `db:"-"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}

// StoreRecords inserts records with a single multi-row statement.
func (p *PgSQL) StoreRecords(ctx context.Context, runID uuid.UUID, records ...domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows, err := domainRecordsToPg(runID, records)
	if err != nil {
		return err
	}

	if _, err := p.insertRecords().
		Rows(rows).
		Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not store records into pg: %w", err)
	}

	return nil
}

// ListRecords returns the records of runID in insertion order.
func (p *PgSQL) ListRecords(ctx context.Context, runID uuid.UUID) ([]domain.Record, error) {
	var rows []PgRecord
	if err := p.selectRecords().
		Where(goqu.C("run_id").Eq(runID)).
		Order(goqu.C("id").Asc()).
		ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not list records from pg: %w", err)
	}

	return pgRecordsToDomain(rows)
}

// ListRuns returns one RunStats per stored run, most recent first. A
// non-positive limit returns every run.
func (p *PgSQL) ListRuns(ctx context.Context, limit int) ([]RunStats, error) {
	ds := p.selectRecords().
		Select(
			goqu.C("run_id"),
			goqu.COUNT(goqu.Star()).As("records"),
			goqu.COUNT(goqu.C("error")).As("failed"),
			goqu.MIN(goqu.C("created_at")).As("started_at"),
			goqu.MAX(goqu.C("created_at")).As("finished_at"),
		).
		GroupBy(goqu.C("run_id")).
		Order(goqu.I("finished_at").Desc(), goqu.C("run_id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	var runs []RunStats
	if err := ds.ScanStructsContext(ctx, &runs); err != nil {
		return nil, fmt.Errorf("could not list runs from pg: %w", err)
	}
	for i := range runs {
		runs[i].Successful = runs[i].Records - runs[i].Failed
	}

	return runs, nil
}
