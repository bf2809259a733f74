package postgres

import (
	"database/sql"
	"emailcount/pkg/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PgRecord is a row of the email_counts table.
type PgRecord struct {
	ID    int64     `db:"id"     goqu:"skipinsert"`
	RunID uuid.UUID `db:"run_id"`

	Domain string        `db:"domain"`
	Source string        `db:"source"`
	Total  sql.NullInt64  `db:"total"`
	Error  sql.NullString `db:"error"`
	// Record is the record's JSON encoding, stored as jsonb.
	Record string `db:"record"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
}

func (p *PgRecord) ToDomain() (domain.Record, error) {
	var r domain.Record
	if err := r.UnmarshalJSON([]byte(p.Record)); err != nil {
		return domain.Record{}, fmt.Errorf("could not unmarshal record %d: %w", p.ID, err)
	}

	return r, nil
}

func (p *PgRecord) FromDomain(runID uuid.UUID, r domain.Record) error {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Errorf("could not marshal record of %s: %w", r.Domain, err)
	}

	*p = PgRecord{
		RunID:  runID,
		Domain: r.Domain,
		Source: r.Source,
		Total: sql.NullInt64{
			Int64: r.Total(),
			Valid: !r.Failed(),
		},
		Error: sql.NullString{
			String: r.Error,
			Valid:  r.Failed(),
		},
		Record: string(b),
	}

	return nil
}

func domainRecordsToPg(runID uuid.UUID, records []domain.Record) ([]PgRecord, error) {
	out := make([]PgRecord, len(records))
	for i := range out {
		if err := out[i].FromDomain(runID, records[i]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func pgRecordsToDomain(records []PgRecord) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		r, err := rec.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, nil
}
