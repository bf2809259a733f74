package postgres

import (
	"context"
	"emailcount/pkg/domain"
	"emailcount/pkg/storage"

	"github.com/google/uuid"
)

// Sink writes the records of one run to PostgreSQL.
type Sink struct {
	strg  storage.Storage
	runID uuid.UUID
}

// NewSink returns a Sink that stores records under runID. Closing the Sink
// closes strg.
func NewSink(strg storage.Storage, runID uuid.UUID) *Sink {
	return &Sink{strg: strg, runID: runID}
}

// Emit implements storage.Sink. All records are written in one transaction.
func (s *Sink) Emit(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	return s.strg.WithTx(ctx, func(tx storage.RecordStorage) error {
		return tx.StoreRecords(ctx, s.runID, records...)
	})
}

// Close implements storage.Sink.
func (s *Sink) Close() error {
	return s.strg.Close()
}

var (
	_ storage.Storage = (*PgSQL)(nil)
	_ storage.Sink    = (*Sink)(nil)
)
