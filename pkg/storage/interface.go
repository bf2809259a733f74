// Package storage defines where batch results go once a run completes.
// Sinks are the only output contract the batch processor relies on; the
// database-backed sinks additionally expose the transactional RecordStorage
// interfaces declared in storage.go.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"context"
	"emailcount/pkg/domain"
)

// Sink receives the records of a batch run.
type Sink interface {
	// Emit persists records in their original order. Calling Emit with an
	// empty slice is a no-op.
	Emit(ctx context.Context, records []domain.Record) error
	// Close flushes and releases the sink's resources. The sink must not be
	// used after Close.
	Close() error
}
