package storage

import (
	"context"
	"emailcount/pkg/domain"

	"github.com/google/uuid"
)

// RecordStorage stores and reads back the records of batch runs.
type RecordStorage interface {
	// StoreRecords appends records to the run identified by runID.
	StoreRecords(ctx context.Context, runID uuid.UUID, records ...domain.Record) error
	// ListRecords returns the records of runID in insertion order.
	ListRecords(ctx context.Context, runID uuid.UUID) ([]domain.Record, error)
}

// TxStorage describes a storage handle that operates within a database
// transaction. Implementations become unusable after Commit or Rollback.
type TxStorage interface {
	RecordStorage

	// Commit finalizes the transaction, persisting all changes.
	Commit() error
	// Rollback aborts the transaction, discarding all uncommitted changes.
	Rollback() error
}

// Storage describes a non-transactional storage handle with the ability to
// start transactions.
type Storage interface {
	RecordStorage

	// Close releases any resources held by the storage implementation.
	Close() error

	// Begin starts a new transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx begins a transaction, invokes cb with it, and then commits on
	// success or rolls back if cb returns an error.
	WithTx(ctx context.Context, cb func(storage RecordStorage) error) error
}
