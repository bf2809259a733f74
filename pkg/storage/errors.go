package storage

import "errors"

// Common errors returned by storage implementations.
var (
	// ErrAlreadyInTx is returned by Begin on a storage that is already bound to
	// a transaction.
	ErrAlreadyInTx = errors.New("already in tx")
	// ErrNotInTx is returned by Commit and Rollback outside of a transaction.
	ErrNotInTx = errors.New("not in tx")
	// ErrClosed is returned by Sink.Emit after the sink was closed.
	ErrClosed = errors.New("sink is closed")
)
