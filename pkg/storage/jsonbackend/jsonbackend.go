// Package jsonbackend writes records as newline-delimited JSON.
package jsonbackend

import (
	"bytes"
	"context"
	"emailcount/pkg/domain"
	"emailcount/pkg/storage"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/jx"
)

// Sink appends one JSON object per record to its writer.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	closed bool
}

// Open creates or appends to the NDJSON file at path.
func Open(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("could not open output file: %w", err)
	}

	return &Sink{w: f, closer: f}, nil
}

// NewWriter returns a Sink writing to w. Closing the Sink leaves w open.
func NewWriter(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Emit implements storage.Sink. Records are written with a single Write call.
func (s *Sink) Emit(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	var buf bytes.Buffer
	for _, r := range records {
		e.Reset()
		r.Encode(e)
		buf.Write(e.Bytes())
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("could not write records: %w", err)
	}

	return nil
}

// Close implements storage.Sink. Closing twice is a no-op.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.closer == nil {
		return nil
	}

	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("could not close output file: %w", err)
	}

	return nil
}

var _ storage.Sink = (*Sink)(nil)
