// Package csvbackend writes records as CSV rows with a fixed set of columns.
package csvbackend

import (
	"context"
	"emailcount/pkg/domain"
	"emailcount/pkg/storage"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/go-faster/jx"
)

// Header lists the columns of every file written by a Sink.
var Header = []string{"domain", "source", "total", "error", "payload_json"} //nolint: gochecknoglobals

// Sink appends records to a CSV file, writing Header first when the file is new.
type Sink struct {
	mu          sync.Mutex
	f           *os.File
	w           *csv.Writer
	needsHeader bool
	closed      bool
}

// Open creates or appends to the CSV file at path.
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

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("could not stat output file: %w", err)
	}

	return &Sink{f: f, w: csv.NewWriter(f), needsHeader: info.Size() == 0}, nil
}

// Row converts r into a CSV row matching Header. Failure records leave total
// and payload_json empty; success records leave error empty.
func Row(r domain.Record) []string {
	if r.Failed() {
		return []string{r.Domain, r.Source, "", r.Error, ""}
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	r.Payload.Encode(e)

	return []string{r.Domain, r.Source, strconv.FormatInt(r.Total(), 10), "", e.String()}
}

// Emit implements storage.Sink.
func (s *Sink) Emit(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	if s.needsHeader {
		if err := s.w.Write(Header); err != nil {
			return fmt.Errorf("could not write csv header: %w", err)
		}
		s.needsHeader = false
	}
	for _, r := range records {
		if err := s.w.Write(Row(r)); err != nil {
			return fmt.Errorf("could not write csv row for %s: %w", r.Domain, err)
		}
	}

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("could not flush csv: %w", err)
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

	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.f.Close()

		return fmt.Errorf("could not flush csv: %w", err)
	}

	if err := s.f.Close(); err != nil {
		return fmt.Errorf("could not close output file: %w", err)
	}

	return nil
}

var _ storage.Sink = (*Sink)(nil)
