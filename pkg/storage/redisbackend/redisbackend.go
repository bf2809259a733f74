// Package redisbackend pushes records onto Redis lists, one list per run.
package redisbackend

import (
	"context"
	"emailcount/pkg/domain"
	"emailcount/pkg/storage"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by a Sink.
const DefaultPrefix = "emailcount"

// Sink appends records to the list <prefix>:<runID> and registers the run in
// the set <prefix>:runs.
type Sink struct {
	rdb    redis.UniversalClient
	runID  string
	prefix string
	// ttl applies to the run's list only; the runs set does not expire.
	ttl time.Duration
}

// Option configures a Sink.
type Option func(*Sink)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

// WithTTL expires the run's list after d. Zero keeps it forever.
func WithTTL(d time.Duration) Option {
	return func(s *Sink) { s.ttl = d }
}

// New returns a Sink writing the records of runID through rdb. Closing the
// Sink closes rdb.
func New(rdb redis.UniversalClient, runID string, opts ...Option) *Sink {
	s := &Sink{
		rdb:    rdb,
		runID:  runID,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RunKey returns the list key holding the records of runID.
func (s *Sink) RunKey(runID string) string { return s.prefix + ":" + runID }

// RunsKey returns the set key listing every run ID written so far.
func (s *Sink) RunsKey() string { return s.prefix + ":runs" }

// Emit implements storage.Sink. All commands are sent in one MULTI/EXEC pipeline.
func (s *Sink) Emit(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	values := make([]any, 0, len(records))
	for _, r := range records {
		b, err := r.MarshalJSON()
		if err != nil {
			return fmt.Errorf("could not marshal record of %s: %w", r.Domain, err)
		}
		values = append(values, string(b))
	}

	key := s.RunKey(s.runID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.SAdd(ctx, s.RunsKey(), s.runID)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("could not push records to redis: %w", err)
	}

	return nil
}

// Records returns the records stored for runID in insertion order.
func (s *Sink) Records(ctx context.Context, runID string) ([]domain.Record, error) {
	raws, err := s.rdb.LRange(ctx, s.RunKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("could not read records from redis: %w", err)
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
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("could not close redis client: %w", err)
	}

	return nil
}

var _ storage.Sink = (*Sink)(nil)
