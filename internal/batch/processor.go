// Package batch drives a list of domains through the rate-limited email count
// lookup and collects one record per domain.
package batch

import (
	"context"
	"emailcount/pkg/domain"
	"emailcount/pkg/emailcount"
	"emailcount/pkg/logger"
	"emailcount/pkg/metrics"
	"emailcount/pkg/ratelimit"
	"emailcount/pkg/storage"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultMaxResults is the record cap used when Run receives a non-positive one.
const DefaultMaxResults = 50

// Options configure optional collaborators of a Processor.
type Options struct {
	// Recorder receives per-domain measurements; nil disables metrics.
	Recorder *metrics.Recorder
	// Tracer starts one span per domain; nil uses the global tracer provider.
	Tracer trace.Tracer
}

// Processor runs batches sequentially: exactly one lookup is in flight at a
// time and records keep the relative order of their domains.
type Processor struct {
	counter  emailcount.Counter
	limiter  ratelimit.Limiter
	sink     storage.Sink
	recorder *metrics.Recorder
	tracer   trace.Tracer
}

// New creates a Processor that looks domains up through counter, paced by
// limiter, and emits the records of each run to sink.
func New(counter emailcount.Counter, limiter ratelimit.Limiter, sink storage.Sink, opts Options) *Processor {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("emailcount/internal/batch")
	}

	return &Processor{
		counter:  counter,
		limiter:  limiter,
		sink:     sink,
		recorder: opts.Recorder,
		tracer:   tracer,
	}
}

// Run processes domains in order until the list is exhausted or maxResults
// records were collected; a non-positive maxResults means DefaultMaxResults.
// Lookup failures become failure records and never stop the run. Successful
// lookups without data and blank domains produce no record, though blank
// domains still count in the summary total.
//
// The records are emitted to the sink once, and only when there is at least
// one. Run returns an error only when ctx is done before the list is finished
// or the sink fails; the collected records and the summary are returned in
// both cases.
func (p *Processor) Run(ctx context.Context, domains []string, maxResults int) ([]domain.Record, domain.Summary, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	logger.Info(ctx, fmt.Sprintf("Processing %d domains...", len(domains)),
		zap.Int("domains", len(domains)),
		zap.Int("maxResults", maxResults))

	results := make([]domain.Record, 0, min(len(domains), maxResults))
	var runErr error
	for _, name := range domains {
		if len(results) >= maxResults {
			break
		}
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("run interrupted before %s: %w", name, err)

			break
		}
		if name == "" {
			logger.Debug(ctx, "Skipping blank domain")

			continue
		}

		if err := p.limiter.Acquire(ctx); err != nil {
			runErr = fmt.Errorf("could not acquire rate limit for %s: %w", name, err)

			break
		}

		rec, ok, err := p.process(ctx, name)
		if err != nil {
			runErr = err

			break
		}
		if ok {
			results = append(results, rec)
		}
	}

	if len(results) > 0 {
		// partial results of an interrupted run are still persisted
		if err := p.sink.Emit(context.WithoutCancel(ctx), results); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("could not emit records: %w", err))
		}
	}

	summary := domain.Summarize(len(domains), results)
	logSummary(ctx, summary)

	return results, summary, runErr
}

// process looks a single domain up. It reports false when the lookup
// succeeded without data. A lookup that failed because ctx is done returns
// the error instead of a failure record.
func (p *Processor) process(ctx context.Context, name string) (domain.Record, bool, error) {
	ctx = logger.WithDomain(ctx, name)
	ctx, span := p.tracer.Start(ctx, "email_count", trace.WithAttributes(attribute.String("domain", name)))
	defer span.End()

	logger.Info(ctx, "Getting email count for domain: "+name)

	start := time.Now()
	res, err := p.counter.CountEmails(ctx, name)
	elapsed := time.Since(start)

	if err != nil && ctx.Err() != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "interrupted")
		logger.Warn(ctx, "Lookup interrupted for domain: "+name, zap.Error(err))

		return domain.Record{}, false, fmt.Errorf("lookup of %s interrupted: %w: %w", name, ctx.Err(), err)
	}
	if err != nil {
		msg := ErrorMessage(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		p.recorder.ObserveRequest(ctx, metrics.OutcomeError, elapsed)
		logger.Warn(ctx, fmt.Sprintf("Error processing domain %s: %s", name, msg), zap.Error(err))

		return domain.NewFailure(name, msg), true, nil
	}

	if res.Empty() {
		p.recorder.ObserveRequest(ctx, metrics.OutcomeEmpty, elapsed)
		logger.Debug(ctx, "No email count data returned for: "+name)

		return domain.Record{}, false, nil
	}

	rec := domain.NewSuccess(name, res.Data)
	p.recorder.ObserveRequest(ctx, metrics.OutcomeSuccess, elapsed)
	span.SetAttributes(attribute.Int64("total", rec.Total()))
	logger.Info(ctx, fmt.Sprintf("Found email count for: %s - %d emails", name, rec.Total()),
		zap.Int64("total", rec.Total()))

	return rec, true, nil
}

func logSummary(ctx context.Context, s domain.Summary) {
	logger.Info(ctx, "=== SUMMARY ===",
		zap.Int("total", s.Total),
		zap.Int("successful", s.Successful),
		zap.Int("failed", s.Failed))
	logger.Info(ctx, fmt.Sprintf("Total domains processed: %d", s.Total))
	logger.Info(ctx, fmt.Sprintf("Successful counts: %d", s.Successful))
	logger.Info(ctx, fmt.Sprintf("Failed counts: %d", s.Failed))
}
