// Package metrics records batch run measurements through OpenTelemetry and
// exposes them to Prometheus.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// MeterName is the instrumentation scope of every instrument created here.
const MeterName = "emailcount"

// Outcome classifies a processed domain.
type Outcome string

const (
	// OutcomeSuccess is a lookup that produced a record.
	OutcomeSuccess Outcome = "success"
	// OutcomeEmpty is a successful lookup without data; no record is produced.
	OutcomeEmpty Outcome = "empty"
	// OutcomeError is a failed lookup recorded as a failure record.
	OutcomeError Outcome = "error"
)

// Recorder records provider calls and rate limiter waits. A nil *Recorder
// discards everything.
type Recorder struct {
	requests    metric.Int64Counter
	duration    metric.Float64Histogram
	waits       metric.Int64Counter
	waitSeconds metric.Float64Counter
}

// NewRecorder creates the instruments on a meter obtained from mp.
func NewRecorder(mp metric.MeterProvider) (*Recorder, error) {
	meter := mp.Meter(MeterName)

	requests, err := meter.Int64Counter("emailcount.requests",
		metric.WithDescription("Email count lookups by outcome."))
	if err != nil {
		return nil, fmt.Errorf("could not create requests counter: %w", err)
	}
	duration, err := meter.Float64Histogram("emailcount.request.duration",
		metric.WithDescription("Latency of email count lookups."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}
	waits, err := meter.Int64Counter("emailcount.ratelimit.waits",
		metric.WithDescription("Times the rate limiter suspended the run."))
	if err != nil {
		return nil, fmt.Errorf("could not create waits counter: %w", err)
	}
	waitSeconds, err := meter.Float64Counter("emailcount.ratelimit.wait",
		metric.WithDescription("Time spent waiting on the rate limiter."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("could not create wait counter: %w", err)
	}

	return &Recorder{
		requests:    requests,
		duration:    duration,
		waits:       waits,
		waitSeconds: waitSeconds,
	}, nil
}

// ObserveRequest records one lookup that took d.
func (r *Recorder) ObserveRequest(ctx context.Context, outcome Outcome, d time.Duration) {
	if r == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", string(outcome)))
	r.requests.Add(ctx, 1, attrs)
	r.duration.Record(ctx, d.Seconds(), attrs)
}

// ObserveWait records one rate limiter wait. Its signature matches
// ratelimit.Options.OnWait.
func (r *Recorder) ObserveWait(ctx context.Context, d time.Duration) {
	if r == nil {
		return
	}

	r.waits.Add(ctx, 1)
	r.waitSeconds.Add(ctx, d.Seconds())
}

// NewMeterProvider returns a MeterProvider whose instruments are exported on reg.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}
