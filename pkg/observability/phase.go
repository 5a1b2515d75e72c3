package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	metricPhaseDuration = "rectjoin.phase.duration.seconds"
	attrPhase           = "phase"
)

// phaseDurationBuckets spans 100µs to 5 minutes, from a single short
// sweep step up to a multi-minute adaptive-engine run.
var phaseDurationBuckets = []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 300}

// PhaseRecorder times a named phase (spec.md §6's "phase records") as
// both an OTel span and a Prometheus histogram observation. It is the
// concrete type behind every Runner's "recorder" dependency.
type PhaseRecorder struct {
	tracer trace.Tracer

	mu        sync.Mutex
	histogram metric.Float64Histogram
}

// NewPhaseRecorder builds a PhaseRecorder from a set of Providers. If
// p.Meter is a no-op meter (MetricsEnabled was false), histogram
// creation still succeeds but every recorded value is discarded.
func NewPhaseRecorder(p Providers) (*PhaseRecorder, error) {
	hist, err := p.Meter.Float64Histogram(metricPhaseDuration,
		metric.WithDescription("Duration of one named join-engine phase"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(phaseDurationBuckets...),
	)
	if err != nil {
		return nil, err
	}

	return &PhaseRecorder{tracer: p.Tracer, histogram: hist}, nil
}

// Record times fn under a span named "rectjoin.<name>", emits a
// histogram observation tagged with phase=name, and returns fn's error
// unchanged — Record never swallows or wraps the underlying error kind.
func (r *PhaseRecorder) Record(name string, fn func() error) error {
	ctx, span := r.tracer.Start(context.Background(), "rectjoin."+name)
	defer span.End()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	r.mu.Lock()
	r.histogram.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String(attrPhase, name)))
	r.mu.Unlock()

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}

	return err
}

// Record is the nil-safe free function every engine calls: with a nil
// recorder it just runs fn, so Runner implementations never need to
// branch on whether a recorder was supplied.
func Record(r *PhaseRecorder, name string, fn func() error) error {
	if r == nil {
		return fn()
	}

	return r.Record(name, fn)
}
