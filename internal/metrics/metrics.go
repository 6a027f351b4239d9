// Package metrics records simulation counters through the global
// OpenTelemetry meter. Without a configured provider every instrument is
// a no-op.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ericogr/dnd-combat-sim"

// Recorder holds the simulation instruments.
type Recorder struct {
	simulations metric.Int64Counter
	failures    metric.Int64Counter
	batches     metric.Int64Counter
	rounds      metric.Int64Histogram
	duration    metric.Float64Histogram
}

// New creates the instruments on the global meter provider.
func New() (*Recorder, error) {
	return NewWithMeter(otel.Meter(meterName))
}

// NewWithMeter creates the instruments on m.
func NewWithMeter(m metric.Meter) (*Recorder, error) {
	r := &Recorder{}
	var err error

	r.simulations, err = m.Int64Counter(
		"combatsim.simulations",
		metric.WithDescription("Finished simulations by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating simulations counter: %w", err)
	}

	r.failures, err = m.Int64Counter(
		"combatsim.simulations.failed",
		metric.WithDescription("Simulations aborted by an error or cancellation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}

	r.batches, err = m.Int64Counter(
		"combatsim.batches",
		metric.WithDescription("Finished simulation batches"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batches counter: %w", err)
	}

	r.rounds, err = m.Int64Histogram(
		"combatsim.simulation.rounds",
		metric.WithDescription("Rounds fought per simulation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rounds histogram: %w", err)
	}

	r.duration, err = m.Float64Histogram(
		"combatsim.simulation.duration",
		metric.WithDescription("Wall time per simulation"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	return r, nil
}

// Simulation records a finished simulation.
func (r *Recorder) Simulation(ctx context.Context, outcome string, rounds int, elapsed time.Duration) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	r.simulations.Add(ctx, 1, attrs)
	r.rounds.Record(ctx, int64(rounds), attrs)
	r.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

// Failure records an aborted simulation.
func (r *Recorder) Failure(ctx context.Context, reason string) {
	if r == nil {
		return
	}
	r.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// Batch records a finished batch of runs simulations.
func (r *Recorder) Batch(ctx context.Context, runs int) {
	if r == nil {
		return
	}
	r.batches.Add(ctx, 1, metric.WithAttributes(attribute.Int("runs", runs)))
}
