package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestRecorderOnNoopMeter(t *testing.T) {
	r, err := NewWithMeter(noop.Meter{})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		r.Simulation(context.Background(), "party_victory", 4, 3*time.Millisecond)
		r.Failure(context.Background(), "canceled")
		r.Batch(context.Background(), 10)
	})
}

func TestGlobalAndNilRecorder(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	require.NotNil(t, r)

	var none *Recorder
	assert.NotPanics(t, func() {
		none.Simulation(context.Background(), "draw", 1, time.Millisecond)
		none.Failure(context.Background(), "x")
		none.Batch(context.Background(), 1)
	})
}
