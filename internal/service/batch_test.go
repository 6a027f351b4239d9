package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBatchAggregates(t *testing.T) {
	repo := newMockRepo()
	r := newRunner(t, repo)
	rep, err := r.RunBatch(context.Background(), BatchRequest{
		SimulationRequest: SimulationRequest{Party: "adventurers", Encounter: "wolf-pack", Seed: seed(100)},
		Runs:              6,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, rep.Runs)
	assert.Equal(t, int64(100), rep.BaseSeed)
	assert.Equal(t, 6, rep.PartyWins+rep.MonsterWins+rep.Draws+rep.Timeouts)
	assert.InDelta(t, float64(rep.PartyWins)/6, rep.PartyWinRate, 1e-9)
	assert.Greater(t, rep.AverageRounds, 0.0)
	require.Len(t, rep.Simulations, 6)
	for i, sim := range rep.Simulations {
		assert.Equal(t, int64(100+i), sim.Seed)
		assert.Empty(t, sim.Log)
		assert.NotEmpty(t, sim.Stats)
	}

	stored, err := r.GetBatch(rep.PublicID)
	require.NoError(t, err)
	assert.Equal(t, rep.PartyWins, stored.PartyWins)
}

func TestRunBatchMatchesSingleRuns(t *testing.T) {
	r := newRunner(t, nil)
	rep, err := r.RunBatch(context.Background(), BatchRequest{
		SimulationRequest: SimulationRequest{Party: "vanguard", Encounter: "goblin-ambush", Seed: seed(7)},
		Runs:              3,
	})
	require.NoError(t, err)
	for i, sim := range rep.Simulations {
		single, err := r.RunSimulation(context.Background(), SimulationRequest{Party: "vanguard", Encounter: "goblin-ambush", Seed: seed(7 + int64(i))})
		require.NoError(t, err)
		assert.Equal(t, single.Result.Outcome, sim.Outcome)
		assert.Equal(t, single.Result.Rounds, sim.Rounds)
	}
}

func TestRunBatchLimits(t *testing.T) {
	r := newRunner(t, newMockRepo())
	base := SimulationRequest{Party: "adventurers", Encounter: "cult"}

	_, err := r.RunBatch(context.Background(), BatchRequest{SimulationRequest: base, Runs: 0})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = r.RunBatch(context.Background(), BatchRequest{SimulationRequest: base, Runs: 501})
	assert.ErrorIs(t, err, ErrTooManyRuns)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.RunBatch(ctx, BatchRequest{SimulationRequest: base, Runs: 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetBatchNotFound(t *testing.T) {
	_, err := newRunner(t, newMockRepo()).GetBatch("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
