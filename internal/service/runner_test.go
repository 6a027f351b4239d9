package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/dnd-combat-sim/internal/catalog"
	"github.com/ericogr/dnd-combat-sim/internal/combatlog"
	"github.com/ericogr/dnd-combat-sim/internal/game"
	"github.com/ericogr/dnd-combat-sim/internal/storage"
)

type mockRepo struct {
	mu          sync.Mutex
	simulations map[string]*game.SimulationRecord
	batches     map[string]*game.BatchRecord
	saveErr     error
	next        int
}

func newMockRepo() *mockRepo {
	return &mockRepo{simulations: map[string]*game.SimulationRecord{}, batches: map[string]*game.BatchRecord{}}
}

func (m *mockRepo) SaveSimulation(rec *game.SimulationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.next++
	rec.PublicID = fmt.Sprintf("sim-%d", m.next)
	m.simulations[rec.PublicID] = rec
	return nil
}

func (m *mockRepo) GetSimulation(id string) (*game.SimulationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.simulations[id]; ok {
		return rec, nil
	}
	return nil, storage.ErrNotFound
}

func (m *mockRepo) ListSimulations(limit int) ([]game.SimulationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []game.SimulationRecord
	for _, rec := range m.simulations {
		out = append(out, *rec)
	}
	return out, nil
}

func (m *mockRepo) SaveBatch(rec *game.BatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.next++
	rec.PublicID = fmt.Sprintf("batch-%d", m.next)
	m.batches[rec.PublicID] = rec
	return nil
}

func (m *mockRepo) GetBatch(id string) (*game.BatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.batches[id]; ok {
		return rec, nil
	}
	return nil, storage.ErrNotFound
}

func newRunner(t *testing.T, repo Repo) *Runner {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return NewRunner(cat, repo, DefaultSettings(), nil)
}

func seed(n int64) *int64 { return &n }

func TestRunSimulationPersistsAndIsReproducible(t *testing.T) {
	repo := newMockRepo()
	r := newRunner(t, repo)
	req := SimulationRequest{Party: "adventurers", Encounter: "goblin-ambush", Seed: seed(42)}

	first, err := r.RunSimulation(context.Background(), req)
	require.NoError(t, err)
	require.True(t, first.Result.Outcome.Terminal())
	assert.Equal(t, "adventurers vs goblin-ambush", first.Name)
	assert.Equal(t, int64(42), first.Seed)
	assert.Equal(t, 50, first.MaxRounds)
	require.NotNil(t, first.Difficulty)

	rec, err := r.GetSimulation(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Result.Outcome, rec.Outcome)
	assert.Equal(t, first.EncounterKey, rec.EncounterKey)
	var stored []combatlog.Entry
	require.NoError(t, json.Unmarshal(rec.Log, &stored))
	assert.Len(t, stored, len(first.Result.Log))

	second, err := r.RunSimulation(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Result.Outcome, second.Result.Outcome)
	assert.Equal(t, first.Result.Rounds, second.Result.Rounds)
	require.Equal(t, len(first.Result.Log), len(second.Result.Log))
	for i := range first.Result.Log {
		assert.Equal(t, first.Result.Log[i].Message, second.Result.Log[i].Message)
	}
}

func TestRunSimulationRejectsBadRequests(t *testing.T) {
	r := newRunner(t, newMockRepo())
	cases := map[string]SimulationRequest{
		"unknown party":     {Party: "nobody", Encounter: "cult"},
		"unknown encounter": {Party: "adventurers", Encounter: "nowhere"},
		"unknown member":    {Members: []string{"Bard"}, Encounter: "cult"},
		"no monsters":       {Party: "adventurers"},
		"no party":          {Encounter: "cult"},
		"negative rounds":   {Party: "adventurers", Encounter: "cult", MaxRounds: -1},
		"monster as hero":   {Characters: []game.CombatantTemplate{{Name: "Blob", CR: "1"}}, Encounter: "cult"},
		"bad inline":        {Party: "adventurers", MonsterTemplates: []game.CombatantTemplate{{Name: "Ghost", CR: "1", HP: 0, AC: 10, Actions: []string{"Bite"}}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.RunSimulation(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	_, err := r.RunSimulation(context.Background(), SimulationRequest{Party: "nobody", Encounter: "cult"})
	assert.ErrorIs(t, err, catalog.ErrUnknownName)
}

func TestRunSimulationWithInlineMonster(t *testing.T) {
	r := newRunner(t, nil)
	scores := game.AbilityScores{Str: 12, Dex: 12, Con: 12, Int: 3, Wis: 10, Cha: 5}
	req := SimulationRequest{
		Members: []string{"Fighter"},
		MonsterTemplates: []game.CombatantTemplate{
			{Name: "Giant Rat", CR: "1/8", Abilities: scores, HP: 7, AC: 12, Actions: []string{"Bite"}},
		},
		Monsters:  []catalog.Slot{{Name: "Goblin", Count: 2}},
		Seed:      seed(3),
		MaxRounds: 10,
	}
	rep, err := r.RunSimulation(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "fighter|giant_rat+goblin*2", rep.EncounterKey)
	assert.Equal(t, "Fighter vs Goblin +2", rep.Name)
	assert.LessOrEqual(t, rep.Result.Rounds, 10)
	assert.NotEmpty(t, rep.ID)
}

func TestRunSimulationCancelled(t *testing.T) {
	repo := newMockRepo()
	r := newRunner(t, repo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.RunSimulation(ctx, SimulationRequest{Party: "adventurers", Encounter: "cult", Seed: seed(1)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.simulations)
}

func TestRunSimulationSaveFailure(t *testing.T) {
	repo := newMockRepo()
	repo.saveErr = fmt.Errorf("disk full")
	r := newRunner(t, repo)
	_, err := r.RunSimulation(context.Background(), SimulationRequest{Party: "adventurers", Encounter: "cult", Seed: seed(2)})
	assert.Error(t, err)
}

func TestConcurrentSeededRequestsAgree(t *testing.T) {
	r := newRunner(t, newMockRepo())
	req := SimulationRequest{Party: "vanguard", Encounter: "orc-warband", Seed: seed(9)}
	var wg sync.WaitGroup
	reports := make([]*SimulationReport, 4)
	errs := make([]error, 4)
	for i := range reports {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i], errs[i] = r.RunSimulation(context.Background(), req)
		}()
	}
	wg.Wait()
	for i := range reports {
		require.NoError(t, errs[i])
		assert.Equal(t, reports[0].Result.Outcome, reports[i].Result.Outcome)
		assert.Equal(t, reports[0].Result.Rounds, reports[i].Result.Rounds)
	}
}

func messages(rep *SimulationReport) []string {
	out := make([]string, len(rep.Result.Log))
	for i, e := range rep.Result.Log {
		out[i] = e.Message
	}
	return out
}

func TestMemberOrderIsPartOfTheSharedRun(t *testing.T) {
	r := newRunner(t, nil)
	forward := SimulationRequest{Members: []string{"Fighter", "Wizard", "Cleric"}, Encounter: "goblin-ambush", Seed: seed(7), Name: "ambush"}
	reverse := forward
	reverse.Members = []string{"Cleric", "Wizard", "Fighter"}

	soloForward, err := r.RunSimulation(context.Background(), forward)
	require.NoError(t, err)
	soloReverse, err := r.RunSimulation(context.Background(), reverse)
	require.NoError(t, err)
	require.NotEqual(t, messages(soloForward), messages(soloReverse))

	for range 5 {
		var wg sync.WaitGroup
		var gotForward, gotReverse *SimulationReport
		var errForward, errReverse error
		wg.Add(2)
		go func() {
			defer wg.Done()
			gotForward, errForward = r.RunSimulation(context.Background(), forward)
		}()
		go func() {
			defer wg.Done()
			gotReverse, errReverse = r.RunSimulation(context.Background(), reverse)
		}()
		wg.Wait()
		require.NoError(t, errForward)
		require.NoError(t, errReverse)
		assert.Equal(t, messages(soloForward), messages(gotForward))
		assert.Equal(t, messages(soloReverse), messages(gotReverse))
	}
}

func TestCancelledCallerDoesNotCancelSharedRun(t *testing.T) {
	r := newRunner(t, newMockRepo())
	req := SimulationRequest{Party: "adventurers", Encounter: "orc-warband", Seed: seed(11)}
	for range 10 {
		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup
		var quitErr, waitErr error
		var waited *SimulationReport
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, quitErr = r.RunSimulation(ctx, req)
		}()
		go func() {
			defer wg.Done()
			waited, waitErr = r.RunSimulation(context.Background(), req)
		}()
		cancel()
		wg.Wait()
		require.NoError(t, waitErr)
		assert.True(t, waited.Result.Outcome.Terminal())
		if quitErr != nil {
			assert.ErrorIs(t, quitErr, context.Canceled)
		}
	}
}

func TestGetSimulationNotFound(t *testing.T) {
	_, err := newRunner(t, newMockRepo()).GetSimulation("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = newRunner(t, nil).GetSimulation("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
