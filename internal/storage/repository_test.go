package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/ericogr/dnd-combat-sim/internal/game"
)

func newRepo(t *testing.T) Repository {
	t.Helper()
	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "sim", "test.db"))
	require.NoError(t, err)
	return NewSQLiteRepository(db)
}

func record(seed int64, outcome game.Outcome) *game.SimulationRecord {
	return &game.SimulationRecord{
		Name:         "adventurers vs goblin-ambush",
		EncounterKey: "adventurers|goblin-ambush",
		Seed:         seed,
		Outcome:      outcome,
		Rounds:       3,
		Party:        datatypes.JSON(`["Fighter","Wizard"]`),
		Encounter:    datatypes.JSON(`["Goblin"]`),
		Log:          datatypes.JSON(`[{"round":1}]`),
		Stats:        datatypes.JSON(`{}`),
	}
}

func TestSaveAndGetSimulation(t *testing.T) {
	repo := newRepo(t)
	rec := record(7, game.OutcomePartyVictory)
	require.NoError(t, repo.SaveSimulation(rec))
	require.NotEmpty(t, rec.PublicID)

	got, err := repo.GetSimulation(rec.PublicID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Seed)
	assert.Equal(t, game.OutcomePartyVictory, got.Outcome)
	assert.JSONEq(t, `[{"round":1}]`, string(got.Log))

	_, err = repo.GetSimulation("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSimulationsExcludesBatchRunsAndLogs(t *testing.T) {
	repo := newRepo(t)
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, repo.SaveSimulation(record(i, game.OutcomeMonsterVictory)))
	}
	batch := &game.BatchRecord{Name: "b", Runs: 2, Simulations: []game.SimulationRecord{
		*record(10, game.OutcomeDraw), *record(11, game.OutcomeDraw),
	}}
	require.NoError(t, repo.SaveBatch(batch))

	list, err := repo.ListSimulations(2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].Seed)
	assert.Empty(t, list[0].Log)

	all, err := repo.ListSimulations(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveAndGetBatch(t *testing.T) {
	repo := newRepo(t)
	batch := &game.BatchRecord{Name: "b", BaseSeed: 100, Runs: 2, PartyWins: 1, MonsterWins: 1,
		Simulations: []game.SimulationRecord{*record(101, game.OutcomeMonsterVictory), *record(100, game.OutcomePartyVictory)}}
	require.NoError(t, repo.SaveBatch(batch))
	require.NotEmpty(t, batch.PublicID)

	got, err := repo.GetBatch(batch.PublicID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PartyWins)
	require.Len(t, got.Simulations, 2)
	assert.Equal(t, int64(100), got.Simulations[0].Seed)
	assert.NotEmpty(t, got.Simulations[0].PublicID)

	_, err = repo.GetBatch("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogEntriesUpsert(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.SaveCatalogEntries([]game.CatalogRecord{
		{Kind: "monster", Key: "goblin", Name: "Goblin", Body: datatypes.JSON(`{"hp":7}`)},
		{Kind: "monster", Key: "orc", Name: "Orc", Body: datatypes.JSON(`{"hp":15}`)},
	}))
	require.NoError(t, repo.SaveCatalogEntries([]game.CatalogRecord{
		{Kind: "monster", Key: "goblin", Name: "Goblin", Body: datatypes.JSON(`{"hp":9}`)},
	}))

	got, err := repo.GetCatalogEntries("monster")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "goblin", got[0].Key)
	assert.JSONEq(t, `{"hp":9}`, string(got[0].Body))

	none, err := repo.GetCatalogEntries("action")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryDatabase(t *testing.T) {
	db, err := OpenAndMigrate(":memory:")
	require.NoError(t, err)
	repo := NewSQLiteRepository(db)
	require.NoError(t, repo.SaveSimulation(record(1, game.OutcomeTimeout)))
	list, err := repo.ListSimulations(10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
