package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupKeyIgnoresOrderAndCase(t *testing.T) {
	a := GroupKey([]string{"Goblin", "Young Red Dragon", " goblin "})
	b := GroupKey([]string{"young red dragon", "GOBLIN", "Goblin"})
	assert.Equal(t, a, b)
	assert.Equal(t, "goblin*2+young_red_dragon", a)
	assert.Equal(t, "", GroupKey([]string{" ", ""}))
}

func TestEncounterAndRunKeys(t *testing.T) {
	k := EncounterKey([]string{"Wizard", "Fighter"}, []string{"Orc"})
	assert.Equal(t, "fighter+wizard|orc", k)

	lineup := LineupKey([]string{"Wizard", "Fighter"}, []string{"Orc"})
	assert.Equal(t, "wizard+fighter|orc", lineup)
	assert.Equal(t, "wizard+fighter|orc#42/50@Skirmish", RunKey(lineup, 42, 50, "Skirmish"))
	assert.NotEqual(t, RunKey(lineup, 42, 50, ""), RunKey(lineup, 43, 50, ""))
	assert.NotEqual(t, RunKey(lineup, 42, 50, "a"), RunKey(lineup, 42, 50, "b"))
}

func TestLineupKeyKeepsOrder(t *testing.T) {
	a := LineupKey([]string{"Fighter", "Wizard", "Cleric"}, []string{"Goblin", "Goblin Boss"})
	b := LineupKey([]string{"Cleric", "Wizard", "Fighter"}, []string{"Goblin", "Goblin Boss"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, "fighter+wizard+cleric|goblin+goblin_boss", a)
	assert.Equal(t, LineupKey([]string{"fighter", " Wizard"}, []string{"ORC"}), LineupKey([]string{"Fighter", "wizard"}, []string{"orc"}))
	assert.NotEqual(t,
		LineupKey([]string{"Goblin"}, []string{"Orc", "Goblin"}),
		LineupKey([]string{"Goblin", "Orc"}, []string{"Goblin"}))
}
