package combatlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendNumbersEntries(t *testing.T) {
	l := New()
	l.Addf(1, KindRoundStart, "Round %d begins", 1)
	e := l.Append(Entry{Round: 1, Kind: KindAttack, Actor: "Fighter", Action: "Longsword", Targets: []string{"Goblin"}, Message: "Fighter hits Goblin"})
	assert.Equal(t, 2, e.Seq)
	require.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"Round 1 begins", "Fighter hits Goblin"}, l.Lines())
	assert.Equal(t, "[R1] Round 1 begins\n[R1] Fighter hits Goblin\n", l.String())
}

func TestEntriesIsACopy(t *testing.T) {
	l := New()
	l.Addf(0, KindCombatStart, "start")
	got := l.Entries()
	got[0].Message = "changed"
	assert.Equal(t, "start", l.Entries()[0].Message)
}

func TestFilter(t *testing.T) {
	l := New()
	l.Addf(1, KindRoundStart, "r")
	l.Addf(1, KindDamage, "d")
	l.Addf(1, KindHeal, "h")
	assert.Len(t, Filter(l.Entries(), KindDamage, KindHeal), 2)
}
