package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ericogr/dnd-combat-sim/internal/game"
)

// fakeState is a hand-built State; all combatants are listed in
// initiative order.
type fakeState struct {
	round   int
	all     []*game.Combatant
	dealt   map[string]int
	conc    map[string]bool
	effects map[string][]string
	kinds   map[string][]game.EffectKind
}

func newState(all ...*game.Combatant) *fakeState {
	return &fakeState{
		round: 1, all: all,
		dealt: map[string]int{}, conc: map[string]bool{},
		effects: map[string][]string{}, kinds: map[string][]game.EffectKind{},
	}
}

func (f *fakeState) Round() int { return f.round }

func (f *fakeState) pick(keep func(*game.Combatant) bool) []*game.Combatant {
	var out []*game.Combatant
	for _, c := range f.all {
		if c.Alive() && keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeState) Allies(c *game.Combatant) []*game.Combatant {
	return f.pick(func(o *game.Combatant) bool { return o.Side == c.Side })
}

func (f *fakeState) Enemies(c *game.Combatant) []*game.Combatant {
	return f.pick(func(o *game.Combatant) bool { return o.Side != c.Side })
}

func (f *fakeState) Position(c *game.Combatant) int {
	for i, o := range f.all {
		if o == c {
			return i
		}
	}
	return len(f.all)
}

func (f *fakeState) DamageDealt(c *game.Combatant) int   { return f.dealt[c.ID] }
func (f *fakeState) Concentrating(c *game.Combatant) bool { return f.conc[c.ID] }

func (f *fakeState) HasEffect(c *game.Combatant, name string) bool {
	for _, n := range f.effects[c.ID] {
		if n == name {
			return true
		}
	}
	return false
}

func (f *fakeState) HasKind(c *game.Combatant, kind game.EffectKind) bool {
	for _, k := range f.kinds[c.ID] {
		if k == kind {
			return true
		}
	}
	return false
}

func (f *fakeState) ExpectedBonus(*game.Combatant, game.EffectKind) float64 { return 0 }

func act(t testing.TB, a *game.Action) *game.Action {
	require.NoError(t, a.Compile())
	return a
}

func unit(id string, side game.Side, hp, ac int, x, y float64, actions ...*game.Action) *game.Combatant {
	return &game.Combatant{
		ID: id, Name: id, Side: side, Level: 5, Proficiency: 3,
		Abilities: game.AbilityScores{Str: 16, Dex: 14, Con: 14, Int: 16, Wis: 14, Cha: 10},
		MaxHP:     hp, HP: hp, AC: ac, Speed: game.DefaultSpeed,
		Position: game.Position{X: x, Y: y}, Actions: actions, Slots: map[int]int{1: 2, 3: 1},
	}
}

var (
	party   = game.SideParty
	monster = game.SideMonster
)

func sword(t testing.TB) *game.Action {
	return act(t, &game.Action{Name: "Longsword", Kind: game.ActionAttack, Style: game.StyleMelee,
		Damage: "1d8", DamageType: game.Slashing, AddModifier: true})
}

func fireball(t testing.TB) *game.Action {
	return act(t, &game.Action{Name: "Fireball", Kind: game.ActionArea, SlotLevel: 3, Range: 150,
		Damage: "8d6", DamageType: game.Fire, Save: game.DEX, HalfOnSave: true,
		Area: &game.Area{Shape: game.Sphere, Size: 20}})
}

func bless(t testing.TB) *game.Action {
	return act(t, &game.Action{Name: "Bless", Kind: game.ActionBuff, SlotLevel: 1, Range: 30,
		Targets: game.TargetAllies, MaxTargets: 3, Concentration: true,
		Effects: []game.EffectTemplate{{Kind: game.EffectAttackBonus, Dice: "1d4", Duration: 10}}})
}

func cure(t testing.TB) *game.Action {
	return act(t, &game.Action{Name: "Cure Wounds", Kind: game.ActionHeal, SlotLevel: 1, Healing: "1d8"})
}

func TestHitChance(t *testing.T) {
	assert.InDelta(t, 0.55, HitChance(5, 15, false, false), 1e-9)
	assert.InDelta(t, 0.05, HitChance(0, 40, false, false), 1e-9)
	assert.InDelta(t, 0.95, HitChance(20, 5, false, false), 1e-9)
	assert.InDelta(t, 1-0.45*0.45, HitChance(5, 15, true, false), 1e-9)
	assert.InDelta(t, 0.55*0.55, HitChance(5, 15, false, true), 1e-9)
	assert.InDelta(t, 0.55, HitChance(5, 15, true, true), 1e-9)
}

func TestSaveFailChance(t *testing.T) {
	assert.InDelta(t, 0.5, SaveFailChance(2, 13, false, false), 1e-9)
	assert.InDelta(t, 0, SaveFailChance(20, 10, false, false), 1e-9)
	assert.InDelta(t, 1, SaveFailChance(0, 30, false, false), 1e-9)
	assert.InDelta(t, 0.4*0.4, SaveFailChance(4, 13, true, false), 1e-9)
	assert.InDelta(t, 1-0.6*0.6, SaveFailChance(4, 13, false, true), 1e-9)
	assert.InDelta(t, 0.4, SaveFailChance(4, 13, true, true), 1e-9)
}

func TestExpectedSaveDamageFollowsSaveMode(t *testing.T) {
	flame := act(t, &game.Action{Name: "Sacred Flame", Kind: game.ActionSave, Cantrip: true, Range: 60,
		Damage: "1d8", DamageType: game.Radiant, Save: game.DEX, SaveDC: 13})
	cleric := unit("cleric", party, 30, 18, 0, 0, flame)
	orc := unit("orc", monster, 15, 13, 5, 0)
	st := newState(cleric, orc)

	normal := ExpectedDamage(cleric, flame, orc, st)
	require.Greater(t, normal, 0.0)

	st.kinds["orc"] = []game.EffectKind{game.EffectSaveDisadvantage}
	worse := ExpectedDamage(cleric, flame, orc, st)
	st.kinds["orc"] = []game.EffectKind{game.EffectSaveAdvantage}
	better := ExpectedDamage(cleric, flame, orc, st)
	st.kinds["orc"] = []game.EffectKind{game.EffectSaveAdvantage, game.EffectSaveDisadvantage}
	both := ExpectedDamage(cleric, flame, orc, st)

	assert.Greater(t, worse, normal)
	assert.Less(t, better, normal)
	assert.InDelta(t, normal, both, 1e-9)
}

func TestPartyBuffsAlliesMissingTheEffect(t *testing.T) {
	cleric := unit("cleric", party, 30, 18, 0, 0, bless(t), sword(t))
	a := unit("a", party, 30, 16, 0, 5)
	b := unit("b", party, 30, 16, 0, 10)
	c := unit("c", party, 30, 16, 0, 15)
	d := unit("d", party, 30, 16, 0, 20)
	orc := unit("orc", monster, 15, 13, 25, 0)
	st := newState(a, cleric, b, c, d, orc)
	st.effects["b"] = []string{"Bless"}

	dec := NewPartyAI(0, DefaultBuffRounds).Decide(cleric, st)
	require.Equal(t, ReasonBuff, dec.Reason)
	assert.Equal(t, "Bless", dec.Action.Name)
	assert.Equal(t, []*game.Combatant{a, cleric, c}, dec.Targets)

	st.round = 4
	dec = NewPartyAI(0, DefaultBuffRounds).Decide(cleric, st)
	assert.NotEqual(t, ReasonBuff, dec.Reason)
}

func TestPartyWithZeroBuffRoundsNeverBuffs(t *testing.T) {
	cleric := unit("cleric", party, 30, 18, 0, 0, bless(t), sword(t))
	a := unit("a", party, 30, 16, 0, 5)
	orc := unit("orc", monster, 15, 13, 5, 0)
	st := newState(a, cleric, orc)

	dec := NewPartyAI(0, 0).Decide(cleric, st)
	assert.NotEqual(t, ReasonBuff, dec.Reason)
	assert.Equal(t, "Longsword", dec.Action.Name)
	assert.Equal(t, DefaultBuffRounds, NewPartyAI(0, -1).BuffRounds)
}

func TestPartySkipsConcentrationWhileConcentrating(t *testing.T) {
	cleric := unit("cleric", party, 30, 18, 0, 0, bless(t), sword(t))
	orc := unit("orc", monster, 15, 13, 5, 0)
	st := newState(cleric, orc)
	st.conc["cleric"] = true

	dec := NewPartyAI(0, DefaultBuffRounds).Decide(cleric, st)
	assert.Equal(t, "Longsword", dec.Action.Name)
}

func TestPartyAreaAvoidsAllies(t *testing.T) {
	wizard := unit("wizard", party, 30, 12, 0, 0, fireball(t), sword(t))
	g1 := unit("g1", monster, 7, 15, 60, 0)
	g2 := unit("g2", monster, 7, 15, 60, 5)
	st := newState(wizard, g1, g2)

	dec := NewPartyAI(0, DefaultBuffRounds).Decide(wizard, st)
	require.Equal(t, ReasonArea, dec.Reason)
	assert.Equal(t, "Fireball", dec.Action.Name)

	fighter := unit("fighter", party, 30, 16, 58, 0)
	st = newState(wizard, fighter, g1, g2)
	dec = NewPartyAI(0, DefaultBuffRounds).Decide(wizard, st)
	assert.NotEqual(t, ReasonArea, dec.Reason)
}

func TestPartyFinishesLowEnemy(t *testing.T) {
	fighter := unit("fighter", party, 30, 16, 0, 0, sword(t))
	big := unit("big", monster, 60, 13, 5, 0)
	weak := unit("weak", monster, 1, 10, 5, 5)
	st := newState(fighter, big, weak)

	dec := NewPartyAI(0, DefaultBuffRounds).Decide(fighter, st)
	assert.Equal(t, ReasonFinish, dec.Reason)
	assert.Equal(t, weak, dec.Targets[0])
}

func TestPartyHealsBadlyWoundedAlly(t *testing.T) {
	cleric := unit("cleric", party, 30, 18, 0, 0, cure(t), sword(t))
	hurt := unit("hurt", party, 40, 16, 0, 5)
	hurt.HP = 5
	orc := unit("orc", monster, 60, 13, 25, 0)
	st := newState(cleric, hurt, orc)
	st.round = 5

	dec := NewPartyAI(0.25, 3).Decide(cleric, st)
	require.Equal(t, ReasonHeal, dec.Reason)
	assert.Equal(t, []*game.Combatant{hurt}, dec.Targets)

	hurt.HP = 20
	dec = NewPartyAI(0.25, 3).Decide(cleric, st)
	assert.NotEqual(t, ReasonHeal, dec.Reason)
}

func TestPartyFocusesLowestEffectiveHP(t *testing.T) {
	fighter := unit("fighter", party, 30, 16, 0, 0, sword(t))
	tough := unit("tough", monster, 40, 18, 5, 0)
	soft := unit("soft", monster, 30, 10, 5, 5)
	st := newState(fighter, tough, soft)

	dec := NewPartyAI(0, DefaultBuffRounds).Decide(fighter, st)
	assert.Equal(t, ReasonFocus, dec.Reason)
	assert.Equal(t, soft, dec.Targets[0])
}

func TestMonsterTargetsThreat(t *testing.T) {
	ogre := unit("ogre", monster, 60, 11, 5, 0, sword(t))
	a := unit("a", party, 10, 16, 0, 0)
	b := unit("b", party, 30, 16, 0, 5)
	st := newState(a, b, ogre)

	dec := NewMonsterAI().Decide(ogre, st)
	assert.Equal(t, ReasonThreat, dec.Reason)
	assert.Equal(t, a, dec.Targets[0], "lowest hp while nobody dealt damage")

	st.dealt["b"] = 12
	dec = NewMonsterAI().Decide(ogre, st)
	assert.Equal(t, b, dec.Targets[0])

	st.dealt["a"] = 12
	dec = NewMonsterAI().Decide(ogre, st)
	assert.Equal(t, a, dec.Targets[0], "equal damage falls back to lower hp")
}

func TestMonsterBreathIgnoresAllies(t *testing.T) {
	breath := act(t, &game.Action{Name: "Fire Breath", Kind: game.ActionArea, Damage: "6d6", DamageType: game.Fire,
		Save: game.DEX, SaveDC: 13, HalfOnSave: true, Area: &game.Area{Shape: game.Sphere, Size: 15}, Range: 30})
	dragon := unit("dragon", monster, 80, 17, 30, 0, breath, sword(t))
	kobold := unit("kobold", monster, 5, 12, 5, 5)
	a := unit("a", party, 30, 16, 0, 0)
	b := unit("b", party, 30, 16, 0, 5)
	st := newState(a, b, dragon, kobold)

	dec := NewMonsterAI().Decide(dragon, st)
	require.Equal(t, ReasonArea, dec.Reason)
	assert.Equal(t, "Fire Breath", dec.Action.Name)
}

func TestAdvanceAndFallback(t *testing.T) {
	fighter := unit("fighter", party, 30, 16, 0, 0, sword(t))
	far := unit("far", monster, 30, 13, 200, 0)
	st := newState(fighter, far)

	dec := NewPartyAI(0, DefaultBuffRounds).Decide(fighter, st)
	assert.Equal(t, ReasonAdvance, dec.Reason)
	assert.Equal(t, far, dec.Targets[0])

	bare := unit("bare", party, 30, 16, 0, 0)
	dec = NewPartyAI(0, DefaultBuffRounds).Decide(bare, newState(bare, far))
	assert.Equal(t, ReasonFallback, dec.Reason)
	assert.Equal(t, game.UnarmedStrike(), dec.Action)

	far.HP = 0
	dec = Fallback(bare, newState(bare, far))
	assert.Equal(t, game.DodgeAction(), dec.Action)
}

func TestDecisionsAlwaysTargetLivingCombatants(t *testing.T) {
	actions := []*game.Action{sword(t), fireball(t), bless(t), cure(t)}
	rapid.Check(t, func(rt *rapid.T) {
		var all []*game.Combatant
		n := rapid.IntRange(2, 8).Draw(rt, "n")
		for i := 0; i < n; i++ {
			side := party
			if i%2 == 1 {
				side = monster
			}
			c := unit(string(rune('a'+i)), side,
				rapid.IntRange(1, 50).Draw(rt, "maxhp"), rapid.IntRange(8, 20).Draw(rt, "ac"),
				float64(rapid.IntRange(0, 80).Draw(rt, "x")), float64(rapid.IntRange(0, 80).Draw(rt, "y")),
				actions[rapid.IntRange(0, len(actions)-1).Draw(rt, "action")])
			c.HP = rapid.IntRange(0, c.MaxHP).Draw(rt, "hp")
			all = append(all, c)
		}
		st := newState(all...)
		for _, self := range all {
			if !self.Alive() {
				continue
			}
			var dec Decision
			if self.Side == party {
				dec = NewPartyAI(0, DefaultBuffRounds).Decide(self, st)
			} else {
				dec = NewMonsterAI().Decide(self, st)
			}
			require.NotNil(rt, dec.Action)
			require.NotEmpty(rt, dec.Targets)
			for _, tg := range dec.Targets {
				assert.True(rt, tg.Alive())
			}
			assert.True(rt, self.CanAfford(dec.Action))
		}
	})
}
