package ai

import "github.com/ericogr/dnd-combat-sim/internal/game"

// MonsterAI drives the encounter. Monsters go for the most threatening
// party member they can reach, breathe or blast when two or more party
// members are caught, and never flee.
type MonsterAI struct{}

func NewMonsterAI() *MonsterAI { return &MonsterAI{} }

func (m *MonsterAI) Decide(self *game.Combatant, st State) Decision {
	if len(st.Enemies(self)) == 0 {
		return Fallback(self, st)
	}
	actions := usable(self, st.Concentrating(self))
	target := threatTarget(self, actions, st)

	if plan, ok := bestArea(self, actions, st, false); ok && plan.enemies >= 2 {
		return Decision{Action: plan.action, Targets: []*game.Combatant{plan.aim}, Reason: ReasonArea}
	}
	if target != nil {
		if plan, ok := bestAgainst(self, target, actions, st); ok {
			return Decision{Action: plan.action, Targets: []*game.Combatant{target}, Reason: ReasonThreat}
		}
	}
	if d, ok := advance(self, actions, st); ok {
		return d
	}
	return Fallback(self, st)
}

// threatTarget returns the reachable enemy that dealt the most damage so
// far, or the one with the lowest HP while nobody has dealt any.
func threatTarget(self *game.Combatant, actions []*game.Action, st State) *game.Combatant {
	var candidates []*game.Combatant
	for _, e := range st.Enemies(self) {
		if _, ok := bestAgainst(self, e, actions, st); ok {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	anyDamage := false
	for _, c := range candidates {
		if st.DamageDealt(c) > 0 {
			anyDamage = true
			break
		}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if anyDamage {
			dc, db := st.DamageDealt(c), st.DamageDealt(best)
			if dc > db || (dc == db && c.HP < best.HP) {
				best = c
			}
			continue
		}
		if c.HP < best.HP {
			best = c
		}
	}
	return best
}
