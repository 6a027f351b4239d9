package ai

import (
	"sort"

	"github.com/ericogr/dnd-combat-sim/internal/game"
)

const (
	DefaultHealThreshold = 0.25
	DefaultBuffRounds    = 3
)

// PartyAI drives player characters. Its priorities, in order: hold an
// active concentration spell, open with unused buffs, hit clusters with
// area spells or finish a foe that is about to drop, heal allies below
// HealThreshold, then focus the enemy with the lowest effective HP.
type PartyAI struct {
	HealThreshold float64
	// BuffRounds is the last round in which buffs are still cast; 0 never
	// buffs.
	BuffRounds int
}

// NewPartyAI falls back to the defaults for a non-positive heal threshold
// or a negative buff window.
func NewPartyAI(healThreshold float64, buffRounds int) *PartyAI {
	if healThreshold <= 0 {
		healThreshold = DefaultHealThreshold
	}
	if buffRounds < 0 {
		buffRounds = DefaultBuffRounds
	}
	return &PartyAI{HealThreshold: healThreshold, BuffRounds: buffRounds}
}

func (p *PartyAI) Decide(self *game.Combatant, st State) Decision {
	if len(st.Enemies(self)) == 0 {
		return Fallback(self, st)
	}
	// Never drop a running concentration spell for another one.
	actions := usable(self, st.Concentrating(self))

	if d, ok := p.buff(self, actions, st); ok {
		return d
	}
	if plan, ok := bestArea(self, actions, st, true); ok && plan.enemies >= 2 {
		return Decision{Action: plan.action, Targets: []*game.Combatant{plan.aim}, Reason: ReasonArea}
	}
	if d, ok := finish(self, actions, st); ok {
		return d
	}
	if d, ok := p.heal(self, actions, st); ok {
		return d
	}
	if d, ok := focus(self, actions, st); ok {
		return d
	}
	if d, ok := advance(self, actions, st); ok {
		return d
	}
	return Fallback(self, st)
}

func (p *PartyAI) buff(self *game.Combatant, actions []*game.Action, st State) (Decision, bool) {
	if st.Round() > p.BuffRounds {
		return Decision{}, false
	}
	for _, a := range actions {
		if a.Kind != game.ActionBuff {
			continue
		}
		if a.Targets == game.TargetSelf {
			if !st.HasEffect(self, a.Name) {
				return Decision{Action: a, Targets: []*game.Combatant{self}, Reason: ReasonBuff}, true
			}
			continue
		}
		var picked []*game.Combatant
		for _, ally := range st.Allies(self) {
			if len(picked) == a.MaxTargets {
				break
			}
			if st.HasEffect(ally, a.Name) || !self.CanReach(a, ally.Position) {
				continue
			}
			picked = append(picked, ally)
		}
		if len(picked) > 0 {
			return Decision{Action: a, Targets: picked, Reason: ReasonBuff}, true
		}
	}
	return Decision{}, false
}

// finish picks the cheapest action expected to drop an enemy this turn,
// preferring the enemy with the lowest effective HP.
func finish(self *game.Combatant, actions []*game.Action, st State) (Decision, bool) {
	var (
		best     Decision
		bestEHP  float64
		bestSlot int
		found    bool
	)
	for _, enemy := range st.Enemies(self) {
		ehp := EffectiveHP(self, enemy, actions, st)
		for _, a := range actions {
			if a.Kind != game.ActionAttack && a.Kind != game.ActionSave {
				continue
			}
			if !self.CanReach(a, enemy.Position) || ExpectedDamage(self, a, enemy, st) < float64(enemy.HP) {
				continue
			}
			better := !found || ehp < bestEHP-1e-9 ||
				(ehp <= bestEHP+1e-9 && enemy == best.Targets[0] && a.SlotLevel < bestSlot)
			if better {
				best = Decision{Action: a, Targets: []*game.Combatant{enemy}, Reason: ReasonFinish}
				bestEHP, bestSlot, found = ehp, a.SlotLevel, true
			}
		}
	}
	return best, found
}

func (p *PartyAI) heal(self *game.Combatant, actions []*game.Action, st State) (Decision, bool) {
	var wounded []*game.Combatant
	for _, ally := range st.Allies(self) {
		if ally.HPRatio() < p.HealThreshold {
			wounded = append(wounded, ally)
		}
	}
	if len(wounded) == 0 {
		return Decision{}, false
	}
	sort.SliceStable(wounded, func(i, j int) bool {
		ri, rj := wounded[i].HPRatio(), wounded[j].HPRatio()
		if ri != rj {
			return ri < rj
		}
		return st.Position(wounded[i]) < st.Position(wounded[j])
	})
	var pick *game.Action
	var targets []*game.Combatant
	for _, a := range actions {
		if a.Kind != game.ActionHeal {
			continue
		}
		var reach []*game.Combatant
		for _, w := range wounded {
			if len(reach) < a.MaxTargets && self.CanReach(a, w.Position) {
				reach = append(reach, w)
			}
		}
		if len(reach) == 0 {
			continue
		}
		if pick == nil || len(reach) > len(targets) ||
			(len(reach) == len(targets) && a.HealingExpr().Average() > pick.HealingExpr().Average()) {
			pick, targets = a, reach
		}
	}
	if pick == nil {
		return Decision{}, false
	}
	return Decision{Action: pick, Targets: targets, Reason: ReasonHeal}, true
}

// focus targets the reachable enemy with the lowest effective HP using
// the highest expected damage action against it.
func focus(self *game.Combatant, actions []*game.Action, st State) (Decision, bool) {
	var (
		best    attackPlan
		bestEHP float64
		found   bool
	)
	for _, enemy := range st.Enemies(self) {
		plan, ok := bestAgainst(self, enemy, actions, st)
		if !ok {
			continue
		}
		ehp := EffectiveHP(self, enemy, reachable(self, enemy, actions), st)
		if !found || ehp < bestEHP-1e-9 {
			best, bestEHP, found = plan, ehp, true
		}
	}
	if !found {
		return Decision{}, false
	}
	return Decision{Action: best.action, Targets: []*game.Combatant{best.target}, Reason: ReasonFocus}, true
}

func reachable(self, target *game.Combatant, actions []*game.Action) []*game.Action {
	var out []*game.Action
	for _, a := range actions {
		if self.CanReach(a, target.Position) {
			out = append(out, a)
		}
	}
	return out
}
