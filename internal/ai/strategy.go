// Package ai holds the decision strategies that pick an action and its
// targets for a combatant each turn. Strategies are pure functions of the
// combat state: they never roll dice and never mutate anything.
package ai

import "github.com/ericogr/dnd-combat-sim/internal/game"

// State is the read-only view of a session a strategy decides against.
// Combatant slices are alive combatants in initiative order.
type State interface {
	Round() int
	Allies(c *game.Combatant) []*game.Combatant
	Enemies(c *game.Combatant) []*game.Combatant
	// Position is the initiative index, the final tie-breaker.
	Position(c *game.Combatant) int
	DamageDealt(c *game.Combatant) int
	Concentrating(c *game.Combatant) bool
	HasEffect(c *game.Combatant, name string) bool
	HasKind(c *game.Combatant, kind game.EffectKind) bool
	ExpectedBonus(c *game.Combatant, kind game.EffectKind) float64
}

// Decision is the action a combatant takes and its targets. For area
// actions Targets[0] is the combatant the area is aimed at.
type Decision struct {
	Action  *game.Action
	Targets []*game.Combatant
	Reason  string
}

// Decision reasons.
const (
	ReasonBuff     = "buff"
	ReasonArea     = "area"
	ReasonFinish   = "finish"
	ReasonHeal     = "heal"
	ReasonFocus    = "focus_fire"
	ReasonThreat   = "threat"
	ReasonAdvance  = "advance"
	ReasonFallback = "fallback"
)

// Strategy selects an action for a combatant.
type Strategy interface {
	Decide(self *game.Combatant, state State) Decision
}

// Fallback is the resourceless decision used when nothing else is legal:
// an unarmed strike at the nearest enemy, or Dodge when no enemy remains.
func Fallback(self *game.Combatant, state State) Decision {
	enemies := state.Enemies(self)
	if len(enemies) == 0 {
		return Decision{Action: game.DodgeAction(), Targets: []*game.Combatant{self}, Reason: ReasonFallback}
	}
	target := nearest(self, enemies, state)
	return Decision{Action: game.UnarmedStrike(), Targets: []*game.Combatant{target}, Reason: ReasonFallback}
}

// usable returns the actions self can pay for, in declaration order.
func usable(self *game.Combatant, skipConcentration bool) []*game.Action {
	out := make([]*game.Action, 0, len(self.Actions))
	for _, a := range self.Actions {
		if !self.CanAfford(a) {
			continue
		}
		if skipConcentration && a.Concentration {
			continue
		}
		out = append(out, a)
	}
	return out
}

func nearest(self *game.Combatant, list []*game.Combatant, state State) *game.Combatant {
	var best *game.Combatant
	bestDist := 0.0
	for _, c := range list {
		d := self.Position.DistanceTo(c.Position)
		if best == nil || d < bestDist-1e-9 || (d <= bestDist+1e-9 && state.Position(c) < state.Position(best)) {
			best, bestDist = c, d
		}
	}
	return best
}
