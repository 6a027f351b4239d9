package effects

import (
	"github.com/ericogr/dnd-combat-sim/internal/dice"
	"github.com/ericogr/dnd-combat-sim/internal/game"
)

// TickEvent is per-round damage or healing dealt by one effect.
type TickEvent struct {
	Effect     *game.Effect
	Rolled     int
	Damage     int
	Healing    int
	Adjustment game.Adjustment
}

// TickReport summarizes a combatant's round-end tick.
type TickReport struct {
	Events  []TickEvent
	Damage  int
	Healing int
	Removed []Removed
}

// TickRoundEnd applies per-round damage and healing of the effects on c,
// then decrements their durations and removes the expired ones. Expired
// concentration effects take their dependents with them.
func (r *Registry) TickRoundEnd(c *game.Combatant, roller *dice.Roller) (TickReport, error) {
	var rep TickReport
	for _, e := range r.ActiveEffects(c.ID) {
		if !c.Alive() {
			break
		}
		switch e.Kind {
		case game.EffectDamageOverTime:
			v, err := amount(e, roller)
			if err != nil {
				return rep, err
			}
			adjusted, adj := c.AdjustDamage(v, e.DamageType)
			lost := c.TakeDamage(adjusted)
			rep.Damage += lost
			rep.Events = append(rep.Events, TickEvent{Effect: e, Rolled: v, Damage: lost, Adjustment: adj})
		case game.EffectRegeneration:
			v, err := amount(e, roller)
			if err != nil {
				return rep, err
			}
			gained := c.Heal(v)
			rep.Healing += gained
			rep.Events = append(rep.Events, TickEvent{Effect: e, Rolled: v, Healing: gained})
		}
	}

	var expired []*game.Effect
	for _, e := range r.ActiveEffects(c.ID) {
		if e.Remaining == game.Unlimited {
			continue
		}
		e.Remaining--
		if e.Remaining <= 0 {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		if e.Concentration {
			rep.Removed = append(rep.Removed, r.BreakConcentration(e.SourceID, ReasonExpired)...)
			continue
		}
		if !r.contains(e) {
			continue
		}
		rep.Removed = append(rep.Removed, r.remove(func(x *game.Effect) bool { return x == e }, ReasonExpired)...)
	}
	return rep, nil
}

func (r *Registry) contains(e *game.Effect) bool {
	for _, x := range r.effects {
		if x == e {
			return true
		}
	}
	return false
}
