package engine

import (
	"fmt"

	"github.com/ericogr/dnd-combat-sim/internal/combatlog"
	"github.com/ericogr/dnd-combat-sim/internal/game"
)

// resolveBuff applies the action's effects to each ally.
func (r *Resolver) resolveBuff(actor *game.Combatant, a *game.Action, targets []*game.Combatant, anchor *game.Effect, res *Resolution) error {
	for _, t := range targets {
		if err := r.applyEffects(actor, a, t, anchor, res); err != nil {
			return err
		}
		res.Targets = append(res.Targets, TargetOutcome{Target: t.ID})
	}
	return nil
}

// resolveHeal rolls healing once and restores it to every target, capped
// at each target's maximum.
func (r *Resolver) resolveHeal(actor *game.Combatant, a *game.Action, targets []*game.Combatant, anchor *game.Effect, res *Resolution) error {
	roll := r.roller.RollExpression(a.HealingExpr().WithModifier(actor.HealingBonus()))
	amount := roll.Total()
	for _, t := range targets {
		gained := t.Heal(amount)
		r.stats.heal(actor, gained)
		r.log.Append(combatlog.Entry{
			Round: r.round, Kind: combatlog.KindHeal, Actor: actor.Name, Action: a.Name,
			Targets: []string{t.Name}, Healing: gained, HPAfter: combatlog.HP(t.HP),
			Message: fmt.Sprintf("%s heals %s with %s for %d (%s)", actor.Name, t.Name, a.Name, gained, roll),
		})
		if err := r.applyEffects(actor, a, t, anchor, res); err != nil {
			return err
		}
		res.Targets = append(res.Targets, TargetOutcome{Target: t.ID, Healing: gained})
	}
	return nil
}

func (r *Resolver) resolveDodge(actor *game.Combatant, a *game.Action, res *Resolution) error {
	r.log.Append(combatlog.Entry{
		Round: r.round, Kind: combatlog.KindPass, Actor: actor.Name, Action: a.Name,
		Message: fmt.Sprintf("%s takes the %s action", actor.Name, a.Name),
	})
	return r.applyEffects(actor, a, actor, nil, res)
}
