package engine

import (
	"fmt"

	"github.com/ericogr/dnd-combat-sim/internal/combatlog"
	"github.com/ericogr/dnd-combat-sim/internal/dice"
	"github.com/ericogr/dnd-combat-sim/internal/game"
)

// damageExpr is the action's damage for actor: cantrip dice scaled by
// level, dice doubled on a critical, ability modifier added last.
func damageExpr(actor *game.Combatant, a *game.Action, crit bool) dice.Expression {
	e := a.DamageExpr()
	if a.Cantrip {
		e = e.Scale(actor.CantripMultiplier())
	}
	if crit {
		e = e.Crit()
	}
	return e.WithModifier(actor.DamageBonus(a))
}

func adjustmentNote(adj game.Adjustment) string {
	switch adj {
	case game.AdjustImmune:
		return " (immune)"
	case game.AdjustResisted:
		return " (resisted)"
	case game.AdjustVulnerable:
		return " (vulnerable)"
	}
	return ""
}

// resolveAttack makes each of the action's attack rolls against target.
// A natural 20 always hits and doubles the damage dice; a natural 1
// always misses.
func (r *Resolver) resolveAttack(actor *game.Combatant, a *game.Action, target *game.Combatant, anchor *game.Effect, res *Resolution) error {
	for i := 0; i < a.Attacks && target.Alive() && actor.Alive(); i++ {
		adv := r.effects.Has(actor.ID, game.EffectAdvantage) || r.effects.Has(target.ID, game.EffectExposed)
		dis := r.effects.Has(actor.ID, game.EffectDisadvantage) || r.effects.Has(target.ID, game.EffectDodging)
		atkBonus, err := r.effects.Bonus(actor.ID, game.EffectAttackBonus, r.roller)
		if err != nil {
			return err
		}
		acBonus, err := r.effects.Bonus(target.ID, game.EffectACBonus, r.roller)
		if err != nil {
			return err
		}
		d20 := r.roller.D20(dice.ModeFrom(adv, dis))
		bonus := actor.AttackBonus(a) + atkBonus
		ac := target.AC + acBonus
		crit := d20.Natural == 20
		hit := crit || (d20.Natural != 1 && d20.Natural+bonus >= ac)
		r.stats.attack(actor, hit, crit)
		roll := combatlog.Roll{
			Label: "attack", Rolls: d20.Rolls, Natural: d20.Natural, Modifier: bonus,
			Total: d20.Natural + bonus, Against: ac, Mode: d20.Mode.String(), Success: hit, Critical: crit,
		}
		out := TargetOutcome{Target: target.ID, Hit: hit, Critical: crit}
		if !hit {
			r.log.Append(combatlog.Entry{
				Round: r.round, Kind: combatlog.KindAttack, Actor: actor.Name, Action: a.Name,
				Targets: []string{target.Name}, Rolls: []combatlog.Roll{roll}, HPAfter: combatlog.HP(target.HP),
				Message: fmt.Sprintf("%s attacks %s with %s and misses (%d vs AC %d)",
					actor.Name, target.Name, a.Name, roll.Total, ac),
			})
			res.Targets = append(res.Targets, out)
			continue
		}

		rolled := r.roller.RollExpression(damageExpr(actor, a, crit)).Total()
		adjusted, lost, adj := r.dealDamage(actor, target, rolled, a.DamageType)
		out.Damage, out.Adjustment = lost, adj
		label := "hits"
		if crit {
			label = "critically hits"
		}
		r.log.Append(combatlog.Entry{
			Round: r.round, Kind: combatlog.KindAttack, Actor: actor.Name, Action: a.Name,
			Targets: []string{target.Name}, Rolls: []combatlog.Roll{roll},
			Damage: lost, DamageType: string(a.DamageType), HPAfter: combatlog.HP(target.HP),
			Message: fmt.Sprintf("%s %s %s with %s for %d %s damage%s (%d vs AC %d)",
				actor.Name, label, target.Name, a.Name, adjusted, a.DamageType, adjustmentNote(adj), roll.Total, ac),
		})
		if err := r.applyEffects(actor, a, target, anchor, res); err != nil {
			return err
		}
		down, err := r.afterDamage(actor, target, adjusted)
		if err != nil {
			return err
		}
		out.Down = down
		res.Targets = append(res.Targets, out)
	}
	return nil
}

func saveDC(actor *game.Combatant, a *game.Action) int {
	if a.SaveDC > 0 {
		return a.SaveDC
	}
	return actor.SpellSaveDC()
}

// saveAgainst resolves one target's saving throw against rolled damage:
// full on a failure, half (rounded down) on a success when the action
// allows it. Effects land only on a failed save.
func (r *Resolver) saveAgainst(actor *game.Combatant, a *game.Action, target *game.Combatant, rolled int, anchor *game.Effect, res *Resolution) error {
	dc := saveDC(actor, a)
	check, err := r.savingThrow(target, a.Save, dc)
	if err != nil {
		return err
	}
	dmg := rolled
	if check.Success {
		dmg = 0
		if a.HalfOnSave {
			dmg = rolled / 2
		}
	}
	out := TargetOutcome{Target: target.ID, Saved: check.Success}
	adjusted := 0
	if a.Damage != "" {
		var lost int
		adjusted, lost, out.Adjustment = r.dealDamage(actor, target, dmg, a.DamageType)
		out.Damage = lost
	}
	verb := "fails"
	if check.Success {
		verb = "succeeds on"
	}
	msg := fmt.Sprintf("%s %s a %s save against %s (%d vs DC %d)", target.Name, verb, a.Save, a.Name, check.Total, dc)
	if a.Damage != "" {
		msg = fmt.Sprintf("%s and takes %d %s damage%s", msg, adjusted, a.DamageType, adjustmentNote(out.Adjustment))
	}
	r.log.Append(combatlog.Entry{
		Round: r.round, Kind: combatlog.KindSave, Actor: actor.Name, Action: a.Name,
		Targets: []string{target.Name}, Rolls: []combatlog.Roll{checkRoll(string(a.Save)+" save", check)},
		Damage: out.Damage, DamageType: string(a.DamageType), HPAfter: combatlog.HP(target.HP), Message: msg,
	})
	if !check.Success {
		if err := r.applyEffects(actor, a, target, anchor, res); err != nil {
			return err
		}
	}
	out.Down, err = r.afterDamage(actor, target, adjusted)
	res.Targets = append(res.Targets, out)
	return err
}

func (r *Resolver) rollDamage(actor *game.Combatant, a *game.Action) int {
	if a.Damage == "" {
		return 0
	}
	return r.roller.RollExpression(damageExpr(actor, a, false)).Total()
}

// resolveSave forces a single target to save.
func (r *Resolver) resolveSave(actor *game.Combatant, a *game.Action, target *game.Combatant, anchor *game.Effect, res *Resolution) error {
	return r.saveAgainst(actor, a, target, r.rollDamage(actor, a), anchor, res)
}

// resolveArea rolls damage once and has every combatant caught in the
// area, friend or foe, save on its own. Cones and lines never include
// their caster.
func (r *Resolver) resolveArea(actor *game.Combatant, a *game.Action, aim *game.Combatant, anchor *game.Effect, res *Resolution) error {
	if a.Area == nil {
		return &StateInvariantViolation{Detail: a.Name + " has no area"}
	}
	origin, center := actor.Position, aim.Position
	var caught []*game.Combatant
	for _, c := range r.field() {
		if c == actor && a.Area.Shape != game.Sphere {
			continue
		}
		if a.Area.Contains(origin, center, c.Position) {
			caught = append(caught, c)
		}
	}
	rolled := r.rollDamage(actor, a)
	r.log.Append(combatlog.Entry{
		Round: r.round, Kind: combatlog.KindDamage, Actor: actor.Name, Action: a.Name,
		Targets: names(caught), Damage: rolled, DamageType: string(a.DamageType),
		Message: fmt.Sprintf("%s casts %s at %s (%d-ft %s, %d %s) catching %s",
			actor.Name, a.Name, aim.Name, a.Area.Size, a.Area.Shape, rolled, a.DamageType, joinNames(caught)),
	})
	for _, t := range caught {
		if !t.Alive() {
			continue
		}
		if err := r.saveAgainst(actor, a, t, rolled, anchor, res); err != nil {
			return err
		}
	}
	return nil
}
