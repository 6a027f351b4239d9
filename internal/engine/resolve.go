package engine

import (
	"fmt"
	"math"

	"github.com/ericogr/dnd-combat-sim/internal/ai"
	"github.com/ericogr/dnd-combat-sim/internal/combatlog"
	"github.com/ericogr/dnd-combat-sim/internal/dice"
	"github.com/ericogr/dnd-combat-sim/internal/effects"
	"github.com/ericogr/dnd-combat-sim/internal/game"
)

// Resolver turns a decision into dice rolls, state changes and log
// entries. It belongs to one session.
type Resolver struct {
	roller  *dice.Roller
	effects *effects.Registry
	log     *combatlog.Log
	stats   *Stats
	lookup  effects.Lookup
	// field returns the living combatants in turn order.
	field func() []*game.Combatant
	round int
}

// TargetOutcome is what happened to one target.
type TargetOutcome struct {
	Target     string          `json:"target"`
	Hit        bool            `json:"hit,omitempty"`
	Critical   bool            `json:"critical,omitempty"`
	Saved      bool            `json:"saved,omitempty"`
	Damage     int             `json:"damage,omitempty"`
	Healing    int             `json:"healing,omitempty"`
	Adjustment game.Adjustment `json:"adjustment,omitempty"`
	Down       bool            `json:"down,omitempty"`
}

// Resolution summarizes one resolved action.
type Resolution struct {
	Actor    string          `json:"actor"`
	Action   string          `json:"action"`
	Kind     game.ActionKind `json:"kind"`
	SlotUsed int             `json:"slot_used,omitempty"`
	Moved    float64         `json:"moved,omitempty"`
	// OutOfReach is set when the actor spent its turn closing distance.
	OutOfReach bool              `json:"out_of_reach,omitempty"`
	Targets    []TargetOutcome   `json:"targets,omitempty"`
	Applied    []*game.Effect    `json:"-"`
	Removed    []effects.Removed `json:"-"`
}

// Resolve executes d for actor. Validation happens before any state
// change: a returned InsufficientResourceError or InvalidTargetError
// leaves slots, hit points and effects untouched, apart from movement.
func (r *Resolver) Resolve(actor *game.Combatant, d ai.Decision) (*Resolution, error) {
	a := d.Action
	if a == nil {
		a = game.DodgeAction()
		d.Targets = []*game.Combatant{actor}
	}
	if !a.Compiled() {
		return nil, &StateInvariantViolation{Detail: fmt.Sprintf("%s uses uncompiled action %s", actor.Name, a.Name)}
	}
	if !actor.Alive() {
		return nil, &InvalidTargetError{Actor: actor.Name, Action: a.Name, Reason: "actor is incapacitated"}
	}
	slot, ok := actor.AvailableSlot(a.SlotLevel)
	if !ok {
		return nil, &InsufficientResourceError{Actor: actor.Name, Action: a.Name, SlotLevel: a.SlotLevel}
	}
	targets, err := r.selectTargets(actor, a, d.Targets)
	if err != nil {
		return nil, err
	}

	res := &Resolution{Actor: actor.ID, Action: a.Name, Kind: a.Kind}
	if a.Targets != game.TargetSelf {
		aim := targets[0]
		res.Moved = r.approach(actor, a, aim)
		if !actor.InReach(a, aim.Position) {
			if res.Moved == 0 {
				return nil, &InvalidTargetError{Actor: actor.Name, Action: a.Name, Target: aim.Name, Reason: "out of reach"}
			}
			res.OutOfReach = true
			r.log.Append(combatlog.Entry{
				Round: r.round, Kind: combatlog.KindPass, Actor: actor.Name, Action: a.Name,
				Targets: []string{aim.Name},
				Message: fmt.Sprintf("%s cannot reach %s this turn", actor.Name, aim.Name),
			})
			return res, nil
		}
		if a.Kind == game.ActionBuff || a.Kind == game.ActionHeal {
			targets = r.inReach(actor, a, targets)
		}
	}

	if a.UsesSlot() {
		actor.SpendSlot(slot)
		res.SlotUsed = slot
	}
	if a.IsSpell() {
		r.stats.spell(actor, res.SlotUsed)
	}
	var anchor *game.Effect
	if a.Concentration {
		if anchor, err = r.concentrate(actor, a, res); err != nil {
			return res, err
		}
	}

	switch a.Kind {
	case game.ActionAttack:
		err = r.resolveAttack(actor, a, targets[0], anchor, res)
	case game.ActionSave:
		err = r.resolveSave(actor, a, targets[0], anchor, res)
	case game.ActionArea:
		err = r.resolveArea(actor, a, targets[0], anchor, res)
	case game.ActionBuff:
		err = r.resolveBuff(actor, a, targets, anchor, res)
	case game.ActionHeal:
		err = r.resolveHeal(actor, a, targets, anchor, res)
	case game.ActionDodge:
		err = r.resolveDodge(actor, a, res)
	default:
		err = &StateInvariantViolation{Detail: "unknown action kind " + string(a.Kind)}
	}
	return res, err
}

// selectTargets checks the decision's targets against the action's policy.
func (r *Resolver) selectTargets(actor *game.Combatant, a *game.Action, chosen []*game.Combatant) ([]*game.Combatant, error) {
	invalid := func(t *game.Combatant, reason string) error {
		e := &InvalidTargetError{Actor: actor.Name, Action: a.Name, Reason: reason}
		if t != nil {
			e.Target = t.Name
		}
		return e
	}
	if a.Targets == game.TargetSelf || a.Kind == game.ActionDodge {
		return []*game.Combatant{actor}, nil
	}
	if len(chosen) == 0 || chosen[0] == nil {
		return nil, invalid(nil, "no target chosen")
	}
	switch a.Kind {
	case game.ActionAttack, game.ActionSave:
		t := chosen[0]
		if !t.Alive() {
			return nil, invalid(t, "target is incapacitated")
		}
		if t.Side == actor.Side {
			return nil, invalid(t, "target is not hostile")
		}
		return []*game.Combatant{t}, nil
	case game.ActionArea:
		if !chosen[0].Alive() {
			return nil, invalid(chosen[0], "aim is incapacitated")
		}
		return chosen[:1], nil
	case game.ActionBuff, game.ActionHeal:
		seen := map[string]bool{}
		var out []*game.Combatant
		for _, t := range chosen {
			if t == nil || !t.Alive() || t.Side != actor.Side || seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
			if a.MaxTargets > 0 && len(out) == a.MaxTargets {
				break
			}
		}
		if len(out) == 0 {
			return nil, invalid(chosen[0], "no eligible ally")
		}
		return out, nil
	}
	return chosen[:1], nil
}

// approach moves actor toward aim when it is out of reach and returns the
// distance covered.
func (r *Resolver) approach(actor *game.Combatant, a *game.Action, aim *game.Combatant) float64 {
	if actor.InReach(a, aim.Position) {
		return 0
	}
	from := actor.Position
	actor.Position = actor.Approach(a, aim.Position)
	moved := from.DistanceTo(actor.Position)
	if moved == 0 {
		return 0
	}
	r.log.Append(combatlog.Entry{
		Round: r.round, Kind: combatlog.KindMove, Actor: actor.Name, Targets: []string{aim.Name},
		Message: fmt.Sprintf("%s moves %.0f ft toward %s", actor.Name, math.Round(moved), aim.Name),
	})
	return moved
}

func (r *Resolver) inReach(actor *game.Combatant, a *game.Action, list []*game.Combatant) []*game.Combatant {
	out := list[:0:0]
	for _, t := range list {
		if t == actor || actor.InReach(a, t.Position) {
			out = append(out, t)
		}
	}
	return out
}

// concentrate anchors a new concentration on actor, ending any previous one.
func (r *Resolver) concentrate(actor *game.Combatant, a *game.Action, res *Resolution) (*game.Effect, error) {
	anchor := &game.Effect{
		Name:          a.Name,
		Kind:          game.EffectConcentration,
		Remaining:     a.ConcentrationRounds(),
		SourceID:      actor.ID,
		Concentration: true,
	}
	evicted, err := r.effects.Apply(anchor, actor)
	if err != nil {
		return nil, &StateInvariantViolation{Detail: "concentration anchor", Err: err}
	}
	r.logRemoved(evicted)
	res.Removed = append(res.Removed, evicted...)
	r.log.Append(combatlog.Entry{
		Round: r.round, Kind: combatlog.KindConcentration, Actor: actor.Name, Action: a.Name,
		Effects: []string{anchor.String()},
		Message: fmt.Sprintf("%s begins concentrating on %s", actor.Name, a.Name),
	})
	return anchor, nil
}

// applyEffects attaches the action's effect templates to target. Effects of
// a concentration action are skipped once its anchor is gone.
func (r *Resolver) applyEffects(actor *game.Combatant, a *game.Action, target *game.Combatant, anchor *game.Effect, res *Resolution) error {
	if len(a.Effects) == 0 || !target.Alive() {
		return nil
	}
	if anchor != nil {
		if cur, ok := r.effects.Concentration(actor.ID); !ok || cur != anchor {
			return nil
		}
	}
	var applied []string
	for _, t := range a.Effects {
		e := t.Instantiate(a.Name, actor.ID, target.ID)
		if anchor != nil {
			e.SustainedBy = anchor.ID
		}
		if _, err := r.effects.Apply(e, target); err != nil {
			return &StateInvariantViolation{Detail: "apply " + a.Name, Err: err}
		}
		res.Applied = append(res.Applied, e)
		applied = append(applied, e.String())
	}
	r.log.Append(combatlog.Entry{
		Round: r.round, Kind: combatlog.KindEffectApplied, Actor: actor.Name, Action: a.Name,
		Targets: []string{target.Name}, Effects: applied,
		Message: fmt.Sprintf("%s is affected by %s", target.Name, a.Name),
	})
	return nil
}

// dealDamage applies resistances and hit points. It returns the adjusted
// damage, the hit points actually lost and the adjustment made.
func (r *Resolver) dealDamage(source, target *game.Combatant, raw int, dt game.DamageType) (int, int, game.Adjustment) {
	adjusted, adj := target.AdjustDamage(raw, dt)
	lost := target.TakeDamage(adjusted)
	r.stats.damage(source, target, lost)
	return adjusted, lost, adj
}

// afterDamage handles what damage triggers: dropping to 0 hit points or a
// concentration check.
func (r *Resolver) afterDamage(source, target *game.Combatant, taken int) (bool, error) {
	if !target.Alive() {
		r.down(source, target)
		return true, nil
	}
	if taken <= 0 {
		return false, nil
	}
	anchor, ok := r.effects.Concentration(target.ID)
	if !ok {
		return false, nil
	}
	dc := max(10, taken/2)
	check, err := r.savingThrow(target, game.CON, dc)
	if err != nil {
		return false, err
	}
	verb := "keeps"
	if !check.Success {
		verb = "loses"
	}
	r.log.Append(combatlog.Entry{
		Round: r.round, Kind: combatlog.KindConcentration, Actor: target.Name, Action: anchor.Name,
		Rolls: []combatlog.Roll{checkRoll("concentration", check)},
		Message: fmt.Sprintf("%s %s concentration on %s (CON save %d vs DC %d)",
			target.Name, verb, anchor.Name, check.Total, dc),
	})
	if !check.Success {
		r.logRemoved(r.effects.BreakConcentration(target.ID, effects.ReasonFailedSave))
	}
	return false, nil
}

func (r *Resolver) down(source, target *game.Combatant) {
	r.stats.down(source, target)
	r.log.Append(combatlog.Entry{
		Round: r.round, Kind: combatlog.KindDown, Actor: target.Name, HPAfter: combatlog.HP(0),
		Message: fmt.Sprintf("%s drops to 0 HP and is incapacitated", target.Name),
	})
	r.logRemoved(r.effects.Prune(target.ID))
}

// savingThrow rolls target's save with its effect bonuses and any save
// advantage or disadvantage it carries.
func (r *Resolver) savingThrow(target *game.Combatant, ability game.Ability, dc int) (dice.CheckResult, error) {
	bonus, err := r.effects.Bonus(target.ID, game.EffectSaveBonus, r.roller)
	if err != nil {
		return dice.CheckResult{}, err
	}
	mode := dice.ModeFrom(r.effects.Has(target.ID, game.EffectSaveAdvantage), r.effects.Has(target.ID, game.EffectSaveDisadvantage))
	return r.roller.AbilityCheck(target.SaveBonus(ability)+bonus, dc, mode), nil
}

func (r *Resolver) logRemoved(removed []effects.Removed) {
	for _, rm := range removed {
		e := rm.Effect
		subject := e.TargetID
		if c, ok := r.lookup(e.TargetID); ok {
			subject = c.Name
		}
		msg := fmt.Sprintf("%s ends on %s (%s)", e.Name, subject, rm.Reason)
		if e.Concentration {
			msg = fmt.Sprintf("%s stops concentrating on %s (%s)", subject, e.Name, rm.Reason)
		}
		r.log.Append(combatlog.Entry{
			Round: r.round, Kind: combatlog.KindEffectEnded, Actor: subject, Action: e.Name,
			Effects: []string{e.String()}, Message: msg,
		})
	}
}

func checkRoll(label string, c dice.CheckResult) combatlog.Roll {
	return combatlog.Roll{
		Label:    label,
		Rolls:    c.Rolls,
		Natural:  c.Natural,
		Modifier: c.Modifier,
		Total:    c.Total,
		Against:  c.DC,
		Mode:     c.Mode.String(),
		Success:  c.Success,
	}
}
