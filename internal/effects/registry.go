// Package effects tracks the active buffs, debuffs and concentration of
// one combat session.
package effects

import (
	"errors"
	"fmt"

	"github.com/ericogr/dnd-combat-sim/internal/dice"
	"github.com/ericogr/dnd-combat-sim/internal/game"
)

var (
	ErrTargetDown     = errors.New("effect target is incapacitated")
	ErrUnknownAnchor  = errors.New("effect sustained by unknown concentration")
	ErrMissingSubject = errors.New("effect without source or target")
)

// Removal reasons recorded with removed effects.
const (
	ReasonExpired       = "expired"
	ReasonReplaced      = "replaced by new concentration"
	ReasonFailedSave    = "failed concentration save"
	ReasonIncapacitated = "caster incapacitated"
	ReasonTargetDown    = "target incapacitated"
)

// Removed is an effect taken off the board and why.
type Removed struct {
	Effect *game.Effect
	Reason string
}

// Registry holds every active effect of a session in application order.
// It is not safe for concurrent use.
type Registry struct {
	nextID  int
	effects []*game.Effect
	anchors map[string]*game.Effect
}

func New() *Registry {
	return &Registry{anchors: make(map[string]*game.Effect)}
}

// Apply attaches e to target and assigns its ID. A concentration effect
// first evicts the caster's previous concentration and everything it
// sustains; the evicted effects are returned.
func (r *Registry) Apply(e *game.Effect, target *game.Combatant) ([]Removed, error) {
	if e.SourceID == "" || target == nil {
		return nil, ErrMissingSubject
	}
	if !target.Alive() {
		return nil, fmt.Errorf("%s on %s: %w", e.Name, target.Name, ErrTargetDown)
	}
	if e.SustainedBy != 0 && !r.anchorExists(e.SustainedBy) {
		return nil, fmt.Errorf("%s: %w %d", e.Name, ErrUnknownAnchor, e.SustainedBy)
	}
	var evicted []Removed
	if e.Concentration {
		evicted = r.BreakConcentration(e.SourceID, ReasonReplaced)
	}
	r.nextID++
	e.ID = r.nextID
	e.TargetID = target.ID
	r.effects = append(r.effects, e)
	if e.Concentration {
		r.anchors[e.SourceID] = e
	}
	return evicted, nil
}

func (r *Registry) anchorExists(id int) bool {
	for _, a := range r.anchors {
		if a.ID == id {
			return true
		}
	}
	return false
}

// BreakConcentration removes the caster's concentration effect and every
// effect it sustains.
func (r *Registry) BreakConcentration(casterID, reason string) []Removed {
	anchor, ok := r.anchors[casterID]
	if !ok {
		return nil
	}
	return r.remove(func(e *game.Effect) bool {
		return e == anchor || e.SustainedBy == anchor.ID
	}, reason)
}

// remove drops matching effects, cascading to dependents of removed anchors.
func (r *Registry) remove(match func(*game.Effect) bool, reason string) []Removed {
	var out []Removed
	kept := r.effects[:0]
	var droppedAnchors []int
	for _, e := range r.effects {
		if match(e) {
			out = append(out, Removed{Effect: e, Reason: reason})
			if e.Concentration {
				delete(r.anchors, e.SourceID)
				droppedAnchors = append(droppedAnchors, e.ID)
			}
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(r.effects); i++ {
		r.effects[i] = nil
	}
	r.effects = kept
	for _, id := range droppedAnchors {
		out = append(out, r.remove(func(e *game.Effect) bool { return e.SustainedBy == id }, reason)...)
	}
	return out
}

// ActiveEffects returns the effects on a combatant, oldest first.
func (r *Registry) ActiveEffects(id string) []*game.Effect {
	var out []*game.Effect
	for _, e := range r.effects {
		if e.TargetID == id {
			out = append(out, e)
		}
	}
	return out
}

// All returns every active effect, oldest first.
func (r *Registry) All() []*game.Effect {
	return append([]*game.Effect(nil), r.effects...)
}

// Concentration returns the caster's concentration effect, if any.
func (r *Registry) Concentration(casterID string) (*game.Effect, bool) {
	e, ok := r.anchors[casterID]
	return e, ok
}

// Has reports whether the combatant carries an effect of kind.
func (r *Registry) Has(id string, kind game.EffectKind) bool {
	for _, e := range r.effects {
		if e.TargetID == id && e.Kind == kind {
			return true
		}
	}
	return false
}

// HasNamed reports whether the combatant carries an effect created by the named action.
func (r *Registry) HasNamed(id, name string) bool {
	for _, e := range r.effects {
		if e.TargetID == id && e.Name == name {
			return true
		}
	}
	return false
}

// Bonus totals the effects of kind on a combatant. Stacking effects add
// up; among the others the most recently applied wins. Dice are rolled on
// every call.
func (r *Registry) Bonus(id string, kind game.EffectKind, roller *dice.Roller) (int, error) {
	total := 0
	var last *game.Effect
	for _, e := range r.effects {
		if e.TargetID != id || e.Kind != kind {
			continue
		}
		if e.Stacks {
			v, err := amount(e, roller)
			if err != nil {
				return 0, err
			}
			total += v
			continue
		}
		last = e
	}
	if last != nil {
		v, err := amount(last, roller)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// Expected is Bonus with dice replaced by their average. It consumes no
// randomness and is used for planning.
func (r *Registry) Expected(id string, kind game.EffectKind) float64 {
	total := 0.0
	var last *game.Effect
	for _, e := range r.effects {
		if e.TargetID != id || e.Kind != kind {
			continue
		}
		if e.Stacks {
			total += average(e)
			continue
		}
		last = e
	}
	if last != nil {
		total += average(last)
	}
	return total
}

func average(e *game.Effect) float64 {
	v := float64(e.Magnitude)
	if e.Dice != "" {
		if x, err := dice.Parse(e.Dice); err == nil {
			v += x.Average()
		}
	}
	return v
}

func amount(e *game.Effect, roller *dice.Roller) (int, error) {
	v := e.Magnitude
	if e.Dice != "" {
		res, err := roller.Roll(e.Dice)
		if err != nil {
			return 0, err
		}
		v += res.Total()
	}
	return v, nil
}

// Prune removes every effect on a combatant that dropped and breaks its
// concentration.
func (r *Registry) Prune(id string) []Removed {
	out := r.BreakConcentration(id, ReasonIncapacitated)
	return append(out, r.remove(func(e *game.Effect) bool { return e.TargetID == id }, ReasonTargetDown)...)
}

// Lookup resolves a combatant by ID.
type Lookup func(id string) (*game.Combatant, bool)

// Validate checks the registry against the session's combatants.
func (r *Registry) Validate(lookup Lookup) error {
	for _, e := range r.effects {
		target, ok := lookup(e.TargetID)
		if !ok {
			return fmt.Errorf("effect %d %s references unknown combatant %q", e.ID, e.Name, e.TargetID)
		}
		if !target.Alive() {
			return fmt.Errorf("effect %d %s attached to incapacitated %s", e.ID, e.Name, target.Name)
		}
		if _, ok := lookup(e.SourceID); !ok {
			return fmt.Errorf("effect %d %s has unknown source %q", e.ID, e.Name, e.SourceID)
		}
		if e.SustainedBy != 0 && !r.anchorExists(e.SustainedBy) {
			return fmt.Errorf("effect %d %s outlived its concentration %d", e.ID, e.Name, e.SustainedBy)
		}
	}
	for caster, a := range r.anchors {
		if a.SourceID != caster {
			return fmt.Errorf("concentration %d indexed under %q but cast by %q", a.ID, caster, a.SourceID)
		}
	}
	return nil
}
