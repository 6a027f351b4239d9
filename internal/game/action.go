package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ericogr/dnd-combat-sim/internal/dice"
)

// ActionKind tags the Action variant. The resolver switches on it.
type ActionKind string

const (
	ActionAttack ActionKind = "attack"
	ActionSave   ActionKind = "save"
	ActionArea   ActionKind = "area"
	ActionBuff   ActionKind = "buff"
	ActionHeal   ActionKind = "heal"
	ActionDodge  ActionKind = "dodge"
)

// AttackStyle selects the ability behind an attack roll.
type AttackStyle string

const (
	StyleMelee   AttackStyle = "melee"
	StyleRanged  AttackStyle = "ranged"
	StyleFinesse AttackStyle = "finesse"
	StyleSpell   AttackStyle = "spell"
)

// TargetPolicy says who an action may affect.
type TargetPolicy string

const (
	TargetSingle TargetPolicy = "single"
	TargetArea   TargetPolicy = "area"
	TargetAllies TargetPolicy = "allies"
	TargetSelf   TargetPolicy = "self"
)

const MeleeReach = 5

// Action is an immutable capability template shared by every combatant
// that knows it. Call Compile once before use.
type Action struct {
	Name          string           `json:"name" yaml:"name"`
	Kind          ActionKind       `json:"kind" yaml:"kind"`
	Style         AttackStyle      `json:"style,omitempty" yaml:"style"`
	SlotLevel     int              `json:"slot_level,omitempty" yaml:"slot_level"`
	Cantrip       bool             `json:"cantrip,omitempty" yaml:"cantrip"`
	Range         int              `json:"range" yaml:"range"`
	Attacks       int              `json:"attacks,omitempty" yaml:"attacks"`
	AttackBonus   *int             `json:"attack_bonus,omitempty" yaml:"attack_bonus"`
	Damage        string           `json:"damage,omitempty" yaml:"damage"`
	DamageType    DamageType       `json:"damage_type,omitempty" yaml:"damage_type"`
	AddModifier   bool             `json:"add_modifier,omitempty" yaml:"add_modifier"`
	Healing       string           `json:"healing,omitempty" yaml:"healing"`
	Save          Ability          `json:"save,omitempty" yaml:"save"`
	SaveDC        int              `json:"save_dc,omitempty" yaml:"save_dc"`
	HalfOnSave    bool             `json:"half_on_save,omitempty" yaml:"half_on_save"`
	Area          *Area            `json:"area,omitempty" yaml:"area"`
	Targets       TargetPolicy     `json:"targets" yaml:"targets"`
	MaxTargets    int              `json:"max_targets,omitempty" yaml:"max_targets"`
	Effects       []EffectTemplate `json:"effects,omitempty" yaml:"effects"`
	Concentration bool             `json:"concentration,omitempty" yaml:"concentration"`

	damage   dice.Expression
	healing  dice.Expression
	compiled bool
}

var errNoName = errors.New("action missing name")

// Compile validates the action and caches its parsed dice expressions.
// Dice errors are returned as *dice.ParseError.
func (a *Action) Compile() error {
	if strings.TrimSpace(a.Name) == "" {
		return errNoName
	}
	if a.Attacks < 1 {
		a.Attacks = 1
	}
	if a.Targets == "" {
		a.Targets = defaultPolicy(a.Kind)
	}
	if a.Range <= 0 {
		a.Range = MeleeReach
	}
	if a.Damage != "" {
		e, err := dice.Parse(a.Damage)
		if err != nil {
			return fmt.Errorf("action %s damage: %w", a.Name, err)
		}
		a.damage = e
		if !a.DamageType.Valid() {
			return fmt.Errorf("action %s: unknown damage type %q", a.Name, a.DamageType)
		}
	}
	if a.Healing != "" {
		e, err := dice.Parse(a.Healing)
		if err != nil {
			return fmt.Errorf("action %s healing: %w", a.Name, err)
		}
		a.healing = e
	}
	for _, t := range a.Effects {
		if !t.Kind.Valid() || t.Kind == EffectConcentration {
			return fmt.Errorf("action %s: invalid effect kind %q", a.Name, t.Kind)
		}
		if t.Dice != "" {
			if _, err := dice.Parse(t.Dice); err != nil {
				return fmt.Errorf("action %s effect %s: %w", a.Name, t.Kind, err)
			}
		}
		if t.Duration == 0 {
			return fmt.Errorf("action %s effect %s: duration must be positive or -1", a.Name, t.Kind)
		}
	}
	switch a.Kind {
	case ActionAttack:
		if a.Damage == "" {
			return fmt.Errorf("action %s: attack without damage", a.Name)
		}
		switch a.Style {
		case StyleMelee, StyleRanged, StyleFinesse, StyleSpell:
		default:
			return fmt.Errorf("action %s: unknown attack style %q", a.Name, a.Style)
		}
	case ActionSave, ActionArea:
		if !a.Save.Valid() {
			return fmt.Errorf("action %s: save action needs a save ability", a.Name)
		}
		if a.Damage == "" && len(a.Effects) == 0 {
			return fmt.Errorf("action %s: save action with neither damage nor effects", a.Name)
		}
		if a.Kind == ActionArea && (a.Area == nil || a.Area.Size <= 0) {
			return fmt.Errorf("action %s: area action needs an area", a.Name)
		}
	case ActionBuff:
		if len(a.Effects) == 0 {
			return fmt.Errorf("action %s: buff without effects", a.Name)
		}
		if a.Targets == TargetAllies && a.MaxTargets < 1 {
			return fmt.Errorf("action %s: ally buff needs max_targets", a.Name)
		}
	case ActionHeal:
		if a.Healing == "" {
			return fmt.Errorf("action %s: heal without healing dice", a.Name)
		}
		if a.MaxTargets < 1 {
			a.MaxTargets = 1
		}
	case ActionDodge:
	default:
		return fmt.Errorf("action %s: unknown kind %q", a.Name, a.Kind)
	}
	if a.SlotLevel < 0 || a.SlotLevel > 9 {
		return fmt.Errorf("action %s: slot level %d out of range", a.Name, a.SlotLevel)
	}
	a.compiled = true
	return nil
}

// Compiled reports whether Compile succeeded.
func (a *Action) Compiled() bool { return a.compiled }

func defaultPolicy(k ActionKind) TargetPolicy {
	switch k {
	case ActionArea:
		return TargetArea
	case ActionBuff:
		return TargetAllies
	case ActionDodge:
		return TargetSelf
	}
	return TargetSingle
}

// DamageExpr returns the parsed damage expression.
func (a *Action) DamageExpr() dice.Expression { return a.damage }

// HealingExpr returns the parsed healing expression.
func (a *Action) HealingExpr() dice.Expression { return a.healing }

// UsesSlot reports whether the action costs a spell slot.
func (a *Action) UsesSlot() bool { return a.SlotLevel > 0 }

// Offensive reports whether the action targets enemies.
func (a *Action) Offensive() bool {
	switch a.Kind {
	case ActionAttack, ActionSave, ActionArea:
		return true
	}
	return false
}

// Beneficial reports whether the action targets allies.
func (a *Action) Beneficial() bool {
	return a.Kind == ActionBuff || a.Kind == ActionHeal
}

var (
	unarmedStrike = mustCompile(&Action{Name: "Unarmed Strike", Kind: ActionAttack, Style: StyleMelee, Damage: "1", DamageType: Bludgeoning, AddModifier: true})
	dodge         = mustCompile(&Action{Name: "Dodge", Kind: ActionDodge, Effects: []EffectTemplate{{Kind: EffectDodging, Duration: 1}}})
)

func mustCompile(a *Action) *Action {
	if err := a.Compile(); err != nil {
		panic(err)
	}
	return a
}

// UnarmedStrike is the resourceless attack every combatant can make.
func UnarmedStrike() *Action { return unarmedStrike }

// DodgeAction is the resourceless fallback every combatant has.
func DodgeAction() *Action { return dodge }

// Reach is how close the actor must stand to its aim point. Cones and
// lines are aimed at their midpoint.
func (a *Action) Reach() float64 {
	if a.Kind == ActionArea && a.Area != nil && (a.Area.Shape == Cone || a.Area.Shape == Line) {
		return float64(a.Area.Size) / 2
	}
	return float64(a.Range)
}

// InReach reports whether aim is within the action's reach from c's spot.
func (c *Combatant) InReach(a *Action, aim Position) bool {
	return c.Position.DistanceTo(aim) <= a.Reach()+epsilon
}

// CanReach reports whether c can get aim within reach this turn.
func (c *Combatant) CanReach(a *Action, aim Position) bool {
	return c.Position.DistanceTo(aim) <= a.Reach()+float64(c.Speed)+epsilon
}

// Approach returns where c ends up after moving toward aim to use a.
func (c *Combatant) Approach(a *Action, aim Position) Position {
	return c.Position.MoveToward(aim, float64(c.Speed), a.Reach())
}

// IsSpell reports whether the action is a spell for statistics.
func (a *Action) IsSpell() bool {
	return a.SlotLevel > 0 || a.Cantrip || a.Style == StyleSpell
}

// ConcentrationRounds is how long the caster's concentration lasts: the
// longest effect duration, or ten rounds when the action creates none.
func (a *Action) ConcentrationRounds() int {
	rounds := 0
	for _, t := range a.Effects {
		if t.Duration == Unlimited {
			return Unlimited
		}
		rounds = max(rounds, t.Duration)
	}
	if rounds == 0 {
		return 10
	}
	return rounds
}
