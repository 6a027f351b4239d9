package game

import "fmt"

type EffectKind string

const (
	EffectAttackBonus    EffectKind = "attack_bonus"
	EffectSaveBonus      EffectKind = "save_bonus"
	EffectACBonus        EffectKind = "ac_bonus"
	EffectDamageOverTime EffectKind = "damage_over_time"
	EffectRegeneration   EffectKind = "regeneration"
	// EffectAdvantage and EffectDisadvantage modify the bearer's own attack rolls.
	EffectAdvantage    EffectKind = "advantage"
	EffectDisadvantage EffectKind = "disadvantage"
	// EffectExposed grants advantage to attacks against the bearer.
	EffectExposed EffectKind = "exposed"
	// EffectDodging imposes disadvantage on attacks against the bearer.
	EffectDodging EffectKind = "dodging"
	// EffectSaveAdvantage and EffectSaveDisadvantage modify the bearer's saving throws.
	EffectSaveAdvantage    EffectKind = "save_advantage"
	EffectSaveDisadvantage EffectKind = "save_disadvantage"
	// EffectConcentration is the anchor a caster holds while sustaining a spell.
	EffectConcentration EffectKind = "concentration"
)

func (k EffectKind) Valid() bool {
	switch k {
	case EffectAttackBonus, EffectSaveBonus, EffectACBonus, EffectDamageOverTime, EffectRegeneration,
		EffectAdvantage, EffectDisadvantage, EffectExposed, EffectDodging,
		EffectSaveAdvantage, EffectSaveDisadvantage, EffectConcentration:
		return true
	}
	return false
}

// Unlimited marks an effect that never expires on its own.
const Unlimited = -1

// EffectTemplate describes an effect an action creates.
type EffectTemplate struct {
	Kind       EffectKind `json:"kind" yaml:"kind"`
	Magnitude  int        `json:"magnitude,omitempty" yaml:"magnitude"`
	Dice       string     `json:"dice,omitempty" yaml:"dice"`
	DamageType DamageType `json:"damage_type,omitempty" yaml:"damage_type"`
	Duration   int        `json:"duration" yaml:"duration"`
	Stacks     bool       `json:"stacks,omitempty" yaml:"stacks"`
}

// Effect is an active effect attached to one combatant.
type Effect struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Kind       EffectKind `json:"kind"`
	Magnitude  int        `json:"magnitude,omitempty"`
	Dice       string     `json:"dice,omitempty"`
	DamageType DamageType `json:"damage_type,omitempty"`
	// Remaining rounds; Unlimited never ticks down.
	Remaining     int    `json:"remaining"`
	SourceID      string `json:"source_id"`
	TargetID      string `json:"target_id"`
	Concentration bool   `json:"concentration,omitempty"`
	// SustainedBy is the ID of the concentration anchor keeping this effect alive.
	SustainedBy int  `json:"sustained_by,omitempty"`
	Stacks      bool `json:"stacks,omitempty"`
}

// Instantiate builds an Effect for target from the template.
func (t EffectTemplate) Instantiate(name, sourceID, targetID string) *Effect {
	return &Effect{
		Name:       name,
		Kind:       t.Kind,
		Magnitude:  t.Magnitude,
		Dice:       t.Dice,
		DamageType: t.DamageType,
		Remaining:  t.Duration,
		SourceID:   sourceID,
		TargetID:   targetID,
		Stacks:     t.Stacks,
	}
}

func (e *Effect) String() string {
	amount := ""
	switch {
	case e.Dice != "" && e.Magnitude != 0:
		amount = fmt.Sprintf(" %s%+d", e.Dice, e.Magnitude)
	case e.Dice != "":
		amount = " " + e.Dice
	case e.Magnitude != 0:
		amount = fmt.Sprintf(" %+d", e.Magnitude)
	}
	return fmt.Sprintf("%s (%s%s)", e.Name, e.Kind, amount)
}
