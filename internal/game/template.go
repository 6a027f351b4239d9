package game

import (
	"errors"
	"fmt"
	"strings"
)

const DefaultSpeed = 30

var ErrUnknownAction = errors.New("unknown action")

// CombatantTemplate is the normalized shape of a character or monster
// definition. Characters set Class and Level, monsters set CR.
type CombatantTemplate struct {
	Name              string        `json:"name" yaml:"name"`
	Class             string        `json:"class,omitempty" yaml:"class"`
	Level             int           `json:"level,omitempty" yaml:"level"`
	CR                string        `json:"cr,omitempty" yaml:"cr"`
	Abilities         AbilityScores `json:"abilities" yaml:"abilities"`
	HP                int           `json:"hp" yaml:"hp"`
	AC                int           `json:"ac" yaml:"ac"`
	Speed             int           `json:"speed,omitempty" yaml:"speed"`
	ProficiencyBonus  int           `json:"proficiency_bonus,omitempty" yaml:"proficiency_bonus"`
	CastingAbility    Ability       `json:"casting_ability,omitempty" yaml:"casting_ability"`
	SaveProficiencies []Ability     `json:"save_proficiencies,omitempty" yaml:"save_proficiencies"`
	Resistances       []DamageType  `json:"resistances,omitempty" yaml:"resistances"`
	Vulnerabilities   []DamageType  `json:"vulnerabilities,omitempty" yaml:"vulnerabilities"`
	Immunities        []DamageType  `json:"immunities,omitempty" yaml:"immunities"`
	Actions           []string      `json:"actions" yaml:"actions"`
	SpellSlots        map[int]int   `json:"spell_slots,omitempty" yaml:"spell_slots"`
	Position          *Position     `json:"position,omitempty" yaml:"position"`
}

func (t *CombatantTemplate) IsCharacter() bool { return t.Class != "" }

// Validate checks ranges and required fields.
func (t *CombatantTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("template missing name")
	}
	if err := t.Abilities.Validate(); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	if t.HP < 1 {
		return fmt.Errorf("%s: hp must be positive", t.Name)
	}
	if t.AC < 1 {
		return fmt.Errorf("%s: ac must be positive", t.Name)
	}
	if t.IsCharacter() {
		if t.Level < 1 || t.Level > 20 {
			return fmt.Errorf("%s: level %d out of range 1..20", t.Name, t.Level)
		}
	} else {
		if _, err := ParseCR(t.CR); err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
		if len(t.SpellSlots) > 0 {
			return fmt.Errorf("%s: only characters have spell slots", t.Name)
		}
	}
	for l, n := range t.SpellSlots {
		if l < 1 || l > 9 || n < 0 {
			return fmt.Errorf("%s: invalid spell slots %d:%d", t.Name, l, n)
		}
	}
	for _, a := range t.SaveProficiencies {
		if !a.Valid() {
			return fmt.Errorf("%s: unknown save proficiency %q", t.Name, a)
		}
	}
	if t.CastingAbility != "" && !t.CastingAbility.Valid() {
		return fmt.Errorf("%s: unknown casting ability %q", t.Name, t.CastingAbility)
	}
	for _, list := range [][]DamageType{t.Resistances, t.Vulnerabilities, t.Immunities} {
		for _, d := range list {
			if !d.Valid() {
				return fmt.Errorf("%s: unknown damage type %q", t.Name, d)
			}
		}
	}
	if len(t.Actions) == 0 {
		return fmt.Errorf("%s: no actions", t.Name)
	}
	return nil
}

// ActionLookup resolves action names to compiled actions.
type ActionLookup func(name string) (*Action, bool)

// NewCombatant builds a fresh combatant from a validated template.
func NewCombatant(t CombatantTemplate, id string, side Side, order int, lookup ActionLookup) (*Combatant, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	c := &Combatant{
		ID:                id,
		Name:              t.Name,
		Template:          t.Name,
		Side:              side,
		Class:             t.Class,
		Level:             t.Level,
		CR:                t.CR,
		Abilities:         t.Abilities,
		Proficiency:       t.ProficiencyBonus,
		SaveProficiencies: append([]Ability(nil), t.SaveProficiencies...),
		CastingAbility:    t.CastingAbility,
		MaxHP:             t.HP,
		HP:                t.HP,
		AC:                t.AC,
		Speed:             t.Speed,
		Resistances:       append([]DamageType(nil), t.Resistances...),
		Vulnerabilities:   append([]DamageType(nil), t.Vulnerabilities...),
		Immunities:        append([]DamageType(nil), t.Immunities...),
		Slots:             make(map[int]int, len(t.SpellSlots)),
		Order:             order,
	}
	if c.Speed <= 0 {
		c.Speed = DefaultSpeed
	}
	if c.Proficiency == 0 {
		if t.IsCharacter() {
			c.Proficiency = CharacterProficiency(t.Level)
		} else {
			cr, _ := ParseCR(t.CR)
			c.Proficiency = MonsterProficiency(cr)
		}
	}
	if c.CastingAbility == "" {
		if a, ok := CastingAbilityForClass(t.Class); ok {
			c.CastingAbility = a
		} else {
			c.CastingAbility = highestMental(t.Abilities)
		}
	}
	for l, n := range t.SpellSlots {
		c.Slots[l] = n
	}
	if t.Position != nil {
		c.Position = *t.Position
		c.Placed = true
	}
	for _, name := range t.Actions {
		a, ok := lookup(name)
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", t.Name, ErrUnknownAction, name)
		}
		c.Actions = append(c.Actions, a)
	}
	return c, nil
}

func highestMental(s AbilityScores) Ability {
	best := INT
	for _, a := range []Ability{WIS, CHA} {
		if s.Score(a) > s.Score(best) {
			best = a
		}
	}
	return best
}
