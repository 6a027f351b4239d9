package game

import "sort"

// Combatant is a character or monster taking part in one session. The
// session owns it exclusively; active effects live in the session's
// effect registry keyed by ID.
type Combatant struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Template          string        `json:"template"`
	Side              Side          `json:"side"`
	Class             string        `json:"class,omitempty"`
	Level             int           `json:"level,omitempty"`
	CR                string        `json:"cr,omitempty"`
	Abilities         AbilityScores `json:"abilities"`
	Proficiency       int           `json:"proficiency"`
	SaveProficiencies []Ability     `json:"save_proficiencies,omitempty"`
	CastingAbility    Ability       `json:"casting_ability,omitempty"`
	MaxHP             int           `json:"max_hp"`
	HP                int           `json:"hp"`
	AC                int           `json:"ac"`
	Speed             int           `json:"speed"`
	Position          Position      `json:"position"`
	Resistances       []DamageType  `json:"resistances,omitempty"`
	Vulnerabilities   []DamageType  `json:"vulnerabilities,omitempty"`
	Immunities        []DamageType  `json:"immunities,omitempty"`
	Actions           []*Action     `json:"-"`
	Slots             map[int]int   `json:"slots,omitempty"`
	// Placed is set when the template fixed the starting position.
	Placed bool `json:"-"`
	// Order is the registration index, the last initiative tie-breaker.
	Order int `json:"order"`
}

func (c *Combatant) Alive() bool { return c.HP > 0 }

func (c *Combatant) IsCharacter() bool { return c.Class != "" }

func (c *Combatant) Modifier(a Ability) int { return c.Abilities.Modifier(a) }

func (c *Combatant) proficientIn(a Ability) bool {
	for _, p := range c.SaveProficiencies {
		if p == a {
			return true
		}
	}
	return false
}

// SaveBonus is the saving throw modifier for a, before effects.
func (c *Combatant) SaveBonus(a Ability) int {
	b := c.Modifier(a)
	if c.proficientIn(a) {
		b += c.Proficiency
	}
	return b
}

func (c *Combatant) castingModifier() int {
	if c.CastingAbility == "" {
		return 0
	}
	return c.Modifier(c.CastingAbility)
}

// SpellSaveDC is 8 + proficiency + casting modifier.
func (c *Combatant) SpellSaveDC() int { return 8 + c.Proficiency + c.castingModifier() }

// SpellAttackBonus is proficiency + casting modifier.
func (c *Combatant) SpellAttackBonus() int { return c.Proficiency + c.castingModifier() }

// AttackAbilityModifier returns the modifier an attack style adds to hit and damage.
func (c *Combatant) AttackAbilityModifier(style AttackStyle) int {
	switch style {
	case StyleRanged:
		return c.Modifier(DEX)
	case StyleFinesse:
		return max(c.Modifier(STR), c.Modifier(DEX))
	case StyleSpell:
		return c.castingModifier()
	}
	return c.Modifier(STR)
}

// AttackBonus is the to-hit bonus for a, before effects.
func (c *Combatant) AttackBonus(a *Action) int {
	if a.AttackBonus != nil {
		return *a.AttackBonus
	}
	return c.AttackAbilityModifier(a.Style) + c.Proficiency
}

// DamageBonus is the flat bonus added to a's damage roll.
func (c *Combatant) DamageBonus(a *Action) int {
	if !a.AddModifier {
		return 0
	}
	return c.AttackAbilityModifier(a.Style)
}

// HealingBonus is the casting modifier added to healing.
func (c *Combatant) HealingBonus() int { return c.castingModifier() }

// CantripMultiplier scales cantrip dice by character level.
func (c *Combatant) CantripMultiplier() int {
	switch {
	case c.Level >= 17:
		return 4
	case c.Level >= 11:
		return 3
	case c.Level >= 5:
		return 2
	}
	return 1
}

// AvailableSlot returns the lowest slot level >= level with a slot left.
func (c *Combatant) AvailableSlot(level int) (int, bool) {
	if level <= 0 {
		return 0, true
	}
	levels := make([]int, 0, len(c.Slots))
	for l, n := range c.Slots {
		if l >= level && n > 0 {
			levels = append(levels, l)
		}
	}
	if len(levels) == 0 {
		return 0, false
	}
	sort.Ints(levels)
	return levels[0], true
}

// CanAfford reports whether a's resource cost can be paid.
func (c *Combatant) CanAfford(a *Action) bool {
	_, ok := c.AvailableSlot(a.SlotLevel)
	return ok
}

// SpendSlot consumes one slot of exactly level.
func (c *Combatant) SpendSlot(level int) {
	if level > 0 && c.Slots[level] > 0 {
		c.Slots[level]--
	}
}

// AdjustDamage applies immunity, resistance and vulnerability for dt.
func (c *Combatant) AdjustDamage(amount int, dt DamageType) (int, Adjustment) {
	if amount <= 0 {
		return 0, AdjustNone
	}
	if hasType(c.Immunities, dt) {
		return 0, AdjustImmune
	}
	resisted := hasType(c.Resistances, dt)
	vulnerable := hasType(c.Vulnerabilities, dt)
	switch {
	case resisted && vulnerable:
		return amount / 2 * 2, AdjustNone
	case resisted:
		return amount / 2, AdjustResisted
	case vulnerable:
		return amount * 2, AdjustVulnerable
	}
	return amount, AdjustNone
}

// TakeDamage lowers HP, clamped at zero, and returns the HP actually lost.
func (c *Combatant) TakeDamage(amount int) int {
	if amount <= 0 || c.HP == 0 {
		return 0
	}
	lost := min(amount, c.HP)
	c.HP -= lost
	return lost
}

// Heal raises HP, clamped at MaxHP, and returns the HP actually restored.
func (c *Combatant) Heal(amount int) int {
	if amount <= 0 || !c.Alive() {
		return 0
	}
	gained := min(amount, c.MaxHP-c.HP)
	c.HP += gained
	return gained
}

// HPRatio is HP / MaxHP.
func (c *Combatant) HPRatio() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}
