package game

type DamageType string

const (
	Acid        DamageType = "acid"
	Bludgeoning DamageType = "bludgeoning"
	Cold        DamageType = "cold"
	Fire        DamageType = "fire"
	Force       DamageType = "force"
	Lightning   DamageType = "lightning"
	Necrotic    DamageType = "necrotic"
	Piercing    DamageType = "piercing"
	Poison      DamageType = "poison"
	Psychic     DamageType = "psychic"
	Radiant     DamageType = "radiant"
	Slashing    DamageType = "slashing"
	Thunder     DamageType = "thunder"
)

func (d DamageType) Valid() bool {
	switch d {
	case Acid, Bludgeoning, Cold, Fire, Force, Lightning, Necrotic, Piercing, Poison, Psychic, Radiant, Slashing, Thunder:
		return true
	}
	return false
}

// Adjustment records which damage multiplier applied.
type Adjustment string

const (
	AdjustNone       Adjustment = ""
	AdjustImmune     Adjustment = "immune"
	AdjustResisted   Adjustment = "resisted"
	AdjustVulnerable Adjustment = "vulnerable"
)

func hasType(list []DamageType, dt DamageType) bool {
	for _, d := range list {
		if d == dt {
			return true
		}
	}
	return false
}
