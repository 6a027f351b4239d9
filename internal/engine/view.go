package engine

import "github.com/ericogr/dnd-combat-sim/internal/game"

// sessionView is the read-only State handed to strategies.
type sessionView struct {
	s *Session
}

func (v *sessionView) Round() int { return v.s.round }

func (v *sessionView) Allies(c *game.Combatant) []*game.Combatant {
	return v.filter(func(o *game.Combatant) bool { return o.Side == c.Side })
}

func (v *sessionView) Enemies(c *game.Combatant) []*game.Combatant {
	return v.filter(func(o *game.Combatant) bool { return o.Side != c.Side })
}

func (v *sessionView) filter(keep func(*game.Combatant) bool) []*game.Combatant {
	var out []*game.Combatant
	for _, o := range v.s.alive() {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (v *sessionView) Position(c *game.Combatant) int { return v.s.position[c.ID] }

func (v *sessionView) DamageDealt(c *game.Combatant) int { return v.s.stats.of(c.ID).DamageDealt }

func (v *sessionView) Concentrating(c *game.Combatant) bool {
	_, ok := v.s.effects.Concentration(c.ID)
	return ok
}

func (v *sessionView) HasEffect(c *game.Combatant, name string) bool {
	return v.s.effects.HasNamed(c.ID, name)
}

func (v *sessionView) HasKind(c *game.Combatant, kind game.EffectKind) bool {
	return v.s.effects.Has(c.ID, kind)
}

func (v *sessionView) ExpectedBonus(c *game.Combatant, kind game.EffectKind) float64 {
	return v.s.effects.Expected(c.ID, kind)
}
