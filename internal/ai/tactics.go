package ai

import (
	"math"

	"github.com/ericogr/dnd-combat-sim/internal/game"
)

const minChance = 0.05

// HitChance is the probability that d20+bonus meets ac, where a natural
// 20 always hits and a natural 1 always misses.
func HitChance(bonus, ac float64, adv, dis bool) float64 {
	p := (21 - (ac - bonus)) / 20
	p = math.Max(minChance, math.Min(1-minChance, p))
	switch {
	case adv && !dis:
		return 1 - (1-p)*(1-p)
	case dis && !adv:
		return p * p
	}
	return p
}

// SaveFailChance is the probability that d20+bonus falls below dc. With
// advantage both dice must fail, with disadvantage either one failing is
// enough.
func SaveFailChance(bonus, dc float64, adv, dis bool) float64 {
	succ := (21 - (dc - bonus)) / 20
	fail := 1 - math.Max(0, math.Min(1, succ))
	switch {
	case adv && !dis:
		return fail * fail
	case dis && !adv:
		return 1 - (1-fail)*(1-fail)
	}
	return fail
}

func damageFactor(target *game.Combatant, dt game.DamageType) float64 {
	_, adj := target.AdjustDamage(100, dt)
	switch adj {
	case game.AdjustImmune:
		return 0
	case game.AdjustResisted:
		return 0.5
	case game.AdjustVulnerable:
		return 2
	}
	return 1
}

// averageDamage is the mean damage roll of a for self before multipliers.
func averageDamage(self *game.Combatant, a *game.Action) float64 {
	e := a.DamageExpr()
	if a.Cantrip {
		e = e.Scale(self.CantripMultiplier())
	}
	avg := e.Average() + float64(self.DamageBonus(a))
	return math.Max(0, avg)
}

// ExpectedDamage estimates the damage a deals to target this turn.
func ExpectedDamage(self *game.Combatant, a *game.Action, target *game.Combatant, st State) float64 {
	if a.Damage == "" {
		return 0
	}
	avg := averageDamage(self, a) * damageFactor(target, a.DamageType)
	switch a.Kind {
	case game.ActionAttack:
		bonus := float64(self.AttackBonus(a)) + st.ExpectedBonus(self, game.EffectAttackBonus)
		ac := float64(target.AC) + st.ExpectedBonus(target, game.EffectACBonus)
		adv := st.HasKind(self, game.EffectAdvantage) || st.HasKind(target, game.EffectExposed)
		dis := st.HasKind(self, game.EffectDisadvantage) || st.HasKind(target, game.EffectDodging)
		p := HitChance(bonus, ac, adv, dis)
		critDice := a.DamageExpr()
		if a.Cantrip {
			critDice = critDice.Scale(self.CantripMultiplier())
		}
		critExtra := float64(critDice.Count) * float64(critDice.Sides+1) / 2 * damageFactor(target, a.DamageType)
		return float64(a.Attacks) * (p*avg + minChance*critExtra)
	case game.ActionSave, game.ActionArea:
		dc := float64(saveDC(self, a))
		bonus := float64(target.SaveBonus(a.Save)) + st.ExpectedBonus(target, game.EffectSaveBonus)
		fail := SaveFailChance(bonus, dc, st.HasKind(target, game.EffectSaveAdvantage), st.HasKind(target, game.EffectSaveDisadvantage))
		onSave := 0.0
		if a.HalfOnSave {
			onSave = 0.5
		}
		return avg * (fail + (1-fail)*onSave)
	}
	return 0
}

func saveDC(self *game.Combatant, a *game.Action) int {
	if a.SaveDC > 0 {
		return a.SaveDC
	}
	return self.SpellSaveDC()
}

// EffectiveHP is target HP divided by the share of self's best
// expected damage that lands: the number of turns self needs to drop it,
// scaled back to hit points. Lower is easier to finish.
func EffectiveHP(self *game.Combatant, target *game.Combatant, actions []*game.Action, st State) float64 {
	best := 0.0
	for _, a := range actions {
		if !a.Offensive() || a.Damage == "" {
			continue
		}
		if d := ExpectedDamage(self, a, target, st); d > best {
			best = d
		}
	}
	if best <= 0 {
		return math.Inf(1)
	}
	return float64(target.HP) / best
}

// areaHits lists who an area action aimed at aim would catch from where
// self ends up after moving.
func areaHits(self *game.Combatant, a *game.Action, aim *game.Combatant, st State) (enemies, allies []*game.Combatant) {
	origin := self.Approach(a, aim.Position)
	for _, c := range st.Enemies(self) {
		if a.Area.Contains(origin, aim.Position, c.Position) {
			enemies = append(enemies, c)
		}
	}
	for _, c := range st.Allies(self) {
		if c == self && a.Area.Shape != game.Sphere {
			continue
		}
		pos := c.Position
		if c == self {
			pos = origin
		}
		if a.Area.Contains(origin, aim.Position, pos) {
			allies = append(allies, c)
		}
	}
	return enemies, allies
}

type areaPlan struct {
	action  *game.Action
	aim     *game.Combatant
	enemies int
	allies  int
	value   float64
}

// bestArea scores every reachable area action and aim point. Allies
// caught in the area count against the plan when avoidAllies is set.
func bestArea(self *game.Combatant, actions []*game.Action, st State, avoidAllies bool) (areaPlan, bool) {
	var best areaPlan
	found := false
	for _, a := range actions {
		if a.Kind != game.ActionArea || a.Area == nil {
			continue
		}
		for _, aim := range st.Enemies(self) {
			if !self.CanReach(a, aim.Position) {
				continue
			}
			enemies, allies := areaHits(self, a, aim, st)
			if avoidAllies && len(allies) > 0 {
				continue
			}
			value := 0.0
			for _, e := range enemies {
				value += ExpectedDamage(self, a, e, st)
			}
			if len(a.Effects) > 0 {
				value += float64(len(enemies))
			}
			p := areaPlan{action: a, aim: aim, enemies: len(enemies), allies: len(allies), value: value}
			if !found || p.enemies > best.enemies || (p.enemies == best.enemies && p.value > best.value+1e-9) {
				best, found = p, true
			}
		}
	}
	return best, found
}

type attackPlan struct {
	action   *game.Action
	target   *game.Combatant
	expected float64
}

// bestAgainst returns the single-target offensive action with the highest
// expected damage against target, considering only what can reach it.
func bestAgainst(self *game.Combatant, target *game.Combatant, actions []*game.Action, st State) (attackPlan, bool) {
	var best attackPlan
	found := false
	for _, a := range actions {
		if a.Kind != game.ActionAttack && a.Kind != game.ActionSave {
			continue
		}
		if !self.CanReach(a, target.Position) {
			continue
		}
		d := ExpectedDamage(self, a, target, st)
		if !found || d > best.expected+1e-9 {
			best, found = attackPlan{action: a, target: target, expected: d}, true
		}
	}
	return best, found
}

// advance heads for the nearest enemy with the strongest single-target
// action when nothing is in reach this turn.
func advance(self *game.Combatant, actions []*game.Action, st State) (Decision, bool) {
	enemies := st.Enemies(self)
	if len(enemies) == 0 {
		return Decision{}, false
	}
	target := nearest(self, enemies, st)
	var pick *game.Action
	bestDmg := 0.0
	for _, a := range actions {
		if a.Kind != game.ActionAttack && a.Kind != game.ActionSave {
			continue
		}
		if d := ExpectedDamage(self, a, target, st); pick == nil || d > bestDmg+1e-9 {
			pick, bestDmg = a, d
		}
	}
	if pick == nil {
		return Decision{}, false
	}
	return Decision{Action: pick, Targets: []*game.Combatant{target}, Reason: ReasonAdvance}, true
}
