package engine

import "github.com/ericogr/dnd-combat-sim/internal/game"

// SideStats aggregates one side of the fight.
type SideStats struct {
	DamageDealt int `json:"damage_dealt"`
	DamageTaken int `json:"damage_taken"`
	Healing     int `json:"healing"`
	SpellsCast  int `json:"spells_cast"`
	SlotsSpent  int `json:"slots_spent"`
	Attacks     int `json:"attacks"`
	Hits        int `json:"hits"`
	Criticals   int `json:"criticals"`
	Downed      int `json:"downed"`
}

// CombatantStats tracks one combatant.
type CombatantStats struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Side        game.Side `json:"side"`
	DamageDealt int       `json:"damage_dealt"`
	DamageTaken int       `json:"damage_taken"`
	HealingDone int       `json:"healing_done"`
	SpellsCast  int       `json:"spells_cast"`
	Kills       int       `json:"kills"`
	HPRemaining int       `json:"hp_remaining"`
	MaxHP       int       `json:"max_hp"`
	Downed      bool      `json:"downed"`
}

// Stats is the aggregate statistics of a session.
type Stats struct {
	Party      SideStats         `json:"party"`
	Monsters   SideStats         `json:"monsters"`
	Combatants []*CombatantStats `json:"combatants"`

	byID map[string]*CombatantStats
}

func newStats(all []*game.Combatant) *Stats {
	s := &Stats{byID: make(map[string]*CombatantStats, len(all))}
	for _, c := range all {
		cs := &CombatantStats{ID: c.ID, Name: c.Name, Side: c.Side, HPRemaining: c.HP, MaxHP: c.MaxHP}
		s.Combatants = append(s.Combatants, cs)
		s.byID[c.ID] = cs
	}
	return s
}

func (s *Stats) side(sd game.Side) *SideStats {
	if sd == game.SideParty {
		return &s.Party
	}
	return &s.Monsters
}

func (s *Stats) of(id string) *CombatantStats {
	if cs, ok := s.byID[id]; ok {
		return cs
	}
	return &CombatantStats{}
}

func (s *Stats) damage(source, target *game.Combatant, amount int) {
	if amount <= 0 {
		return
	}
	if source != nil {
		s.of(source.ID).DamageDealt += amount
		s.side(source.Side).DamageDealt += amount
	}
	s.of(target.ID).DamageTaken += amount
	s.side(target.Side).DamageTaken += amount
}

func (s *Stats) heal(source *game.Combatant, amount int) {
	if amount <= 0 || source == nil {
		return
	}
	s.of(source.ID).HealingDone += amount
	s.side(source.Side).Healing += amount
}

func (s *Stats) down(source, target *game.Combatant) {
	s.of(target.ID).Downed = true
	s.side(target.Side).Downed++
	if source != nil && source.Side != target.Side {
		s.of(source.ID).Kills++
	}
}

func (s *Stats) spell(c *game.Combatant, slot int) {
	s.of(c.ID).SpellsCast++
	s.side(c.Side).SpellsCast++
	if slot > 0 {
		s.side(c.Side).SlotsSpent++
	}
}

func (s *Stats) attack(c *game.Combatant, hit, crit bool) {
	sd := s.side(c.Side)
	sd.Attacks++
	if hit {
		sd.Hits++
	}
	if crit {
		sd.Criticals++
	}
}

func (s *Stats) snapshot(all []*game.Combatant) {
	for _, c := range all {
		s.of(c.ID).HPRemaining = c.HP
	}
}
