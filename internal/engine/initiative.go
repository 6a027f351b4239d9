package engine

import (
	"fmt"
	"sort"

	"github.com/ericogr/dnd-combat-sim/internal/combatlog"
	"github.com/ericogr/dnd-combat-sim/internal/game"
)

// RollInitiative rolls d20 + DEX for every combatant still standing and
// fixes the turn order: highest total first, then highest DEX modifier,
// then registration order. The order never changes afterwards, and a
// combatant that starts at 0 HP never gets a turn.
func (s *Session) RollInitiative() {
	s.phase = PhaseInitiative
	s.log.Append(combatlog.Entry{
		Kind:    combatlog.KindCombatStart,
		Targets: names(s.combatants),
		Message: fmt.Sprintf("Combat begins: %s vs %s", joinNames(s.side(game.SideParty)), joinNames(s.side(game.SideMonster))),
	})

	rolls := make(map[string]InitiativeRoll, len(s.combatants))
	s.order = s.order[:0]
	for _, c := range s.combatants {
		if !c.Alive() {
			continue
		}
		mod := c.Modifier(game.DEX)
		d := s.roller.Die(20)
		rolls[c.ID] = InitiativeRoll{ID: c.ID, Name: c.Name, Roll: d, Modifier: mod, Total: d + mod}
		s.order = append(s.order, c)
	}
	sort.SliceStable(s.order, func(i, j int) bool {
		a, b := rolls[s.order[i].ID], rolls[s.order[j].ID]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if a.Modifier != b.Modifier {
			return a.Modifier > b.Modifier
		}
		return s.order[i].Order < s.order[j].Order
	})
	s.initiative = s.initiative[:0]
	for i, c := range s.order {
		s.position[c.ID] = i
		ir := rolls[c.ID]
		s.initiative = append(s.initiative, ir)
		s.log.Append(combatlog.Entry{
			Kind: combatlog.KindInitiative, Actor: c.Name,
			Rolls:   []combatlog.Roll{{Label: "initiative", Rolls: []int{ir.Roll}, Natural: ir.Roll, Modifier: ir.Modifier, Total: ir.Total}},
			Message: fmt.Sprintf("%s rolls initiative %d (%d%+d)", c.Name, ir.Total, ir.Roll, ir.Modifier),
		})
	}
	s.round, s.turn = 1, 0
	s.phase = PhaseRoundActive
}

func (s *Session) side(sd game.Side) []*game.Combatant {
	var out []*game.Combatant
	for _, c := range s.combatants {
		if c.Side == sd {
			out = append(out, c)
		}
	}
	return out
}
