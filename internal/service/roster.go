package service

import (
	"fmt"
	"strings"

	"github.com/ericogr/dnd-combat-sim/internal/catalog"
	"github.com/ericogr/dnd-combat-sim/internal/game"
	"github.com/ericogr/dnd-combat-sim/internal/keys"
)

const (
	maxSideSize = 20
	maxNameLen  = 64
)

// SimulationRequest names the two sides of a fight. Each side is the
// union of a named catalog group, catalog entries by name and inline
// templates, in that order. Inline templates use catalog actions.
type SimulationRequest struct {
	Name string `json:"name"`

	Party      string                   `json:"party,omitempty"`
	Members    []string                 `json:"members,omitempty"`
	Characters []game.CombatantTemplate `json:"characters,omitempty"`

	Encounter        string                   `json:"encounter,omitempty"`
	Monsters         []catalog.Slot           `json:"monsters,omitempty"`
	MonsterTemplates []game.CombatantTemplate `json:"monster_templates,omitempty"`

	// Seed makes the run reproducible. Without one a random seed is
	// drawn and reported back.
	Seed      *int64 `json:"seed,omitempty"`
	MaxRounds int    `json:"max_rounds,omitempty"`
}

// plan is a validated request: templates for both sides, ready to be
// built into fresh combatants for every run.
type plan struct {
	name      string
	party     []game.CombatantTemplate
	monsters  []game.CombatantTemplate
	key       string
	lineup    string
	maxRounds int
}

func (r *Runner) plan(req SimulationRequest) (*plan, error) {
	if len(req.Name) > maxNameLen {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidRequest, maxNameLen)
	}
	if req.MaxRounds < 0 {
		return nil, fmt.Errorf("%w: max_rounds must not be negative", ErrInvalidRequest)
	}
	party, err := r.partyTemplates(req)
	if err != nil {
		return nil, err
	}
	monsters, err := r.monsterTemplates(req)
	if err != nil {
		return nil, err
	}
	if len(party) == 0 || len(monsters) == 0 {
		return nil, fmt.Errorf("%w: both sides need at least one combatant", ErrInvalidRequest)
	}
	if len(party) > maxSideSize || len(monsters) > maxSideSize {
		return nil, fmt.Errorf("%w: at most %d combatants per side", ErrInvalidRequest, maxSideSize)
	}

	p := &plan{
		name:      strings.TrimSpace(req.Name),
		party:     party,
		monsters:  monsters,
		key:       keys.EncounterKey(templateNames(party), templateNames(monsters)),
		lineup:    keys.LineupKey(templateNames(party), templateNames(monsters)),
		maxRounds: req.MaxRounds,
	}
	if p.maxRounds == 0 {
		p.maxRounds = r.settings.MaxRounds
	}
	if p.name == "" {
		p.name = defaultName(req, party, monsters)
	}
	return p, nil
}

func (r *Runner) partyTemplates(req SimulationRequest) ([]game.CombatantTemplate, error) {
	var names []string
	if req.Party != "" {
		p, ok := r.catalog.Party(req.Party)
		if !ok {
			return nil, fmt.Errorf("%w: %w party %q", ErrInvalidRequest, catalog.ErrUnknownName, req.Party)
		}
		names = append(names, p.Members...)
	}
	names = append(names, req.Members...)
	out, err := r.catalog.PartyTemplates(names)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for _, t := range req.Characters {
		if !t.IsCharacter() {
			return nil, fmt.Errorf("%w: inline character %q needs a class and level", ErrInvalidRequest, t.Name)
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *Runner) monsterTemplates(req SimulationRequest) ([]game.CombatantTemplate, error) {
	var slots []catalog.Slot
	if req.Encounter != "" {
		e, ok := r.catalog.Encounter(req.Encounter)
		if !ok {
			return nil, fmt.Errorf("%w: %w encounter %q", ErrInvalidRequest, catalog.ErrUnknownName, req.Encounter)
		}
		slots = append(slots, e.Monsters...)
	}
	slots = append(slots, req.Monsters...)
	for _, s := range slots {
		if s.Count < 0 || s.Count > maxSideSize {
			return nil, fmt.Errorf("%w: monster %q count %d out of range", ErrInvalidRequest, s.Name, s.Count)
		}
	}
	out, err := r.catalog.EncounterTemplates(slots)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for _, t := range req.MonsterTemplates {
		if t.IsCharacter() {
			return nil, fmt.Errorf("%w: inline monster %q must not have a class", ErrInvalidRequest, t.Name)
		}
		out = append(out, t)
	}
	return out, nil
}

// build creates fresh combatants for one run. Inline templates are
// validated here, as part of game.NewCombatant.
func (r *Runner) build(p *plan) (party, monsters []*game.Combatant, err error) {
	party, err = r.catalog.BuildAll(p.party, game.SideParty, "p")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	monsters, err = r.catalog.BuildAll(p.monsters, game.SideMonster, "m")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return party, monsters, nil
}

// difficulty rates the matchup; nil when a CR is not in the XP table.
func (p *plan) difficulty() *catalog.Difficulty {
	crs := make([]string, 0, len(p.monsters))
	for _, m := range p.monsters {
		crs = append(crs, m.CR)
	}
	levels := make([]int, 0, len(p.party))
	for _, c := range p.party {
		levels = append(levels, c.Level)
	}
	d, err := catalog.Rate(crs, levels)
	if err != nil {
		return nil
	}
	return &d
}

func templateNames(list []game.CombatantTemplate) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.Name
	}
	return out
}

func defaultName(req SimulationRequest, party, monsters []game.CombatantTemplate) string {
	left, right := req.Party, req.Encounter
	if left == "" {
		left = party[0].Name
		if len(party) > 1 {
			left += fmt.Sprintf(" +%d", len(party)-1)
		}
	}
	if right == "" {
		right = monsters[0].Name
		if len(monsters) > 1 {
			right += fmt.Sprintf(" +%d", len(monsters)-1)
		}
	}
	name := left + " vs " + right
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}
