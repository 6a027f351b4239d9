// Package engine runs one combat session: it rolls initiative, walks the
// turn order round by round, asks the side's strategy for a decision and
// resolves it against the effect registry and the combat log.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericogr/dnd-combat-sim/internal/ai"
	"github.com/ericogr/dnd-combat-sim/internal/combatlog"
	"github.com/ericogr/dnd-combat-sim/internal/dice"
	"github.com/ericogr/dnd-combat-sim/internal/effects"
	"github.com/ericogr/dnd-combat-sim/internal/game"
)

// Phase is the scheduler state.
type Phase string

const (
	PhaseNotStarted  Phase = "not_started"
	PhaseInitiative  Phase = "rolling_initiative"
	PhaseRoundActive Phase = "round_active"
	PhaseRoundEnd    Phase = "round_end"
	PhaseEnded       Phase = "ended"
)

const (
	DefaultMaxRounds = 50
	// formation used for combatants without a fixed position
	partyLine   = 0.0
	monsterLine = 25.0
	rankSpacing = 5.0
)

// Options configures a session.
type Options struct {
	ID              string
	MaxRounds       int
	PartyStrategy   ai.Strategy
	MonsterStrategy ai.Strategy
}

// InitiativeRoll is one combatant's initiative.
type InitiativeRoll struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Roll     int    `json:"roll"`
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
}

// Result is the terminal report of a session.
type Result struct {
	SessionID        string            `json:"session_id"`
	Outcome          game.Outcome      `json:"outcome"`
	Rounds           int               `json:"rounds"`
	Initiative       []InitiativeRoll  `json:"initiative"`
	Log              []combatlog.Entry `json:"log"`
	Stats            *Stats            `json:"stats"`
	PartyHPRemaining int               `json:"party_hp_remaining"`
	PartyLevel       int               `json:"party_level"`
}

// Session is one fight between a party and an encounter. It owns its
// combatants, effect registry, log and roller; nothing is shared with
// other sessions.
type Session struct {
	id         string
	combatants []*game.Combatant
	byID       map[string]*game.Combatant
	order      []*game.Combatant
	position   map[string]int
	initiative []InitiativeRoll

	phase     Phase
	round     int
	turn      int
	maxRounds int
	outcome   game.Outcome

	roller     *dice.Roller
	effects    *effects.Registry
	log        *combatlog.Log
	stats      *Stats
	strategies map[game.Side]ai.Strategy
	resolver   *Resolver
}

// NewSession validates the combatants and prepares a session. Party
// members are registered before monsters; registration order is the last
// initiative tie-breaker.
func NewSession(party, monsters []*game.Combatant, roller *dice.Roller, opts Options) (*Session, error) {
	if len(party) == 0 || len(monsters) == 0 {
		return nil, ErrNoCombatants
	}
	if roller == nil {
		return nil, fmt.Errorf("engine: nil roller")
	}
	s := &Session{
		id:        opts.ID,
		byID:      make(map[string]*game.Combatant, len(party)+len(monsters)),
		position:  make(map[string]int, len(party)+len(monsters)),
		phase:     PhaseNotStarted,
		maxRounds: opts.MaxRounds,
		outcome:   game.OutcomeOngoing,
		roller:    roller,
		effects:   effects.New(),
		log:       combatlog.New(),
		strategies: map[game.Side]ai.Strategy{
			game.SideParty:   opts.PartyStrategy,
			game.SideMonster: opts.MonsterStrategy,
		},
	}
	if s.maxRounds <= 0 {
		s.maxRounds = DefaultMaxRounds
	}
	if s.strategies[game.SideParty] == nil {
		s.strategies[game.SideParty] = ai.NewPartyAI(ai.DefaultHealThreshold, ai.DefaultBuffRounds)
	}
	if s.strategies[game.SideMonster] == nil {
		s.strategies[game.SideMonster] = ai.NewMonsterAI()
	}
	if err := s.register(party, game.SideParty, "p"); err != nil {
		return nil, err
	}
	if err := s.register(monsters, game.SideMonster, "m"); err != nil {
		return nil, err
	}
	disambiguateNames(s.combatants)
	s.stats = newStats(s.combatants)
	s.resolver = &Resolver{
		roller:  roller,
		effects: s.effects,
		log:     s.log,
		stats:   s.stats,
		lookup:  s.lookup,
		field:   s.alive,
	}
	return s, nil
}

func (s *Session) register(list []*game.Combatant, side game.Side, prefix string) error {
	rank := 0
	for i, c := range list {
		if c == nil {
			return fmt.Errorf("engine: nil combatant in %s", side)
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("%s%d", prefix, i+1)
		}
		if _, dup := s.byID[c.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		if c.MaxHP <= 0 || c.HP < 0 || c.HP > c.MaxHP {
			return &StateInvariantViolation{Detail: fmt.Sprintf("%s starts with hp %d/%d", c.Name, c.HP, c.MaxHP)}
		}
		for _, a := range c.Actions {
			if !a.Compiled() {
				return fmt.Errorf("%w: %s of %s", ErrUncompiledAction, a.Name, c.Name)
			}
		}
		c.Side = side
		c.Order = len(s.combatants)
		if !c.Placed {
			x := partyLine
			if side == game.SideMonster {
				x = monsterLine
			}
			c.Position = game.Position{X: x, Y: float64(rank) * rankSpacing}
			rank++
		}
		s.byID[c.ID] = c
		s.position[c.ID] = c.Order
		s.combatants = append(s.combatants, c)
	}
	return nil
}

// disambiguateNames numbers repeated names: "Goblin 1", "Goblin 2".
func disambiguateNames(all []*game.Combatant) {
	count := map[string]int{}
	for _, c := range all {
		count[c.Name]++
	}
	seen := map[string]int{}
	for _, c := range all {
		if count[c.Name] > 1 {
			base := c.Name
			seen[base]++
			c.Name = fmt.Sprintf("%s %d", base, seen[base])
		}
	}
}

func (s *Session) ID() string                          { return s.id }
func (s *Session) Phase() Phase                        { return s.phase }
func (s *Session) Round() int                          { return s.round }
func (s *Session) Outcome() game.Outcome               { return s.outcome }
func (s *Session) Log() *combatlog.Log                 { return s.log }
func (s *Session) Combatants() []*game.Combatant       { return append([]*game.Combatant(nil), s.combatants...) }
func (s *Session) Order() []*game.Combatant            { return append([]*game.Combatant(nil), s.order...) }
func (s *Session) Combatant(id string) *game.Combatant { return s.byID[id] }

func (s *Session) lookup(id string) (*game.Combatant, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// alive returns the living combatants in turn order.
func (s *Session) alive() []*game.Combatant {
	src := s.order
	if len(src) == 0 {
		src = s.combatants
	}
	out := make([]*game.Combatant, 0, len(src))
	for _, c := range src {
		if c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// Run drives the session to its end. It stops early when ctx is done or
// when a fatal error is detected.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	for s.phase != PhaseEnded {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.Step(); err != nil {
			return nil, err
		}
	}
	return s.Result(), nil
}

// Step advances the state machine by one transition: initiative, one
// turn, or the end of a round.
func (s *Session) Step() error {
	switch s.phase {
	case PhaseNotStarted:
		s.RollInitiative()
		if err := s.checkInvariants(); err != nil {
			return err
		}
		// a side that starts fully down loses before anyone acts
		s.decide()
		return nil
	case PhaseRoundActive:
		return s.stepTurn()
	case PhaseRoundEnd:
		return s.endRound()
	case PhaseEnded:
		return ErrSessionOver
	}
	return &StateInvariantViolation{Detail: "unknown phase " + string(s.phase)}
}

// Result reports the session. It is complete once the phase is ended.
func (s *Session) Result() *Result {
	s.stats.snapshot(s.combatants)
	hp, levels, n := 0, 0, 0
	for _, c := range s.combatants {
		if c.Side != game.SideParty {
			continue
		}
		hp += c.HP
		if c.Level > 0 {
			levels += c.Level
			n++
		}
	}
	level := 0
	if n > 0 {
		level = levels / n
	}
	return &Result{
		SessionID:        s.id,
		Outcome:          s.outcome,
		Rounds:           s.round,
		Initiative:       append([]InitiativeRoll(nil), s.initiative...),
		Log:              s.log.Entries(),
		Stats:            s.stats,
		PartyHPRemaining: hp,
		PartyLevel:       level,
	}
}

func (s *Session) checkInvariants() error {
	for _, c := range s.combatants {
		if c.HP < 0 || c.HP > c.MaxHP {
			return &StateInvariantViolation{Detail: fmt.Sprintf("%s has hp %d outside [0,%d]", c.Name, c.HP, c.MaxHP)}
		}
	}
	if err := s.effects.Validate(s.lookup); err != nil {
		return &StateInvariantViolation{Detail: "effect registry", Err: err}
	}
	return nil
}

func names(list []*game.Combatant) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Name
	}
	return out
}

func joinNames(list []*game.Combatant) string {
	return strings.Join(names(list), ", ")
}
