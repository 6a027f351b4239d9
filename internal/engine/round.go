package engine

import (
	"errors"
	"fmt"

	"github.com/ericogr/dnd-combat-sim/internal/ai"
	"github.com/ericogr/dnd-combat-sim/internal/combatlog"
	"github.com/ericogr/dnd-combat-sim/internal/dice"
	"github.com/ericogr/dnd-combat-sim/internal/effects"
	"github.com/ericogr/dnd-combat-sim/internal/game"
)

// stepTurn runs the next combatant's turn. Incapacitated combatants are
// skipped.
func (s *Session) stepTurn() error {
	if s.turn == 0 {
		s.resolver.round = s.round
		s.log.Addf(s.round, combatlog.KindRoundStart, "Round %d begins", s.round)
	}
	c := s.order[s.turn]
	s.turn++
	if c.Alive() {
		if err := s.takeTurn(c); err != nil {
			s.phase = PhaseEnded
			return err
		}
	}
	if s.decide() {
		return nil
	}
	if s.turn >= len(s.order) {
		s.phase = PhaseRoundEnd
	}
	return nil
}

// takeTurn asks the side's strategy for a decision and resolves it. A
// missing slot falls back to the resourceless decision; an invalid target
// or a bad dice expression costs the turn. Only invariant violations are
// returned.
func (s *Session) takeTurn(c *game.Combatant) error {
	view := &sessionView{s: s}
	dec := s.strategies[c.Side].Decide(c, view)
	_, err := s.resolver.Resolve(c, dec)

	var short *InsufficientResourceError
	if errors.As(err, &short) {
		s.log.Append(combatlog.Entry{
			Round: s.round, Kind: combatlog.KindPass, Actor: c.Name, Action: short.Action,
			Message: short.Error() + "; falling back",
		})
		dec = ai.Fallback(c, view)
		_, err = s.resolver.Resolve(c, dec)
	}
	if err != nil {
		if IsFatal(err) {
			return err
		}
		s.logFailedTurn(c, dec, err)
	}
	return s.checkInvariants()
}

func (s *Session) logFailedTurn(c *game.Combatant, dec ai.Decision, err error) {
	action := ""
	if dec.Action != nil {
		action = dec.Action.Name
	}
	var (
		invalid *InvalidTargetError
		parse   *dice.ParseError
	)
	switch {
	case errors.As(err, &invalid):
		s.log.Append(combatlog.Entry{
			Round: s.round, Kind: combatlog.KindPass, Actor: c.Name, Action: action,
			Message: invalid.Error() + "; turn passes",
		})
	case errors.As(err, &parse):
		s.log.Append(combatlog.Entry{
			Round: s.round, Kind: combatlog.KindError, Actor: c.Name, Action: action,
			Message: fmt.Sprintf("%s's %s fails: %v", c.Name, action, parse),
		})
	default:
		s.log.Append(combatlog.Entry{
			Round: s.round, Kind: combatlog.KindError, Actor: c.Name, Action: action,
			Message: fmt.Sprintf("%s's turn fails: %v", c.Name, err),
		})
	}
}

// endRound ticks every living combatant's effects in turn order, then
// checks the end conditions and the round cap.
func (s *Session) endRound() error {
	for _, c := range s.order {
		if !c.Alive() {
			continue
		}
		rep, err := s.effects.TickRoundEnd(c, s.roller)
		if err != nil {
			s.log.Append(combatlog.Entry{
				Round: s.round, Kind: combatlog.KindError, Actor: c.Name,
				Message: fmt.Sprintf("round-end effects on %s fail: %v", c.Name, err),
			})
		}
		if err := s.logTick(c, rep); err != nil {
			s.phase = PhaseEnded
			return err
		}
	}
	if err := s.checkInvariants(); err != nil {
		s.phase = PhaseEnded
		return err
	}
	if s.decide() {
		return nil
	}
	if s.round >= s.maxRounds {
		s.end(game.OutcomeTimeout)
		return nil
	}
	s.round++
	s.turn = 0
	s.phase = PhaseRoundActive
	return nil
}

func (s *Session) logTick(c *game.Combatant, rep effects.TickReport) error {
	r := s.resolver
	for _, ev := range rep.Events {
		source, _ := s.lookup(ev.Effect.SourceID)
		if ev.Healing > 0 {
			r.stats.heal(source, ev.Healing)
			s.log.Append(combatlog.Entry{
				Round: s.round, Kind: combatlog.KindHeal, Actor: c.Name, Action: ev.Effect.Name,
				Targets: []string{c.Name}, Healing: ev.Healing, HPAfter: combatlog.HP(c.HP),
				Message: fmt.Sprintf("%s regains %d HP from %s", c.Name, ev.Healing, ev.Effect.Name),
			})
			continue
		}
		if ev.Effect.Kind != game.EffectDamageOverTime {
			continue
		}
		r.stats.damage(source, c, ev.Damage)
		s.log.Append(combatlog.Entry{
			Round: s.round, Kind: combatlog.KindDamage, Actor: c.Name, Action: ev.Effect.Name,
			Targets: []string{c.Name}, Damage: ev.Damage, DamageType: string(ev.Effect.DamageType), HPAfter: combatlog.HP(c.HP),
			Message: fmt.Sprintf("%s takes %d %s damage from %s%s",
				c.Name, ev.Damage, ev.Effect.DamageType, ev.Effect.Name, adjustmentNote(ev.Adjustment)),
		})
	}
	r.logRemoved(rep.Removed)
	if !c.Alive() {
		source := (*game.Combatant)(nil)
		if n := len(rep.Events); n > 0 {
			source, _ = s.lookup(rep.Events[n-1].Effect.SourceID)
		}
		r.down(source, c)
		return nil
	}
	if rep.Damage > 0 {
		if _, err := r.afterDamage(nil, c, rep.Damage); err != nil {
			return err
		}
	}
	return nil
}

// decide ends the session when a side has no living combatant.
func (s *Session) decide() bool {
	party, monsters := 0, 0
	for _, c := range s.combatants {
		if !c.Alive() {
			continue
		}
		if c.Side == game.SideParty {
			party++
		} else {
			monsters++
		}
	}
	switch {
	case party == 0 && monsters == 0:
		s.end(game.OutcomeDraw)
	case party == 0:
		s.end(game.OutcomeMonsterVictory)
	case monsters == 0:
		s.end(game.OutcomePartyVictory)
	default:
		return false
	}
	return true
}

func (s *Session) end(o game.Outcome) {
	s.outcome = o
	s.phase = PhaseEnded
	s.stats.snapshot(s.combatants)
	s.log.Append(combatlog.Entry{
		Round: s.round, Kind: combatlog.KindCombatEnd,
		Message: fmt.Sprintf("Combat ends after %d round(s): %s", s.round, o),
	})
}
