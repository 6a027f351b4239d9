package game

type Side string

const (
	SideParty   Side = "party"
	SideMonster Side = "monster"
)

func (s Side) Opponent() Side {
	if s == SideParty {
		return SideMonster
	}
	return SideParty
}

// Outcome is the terminal state of a combat session.
type Outcome string

const (
	OutcomeOngoing        Outcome = "ongoing"
	OutcomePartyVictory   Outcome = "party_victory"
	OutcomeMonsterVictory Outcome = "monster_victory"
	OutcomeDraw           Outcome = "draw"
	OutcomeTimeout        Outcome = "timeout"
)

func (o Outcome) Terminal() bool { return o != OutcomeOngoing && o != "" }
