package dice

import (
	"fmt"
	"strings"
)

// Mode selects how a d20 is rolled.
type Mode int

const (
	Normal Mode = iota
	Advantage
	Disadvantage
)

func (m Mode) String() string {
	switch m {
	case Advantage:
		return "advantage"
	case Disadvantage:
		return "disadvantage"
	}
	return "normal"
}

// ModeFrom combines advantage and disadvantage sources; having both
// cancels out.
func ModeFrom(adv, dis bool) Mode {
	switch {
	case adv && !dis:
		return Advantage
	case dis && !adv:
		return Disadvantage
	}
	return Normal
}

// RollResult holds the individual dice of one expression evaluation.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of the dice plus the modifier, never below zero.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	if total < 0 {
		return 0
	}
	return total
}

func (r RollResult) String() string {
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprint(d)
	}
	return fmt.Sprintf("%s [%s] = %d", r.Expression, strings.Join(parts, " "), r.Total())
}

// D20Result is a d20 roll under a mode. Natural is the kept die.
type D20Result struct {
	Rolls   []int
	Natural int
	Mode    Mode
}

// CheckResult is the outcome of a d20 + modifier test against a DC.
type CheckResult struct {
	D20Result
	Modifier int
	Total    int
	DC       int
	Success  bool
}

// Roller rolls dice from a Source.
type Roller struct {
	src Source
}

func NewRoller(src Source) *Roller {
	return &Roller{src: src}
}

// Die rolls a single die with the given number of sides.
func (r *Roller) Die(sides int) int {
	if sides <= 1 {
		return 1
	}
	return r.src.Intn(sides) + 1
}

// Roll parses and rolls expr.
func (r *Roller) Roll(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.RollExpression(e), nil
}

// RollExpression rolls an already parsed expression.
func (r *Roller) RollExpression(e Expression) RollResult {
	res := RollResult{Expression: e.String(), Dice: make([]int, e.Count), Modifier: e.Modifier}
	for i := 0; i < e.Count; i++ {
		res.Dice[i] = r.Die(e.Sides)
	}
	return res
}

// RollWithMode rolls one die, twice under advantage or disadvantage,
// keeping the higher or lower result respectively.
func (r *Roller) RollWithMode(sides int, mode Mode) D20Result {
	first := r.Die(sides)
	if mode == Normal {
		return D20Result{Rolls: []int{first}, Natural: first, Mode: mode}
	}
	second := r.Die(sides)
	kept := first
	if (mode == Advantage && second > first) || (mode == Disadvantage && second < first) {
		kept = second
	}
	return D20Result{Rolls: []int{first, second}, Natural: kept, Mode: mode}
}

// D20 is RollWithMode(20, mode).
func (r *Roller) D20(mode Mode) D20Result {
	return r.RollWithMode(20, mode)
}

// AbilityCheck rolls d20 + modifier and succeeds when the total meets dc.
func (r *Roller) AbilityCheck(modifier, dc int, mode Mode) CheckResult {
	d := r.D20(mode)
	total := d.Natural + modifier
	return CheckResult{D20Result: d, Modifier: modifier, Total: total, DC: dc, Success: total >= dc}
}
