// Package dice parses dice expressions and rolls them against an injected
// random source. A Roller is owned by a single combat session and is not
// safe for concurrent use.
package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxDiceCount = 100
	maxDieSides  = 1000
)

var exprPattern = regexp.MustCompile(`^(\d*)[dD](\d+)\s*(?:([+-])\s*(\d+))?$`)

// ParseError reports a malformed dice expression.
type ParseError struct {
	Expr   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dice: cannot parse %q: %s", e.Expr, e.Reason)
}

// Expression is a parsed NdS+M dice expression. Count 0 means a flat value.
type Expression struct {
	Count    int
	Sides    int
	Modifier int
}

// Parse accepts "NdS", "dS", "NdS+M", "NdS-M" and plain integers.
func Parse(expr string) (Expression, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return Expression{}, &ParseError{Expr: expr, Reason: "empty expression"}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Expression{Modifier: n}, nil
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, &ParseError{Expr: expr, Reason: "expected NdS[+/-M]"}
	}
	count := 1
	if m[1] != "" {
		count, _ = strconv.Atoi(m[1])
	}
	sides, _ := strconv.Atoi(m[2])
	if count < 1 || count > maxDiceCount {
		return Expression{}, &ParseError{Expr: expr, Reason: fmt.Sprintf("dice count must be 1..%d", maxDiceCount)}
	}
	if sides < 1 || sides > maxDieSides {
		return Expression{}, &ParseError{Expr: expr, Reason: fmt.Sprintf("die sides must be 1..%d", maxDieSides)}
	}
	mod := 0
	if m[3] != "" {
		n, err := strconv.Atoi(m[4])
		if err != nil {
			return Expression{}, &ParseError{Expr: expr, Reason: "modifier out of range"}
		}
		mod = n
		if m[3] == "-" {
			mod = -mod
		}
	}
	return Expression{Count: count, Sides: sides, Modifier: mod}, nil
}

// MustParse is Parse for expressions known at compile time.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// Average returns the mean value of the expression.
func (e Expression) Average() float64 {
	return float64(e.Count)*float64(e.Sides+1)/2 + float64(e.Modifier)
}

// Min returns the lowest possible total.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the highest possible total.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// Crit doubles the number of dice; the modifier is unchanged.
func (e Expression) Crit() Expression {
	e.Count *= 2
	return e
}

// Scale multiplies the dice count by n (cantrip scaling).
func (e Expression) Scale(n int) Expression {
	if n > 1 {
		e.Count *= n
	}
	return e
}

// WithModifier returns a copy with extra added to the flat modifier.
func (e Expression) WithModifier(extra int) Expression {
	e.Modifier += extra
	return e
}

func (e Expression) String() string {
	if e.Count == 0 {
		return strconv.Itoa(e.Modifier)
	}
	base := fmt.Sprintf("%dd%d", e.Count, e.Sides)
	switch {
	case e.Modifier > 0:
		return base + "+" + strconv.Itoa(e.Modifier)
	case e.Modifier < 0:
		return base + strconv.Itoa(e.Modifier)
	}
	return base
}
