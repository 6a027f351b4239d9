package game

import (
	"fmt"
	"strconv"
	"strings"
)

type Ability string

const (
	STR Ability = "str"
	DEX Ability = "dex"
	CON Ability = "con"
	INT Ability = "int"
	WIS Ability = "wis"
	CHA Ability = "cha"
)

// Abilities lists the six abilities in sheet order.
var Abilities = []Ability{STR, DEX, CON, INT, WIS, CHA}

func (a Ability) Valid() bool {
	switch a {
	case STR, DEX, CON, INT, WIS, CHA:
		return true
	}
	return false
}

// AbilityScores holds the six raw scores.
type AbilityScores struct {
	Str int `json:"str" yaml:"str"`
	Dex int `json:"dex" yaml:"dex"`
	Con int `json:"con" yaml:"con"`
	Int int `json:"int" yaml:"int"`
	Wis int `json:"wis" yaml:"wis"`
	Cha int `json:"cha" yaml:"cha"`
}

func (s AbilityScores) Score(a Ability) int {
	switch a {
	case STR:
		return s.Str
	case DEX:
		return s.Dex
	case CON:
		return s.Con
	case INT:
		return s.Int
	case WIS:
		return s.Wis
	case CHA:
		return s.Cha
	}
	return 10
}

// Modifier returns floor((score-10)/2).
func (s AbilityScores) Modifier(a Ability) int {
	return ScoreModifier(s.Score(a))
}

func ScoreModifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

func (s AbilityScores) Validate() error {
	for _, a := range Abilities {
		if v := s.Score(a); v < 1 || v > 30 {
			return fmt.Errorf("%s score %d out of range 1..30", a, v)
		}
	}
	return nil
}

// CharacterProficiency returns the proficiency bonus for a character level.
func CharacterProficiency(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}

// ParseCR converts "1/8", "1/4", "1/2" or an integer string into a float.
func ParseCR(cr string) (float64, error) {
	s := strings.TrimSpace(cr)
	switch s {
	case "":
		return 0, fmt.Errorf("empty challenge rating")
	case "1/8":
		return 0.125, nil
	case "1/4":
		return 0.25, nil
	case "1/2":
		return 0.5, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 || n > 30 {
		return 0, fmt.Errorf("invalid challenge rating %q", cr)
	}
	return n, nil
}

// MonsterProficiency returns the proficiency bonus for a challenge rating.
func MonsterProficiency(cr float64) int {
	switch {
	case cr <= 1:
		return 2
	case cr <= 4:
		return 3
	case cr <= 8:
		return 4
	case cr <= 12:
		return 5
	case cr <= 16:
		return 6
	}
	return 7
}

// CastingAbilityForClass maps a class to its spellcasting ability.
func CastingAbilityForClass(class string) (Ability, bool) {
	switch strings.ToLower(strings.TrimSpace(class)) {
	case "wizard", "artificer":
		return INT, true
	case "cleric", "druid", "ranger":
		return WIS, true
	case "bard", "paladin", "sorcerer", "warlock":
		return CHA, true
	}
	return "", false
}
