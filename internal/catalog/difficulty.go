package catalog

import (
	"fmt"
	"strings"
)

// Rating is an advisory encounter difficulty.
type Rating string

const (
	Trivial Rating = "trivial"
	Easy    Rating = "easy"
	Medium  Rating = "medium"
	Hard    Rating = "hard"
	Deadly  Rating = "deadly"
)

// Difficulty is the XP budget of an encounter against a party.
type Difficulty struct {
	Rating     Rating `json:"rating"`
	BaseXP     int    `json:"base_xp"`
	AdjustedXP int    `json:"adjusted_xp"`
	// Thresholds are the party's easy, medium, hard and deadly budgets.
	Thresholds [4]int `json:"thresholds"`
}

var xpByCR = map[string]int{
	"0": 10, "1/8": 25, "1/4": 50, "1/2": 100,
	"1": 200, "2": 450, "3": 700, "4": 1100, "5": 1800,
	"6": 2300, "7": 2900, "8": 3900, "9": 5000, "10": 5900,
	"11": 7200, "12": 8400, "13": 10000, "14": 11500, "15": 13000,
	"16": 15000, "17": 18000, "18": 20000, "19": 22000, "20": 25000,
	"21": 33000, "22": 41000, "23": 50000, "24": 62000, "25": 75000,
	"26": 90000, "27": 105000, "28": 120000, "29": 135000, "30": 155000,
}

// per character, by level: easy, medium, hard, deadly
var thresholds = [21][4]int{
	{},
	{25, 50, 75, 100},
	{50, 100, 150, 200},
	{75, 150, 225, 400},
	{125, 250, 375, 500},
	{250, 500, 750, 1100},
	{300, 600, 900, 1400},
	{350, 750, 1100, 1700},
	{450, 900, 1400, 2100},
	{550, 1100, 1600, 2400},
	{600, 1200, 1900, 2800},
	{800, 1600, 2400, 3600},
	{1000, 2000, 3000, 4500},
	{1100, 2200, 3400, 5100},
	{1250, 2500, 3800, 5700},
	{1400, 2800, 4300, 6400},
	{1600, 3200, 4800, 7200},
	{2000, 3900, 5900, 8800},
	{2100, 4200, 6300, 9500},
	{2400, 4900, 7300, 10900},
	{2800, 5700, 8500, 12700},
}

func multiplier(n int) float64 {
	switch {
	case n <= 1:
		return 1
	case n == 2:
		return 1.5
	case n <= 6:
		return 2
	case n <= 10:
		return 2.5
	case n <= 14:
		return 3
	}
	return 4
}

// Rate computes the difficulty of monsters with the given challenge
// ratings against characters of the given levels. It is advisory only.
func Rate(crs []string, levels []int) (Difficulty, error) {
	if len(crs) == 0 || len(levels) == 0 {
		return Difficulty{}, ErrEmptyGroup
	}
	var d Difficulty
	for _, cr := range crs {
		xp, ok := xpByCR[strings.TrimSpace(cr)]
		if !ok {
			return Difficulty{}, fmt.Errorf("%w challenge rating %q", ErrUnknownName, cr)
		}
		d.BaseXP += xp
	}
	d.AdjustedXP = int(float64(d.BaseXP) * multiplier(len(crs)))
	for _, l := range levels {
		if l < 1 || l > 20 {
			return Difficulty{}, fmt.Errorf("character level %d out of range 1..20", l)
		}
		for i := range d.Thresholds {
			d.Thresholds[i] += thresholds[l][i]
		}
	}
	d.Rating = Trivial
	for i, r := range []Rating{Easy, Medium, Hard, Deadly} {
		if d.AdjustedXP >= d.Thresholds[i] {
			d.Rating = r
		}
	}
	return d, nil
}

// Difficulty rates a named party against a named encounter.
func (c *Catalog) Difficulty(party, encounter string) (Difficulty, error) {
	p, ok := c.Party(party)
	if !ok {
		return Difficulty{}, fmt.Errorf("%w party %q", ErrUnknownName, party)
	}
	e, ok := c.Encounter(encounter)
	if !ok {
		return Difficulty{}, fmt.Errorf("%w encounter %q", ErrUnknownName, encounter)
	}
	members, err := c.PartyTemplates(p.Members)
	if err != nil {
		return Difficulty{}, err
	}
	monsters, err := c.EncounterTemplates(e.Monsters)
	if err != nil {
		return Difficulty{}, err
	}
	levels := make([]int, len(members))
	for i, m := range members {
		levels[i] = m.Level
	}
	crs := make([]string, len(monsters))
	for i, m := range monsters {
		crs[i] = m.CR
	}
	return Rate(crs, levels)
}
