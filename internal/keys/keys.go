package keys

import (
	"sort"
	"strconv"
	"strings"
)

// NameKey canonicalizes a single template name: trimmed, lower-cased and
// with spaces replaced by underscores.
func NameKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// GroupKey produces a canonical key for a list of template names. Names are
// canonicalized, counted and sorted, so ["Goblin", "orc", "goblin"]
// becomes "goblin*2+orc". Order in the input never matters.
func GroupKey(names []string) string {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		k := NameKey(n)
		if k == "" {
			continue
		}
		counts[k]++
	}
	parts := make([]string, 0, len(counts))
	for k, n := range counts {
		if n > 1 {
			k += "*" + strconv.Itoa(n)
		}
		parts = append(parts, k)
	}
	sort.Strings(parts)
	return strings.Join(parts, "+")
}

// EncounterKey identifies a party facing a group of monsters, used to
// group stored simulations of the same matchup.
func EncounterKey(party, monsters []string) string {
	return GroupKey(party) + "|" + GroupKey(monsters)
}

// LineupKey keeps both sides in registration order, which sets the default
// formation and breaks the last initiative tie, so ["Fighter", "Wizard"]
// and ["Wizard", "Fighter"] are different lineups.
func LineupKey(party, monsters []string) string {
	return orderedKey(party) + "|" + orderedKey(monsters)
}

func orderedKey(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if k := NameKey(n); k != "" {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, "+")
}

// RunKey identifies one deterministic run: the same lineup, seed and round
// cap always produce the same combat. The simulation name is kept verbatim
// since it is echoed back in the report.
func RunKey(lineupKey string, seed int64, maxRounds int, name string) string {
	return lineupKey + "#" + strconv.FormatInt(seed, 10) + "/" + strconv.Itoa(maxRounds) + "@" + name
}
