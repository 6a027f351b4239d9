// Package combatlog records every resolved event of a combat session as a
// human readable line plus structured fields.
package combatlog

import (
	"fmt"
	"strings"
)

type Kind string

const (
	KindCombatStart   Kind = "combat_start"
	KindInitiative    Kind = "initiative"
	KindRoundStart    Kind = "round_start"
	KindMove          Kind = "move"
	KindAttack        Kind = "attack"
	KindSave          Kind = "save"
	KindDamage        Kind = "damage"
	KindHeal          Kind = "heal"
	KindEffectApplied Kind = "effect_applied"
	KindEffectEnded   Kind = "effect_ended"
	KindConcentration Kind = "concentration"
	KindDown          Kind = "incapacitated"
	KindPass          Kind = "pass"
	KindError         Kind = "error"
	KindCombatEnd     Kind = "combat_end"
)

// Roll is one d20 test recorded in an entry.
type Roll struct {
	Label    string `json:"label"`
	Rolls    []int  `json:"rolls"`
	Natural  int    `json:"natural"`
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
	Against  int    `json:"against"`
	Mode     string `json:"mode,omitempty"`
	Success  bool   `json:"success"`
	Critical bool   `json:"critical,omitempty"`
}

// Entry is one logged event.
type Entry struct {
	Seq        int      `json:"seq"`
	Round      int      `json:"round"`
	Kind       Kind     `json:"kind"`
	Actor      string   `json:"actor,omitempty"`
	Action     string   `json:"action,omitempty"`
	Targets    []string `json:"targets,omitempty"`
	Rolls      []Roll   `json:"rolls,omitempty"`
	Damage     int      `json:"damage,omitempty"`
	DamageType string   `json:"damage_type,omitempty"`
	Healing    int      `json:"healing,omitempty"`
	Effects    []string `json:"effects,omitempty"`
	HPAfter    *int     `json:"hp_after,omitempty"`
	Message    string   `json:"message"`
}

// Log is an append-only ordered sequence of entries.
type Log struct {
	entries []Entry
}

func New() *Log {
	return &Log{entries: make([]Entry, 0, 64)}
}

// Append stamps the sequence number and stores e.
func (l *Log) Append(e Entry) Entry {
	e.Seq = len(l.entries) + 1
	l.entries = append(l.entries, e)
	return e
}

// Addf appends a message-only entry.
func (l *Log) Addf(round int, kind Kind, format string, args ...any) Entry {
	return l.Append(Entry{Round: round, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Entries returns a copy of the recorded entries.
func (l *Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

func (l *Log) Len() int { return len(l.entries) }

// Lines returns the human readable messages in order.
func (l *Log) Lines() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Message
	}
	return out
}

// String renders the log one line per entry, prefixed by round.
func (l *Log) String() string {
	var b strings.Builder
	for _, e := range l.entries {
		if e.Round > 0 {
			fmt.Fprintf(&b, "[R%d] ", e.Round)
		}
		b.WriteString(e.Message)
		b.WriteByte('\n')
	}
	return b.String()
}

// Filter returns the entries of the given kinds.
func Filter(entries []Entry, kinds ...Kind) []Entry {
	var out []Entry
	for _, e := range entries {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// HP returns a pointer suitable for Entry.HPAfter.
func HP(v int) *int { return &v }
