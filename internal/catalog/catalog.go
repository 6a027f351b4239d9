// Package catalog loads the action, character and monster templates a
// simulation is built from.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ericogr/dnd-combat-sim/internal/game"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

var (
	ErrDuplicateName = errors.New("catalog: duplicate name")
	ErrUnknownName   = errors.New("catalog: unknown name")
	ErrEmptyGroup    = errors.New("catalog: empty group")
)

// Slot is one monster entry of an encounter.
type Slot struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count,omitempty" yaml:"count"`
}

// Encounter is a named group of monsters.
type Encounter struct {
	Name     string `json:"name" yaml:"name"`
	Monsters []Slot `json:"monsters" yaml:"monsters"`
}

// Party is a named group of characters.
type Party struct {
	Name    string   `json:"name" yaml:"name"`
	Members []string `json:"members" yaml:"members"`
}

// File is the on-disk catalog layout.
type File struct {
	Actions    []*game.Action           `json:"actions" yaml:"actions"`
	Characters []game.CombatantTemplate `json:"characters" yaml:"characters"`
	Monsters   []game.CombatantTemplate `json:"monsters" yaml:"monsters"`
	Parties    []Party                  `json:"parties,omitempty" yaml:"parties"`
	Encounters []Encounter              `json:"encounters,omitempty" yaml:"encounters"`
}

// Catalog is a validated, read-only set of templates. Lookups ignore case.
type Catalog struct {
	file       File
	actions    map[string]*game.Action
	characters map[string]game.CombatantTemplate
	monsters   map[string]game.CombatantTemplate
	parties    map[string]Party
	encounters map[string]Encounter
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, "yaml")
}

// Load reads a catalog file; JSON when the extension says so, YAML
// otherwise. An empty path loads the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a catalog document.
func Parse(data []byte, format string) (*Catalog, error) {
	var f File
	var err error
	if format == "json" {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f)
}

// New validates f and indexes it.
func New(f File) (*Catalog, error) {
	c := &Catalog{
		file:       f,
		actions:    make(map[string]*game.Action, len(f.Actions)),
		characters: make(map[string]game.CombatantTemplate, len(f.Characters)),
		monsters:   make(map[string]game.CombatantTemplate, len(f.Monsters)),
		parties:    make(map[string]Party, len(f.Parties)),
		encounters: make(map[string]Encounter, len(f.Encounters)),
	}
	for _, a := range f.Actions {
		if a == nil {
			continue
		}
		if err := a.Compile(); err != nil {
			return nil, err
		}
		if _, dup := c.actions[key(a.Name)]; dup {
			return nil, fmt.Errorf("%w: action %q", ErrDuplicateName, a.Name)
		}
		c.actions[key(a.Name)] = a
	}
	add := func(kind string, list []game.CombatantTemplate, into map[string]game.CombatantTemplate) error {
		for _, t := range list {
			if err := t.Validate(); err != nil {
				return fmt.Errorf("%s %q: %w", kind, t.Name, err)
			}
			if _, dup := into[key(t.Name)]; dup {
				return fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, t.Name)
			}
			for _, name := range t.Actions {
				if _, ok := c.actions[key(name)]; !ok {
					return fmt.Errorf("%s %q: %w action %q", kind, t.Name, ErrUnknownName, name)
				}
			}
			into[key(t.Name)] = t
		}
		return nil
	}
	if err := add("character", f.Characters, c.characters); err != nil {
		return nil, err
	}
	if err := add("monster", f.Monsters, c.monsters); err != nil {
		return nil, err
	}
	for _, p := range f.Parties {
		if len(p.Members) == 0 {
			return nil, fmt.Errorf("%w: party %q", ErrEmptyGroup, p.Name)
		}
		for _, m := range p.Members {
			if _, ok := c.characters[key(m)]; !ok {
				return nil, fmt.Errorf("party %q: %w character %q", p.Name, ErrUnknownName, m)
			}
		}
		if _, dup := c.parties[key(p.Name)]; dup {
			return nil, fmt.Errorf("%w: party %q", ErrDuplicateName, p.Name)
		}
		c.parties[key(p.Name)] = p
	}
	for _, e := range f.Encounters {
		if len(e.Monsters) == 0 {
			return nil, fmt.Errorf("%w: encounter %q", ErrEmptyGroup, e.Name)
		}
		for _, s := range e.Monsters {
			if _, ok := c.monsters[key(s.Name)]; !ok {
				return nil, fmt.Errorf("encounter %q: %w monster %q", e.Name, ErrUnknownName, s.Name)
			}
		}
		if _, dup := c.encounters[key(e.Name)]; dup {
			return nil, fmt.Errorf("%w: encounter %q", ErrDuplicateName, e.Name)
		}
		c.encounters[key(e.Name)] = e
	}
	return c, nil
}

// Action implements game.ActionLookup.
func (c *Catalog) Action(name string) (*game.Action, bool) {
	a, ok := c.actions[key(name)]
	return a, ok
}

func (c *Catalog) Character(name string) (game.CombatantTemplate, bool) {
	t, ok := c.characters[key(name)]
	return t, ok
}

func (c *Catalog) Monster(name string) (game.CombatantTemplate, bool) {
	t, ok := c.monsters[key(name)]
	return t, ok
}

func (c *Catalog) Party(name string) (Party, bool) {
	p, ok := c.parties[key(name)]
	return p, ok
}

func (c *Catalog) Encounter(name string) (Encounter, bool) {
	e, ok := c.encounters[key(name)]
	return e, ok
}

// Snapshot returns the catalog as loaded, for listing.
func (c *Catalog) Snapshot() File { return c.file }

// PartyTemplates resolves character names to templates.
func (c *Catalog) PartyTemplates(names []string) ([]game.CombatantTemplate, error) {
	out := make([]game.CombatantTemplate, 0, len(names))
	for _, n := range names {
		t, ok := c.Character(n)
		if !ok {
			return nil, fmt.Errorf("%w character %q", ErrUnknownName, n)
		}
		out = append(out, t)
	}
	return out, nil
}

// EncounterTemplates expands an encounter's slots into one template per
// monster.
func (c *Catalog) EncounterTemplates(slots []Slot) ([]game.CombatantTemplate, error) {
	var out []game.CombatantTemplate
	for _, s := range slots {
		t, ok := c.Monster(s.Name)
		if !ok {
			return nil, fmt.Errorf("%w monster %q", ErrUnknownName, s.Name)
		}
		n := max(s.Count, 1)
		for i := 0; i < n; i++ {
			out = append(out, t)
		}
	}
	return out, nil
}

// Build creates a fresh combatant from t with actions from the catalog.
func (c *Catalog) Build(t game.CombatantTemplate, id string, side game.Side, order int) (*game.Combatant, error) {
	return game.NewCombatant(t, id, side, order, c.Action)
}

// BuildAll creates combatants for a side, numbering their IDs.
func (c *Catalog) BuildAll(list []game.CombatantTemplate, side game.Side, prefix string) ([]*game.Combatant, error) {
	out := make([]*game.Combatant, 0, len(list))
	for i, t := range list {
		cb, err := c.Build(t, fmt.Sprintf("%s%d", prefix, i+1), side, i)
		if err != nil {
			return nil, err
		}
		out = append(out, cb)
	}
	return out, nil
}
