package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/ericogr/dnd-combat-sim/internal/game"
	"github.com/ericogr/dnd-combat-sim/internal/keys"
)

// Record kinds stored in the catalog snapshot table.
const (
	KindAction    = "action"
	KindCharacter = "character"
	KindMonster   = "monster"
	KindParty     = "party"
	KindEncounter = "encounter"
)

// Records flattens the catalog into one JSON row per entry.
func Records(c *Catalog) ([]game.CatalogRecord, error) {
	f := c.Snapshot()
	var out []game.CatalogRecord
	add := func(kind, name string, v interface{}) error {
		body, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s %q: %w", kind, name, err)
		}
		out = append(out, game.CatalogRecord{Kind: kind, Key: keys.NameKey(name), Name: name, Body: body})
		return nil
	}
	for _, a := range f.Actions {
		if err := add(KindAction, a.Name, a); err != nil {
			return nil, err
		}
	}
	for _, t := range f.Characters {
		if err := add(KindCharacter, t.Name, t); err != nil {
			return nil, err
		}
	}
	for _, t := range f.Monsters {
		if err := add(KindMonster, t.Name, t); err != nil {
			return nil, err
		}
	}
	for _, p := range f.Parties {
		if err := add(KindParty, p.Name, p); err != nil {
			return nil, err
		}
	}
	for _, e := range f.Encounters {
		if err := add(KindEncounter, e.Name, e); err != nil {
			return nil, err
		}
	}
	return out, nil
}
