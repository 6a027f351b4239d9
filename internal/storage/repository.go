package storage

import (
	"errors"

	"github.com/ericogr/dnd-combat-sim/internal/game"
)

// ErrNotFound is returned when a record with the requested public ID does
// not exist.
var ErrNotFound = errors.New("record not found")

type Repository interface {
	// SaveSimulation inserts a finished simulation and fills its IDs.
	SaveSimulation(rec *game.SimulationRecord) error
	GetSimulation(publicID string) (*game.SimulationRecord, error)
	// ListSimulations returns the most recent standalone simulations,
	// newest first, without their logs.
	ListSimulations(limit int) ([]game.SimulationRecord, error)

	// SaveBatch inserts the batch together with its simulations.
	SaveBatch(rec *game.BatchRecord) error
	// GetBatch returns the batch with its simulations (logs omitted).
	GetBatch(publicID string) (*game.BatchRecord, error)

	// SaveCatalogEntries upserts catalog entries keyed by kind and key.
	SaveCatalogEntries(entries []game.CatalogRecord) error
	GetCatalogEntries(kind string) ([]game.CatalogRecord, error)
}
