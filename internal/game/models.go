package game

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SimulationRecord is a persisted finished simulation.
type SimulationRecord struct {
	gorm.Model
	PublicID string `json:"id" gorm:"size:36;uniqueIndex"`
	// BatchID is set when the run belongs to a batch.
	BatchID          *uint   `json:"-" gorm:"index"`
	Name             string  `json:"name" gorm:"size:64"`
	EncounterKey     string  `json:"encounter_key" gorm:"index"`
	Seed             int64   `json:"seed"`
	Outcome          Outcome `json:"outcome" gorm:"size:16;index"`
	Rounds           int     `json:"rounds"`
	PartyLevel       int     `json:"party_level"`
	PartyHPRemaining int     `json:"party_hp_remaining"`
	DurationMillis   int64   `json:"duration_ms"`
	// Party and Encounter hold the template names, Log the combat log
	// entries and Stats the aggregate statistics, all as JSON.
	Party     datatypes.JSON `json:"party"`
	Encounter datatypes.JSON `json:"encounter"`
	Log       datatypes.JSON `json:"log,omitempty"`
	Stats     datatypes.JSON `json:"stats"`
}

func (SimulationRecord) TableName() string { return "simulations" }

// BeforeCreate assigns the public identifier.
func (r *SimulationRecord) BeforeCreate(tx *gorm.DB) error {
	if r.PublicID == "" {
		r.PublicID = uuid.NewString()
	}
	return nil
}

// BatchRecord is a persisted batch of independent simulations.
type BatchRecord struct {
	gorm.Model
	PublicID       string             `json:"id" gorm:"size:36;uniqueIndex"`
	Name           string             `json:"name" gorm:"size:64"`
	EncounterKey   string             `json:"encounter_key" gorm:"index"`
	BaseSeed       int64              `json:"base_seed"`
	Runs           int                `json:"runs"`
	PartyWins      int                `json:"party_wins"`
	MonsterWins    int                `json:"monster_wins"`
	Draws          int                `json:"draws"`
	Timeouts       int                `json:"timeouts"`
	AverageRounds  float64            `json:"average_rounds"`
	AveragePartyHP float64            `json:"average_party_hp_remaining"`
	PartyWinRate   float64            `json:"party_win_rate"`
	Simulations    []SimulationRecord `json:"simulations,omitempty" gorm:"foreignKey:BatchID"`
}

func (BatchRecord) TableName() string { return "simulation_batches" }

func (r *BatchRecord) BeforeCreate(tx *gorm.DB) error {
	if r.PublicID == "" {
		r.PublicID = uuid.NewString()
	}
	return nil
}

// CatalogRecord stores one named catalog entry as JSON so stored
// simulations stay readable after the catalog file changes.
type CatalogRecord struct {
	ID        uint           `json:"-" gorm:"primaryKey"`
	Kind      string         `json:"kind" gorm:"size:16;uniqueIndex:idx_catalog_kind_key"`
	Key       string         `json:"key" gorm:"column:entry_key;size:64;uniqueIndex:idx_catalog_kind_key"`
	Name      string         `json:"name" gorm:"size:64"`
	Body      datatypes.JSON `json:"body"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (CatalogRecord) TableName() string { return "catalog_entries" }
