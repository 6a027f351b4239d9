package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ericogr/dnd-combat-sim/internal/game"
)

const maxListLimit = 200

// summaryColumns are the simulation columns loaded for listings.
var summaryColumns = []string{
	"id", "created_at", "updated_at", "public_id", "batch_id", "name", "encounter_key",
	"seed", "outcome", "rounds", "party_level", "party_hp_remaining", "duration_millis",
	"party", "encounter", "stats",
}

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) SaveSimulation(rec *game.SimulationRecord) error {
	return r.db.Create(rec).Error
}

func (r *sqliteRepository) GetSimulation(publicID string) (*game.SimulationRecord, error) {
	var rec game.SimulationRecord
	err := r.db.Where("public_id = ?", publicID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) ListSimulations(limit int) ([]game.SimulationRecord, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	var recs []game.SimulationRecord
	err := r.db.Select(summaryColumns).
		Where("batch_id IS NULL").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

func (r *sqliteRepository) SaveBatch(rec *game.BatchRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(rec).Error
	})
}

func (r *sqliteRepository) GetBatch(publicID string) (*game.BatchRecord, error) {
	var rec game.BatchRecord
	err := r.db.Preload("Simulations", func(db *gorm.DB) *gorm.DB {
		return db.Select(summaryColumns).Order("seed ASC")
	}).Where("public_id = ?", publicID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) SaveCatalogEntries(entries []game.CatalogRecord) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now()
	for i := range entries {
		entries[i].UpdatedAt = now
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "body", "updated_at"}),
	}).Create(&entries).Error
}

func (r *sqliteRepository) GetCatalogEntries(kind string) ([]game.CatalogRecord, error) {
	var recs []game.CatalogRecord
	err := r.db.Where("kind = ?", kind).Order("entry_key ASC").Find(&recs).Error
	return recs, err
}
