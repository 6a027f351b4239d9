package main

import (
	"github.com/ericogr/dnd-combat-sim/internal/catalog"
	"github.com/ericogr/dnd-combat-sim/internal/config"
	"github.com/ericogr/dnd-combat-sim/internal/constants"
	"github.com/ericogr/dnd-combat-sim/internal/logging"
	"github.com/ericogr/dnd-combat-sim/internal/metrics"
	"github.com/ericogr/dnd-combat-sim/internal/service"
	"github.com/ericogr/dnd-combat-sim/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid configuration", err, logging.Fields{constants.LogFieldPath: path})
	}
	return cfg
}

func loadCatalogOrExit(path string) *catalog.Catalog {
	cat, err := catalog.Load(path)
	if err != nil {
		logging.Fatal("Failed to load catalog", err, logging.Fields{constants.LogFieldPath: path})
	}
	src := path
	if src == "" {
		src = "embedded"
	}
	snap := cat.Snapshot()
	logging.Info("Catalog loaded", logging.Fields{
		constants.LogFieldSource: src,
		"actions":                len(snap.Actions),
		"characters":             len(snap.Characters),
		"monsters":               len(snap.Monsters),
	})
	return cat
}

func createRepositoryOrExit(dbPath string, cat *catalog.Catalog) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{constants.LogFieldPath: dbPath})
	}
	repo := storage.NewSQLiteRepository(db)
	entries, err := catalog.Records(cat)
	if err == nil {
		err = repo.SaveCatalogEntries(entries)
	}
	if err != nil {
		// stored simulations stay readable; only the snapshot is stale
		logging.Error("Failed to store catalog snapshot", err, nil)
	}
	return repo
}

func createRunner(cfg *config.LoadedConfig, cat *catalog.Catalog, repo storage.Repository) *service.Runner {
	rec, err := metrics.New()
	if err != nil {
		logging.Error("Metrics disabled", err, nil)
		rec = nil
	}
	return service.NewRunner(cat, repo, settingsFrom(cfg), rec)
}

func settingsFrom(cfg *config.LoadedConfig) service.Settings {
	return service.Settings{
		MaxRounds:     cfg.MaxRounds,
		HealThreshold: cfg.HealThreshold,
		BuffRounds:    cfg.BuffRounds,
		BatchWorkers:  cfg.BatchWorkers,
		MaxBatchRuns:  cfg.MaxBatchRuns,
		Timeout:       cfg.SimulationTimeout,
	}
}
