package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericogr/dnd-combat-sim/internal/ai"
	"github.com/ericogr/dnd-combat-sim/internal/catalog"
	"github.com/ericogr/dnd-combat-sim/internal/constants"
	"github.com/ericogr/dnd-combat-sim/internal/dedupe"
	"github.com/ericogr/dnd-combat-sim/internal/dice"
	"github.com/ericogr/dnd-combat-sim/internal/engine"
	"github.com/ericogr/dnd-combat-sim/internal/game"
	"github.com/ericogr/dnd-combat-sim/internal/keys"
	"github.com/ericogr/dnd-combat-sim/internal/logging"
	"github.com/ericogr/dnd-combat-sim/internal/metrics"
	"github.com/ericogr/dnd-combat-sim/internal/storage"
)

var (
	ErrInvalidRequest = errors.New("invalid simulation request")
	ErrNotFound       = errors.New("not found")
	ErrTooManyRuns    = errors.New("too many runs requested")
)

// Repo is the subset of storage.Repository the runner needs.
type Repo interface {
	SaveSimulation(rec *game.SimulationRecord) error
	GetSimulation(publicID string) (*game.SimulationRecord, error)
	ListSimulations(limit int) ([]game.SimulationRecord, error)
	SaveBatch(rec *game.BatchRecord) error
	GetBatch(publicID string) (*game.BatchRecord, error)
}

// Settings are the engine and batch limits, usually from config.
type Settings struct {
	MaxRounds     int
	HealThreshold float64
	BuffRounds    int
	BatchWorkers  int
	MaxBatchRuns  int
	// Timeout bounds a single simulation or a whole batch. Zero means no
	// limit beyond the caller's context, and none at all for a shared
	// seeded run.
	Timeout time.Duration
}

// DefaultSettings mirrors the config defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxRounds:     engine.DefaultMaxRounds,
		HealThreshold: ai.DefaultHealThreshold,
		BuffRounds:    ai.DefaultBuffRounds,
		BatchWorkers:  4,
		MaxBatchRuns:  500,
		Timeout:       30 * time.Second,
	}
}

// Runner builds sessions from catalog requests, runs them and stores the
// results. A nil Repo disables persistence.
type Runner struct {
	catalog  *catalog.Catalog
	repo     Repo
	settings Settings
	metrics  *metrics.Recorder
}

func NewRunner(cat *catalog.Catalog, repo Repo, settings Settings, rec *metrics.Recorder) *Runner {
	d := DefaultSettings()
	if settings.MaxRounds <= 0 {
		settings.MaxRounds = d.MaxRounds
	}
	if settings.HealThreshold <= 0 {
		settings.HealThreshold = d.HealThreshold
	}
	if settings.BatchWorkers <= 0 {
		settings.BatchWorkers = d.BatchWorkers
	}
	if settings.MaxBatchRuns <= 0 {
		settings.MaxBatchRuns = d.MaxBatchRuns
	}
	return &Runner{catalog: cat, repo: repo, settings: settings, metrics: rec}
}

func (r *Runner) Catalog() *catalog.Catalog { return r.catalog }

// SimulationReport is the outcome of one run.
type SimulationReport struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	EncounterKey   string              `json:"encounter_key"`
	Seed           int64               `json:"seed"`
	MaxRounds      int                 `json:"max_rounds"`
	DurationMillis int64               `json:"duration_ms"`
	Difficulty     *catalog.Difficulty `json:"difficulty,omitempty"`
	Result         *engine.Result      `json:"result"`
}

// RunSimulation runs one session. Seeded requests built only from catalog
// names are deterministic, so identical concurrent ones share a single run.
// A shared run is detached from every caller's context and bounded by the
// runner timeout alone; each caller stops waiting when its own context ends.
func (r *Runner) RunSimulation(ctx context.Context, req SimulationRequest) (*SimulationReport, error) {
	p, err := r.plan(req)
	if err != nil {
		return nil, err
	}
	if req.Seed == nil {
		roller, seed, err := dice.NewSecure()
		if err != nil {
			return nil, fmt.Errorf("draw seed: %w", err)
		}
		return r.runOne(ctx, p, roller, seed)
	}
	seed := *req.Seed
	// the run key only names templates, inline ones may differ in stats
	if len(req.Characters) > 0 || len(req.MonsterTemplates) > 0 {
		return r.runOne(ctx, p, dice.NewSeeded(seed), seed)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detached := context.WithoutCancel(ctx)
	ch := dedupe.SimulationGroup.DoChan(keys.RunKey(p.lineup, seed, p.maxRounds, p.name), func() (interface{}, error) {
		return r.runOne(detached, p, dice.NewSeeded(seed), seed)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logging.Debug("simulation shared with a concurrent request", logging.Fields{constants.LogFieldKey: p.lineup, constants.LogFieldSeed: seed})
		}
		return res.Val.(*SimulationReport), nil
	}
}

func (r *Runner) runOne(ctx context.Context, p *plan, roller *dice.Roller, seed int64) (*SimulationReport, error) {
	if r.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.settings.Timeout)
		defer cancel()
	}
	res, elapsed, err := r.execute(ctx, p, roller)
	if err != nil {
		return nil, err
	}
	report := &SimulationReport{
		ID:             res.SessionID,
		Name:           p.name,
		EncounterKey:   p.key,
		Seed:           seed,
		MaxRounds:      p.maxRounds,
		DurationMillis: elapsed.Milliseconds(),
		Difficulty:     p.difficulty(),
		Result:         res,
	}
	if r.repo == nil {
		return report, nil
	}

	rec, err := simulationRecord(p, seed, res, elapsed, true)
	if err != nil {
		return nil, err
	}
	if err := r.repo.SaveSimulation(rec); err != nil {
		logging.Error("failed to save simulation", err, logging.Fields{constants.LogFieldSessionID: res.SessionID})
		return nil, fmt.Errorf("save simulation: %w", err)
	}
	report.ID = rec.PublicID
	logging.Info("simulation finished", logging.Fields{
		constants.LogFieldSimulationID: rec.PublicID,
		constants.LogFieldKey:          p.key,
		constants.LogFieldSeed:         seed,
		constants.LogFieldOutcome:      string(res.Outcome),
		constants.LogFieldRounds:       res.Rounds,
	})
	return report, nil
}

// execute builds fresh combatants and runs one session to its end.
func (r *Runner) execute(ctx context.Context, p *plan, roller *dice.Roller) (*engine.Result, time.Duration, error) {
	party, monsters, err := r.build(p)
	if err != nil {
		return nil, 0, err
	}
	sess, err := engine.NewSession(party, monsters, roller, engine.Options{
		ID:            uuid.NewString(),
		MaxRounds:     p.maxRounds,
		PartyStrategy: ai.NewPartyAI(r.settings.HealThreshold, r.settings.BuffRounds),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	start := time.Now()
	res, err := sess.Run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		reason := "error"
		if ctx.Err() != nil {
			reason = "canceled"
		}
		r.metrics.Failure(ctx, reason)
		return nil, elapsed, err
	}
	r.metrics.Simulation(ctx, string(res.Outcome), res.Rounds, elapsed)
	return res, elapsed, nil
}

func simulationRecord(p *plan, seed int64, res *engine.Result, elapsed time.Duration, withLog bool) (*game.SimulationRecord, error) {
	rec := &game.SimulationRecord{
		Name:             p.name,
		EncounterKey:     p.key,
		Seed:             seed,
		Outcome:          res.Outcome,
		Rounds:           res.Rounds,
		PartyLevel:       res.PartyLevel,
		PartyHPRemaining: res.PartyHPRemaining,
		DurationMillis:   elapsed.Milliseconds(),
	}
	var err error
	if rec.Party, err = json.Marshal(templateNames(p.party)); err != nil {
		return nil, fmt.Errorf("encode party: %w", err)
	}
	if rec.Encounter, err = json.Marshal(templateNames(p.monsters)); err != nil {
		return nil, fmt.Errorf("encode encounter: %w", err)
	}
	if rec.Stats, err = json.Marshal(res.Stats); err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}
	if withLog {
		if rec.Log, err = json.Marshal(res.Log); err != nil {
			return nil, fmt.Errorf("encode log: %w", err)
		}
	}
	return rec, nil
}

func (r *Runner) GetSimulation(id string) (*game.SimulationRecord, error) {
	if r.repo == nil {
		return nil, ErrNotFound
	}
	rec, err := r.repo.GetSimulation(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *Runner) ListSimulations(limit int) ([]game.SimulationRecord, error) {
	if r.repo == nil {
		return nil, nil
	}
	return r.repo.ListSimulations(limit)
}
