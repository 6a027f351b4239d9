package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ericogr/dnd-combat-sim/internal/catalog"
	"github.com/ericogr/dnd-combat-sim/internal/constants"
	"github.com/ericogr/dnd-combat-sim/internal/dice"
	"github.com/ericogr/dnd-combat-sim/internal/engine"
	"github.com/ericogr/dnd-combat-sim/internal/game"
	"github.com/ericogr/dnd-combat-sim/internal/logging"
	"github.com/ericogr/dnd-combat-sim/internal/storage"
)

// BatchRequest runs the same matchup Runs times. Run i uses seed
// Seed+i, so a batch with a seed is reproducible.
type BatchRequest struct {
	SimulationRequest
	Runs int `json:"runs"`
}

// BatchReport is the aggregate of a batch. Simulations carry no logs:
// replaying a single seed reproduces any of them.
type BatchReport struct {
	*game.BatchRecord
	MaxRounds  int                 `json:"max_rounds"`
	Difficulty *catalog.Difficulty `json:"difficulty,omitempty"`
}

type run struct {
	seed    int64
	result  *engine.Result
	elapsed time.Duration
}

func (r *Runner) RunBatch(ctx context.Context, req BatchRequest) (*BatchReport, error) {
	if req.Runs < 1 {
		return nil, fmt.Errorf("%w: runs must be positive", ErrInvalidRequest)
	}
	if req.Runs > r.settings.MaxBatchRuns {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRuns, req.Runs, r.settings.MaxBatchRuns)
	}
	p, err := r.plan(req.SimulationRequest)
	if err != nil {
		return nil, err
	}
	base := int64(0)
	if req.Seed != nil {
		base = *req.Seed
	} else if base, err = dice.NewSeed(); err != nil {
		return nil, fmt.Errorf("draw seed: %w", err)
	}

	if r.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.settings.Timeout)
		defer cancel()
	}
	runs := make([]run, req.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.settings.BatchWorkers)
	for i := range runs {
		seed := base + int64(i)
		g.Go(func() error {
			res, elapsed, err := r.execute(gctx, p, dice.NewSeeded(seed))
			if err != nil {
				return err
			}
			runs[i] = run{seed: seed, result: res, elapsed: elapsed}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rec, err := aggregate(p, base, runs)
	if err != nil {
		return nil, err
	}
	r.metrics.Batch(ctx, len(runs))
	if r.repo != nil {
		if err := r.repo.SaveBatch(rec); err != nil {
			logging.Error("failed to save batch", err, logging.Fields{constants.LogFieldKey: p.key})
			return nil, fmt.Errorf("save batch: %w", err)
		}
		logging.Info("batch finished", logging.Fields{
			constants.LogFieldBatchID: rec.PublicID,
			constants.LogFieldKey:     p.key,
			constants.LogFieldRuns:    rec.Runs,
		})
	}
	return &BatchReport{BatchRecord: rec, MaxRounds: p.maxRounds, Difficulty: p.difficulty()}, nil
}

func aggregate(p *plan, base int64, runs []run) (*game.BatchRecord, error) {
	rec := &game.BatchRecord{
		Name:         p.name,
		EncounterKey: p.key,
		BaseSeed:     base,
		Runs:         len(runs),
		Simulations:  make([]game.SimulationRecord, 0, len(runs)),
	}
	rounds, hp := 0, 0
	for _, rn := range runs {
		switch rn.result.Outcome {
		case game.OutcomePartyVictory:
			rec.PartyWins++
		case game.OutcomeMonsterVictory:
			rec.MonsterWins++
		case game.OutcomeDraw:
			rec.Draws++
		case game.OutcomeTimeout:
			rec.Timeouts++
		}
		rounds += rn.result.Rounds
		hp += rn.result.PartyHPRemaining
		sim, err := simulationRecord(p, rn.seed, rn.result, rn.elapsed, false)
		if err != nil {
			return nil, err
		}
		rec.Simulations = append(rec.Simulations, *sim)
	}
	n := float64(len(runs))
	rec.AverageRounds = float64(rounds) / n
	rec.AveragePartyHP = float64(hp) / n
	rec.PartyWinRate = float64(rec.PartyWins) / n
	return rec, nil
}

func (r *Runner) GetBatch(id string) (*game.BatchRecord, error) {
	if r.repo == nil {
		return nil, ErrNotFound
	}
	rec, err := r.repo.GetBatch(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rec, err
}
