// Command simulate runs combats from the catalog without the HTTP server
// and prints the combat log or a batch summary.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/ericogr/dnd-combat-sim/internal/catalog"
	"github.com/ericogr/dnd-combat-sim/internal/config"
	"github.com/ericogr/dnd-combat-sim/internal/logging"
	"github.com/ericogr/dnd-combat-sim/internal/service"
	"github.com/ericogr/dnd-combat-sim/internal/version"
)

type options struct {
	configPath  string
	catalogPath string
	party       string
	members     []string
	encounter   string
	monsters    []string
	seed        int64
	runs        int
	maxRounds   int
	asJSON      bool
	list        bool
	showVersion bool
}

func main() {
	var o options
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	fs.StringVar(&o.configPath, "config", "", "config file (json or yaml)")
	fs.StringVar(&o.catalogPath, "catalog", "", "catalog file, overrides the configured one")
	fs.StringVarP(&o.party, "party", "p", "", "named party from the catalog")
	fs.StringSliceVar(&o.members, "members", nil, "extra characters by name")
	fs.StringVarP(&o.encounter, "encounter", "e", "", "named encounter from the catalog")
	fs.StringSliceVar(&o.monsters, "monsters", nil, "extra monsters as name or name:count")
	fs.Int64VarP(&o.seed, "seed", "s", 0, "seed; 0 draws a random one")
	fs.IntVarP(&o.runs, "runs", "n", 1, "number of runs; more than one prints a batch summary")
	fs.IntVar(&o.maxRounds, "max-rounds", 0, "round cap; 0 uses the configured value")
	fs.BoolVar(&o.asJSON, "json", false, "print JSON instead of text")
	fs.BoolVar(&o.list, "list", false, "list catalog parties, encounters, characters and monsters")
	fs.BoolVar(&o.showVersion, "version", false, "print the build version")
	_ = fs.Parse(os.Args[1:])

	if o.showVersion {
		fmt.Println(version.String())
		return
	}

	if err := run(context.Background(), o); err != nil {
		fmt.Fprintln(os.Stderr, "simulate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	logging.SetLevel(cfg.LogLevel)
	if o.catalogPath == "" {
		o.catalogPath = cfg.CatalogPath
	}
	cat, err := catalog.Load(o.catalogPath)
	if err != nil {
		return err
	}
	if o.list {
		printCatalog(cat)
		return nil
	}

	slots, err := parseSlots(o.monsters)
	if err != nil {
		return err
	}
	req := service.SimulationRequest{
		Party:     o.party,
		Members:   o.members,
		Encounter: o.encounter,
		Monsters:  slots,
		MaxRounds: o.maxRounds,
	}
	if o.seed != 0 {
		req.Seed = &o.seed
	}

	runner := service.NewRunner(cat, nil, service.Settings{
		MaxRounds:     cfg.MaxRounds,
		HealThreshold: cfg.HealThreshold,
		BuffRounds:    cfg.BuffRounds,
		BatchWorkers:  cfg.BatchWorkers,
		MaxBatchRuns:  cfg.MaxBatchRuns,
		Timeout:       cfg.SimulationTimeout,
	}, nil)

	if o.runs > 1 {
		rep, err := runner.RunBatch(ctx, service.BatchRequest{SimulationRequest: req, Runs: o.runs})
		if err != nil {
			return err
		}
		if o.asJSON {
			return printJSON(rep)
		}
		printBatch(rep)
		return nil
	}
	rep, err := runner.RunSimulation(ctx, req)
	if err != nil {
		return err
	}
	if o.asJSON {
		return printJSON(rep)
	}
	printSimulation(rep)
	return nil
}

// parseSlots reads "Goblin:3" style monster arguments.
func parseSlots(args []string) ([]catalog.Slot, error) {
	slots := make([]catalog.Slot, 0, len(args))
	for _, a := range args {
		name, count, found := strings.Cut(a, ":")
		s := catalog.Slot{Name: strings.TrimSpace(name), Count: 1}
		if found {
			n, err := strconv.Atoi(strings.TrimSpace(count))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("bad monster count in %q", a)
			}
			s.Count = n
		}
		slots = append(slots, s)
	}
	return slots, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSimulation(rep *service.SimulationReport) {
	fmt.Printf("%s (seed %d)\n", rep.Name, rep.Seed)
	if rep.Difficulty != nil {
		fmt.Printf("difficulty: %s (%d adjusted XP)\n", rep.Difficulty.Rating, rep.Difficulty.AdjustedXP)
	}
	for _, e := range rep.Result.Log {
		fmt.Printf("[%2d] %s\n", e.Round, e.Message)
	}
	fmt.Printf("\noutcome: %s after %d round(s), party HP remaining %d\n",
		rep.Result.Outcome, rep.Result.Rounds, rep.Result.PartyHPRemaining)
	for _, c := range rep.Result.Stats.Combatants {
		fmt.Printf("  %-20s dealt %4d  taken %4d  healed %4d  kills %d  hp %d/%d\n",
			c.Name, c.DamageDealt, c.DamageTaken, c.HealingDone, c.Kills, c.HPRemaining, c.MaxHP)
	}
}

func printBatch(rep *service.BatchReport) {
	fmt.Printf("%s: %d runs from seed %d\n", rep.Name, rep.Runs, rep.BaseSeed)
	if rep.Difficulty != nil {
		fmt.Printf("difficulty: %s (%d adjusted XP)\n", rep.Difficulty.Rating, rep.Difficulty.AdjustedXP)
	}
	fmt.Printf("party wins %d, monster wins %d, draws %d, timeouts %d\n",
		rep.PartyWins, rep.MonsterWins, rep.Draws, rep.Timeouts)
	fmt.Printf("party win rate %.1f%%, average rounds %.2f, average party HP %.1f\n",
		rep.PartyWinRate*100, rep.AverageRounds, rep.AveragePartyHP)
}

func printCatalog(cat *catalog.Catalog) {
	snap := cat.Snapshot()
	fmt.Println("parties:")
	for _, p := range snap.Parties {
		fmt.Printf("  %s: %s\n", p.Name, strings.Join(p.Members, ", "))
	}
	fmt.Println("encounters:")
	for _, e := range snap.Encounters {
		parts := make([]string, len(e.Monsters))
		for i, s := range e.Monsters {
			parts[i] = fmt.Sprintf("%s x%d", s.Name, max(s.Count, 1))
		}
		fmt.Printf("  %s: %s\n", e.Name, strings.Join(parts, ", "))
	}
	fmt.Println("characters:")
	for _, c := range snap.Characters {
		fmt.Printf("  %s (%s %d)\n", c.Name, c.Class, c.Level)
	}
	fmt.Println("monsters:")
	for _, m := range snap.Monsters {
		fmt.Printf("  %s (CR %s)\n", m.Name, m.CR)
	}
}
