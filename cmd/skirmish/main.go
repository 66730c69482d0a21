// Package main provides the skirmish binary that loads combat content
// and plays encounters, either headless under a squad policy or
// interactively from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voltfall/tactics/internal/config"
	"github.com/voltfall/tactics/internal/console"
	"github.com/voltfall/tactics/internal/game/combat"
	"github.com/voltfall/tactics/internal/game/content"
	"github.com/voltfall/tactics/internal/game/doctrine"
	"github.com/voltfall/tactics/internal/game/rng"
	"github.com/voltfall/tactics/internal/observability"
	"github.com/voltfall/tactics/internal/sim"
	"github.com/voltfall/tactics/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentDir := flag.String("content", "", "path to content directory; empty = content.dir from config")
	scenarioID := flag.String("scenario", "", "scenario ID to play")
	listScenarios := flag.Bool("list", false, "list available scenarios and exit")
	policyName := flag.String("policy", "aggressive", "squad policy: aggressive, lua, lua:PATH, or doctrine:ID")
	seed := flag.Int64("seed", 0, "override the scenario seed; 0 = scenario default")
	interactive := flag.Bool("interactive", false, "drive the squad by hand at the console")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	root := *contentDir
	if root == "" {
		root = cfg.Content.Dir
	}

	contentStart := time.Now()
	reg, err := content.LoadDir(root)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.String("dir", root),
		zap.Int("scenarios", len(reg.Scenarios())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	if *listScenarios {
		for _, sc := range reg.Scenarios() {
			fmt.Printf("%-24s %s\n", sc.ID, sc.Name)
		}
		return
	}

	if *scenarioID == "" {
		logger.Fatal("no scenario selected; use -scenario or -list")
	}
	sc, ok := reg.Scenario(*scenarioID)
	if !ok {
		logger.Fatal("unknown scenario", zap.String("scenario", *scenarioID))
	}
	if *seed != 0 {
		dup := *sc
		dup.Seed = *seed
		sc = &dup
	}

	logger.Info("starting skirmish",
		zap.String("scenario", sc.ID),
		zap.Bool("interactive", *interactive),
		zap.Duration("startup", time.Since(start)),
	)

	if *interactive {
		if err := playInteractive(ctx, cfg, logger, reg, sc); err != nil {
			logger.Fatal("interactive session", zap.Error(err))
		}
		return
	}

	pol, cleanup, err := buildPolicy(cfg, logger, root, *policyName)
	if err != nil {
		logger.Fatal("building policy", zap.String("policy", *policyName), zap.Error(err))
	}
	defer cleanup()

	runner := sim.NewRunner(logger, cfg.Sim.MaxRounds)
	rep, err := runner.RunScenario(reg, sc, cfg.Combat.Tuning(), pol)
	if err != nil {
		logger.Fatal("running scenario", zap.Error(err))
	}

	printSummary(rep)

	if cfg.Database.Enabled {
		if err := persistReport(ctx, cfg, logger, rep); err != nil {
			logger.Error("persisting report", zap.Error(err))
		}
	}

	if rep.Outcome == combat.OutcomeDefeat {
		logger.Sync()
		os.Exit(1)
	}
}

// playInteractive builds the rosters by hand and hands the encounter to
// the console session. A zero seed draws from the crypto source so
// repeated sessions of the same scenario play out differently.
func playInteractive(ctx context.Context, cfg config.Config, logger *zap.Logger, reg *content.Registry, sc *content.Scenario) error {
	players, opponents, err := content.BuildRosters(reg, sc)
	if err != nil {
		return err
	}

	src := rng.NewCryptoSource()
	if sc.Seed != 0 {
		src = rng.NewSeededSource(sc.Seed)
	}

	enc, err := combat.NewEncounter(players, opponents, sc.ApplyTuning(cfg.Combat.Tuning()), rng.NewLoggedSource(src, logger))
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%s\n\n", sc.Name, sc.Description)
	return console.NewSession(enc, os.Stdin, os.Stdout, logger).Run(ctx)
}

// buildPolicy resolves the -policy flag into a Policy plus a cleanup
// function for policies that hold a VM.
func buildPolicy(cfg config.Config, logger *zap.Logger, root, name string) (sim.Policy, func(), error) {
	nop := func() {}

	switch {
	case name == "" || name == "aggressive":
		return sim.AggressivePolicy{}, nop, nil

	case name == "lua" || strings.HasPrefix(name, "lua:"):
		path := strings.TrimPrefix(name, "lua")
		path = strings.TrimPrefix(path, ":")
		if path == "" {
			path = cfg.Sim.PolicyScript
		}
		if path == "" {
			return nil, nop, fmt.Errorf("policy %q needs a script path or sim.policy_script in config", name)
		}
		pol, err := sim.NewLuaPolicy(path, cfg.Sim.ScriptInstructionLimit, logger)
		if err != nil {
			return nil, nop, err
		}
		return pol, pol.Close, nil

	case strings.HasPrefix(name, "doctrine:"):
		id := strings.TrimPrefix(name, "doctrine:")
		dir := filepath.Join(root, "doctrines")
		docs, err := doctrine.LoadDoctrines(dir)
		if err != nil {
			return nil, nop, err
		}

		// Indexing through the registry catches doctrine ID collisions
		// across files before one silently shadows the other.
		reg := doctrine.NewRegistry()
		eval := doctrine.NewBuiltinEvaluator()
		var chosen *doctrine.Doctrine
		for _, d := range docs {
			if err := reg.Register(d, eval); err != nil {
				return nil, nop, err
			}
			if d.ID == id {
				chosen = d
			}
		}
		if chosen == nil {
			return nil, nop, fmt.Errorf("no doctrine %q under %s (have: %s)", id, dir, strings.Join(reg.IDs(), ", "))
		}
		pol, err := sim.NewDoctrinePolicy(chosen)
		if err != nil {
			return nil, nop, err
		}
		return pol, nop, nil

	default:
		return nil, nop, fmt.Errorf("unknown policy %q", name)
	}
}

func printSummary(rep *sim.Report) {
	fmt.Printf("%s: %s after %d rounds (policy %s, seed %d, %s)\n",
		rep.ScenarioID, rep.Outcome, rep.Rounds, rep.Policy, rep.Seed, rep.Duration.Round(time.Millisecond))
	if len(rep.Survivors) > 0 {
		fmt.Printf("  survivors:  %s\n", strings.Join(rep.Survivors, ", "))
	}
	if len(rep.Casualties) > 0 {
		fmt.Printf("  casualties: %s\n", strings.Join(rep.Casualties, ", "))
	}
}

// persistReport archives a finished run. Failures here are reported but
// never mask the run's own outcome.
func persistReport(ctx context.Context, cfg config.Config, logger *zap.Logger, rep *sim.Report) error {
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	repo := postgres.NewEncounterReportRepository(pool.DB())
	stored, err := repo.Create(ctx, postgres.NewEncounterReport(rep))
	if err != nil {
		return fmt.Errorf("storing report: %w", err)
	}
	logger.Info("report stored",
		zap.Int64("id", stored.ID),
		zap.String("scenario", stored.ScenarioID),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	return nil
}
