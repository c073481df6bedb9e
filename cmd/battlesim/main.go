// Package main provides the battle simulator binary: it loads two armies from
// configuration, runs an AI-versus-AI battle to completion, and prints the
// outcome.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/mimiasei/realmsofeldor-sub003/internal/config"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/ai"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/battle"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/creature"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/rng"
	"github.com/mimiasei/realmsofeldor-sub003/internal/observability"
)

func main() {
	configPath := flag.String("config", "configs/battlesim.yaml", "path to configuration file")
	seedFlag := flag.Int64("seed", 0, "RNG seed override; 0 uses the configured seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	registry, err := creature.LoadDirectory(cfg.Battle.CreaturesDir)
	if err != nil {
		logger.Fatal("loading creature definitions", zap.Error(err))
	}
	logger.Info("creature definitions loaded",
		zap.String("dir", cfg.Battle.CreaturesDir),
		zap.Int("types", len(registry.All())),
	)

	seed := cfg.Battle.Seed
	if *seedFlag != 0 {
		seed = *seedFlag
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("battle seed chosen", zap.Int64("seed", seed))

	eng := battle.NewEngine(rng.NewSeededSource(seed), logger)

	attacker, err := buildArmy(registry, cfg.Battle.Attacker)
	if err != nil {
		logger.Fatal("building attacker army", zap.Error(err))
	}
	defender, err := buildArmy(registry, cfg.Battle.Defender)
	if err != nil {
		logger.Fatal("building defender army", zap.Error(err))
	}
	if err := eng.PlaceArmy(battle.SideAttacker, attacker); err != nil {
		logger.Fatal("placing attacker army", zap.Error(err))
	}
	if err := eng.PlaceArmy(battle.SideDefender, defender); err != nil {
		logger.Fatal("placing defender army", zap.Error(err))
	}

	runBattle(eng, ai.NewSelector(logger), cfg.Battle.MaxRounds, logger)

	fmt.Println(eng.BattleSummary())
}

// buildArmy resolves configured stack specs against the creature registry.
func buildArmy(registry *creature.Registry, specs []config.StackSpec) ([]battle.ArmyStack, error) {
	stacks := make([]battle.ArmyStack, 0, len(specs))
	for i, spec := range specs {
		ctype, ok := registry.Get(spec.Creature)
		if !ok {
			return nil, fmt.Errorf("slot %d: unknown creature type %q", i, spec.Creature)
		}
		stacks = append(stacks, battle.ArmyStack{Type: ctype, Count: spec.Count})
	}
	return stacks, nil
}

// runBattle drives the round loop until one side wins, both sides are wiped,
// or the round limit is hit.
func runBattle(eng *battle.Engine, selector *ai.Selector, maxRounds int, logger *zap.Logger) {
	for !eng.IsFinished() {
		if eng.Round >= maxRounds {
			logger.Warn("round limit reached, ending battle",
				zap.Int("round", eng.Round),
			)
			eng.EndBattle(nil)
			return
		}

		eng.StartNewRound()
		for {
			id := eng.GetNextUnit()
			if id == battle.NoUnit {
				break
			}
			active := eng.ActiveUnit()

			action := selector.SelectAction(eng, active)
			if action == nil {
				continue
			}
			dispatch(eng, active, action)

			if eng.CheckBattleEnd() {
				return
			}
		}
	}
}

// dispatch executes one selected action. Unknown kinds fall back to defending
// so the turn always ends.
func dispatch(eng *battle.Engine, active *battle.Unit, action *battle.Action) {
	switch action.Type {
	case battle.ActionAttack:
		if target, ok := eng.GetUnit(action.TargetID); ok {
			eng.ExecuteAttack(active, target, 0)
		}
	case battle.ActionShoot:
		if target, ok := eng.GetUnit(action.TargetID); ok {
			eng.ExecuteShoot(active, target)
		}
	case battle.ActionWait:
		eng.ExecuteWait(active)
	case battle.ActionDefend:
		eng.ExecuteDefend(active)
	default:
		eng.ExecuteDefend(active)
	}
}
