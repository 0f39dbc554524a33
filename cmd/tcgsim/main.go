package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tcgevolve/tcgsim/internal/config"
	"github.com/tcgevolve/tcgsim/internal/game"
	"github.com/tcgevolve/tcgsim/internal/game/card"
	"github.com/tcgevolve/tcgsim/internal/server"
	"github.com/tcgevolve/tcgsim/internal/sim"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "path to configuration file")
	envPath    = flag.String("env", ".env", "optional dotenv file loaded before configuration")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envPath, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting card simulator",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
	logger.Info("card simulator stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sc := cfg.Simulation
	seed := sc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	defs, err := loadCards(sc, seed)
	if err != nil {
		return err
	}
	registry, err := card.NewRegistry(defs)
	if err != nil {
		return fmt.Errorf("build card registry: %w", err)
	}
	logger.Info("card registry loaded", zap.Int("cards", registry.Len()), zap.Int64("seed", seed))

	runnerOpts := sim.Options{
		Interval:  sc.TickInterval,
		MaxRounds: sc.MaxRounds,
		AutoStart: sc.AutoStart,
	}

	// Without spectators nobody can press start, so run headless rounds and
	// narrate to stdout.
	var narrator game.Narrator = game.NewMemoryNarrator(sc.NarrationLimit)
	if !cfg.Server.Enabled {
		narrator = game.NewWriterNarrator(os.Stdout, sc.NarrationLimit)
		runnerOpts.AutoStart = true
		if runnerOpts.MaxRounds == 0 {
			runnerOpts.MaxRounds = 1
		}
		if runnerOpts.Interval == 0 {
			runnerOpts.Interval = time.Millisecond
		}
	}

	engine, err := game.NewEngine(logger, registry, narrator, game.Options{
		Seed:                seed,
		DeckSize:            sc.DeckSize,
		StartingHealth:      sc.StartingHealth,
		InitialFitnessCount: sc.InitialFitnessCount,
		NarrationLimit:      sc.NarrationLimit,
		RecordReplay:        sc.RecordReplay,
	})
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	runner := sim.NewRunner(logger, engine, runnerOpts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return runner.Run(gctx)
	})
	if cfg.Server.Enabled {
		spectators := server.New(server.Config{Address: cfg.Server.Address}, runner, logger)
		g.Go(func() error {
			return spectators.Run(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, result := range runner.Snapshot().Results {
		logger.Info("round result",
			zap.Int("round", result.Round),
			zap.Stringer("winner", result.Winner),
			zap.Int("turns", result.Turns),
			zap.Int("ticks", result.Ticks),
		)
	}
	return nil
}

func loadCards(sc config.SimulationConfig, seed int64) ([]card.Definition, error) {
	if sc.CardsFile != "" {
		return card.LoadDefinitions(sc.CardsFile)
	}
	return card.GenerateDefinitions(rand.New(rand.NewSource(seed)), sc.CardCount), nil
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
