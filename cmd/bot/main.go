// Package main is the entry point for the memory game bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"memory-game-bot/internal/achievement"
	"memory-game-bot/internal/bot"
	"memory-game-bot/internal/config"
	"memory-game-bot/internal/game"
	"memory-game-bot/internal/game/roll"
	"memory-game-bot/internal/game/sequence"
	"memory-game-bot/internal/model"
	"memory-game-bot/internal/pkg/cache"
	"memory-game-bot/internal/pkg/db"
	"memory-game-bot/internal/pkg/lock"
	"memory-game-bot/internal/progress"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration; a malformed config is fatal before any
	// request is served.
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Per-user lock shared by everything that mutates per-user state.
	userLock := lock.NewKeyLock[int64]()

	// Progress store: in-memory TTL cache by default, PostgreSQL when
	// configured for progress that survives restarts.
	var progressStore progress.Store
	switch cfg.Progress.Backend {
	case "postgres":
		dbPool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbPool.Close()

		pgStore := progress.NewPostgresStore(dbPool.Pool)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		progressStore = pgStore
		log.Info().Msg("Using PostgreSQL progress store")
	default:
		memStore := progress.NewMemoryStore(cfg.Progress.TTL)
		memStore.StartSweeper(ctx, cfg.Cache.SweepInterval)
		progressStore = memStore
		log.Info().Dur("ttl", cfg.Progress.TTL).Msg("Using in-memory progress store")
	}

	// Achievement engine; an inconsistent rule table is fatal.
	engine, err := achievement.NewEngine(achievement.DefaultDefinitions(), progressStore, userLock)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize achievement engine")
	}

	// Game session cache with lazy expiry plus a background sweep.
	sessions := cache.New[int64, model.GameSession](cfg.Cache.DefaultTTL)
	sessions.StartSweeper(ctx, cfg.Cache.SweepInterval)

	// Games
	sequenceGame := sequence.New(sequence.Config{
		Length:      cfg.Games.Sequence.Length,
		Reward:      cfg.Games.Sequence.Reward,
		MaxAttempts: cfg.Games.Sequence.MaxAttempts,
	}, sessions, userLock, engine)

	rollGame := roll.New(roll.Config{
		Reward: cfg.Games.Roll.Reward,
	}, engine)

	// Registry for the /games listing
	gameRegistry := game.NewRegistry()
	for _, g := range []game.Game{sequenceGame, rollGame} {
		if err := gameRegistry.Register(g); err != nil {
			log.Fatal().Err(err).Str("game", g.Name()).Msg("Failed to register game")
		}
	}

	log.Info().
		Int("game_count", gameRegistry.Count()).
		Strs("games", gameRegistry.Commands()).
		Int("achievements", len(engine.Definitions())).
		Msg("Games registered")

	// Initialize bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:       cfg,
		Engine:       engine,
		SequenceGame: sequenceGame,
		RollGame:     rollGame,
		GameRegistry: gameRegistry,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}
