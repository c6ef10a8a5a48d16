package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"charnnections/internal/config"
	"charnnections/internal/index"
	"charnnections/internal/puzzle"
	"charnnections/internal/store"
	"charnnections/internal/store/postgres"
	"charnnections/internal/store/sqlite"
)

// loadConfig reads .env, then the project config when it exists, then the
// environment overrides.
func loadConfig() (*config.ProjectConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := config.Default()
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.LoadProjectConfig(configPath)
		if err != nil {
			return nil, err
		}
	} else if configPath != "charnnections.yaml" {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRuntime() (*config.ProjectConfig, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	var db store.Store
	var err error
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = postgres.New(ctx, cfg.Database.DSN)
	case config.DriverSQLite:
		db, err = sqlite.New(ctx, cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

func newService(cfg *config.ProjectConfig, db store.Store, logger *zap.Logger) (*puzzle.Service, *index.Cache) {
	cache := index.NewCache(db,
		index.WithTTL(cfg.Puzzle.TTL()),
		index.WithLogger(logger.Named("index")))
	generator := puzzle.NewGenerator(cache, db,
		puzzle.WithMaxAttempts(cfg.Puzzle.MaxAttempts),
		puzzle.WithDefaultDifficulty(cfg.Puzzle.DefaultDifficulty),
		puzzle.WithGeneratorLogger(logger.Named("generator")))
	service := puzzle.NewService(db, db, generator,
		puzzle.WithCuratedDifficulty(cfg.Puzzle.DefaultDifficulty),
		puzzle.WithLogger(logger.Named("puzzle")))
	return service, cache
}
