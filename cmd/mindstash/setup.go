package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/mindstash/mindstash/internal/config"
	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/internal/engine"
	"github.com/mindstash/mindstash/internal/providers/embedding"
	"github.com/mindstash/mindstash/internal/storage/memstore"
	"github.com/mindstash/mindstash/internal/storage/sqlite"
	"github.com/mindstash/mindstash/internal/transport/mcpserver"
	"github.com/mindstash/mindstash/pkg/log"
	"github.com/mindstash/mindstash/pkg/srv"
)

func NewServices(ctx context.Context) ([]srv.Service, error) {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	appCfg := config.NewAppConfig(ctx)
	engineCfg := config.NewEngineConfig(ctx)

	repo, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(repo.Close))

	embedder := embedding.WithRetry(embedding.NewHashEmbedder(), nil)

	eng := engine.New(engineCfg, repo, embedder)

	services = append(services, mcpserver.NewServer(eng))
	return services, nil
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (core.MemoryRepository, error) {
	if !cfg.IsSQLite() {
		return memstore.New(), nil
	}

	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, err
	}
	return sqlite.NewMemoryRepo(db), nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
