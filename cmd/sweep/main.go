package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"board/internal/config"
	"board/internal/db"
	"board/internal/logger"
	"board/internal/repository"
	"board/internal/worker"
)

// sweep deletes expired verification codes once and exits.
// It is meant for hosting platforms that run maintenance as cron jobs.
func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	zl.Info("connected to database")

	if err := db.Migrate(gormDB); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sweeper := worker.NewSweeper(repository.NewCodeRepository(gormDB), 0, zl)
	if _, err := sweeper.RunOnce(ctx); err != nil {
		zl.Fatal("sweep failed", zap.Error(err))
	}
}
