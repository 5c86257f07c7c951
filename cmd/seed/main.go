package main

import (
	"context"

	"go.uber.org/zap"

	"vietfood/internal/catalog"
	"vietfood/internal/config"
	"vietfood/internal/db"
	"vietfood/internal/logging"
	"vietfood/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.Must("seed", cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, catalog.NewPostgres(pool, logger))
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.Int("products", n))
}
