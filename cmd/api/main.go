package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"vietfood/internal/cart"
	"vietfood/internal/catalog"
	"vietfood/internal/config"
	"vietfood/internal/db"
	"vietfood/internal/httpserver"
	"vietfood/internal/logging"
	"vietfood/internal/seed"
	"vietfood/internal/service/anonymous"
	"vietfood/internal/service/session"
	"vietfood/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.Must("api", cfg.LogLevel)
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)
	ctx := context.Background()

	var dbpool *pgxpool.Pool
	if cfg.NeedsDB() {
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer pool.Close()
		dbpool = pool
	}

	products, err := buildCatalog(ctx, cfg, dbpool, logger)
	if err != nil {
		logger.Fatal("init catalog", zap.Error(err))
	}
	store, closeStore, err := buildStore(ctx, cfg, dbpool, logger)
	if err != nil {
		logger.Fatal("init cart store", zap.Error(err))
	}
	defer closeStore()

	carts := session.NewRegistry(
		products,
		func(id string) cart.Storage { return storage.ForSession(store, id) },
		logger.Named("cart"),
		cfg.CartIdleTTL,
		cart.WithMessages(cart.MessagesFor(cfg.CartLang)),
		cart.WithStockCheckConcurrency(cfg.StockCheckConcurrency),
	)

	var pinger httpserver.Pinger
	if dbpool != nil {
		pinger = dbpool
	}
	srv, err := httpserver.New(cfg.HTTPAddr, logger.Named("http"), pinger, httpserver.Deps{
		Catalog:     products,
		Sessions:    anonymous.New(cfg.SessionTTL),
		Carts:       carts,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go carts.Run(sweepCtx, cfg.CartSweepEvery)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

func buildCatalog(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (catalog.Reader, error) {
	switch cfg.CatalogSource {
	case config.CatalogPostgres:
		return catalog.NewPostgres(pool, logger.Named("catalog")), nil
	case config.CatalogMemory:
		mem := catalog.NewMemory()
		if _, err := seed.Apply(ctx, mem); err != nil {
			return nil, err
		}
		return mem, nil
	case config.CatalogHTTP:
		if cfg.CatalogURL == "" {
			return nil, errors.New("CATALOG_URL is required for the http catalog")
		}
		return catalog.NewHTTPClient(cfg.CatalogURL, catalog.WithHTTPLogger(logger.Named("catalog"))), nil
	default:
		return nil, fmt.Errorf("unknown CATALOG_SOURCE %q", cfg.CatalogSource)
	}
}

func buildStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (storage.SnapshotStore, func(), error) {
	noop := func() {}
	switch cfg.CartStore {
	case config.CartStoreMemory:
		return storage.NewMemory(), noop, nil
	case config.CartStoreFile:
		s, err := storage.NewFile(cfg.CartDir)
		return s, noop, err
	case config.CartStoreSQLite:
		s, err := storage.OpenSQLite(ctx, cfg.CartSQLitePath, logger.Named("store"))
		if err != nil {
			return nil, noop, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Warn("close sqlite store", zap.Error(err))
			}
		}, nil
	case config.CartStorePostgres:
		return storage.NewPostgres(pool, logger.Named("store")), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown CART_STORE %q", cfg.CartStore)
	}
}
