package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/beadworks/storeadmin/internal/config"
	"github.com/beadworks/storeadmin/internal/db"
	"github.com/beadworks/storeadmin/internal/observability"
	"github.com/beadworks/storeadmin/internal/queue/redisclient"
	"github.com/beadworks/storeadmin/internal/queue/worker"
	"github.com/beadworks/storeadmin/internal/repo/postgres"
	"github.com/beadworks/storeadmin/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}

	defer pool.Close()

	rdb := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := rdb.Ping(pingCtx); err != nil {
		cancel()
		logger.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	cancel()

	store, err := storage.New(storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		UseSSL:    cfg.StorageUseSSL,
		PublicURL: cfg.StoragePublicURL,
	})

	if err != nil {
		logger.Error("storage client failed", "error", err)
		os.Exit(1)
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)
	products := postgres.NewProductsRepo(pool, prom)

	w := worker.New(worker.Config{
		PopTimeout: 5 * time.Second,
	}, rdb, store, products, logger, prom)

	logger.Info("worker has started")

	if err := w.Run(ctx); err != nil {
		logger.Error("worker stopped with error", "error", err)
	}

	logger.Info("worker shutdown complete")
}
