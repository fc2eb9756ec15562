package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beadworks/storeadmin/internal/config"
	"github.com/beadworks/storeadmin/internal/db"
	httpx "github.com/beadworks/storeadmin/internal/http"
	"github.com/beadworks/storeadmin/internal/observability"
	"github.com/beadworks/storeadmin/internal/queue/producer"
	"github.com/beadworks/storeadmin/internal/queue/redisclient"
	"github.com/beadworks/storeadmin/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	// tracing
	shutdownTracer, err := observability.InitTracer(context.Background(), "storeadmin-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	// database
	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	seedCtx, cancelSeed := config.WithTimeout(10 * time.Second)
	if err := db.EnsureAdminUser(seedCtx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
	}
	cancelSeed()

	// redis queue
	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	enqueue := producer.New(redisClient)

	// object storage
	store, err := storage.New(storage.Config{
		Endpoint:  cfg.StorageEndpoint,
		AccessKey: cfg.StorageAccessKey,
		SecretKey: cfg.StorageSecretKey,
		Bucket:    cfg.StorageBucket,
		UseSSL:    cfg.StorageUseSSL,
		PublicURL: cfg.StoragePublicURL,
	})
	if err != nil {
		log.Error("storage init failed", "err", err)
		os.Exit(1)
	}

	bucketCtx, cancelBucket := config.WithTimeout(10 * time.Second)
	if err := store.EnsureBucket(bucketCtx); err != nil {
		log.Warn("bucket check failed", "err", err)
	}
	cancelBucket()

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	// set up routers with the log
	router := httpx.NewRouter(httpx.Deps{
		Cfg:     cfg,
		Log:     log,
		Pool:    pool,
		Prom:    prom,
		Store:   store,
		Enqueue: enqueue,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
