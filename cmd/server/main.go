// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	httpapi "veracity/internal/http"
	"veracity/internal/ledger"
	ledgermetrics "veracity/internal/ledger/metrics"
	"veracity/internal/platform/config"
	"veracity/internal/platform/httpserver"
	"veracity/internal/platform/logger"
	"veracity/internal/policy"
	"veracity/internal/trust"
	trusthandler "veracity/internal/trust/handler"
	trustmetrics "veracity/internal/trust/metrics"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	registry := policy.NewRegistry()
	if cfg.PolicyFile != "" {
		if err := registry.LoadFile(cfg.PolicyFile); err != nil {
			log.Error("policy file load failed", "path", cfg.PolicyFile, "error", err)
			os.Exit(1)
		}
	}

	var store ledger.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("database open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pg := ledger.NewPostgresStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.Migrate(ctx); err != nil {
			cancel()
			log.Error("ledger migration failed", "error", err)
			os.Exit(1)
		}
		cancel()
		store = pg
		log.Info("ledger backed by postgres")
	} else {
		store = ledger.NewInMemoryStore()
		log.Warn("ledger running in-memory, events will not survive restarts")
	}

	var cache *ledger.EventCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("redis URL invalid", "error", err)
			os.Exit(1)
		}
		cache = ledger.NewEventCache(redis.NewClient(opts), 24*time.Hour)
		log.Info("event lookup cache enabled")
	}

	ledgerSvc := ledger.NewService(store, cache, log, ledgermetrics.New(), ledger.Config{
		MaxEvents:     cfg.LedgerMaxEvents,
		AppendRetries: cfg.LedgerAppendRetries,
		AppendTimeout: cfg.LedgerAppendTimeout,
	})
	trustSvc := trust.NewService(registry, ledgerSvc, log, trustmetrics.New())

	router := httpapi.NewRouter(trusthandler.New(trustSvc, log))
	srv := httpserver.New(cfg.Addr, router, cfg.LedgerAppendTimeout)

	log.Info("starting veracity", "addr", cfg.Addr, "policies", registry.IDs())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
