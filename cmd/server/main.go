package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/wayfind-ar/internal/config"
	"github.com/iliyamo/wayfind-ar/internal/database"
	"github.com/iliyamo/wayfind-ar/internal/lock"
	"github.com/iliyamo/wayfind-ar/internal/logger"
	"github.com/iliyamo/wayfind-ar/internal/queue"
	"github.com/iliyamo/wayfind-ar/internal/router"
	"github.com/iliyamo/wayfind-ar/internal/seed"
	"github.com/iliyamo/wayfind-ar/internal/service"
	"github.com/iliyamo/wayfind-ar/internal/session"
)

// initTimeout bounds migration plus seeding so an unreachable store cannot
// hold up startup.
const initTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat, "wayfind-ar")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	db, dialect, err := database.Open(cfg)
	if err != nil {
		lg.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	var sessions session.Store
	if rdb != nil {
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb, config.LoadSessionConfig(cfg).Prefix)
	} else {
		lg.Warn("redis unavailable: in-memory sessions, no response cache, no rate limit")
		mem := session.NewMemoryStore()
		go sweepSessions(mem)
		sessions = mem
	}

	qcfg := config.LoadQueueConfig()
	publisher := service.NewPublisher(qcfg.URL, qcfg.Exchange, lg)

	locker, err := lock.Select(cfg.SeedLock, dialect, db, rdb, initTimeout, lg)
	if err != nil {
		lg.Fatal("seed lock", zap.Error(err))
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), initTimeout)
	deps := seed.Deps{
		DB:          db,
		Dialect:     dialect,
		Locker:      locker,
		Logger:      lg,
		SeedEnabled: cfg.SeedEnabled,
	}
	if publisher != nil {
		deps.Publisher = publisher
	}
	if _, err := seed.Initialize(initCtx, deps); err != nil {
		cancelInit()
		lg.Fatal("startup initialization", zap.Error(err))
	}
	cancelInit()

	e := router.New(router.Deps{
		Cfg:       cfg,
		DB:        db,
		Redis:     rdb,
		Sessions:  sessions,
		Publisher: publisher,
		Logger:    lg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if qcfg.URL != "" && qcfg.StartConsumer {
		go func() {
			err := queue.StartEventConsumer(ctx, queue.ConsumerConfig{
				URL:      qcfg.URL,
				Exchange: qcfg.Exchange,
				Queue:    qcfg.Queue,
			}, lg)
			if err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()
	lg.Info("WayFind AR application started", zap.String("addr", addr), zap.String("env", cfg.Env))

	<-ctx.Done()
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown", zap.Error(err))
	}
}

func sweepSessions(mem *session.MemoryStore) {
	for range time.Tick(time.Minute) {
		mem.Sweep()
	}
}
