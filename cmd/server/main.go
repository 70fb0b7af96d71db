package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sysmanager/internal/bon"
	"sysmanager/internal/config"
	"sysmanager/internal/infra"
	"sysmanager/internal/model"
	"sysmanager/internal/repository"
	"sysmanager/internal/router"
	"sysmanager/internal/service"
	"sysmanager/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.WorkerPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Settings ─────────────────────────────────────────────────────────────
	smCfg, err := repository.NewConfigRepository(db).Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn().Msg("sm_config row missing, running with SGR disabled")
		smCfg = &model.SmConfig{ID: model.SmConfigID, EnabledSGR: -1}
	} else if err != nil {
		log.Fatal().Err(err).Msg("failed to load sm_config")
	}
	log.Info().Str("config", smCfg.String()).Msg("settings loaded")

	// ── Repositories ─────────────────────────────────────────────────────────
	produsRepo := repository.NewProdusRepository(db)
	lookup := repository.NewCachedProdusLookup(produsRepo, rdb, cfg.ProductCacheTTL)

	var bonRepo repository.BonAsteptareRepository
	switch cfg.HeldStore {
	case config.HeldStoreRedis:
		bonRepo = repository.NewRedisBonAsteptareRepository(rdb)
	default:
		bonRepo = repository.NewBonAsteptareRepository(db)
	}
	log.Info().Str("held_store", cfg.HeldStore).Msg("held receipt store selected")

	// ── Workers ──────────────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)
	pool := worker.NewPool(rdb)
	pool.Handle(worker.JobTypePrint, worker.NewPrintWorker(bonRepo, cfg.PDFStoragePath))
	pool.Start(ctx, cfg.WorkerPoolSize)
	if n, err := worker.DLQLength(ctx, rdb, worker.QueuePrint); err == nil && n > 0 {
		log.Warn().Int64("jobs", n).Msg("print jobs parked in dead letter queue")
	}

	// ── Services ─────────────────────────────────────────────────────────────
	bonuriSvc := service.NewBonuriAsteptareService(bonRepo, lookup, dispatcher,
		service.Defaults{IDUtilizator: cfg.IDUtilizator, IDGestiune: cfg.IDGestiune}, nil)
	sesiuni := service.NewSessionRegistry(func() (*bon.Manager, error) {
		return bon.NewManager(lookup, smCfg)
	})

	r := router.New(cfg, router.Deps{
		DB:      db,
		Redis:   rdb,
		Sesiuni: sesiuni,
		Produse: produsRepo,
		Lookup:  lookup,
		Bonuri:  bonuriSvc,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("sysmanager listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// setupLogger: console output in development, JSON otherwise.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
