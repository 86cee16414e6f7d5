package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"poe-item-bank/internal/cache"
	"poe-item-bank/internal/config"
	"poe-item-bank/internal/handler"
	"poe-item-bank/internal/logger"
	"poe-item-bank/internal/middleware"
	"poe-item-bank/internal/repository"
	"poe-item-bank/internal/router"
	"poe-item-bank/internal/service"
	"poe-item-bank/internal/store"
)

func main() {
	cfg := config.MustLoad()
	logger.Init(cfg.App.Name, cfg.App.Debug)
	logger.Info().Str("environment", cfg.App.Environment).Str("version", cfg.App.Version).
		Msg("starting item bank API")

	// Table store backend
	var tableStore store.TableStore
	var err error
	switch cfg.BankDB.Type {
	case "mysql":
		tableStore, err = store.NewMySQLStore(cfg.BankDB.MySQLDSN())
	case "postgres", "postgresql":
		tableStore, err = store.NewPostgresStore(cfg.BankDB.PostgresDSN())
	case "memory":
		tableStore = store.NewMemoryStore()
		logger.Warn().Msg("memory table store selected, data will not persist")
	default: // sqlite
		tableStore, err = store.NewSQLiteStore(cfg.BankDB.Path)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("type", cfg.BankDB.Type).Msg("failed to initialize table store")
	}
	defer tableStore.Close()

	// Core tables; optional ones (PendingDupes, AdminLogs) are created on
	// first use. Fatal exits skip deferred closes, so the store is closed
	// explicitly on these paths.
	ctx := context.Background()
	if err := tableStore.CreateTableIfMissing(ctx, repository.TableDeposits, repository.DepositHeaders); err != nil {
		tableStore.Close()
		logger.Fatal().Err(err).Msg("failed to ensure deposit table")
	}
	if err := tableStore.CreateTableIfMissing(ctx, repository.TableTargets, repository.TargetHeaders); err != nil {
		tableStore.Close()
		logger.Fatal().Err(err).Msg("failed to ensure targets table")
	}

	// Session store
	var sessionCache cache.Cache
	if cfg.Session.Store == "redis" {
		sessionCache, err = cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Session.RedisAddress(),
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, falling back to memory sessions")
			sessionCache = cache.NewMemoryCache()
		}
	} else {
		sessionCache = cache.NewMemoryCache()
	}
	defer sessionCache.Close()

	// Wiring
	repo := repository.NewBankRepository(tableStore)
	sessions := service.NewSessionService(sessionCache, cfg.Admin.Allowlist(), cfg.Session.TTL)
	bank := service.NewBankService(repo)
	deposits := service.NewDepositService(repo)

	r := router.New(router.Config{
		Handler:          handler.New(cfg.App.Version),
		AuthHandler:      handler.NewAuthHandler(sessions),
		BankHandler:      handler.NewBankHandler(bank),
		DepositHandler:   handler.NewDepositHandler(deposits),
		AdminHandler:     handler.NewAdminHandler(bank, tableStore),
		EditorMiddleware: middleware.NewEditorMiddleware(sessions),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			tableStore.Close()
			sessionCache.Close()
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
}
