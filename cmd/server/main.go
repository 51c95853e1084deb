package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mercadito/marketplace-api/internal/api"
	"github.com/mercadito/marketplace-api/internal/core/service"
	"github.com/mercadito/marketplace-api/internal/infrastructure/db/mongo"
	"github.com/mercadito/marketplace-api/internal/infrastructure/db/redis"
	"github.com/mercadito/marketplace-api/internal/infrastructure/http/handlers"
	"github.com/mercadito/marketplace-api/internal/infrastructure/queue"
	"github.com/mercadito/marketplace-api/internal/pkg/config"
	"github.com/mercadito/marketplace-api/internal/pkg/tracing"
	"github.com/mercadito/marketplace-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Marketplace API
// @version 1.0
// @description Accounts and item listings for a second-hand marketplace.

// @BasePath /

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
		Env:    cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownTracing, err := tracing.Setup(cfg.Tracing.Enabled, cfg.Env, os.Stdout, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown tracing")
		}
	}()

	// --- Persistence ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	accountRepo := mongo.NewAccountRepository(db)
	itemRepo := mongo.NewItemRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := itemRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	// --- Audit pipeline ---
	auditSvc := service.NewAuditService(mongo.NewAuditRepository(db), accountRepo, log)
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditSvc, log)
	dispatcher.Start()

	// --- Services ---
	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	accounts := service.NewAccountService(accountRepo, tokens, service.BcryptHasher{}, dispatcher, log)
	items := service.NewItemService(itemRepo, redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL), dispatcher, log)
	stats := service.NewStatsService(accountRepo, itemRepo)

	e := api.NewRouter(api.Dependencies{
		Accounts:     accounts,
		Items:        items,
		Stats:        stats,
		Tokens:       tokens,
		Log:          log,
		SecureCookie: cfg.IsProduction(),
		Liveness:     handlers.NewHealthHandler().Liveness,
		Readiness: handlers.NewHealthDependenciesHandler(
			handlers.MongoCheck(db),
			handlers.RedisCheck(rdb),
		).Readiness,
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting marketplace api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("gracefully shutting down")
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := dispatcher.Stop(sctx); err != nil {
		log.Warn().Err(err).Msg("audit queue not fully drained")
	}
	return nil
}
