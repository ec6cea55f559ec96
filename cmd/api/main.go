package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clickquest/clicker-system/internal/api"
	"github.com/clickquest/clicker-system/internal/core/service"
	mongodb "github.com/clickquest/clicker-system/internal/infrastructure/db/mongo"
	redisdb "github.com/clickquest/clicker-system/internal/infrastructure/db/redis"
	"github.com/clickquest/clicker-system/internal/infrastructure/queue"
	"github.com/clickquest/clicker-system/internal/pkg/config"
	"github.com/clickquest/clicker-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Backing stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(shutdownCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Core components, leaves first (explicit dependency injection) ---
	accountRepo := mongodb.NewAccountRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	accounts := service.NewAccountStore(accountRepo, log)
	sessions := service.NewSessionBinder(redisdb.NewCache(rdb, cfg.Redis.KeyPrefix), log)

	checkpointer := queue.NewCheckpointer(cfg.CheckpointWorkers, accounts, log)
	checkpointer.Start(ctx)

	transfers := service.NewTransferService(accounts, sessions, checkpointer, log)

	// --- HTTP layer ---
	secret := cfg.SessionSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn().Msg("SESSION_SECRET not set, using a random secret; handles will not survive restart")
	}

	e := api.NewRouter(transfers, db, rdb, api.RouterConfig{
		SessionSecret:  secret,
		FrontendOrigin: cfg.FrontendOrigin,
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
