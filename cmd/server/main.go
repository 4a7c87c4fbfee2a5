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

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/coin-ledger/internal/api"
	"github.com/sheikh-saqib/coin-ledger/internal/config"
	"github.com/sheikh-saqib/coin-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/coin-ledger/internal/events/memory"
	interfaces "github.com/sheikh-saqib/coin-ledger/internal/interfaces"
	"github.com/sheikh-saqib/coin-ledger/internal/ledger"
	"github.com/sheikh-saqib/coin-ledger/internal/logging"
	"github.com/sheikh-saqib/coin-ledger/internal/models/events"
	"github.com/sheikh-saqib/coin-ledger/internal/participants"
	"github.com/sheikh-saqib/coin-ledger/internal/policy"
	memstore "github.com/sheikh-saqib/coin-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/coin-ledger/internal/storage/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := seedAccounts(ctx, store, cfg, logger); err != nil {
		return err
	}

	// The memory bus always runs so /events can serve recent history;
	// Kafka receives a copy when brokers are configured.
	bus := memory.NewBus(memory.DefaultHistory)
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer publisher.Close()
		bus.Subscribe(func(ctx context.Context, event events.Event) {
			publisher.Emit(ctx, event)
		})
		logger.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	directory, err := participants.LoadFile(cfg.ParticipantsFile)
	if err != nil {
		return err
	}
	logger.Info("participants loaded", zap.Int("count", directory.Len()))

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("idempotency keys enabled", zap.String("redis", cfg.RedisAddr))
	}

	ledgerService := ledger.NewLedger(store, bus, policy.NewRolePolicy(), logger)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: api.NewRouter(api.Options{
			Ledger:        ledgerService,
			Authenticator: directory,
			Logger:        logger,
			Redis:         rdb,
			Events:        bus,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("env", cfg.Env), zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.AccountRegistry, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory account store")
		return memstore.NewMemoryAccountStore(), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}

	store := postgres.NewPostgresAccountStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database schema: %w", err)
	}

	logger.Info("connected to postgres", zap.String("driver", cfg.DBDriver))
	return store, func() { db.Close() }, nil
}

func seedAccounts(ctx context.Context, store interfaces.AccountRegistry, cfg *config.Config, logger *zap.Logger) error {
	for _, account := range cfg.SeedAccounts {
		exists, err := store.Exists(ctx, account.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := store.Add(ctx, account); err != nil {
			return err
		}
		logger.Info("seeded account", zap.String("account", account.ID), zap.String("amount", account.Amount.String()))
	}
	return nil
}
