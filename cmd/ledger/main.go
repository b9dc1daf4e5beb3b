package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Menelao6/inventory-manager/internal/config"
	kafkax "github.com/Menelao6/inventory-manager/internal/kafka"
	"github.com/Menelao6/inventory-manager/internal/ledger"
	"github.com/Menelao6/inventory-manager/internal/logx"
	"github.com/Menelao6/inventory-manager/internal/orders"
	"github.com/Menelao6/inventory-manager/internal/postgres"
	"github.com/Menelao6/inventory-manager/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	service := cfg.ServiceName + "-ledger"
	logger, err := logx.New(cfg.LogLevel, cfg.LogFormat, service)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	defer db.Close()

	repo := &ledger.Repo{DB: db}
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal("ledger schema", zap.Error(err))
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &ledger.Service{
		Repo:        repo,
		Redis:       rdb,
		ServiceName: service,
		Log:         logger,
	}

	// One consumer per workflow topic, all in the same group.
	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range orders.AllTopics() {
		topic := topic
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.LedgerGroup, topic, cfg.LedgerWorkers, logger)
		g.Go(func() error {
			logger.Info("ledger consumer started",
				zap.String("group", cfg.LedgerGroup), zap.String("topic", topic), zap.Int("workers", cfg.LedgerWorkers))
			return cons.Start(gctx, svc.HandleMessage)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("consumer exit", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("ledger stopped")
}
