package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/cart"
	"github.com/Menelao6/inventory-manager/internal/config"
	"github.com/Menelao6/inventory-manager/internal/httpx"
	"github.com/Menelao6/inventory-manager/internal/inventory"
	kafkax "github.com/Menelao6/inventory-manager/internal/kafka"
	"github.com/Menelao6/inventory-manager/internal/ledger"
	"github.com/Menelao6/inventory-manager/internal/logx"
	"github.com/Menelao6/inventory-manager/internal/postgres"
	"github.com/Menelao6/inventory-manager/internal/redisx"
	"github.com/Menelao6/inventory-manager/internal/store"
	"github.com/Menelao6/inventory-manager/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logx.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis holds the session carts.
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// The ledger is optional for the API: without Postgres the
	// reconciliation routes answer 503.
	var recon httpx.Reconciliation
	if db, err := postgres.Connect(ctx, cfg.PostgresDSN, logger); err != nil {
		logger.Warn("ledger unavailable, reconciliation routes disabled", zap.Error(err))
	} else {
		defer db.Close()
		recon = &ledger.Repo{DB: db}
	}

	// Kafka producers, one per workflow topic
	bus := kafkax.NewBus(cfg.KafkaBrokers, cfg.ServiceName, logger)
	bus.Start(ctx)

	client := store.New(cfg.StoreURL, cfg.StoreTimeout, logger.Named("store"))
	wlog := logger.Named("workflow")

	router := httpx.NewRouter(logger.Named("http"), cfg.RequestTimeout)
	(&httpx.CustomerHandler{
		Catalog: client,
		Carts:   cart.NewRedisStore(rdb),
		Placer: &workflow.Placer{
			Store:       client,
			Events:      bus,
			Log:         wlog,
			VerifyStock: cfg.StockVerify,
		},
		Log: logger,
	}).Register(router)
	(&httpx.ManagerHandler{
		Store:     client,
		Canceller: &workflow.Canceller{Store: client, Events: bus, Log: wlog},
		Processor: &workflow.Processor{Store: client, Events: bus, Log: wlog},
		Ledger:    recon,
		Log:       logger,
	}).Register(router)
	(&httpx.AdminHandler{
		Inventory: &inventory.Service{Store: client, Events: bus, Log: logger.Named("inventory")},
		Threshold: cfg.LowStockThreshold,
		Log:       logger,
	}).Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	bus.Close() // flush queued events before the producers stop
	cancel()
}
