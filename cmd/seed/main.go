// Command seed loads a YAML product catalogue into the resource store.
// Products whose name already exists are left alone, so it is safe to run
// repeatedly.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/config"
	"github.com/Menelao6/inventory-manager/internal/inventory"
	"github.com/Menelao6/inventory-manager/internal/logx"
	"github.com/Menelao6/inventory-manager/internal/seed"
	"github.com/Menelao6/inventory-manager/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	file := pflag.StringP("file", "f", "catalog.yaml", "catalogue to load")
	storeURL := pflag.String("store", cfg.StoreURL, "resource store base URL")
	dryRun := pflag.Bool("dry-run", false, "print what would be created without writing")
	verbose := pflag.BoolP("verbose", "v", false, "debug logging")
	pflag.Parse()

	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	logger, err := logx.New(level, "console", "seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal("open catalog", zap.Error(err))
	}
	cat, err := seed.Parse(f)
	_ = f.Close()
	if err != nil {
		logger.Fatal("invalid catalog", zap.String("file", *file), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := &inventory.Service{
		Store: store.New(*storeURL, cfg.StoreTimeout, logger.Named("store")),
		Log:   logger.Named("inventory"),
	}
	rep, err := seed.Run(ctx, svc, cat, *dryRun, logger)
	if err != nil {
		logger.Fatal("seed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(rep)
}
