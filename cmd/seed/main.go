// Command seed loads a catalog fixture file into the configured store.
//
//	CATALOG_STORE=postgres go run ./cmd/seed -file catalog.json
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/maticamisay/eldisco-ecommerce/internal/app"
	"github.com/maticamisay/eldisco-ecommerce/internal/config"
	"github.com/maticamisay/eldisco-ecommerce/internal/seed"
	"github.com/maticamisay/eldisco-ecommerce/pkg/logger"
)

func main() {
	path := flag.String("file", "catalog.json", "seed file to load")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("catalog-seed", cfg.LogLevel)

	if err := run(cfg, log, *path, *timeout); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, path string, timeout time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	file, err := seed.Decode(f)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	catalog, err := app.OpenCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer catalog.Close()

	res, err := seed.New(catalog.Categories, catalog.Brands, catalog.Products, log).Run(ctx, file)
	if err != nil {
		return err
	}
	log.Info("seed complete",
		slog.String("store", cfg.CatalogStore),
		slog.Int("categories", res.Categories),
		slog.Int("brands", res.Brands),
		slog.Int("products", res.Products),
		slog.Int("skipped", res.Skipped),
	)
	return nil
}
