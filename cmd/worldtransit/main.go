package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/worldtransit-data/internal/common/config"
	"github.com/worldtransit-data/internal/common/db"
	"github.com/worldtransit-data/internal/common/logger"
	"github.com/worldtransit-data/internal/connectors"
	"github.com/worldtransit-data/internal/export"
	"github.com/worldtransit-data/internal/gtfs/engine"
	"github.com/worldtransit-data/pkg/transport/models"
)

func main() {
	// Load .env if present; a missing file just means real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.NewWithLevel(
		logger.ParseLogLevel(cfg.Logging.Level),
		logger.ConsoleWriter(),
		logger.FileWriter(cfg.Logging.FilePath),
	)

	log.Info("World transit dataset build starting",
		"log_level", cfg.Logging.Level,
		"connectors_file", cfg.ConnectorsFile,
		"output_dir", cfg.Output.Dir,
	)

	defs, err := config.LoadConnectors(cfg.ConnectorsFile)
	if err != nil {
		log.Fatal("Failed to load connector definitions", "error", err)
	}

	// Cancel the build on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutdown signal received")
		cancel()
	}()

	eng := engine.New(log)
	built := connectors.Build(defs, cfg.Download, eng, log)
	if len(built) == 0 {
		log.Fatal("No enabled connectors configured")
	}

	// Each connector owns its own archive bytes and output slice, so they
	// run concurrently without shared state.
	frames := make([][]models.ODRecord, len(built))
	var wg sync.WaitGroup
	for i, c := range built {
		wg.Add(1)
		go func(i int, c connectors.Connector) {
			defer wg.Done()
			log.Info("Running connector", "connector", c.Name())
			records, err := c.FetchRoutes(ctx)
			if err != nil {
				log.Error("Connector failed", "connector", c.Name(), "error", err)
				return
			}
			frames[i] = records
		}(i, c)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		log.Fatal("Build cancelled", "error", err)
	}

	merger := export.NewMerger(log)
	vendor := merger.LoadVendorDir(cfg.Output.VendorDir)
	combined := merger.Merge(append(frames, vendor)...)

	outPath := filepath.Join(cfg.Output.Dir, cfg.Output.FileName)
	if err := merger.WriteCSV(outPath, combined); err != nil {
		log.Fatal("Failed to write combined dataset", "error", err)
	}

	if cfg.Database.DSN != "" {
		database, err := db.New(cfg.Database.DSN, log)
		if err != nil {
			log.Fatal("Failed to connect to database", "error", err)
		}
		defer database.Close()

		sink := export.NewPostgresSink(database)
		if err := sink.Store(ctx, combined); err != nil {
			log.Fatal("Failed to store combined dataset", "error", err)
		}
	}

	log.Info("World transit dataset build finished", "rows", len(combined))
}
