package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/astronum/backend/internal/app"
	"github.com/vanshika/astronum/backend/internal/config"
	"github.com/vanshika/astronum/backend/internal/generator"
	"github.com/vanshika/astronum/backend/internal/logging"
	"github.com/vanshika/astronum/backend/internal/service"
	"github.com/vanshika/astronum/backend/internal/storage/sqlite"
)

var errEmptyDataset = errors.New("dataset contains no readings")

const progressEvery = 100

func ingestCmd() *cobra.Command {
	var (
		datasetDir string
		workers    int
		syncGraph  bool
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Create readings and comparisons from a generated dataset",
		Long: "Loads readings.json and comparisons.json from --dataset-dir and stores them " +
			"through the reading service, using the storage, graph and AI settings from the environment.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr()).With("component", "ingest")

			dataset, err := generator.ReadDataset(datasetDir)
			if err != nil {
				return err
			}
			if len(dataset.Readings) == 0 {
				return fmt.Errorf("%w: %s", errEmptyDataset, datasetDir)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
			if err != nil {
				return err
			}
			defer store.Close()

			people, err := app.OpenGraph(ctx, logger, cfg.Graph)
			if err != nil {
				return err
			}
			defer func() {
				if err := people.Close(context.Background()); err != nil {
					logger.Warn("closing graph client failed", "error", err)
				}
			}()

			insights, err := app.NewInsights(ctx, logger, cfg.AI)
			if err != nil {
				return err
			}

			svc := service.NewReadingService(store, people.Repository(), insights, nil, logger)
			ingestor := service.NewBulkIngestor(svc, workers).OnProgress(func(done, total int) {
				if done == total || done%progressEvery == 0 {
					logger.Info("progress", "done", done, "total", total)
				}
			})

			start := time.Now()
			logger.Info("ingesting readings", "count", len(dataset.Readings), "workers", workers)
			created, err := ingestor.IngestReadings(ctx, dataset.Readings)
			if err != nil {
				logger.Error("reading ingestion incomplete", "error", err, "created", created)
				return err
			}

			logger.Info("ingesting comparisons", "count", len(dataset.Comparisons))
			compared, err := ingestor.IngestComparisons(ctx, dataset.Comparisons)
			if err != nil {
				logger.Error("comparison ingestion incomplete", "error", err, "created", compared)
				return err
			}

			synced := 0
			if syncGraph && people.Enabled() {
				if synced, err = svc.SyncGraph(ctx); err != nil {
					return err
				}
			}

			logger.Info("ingestion complete", "duration", time.Since(start).String())
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d readings and %d comparisons", created, compared)
			if synced > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "; synced %d people to the graph", synced)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&datasetDir, "dataset-dir", "data/seed", "directory containing readings.json and comparisons.json")
	cmd.Flags().IntVar(&workers, "workers", 4, "number of concurrent ingestion workers")
	cmd.Flags().BoolVar(&syncGraph, "sync-graph", false, "replay every stored reading into the graph afterwards")
	return cmd
}
