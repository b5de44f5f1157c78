package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/paymybuddy/backend/internal/auth"
	"github.com/vanshika/paymybuddy/backend/internal/config"
	"github.com/vanshika/paymybuddy/backend/internal/generator"
	"github.com/vanshika/paymybuddy/backend/internal/graph"
	"github.com/vanshika/paymybuddy/backend/internal/logging"
	"github.com/vanshika/paymybuddy/backend/internal/repository"
	"github.com/vanshika/paymybuddy/backend/internal/service"
)

func main() {
	var (
		datasetDir = flag.String("dataset-dir", "./data", "Directory containing users.json, connections.json and transfers.json")
		workers    = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	dataset, err := generator.ReadDataset(*datasetDir)
	if err != nil {
		logger.Error("failed to load dataset", "error", err, "dir", *datasetDir)
		os.Exit(1)
	}
	if len(dataset.Users) == 0 {
		logger.Error("users dataset empty", "dir", *datasetDir)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := ingest(ctx, logger, cfg, dataset, *workers); err != nil {
		logger.Error("ingestion failed", "error", err)
		os.Exit(1)
	}
}

func ingest(ctx context.Context, logger *slog.Logger, cfg config.Config, dataset generator.Dataset, workers int) error {
	db, err := repository.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			logger.Warn("closing database failed", "error", err)
		}
	}()

	var storeOpts []repository.StoreOption
	if cfg.Graph.ConnectionBackend == "graph" {
		graphClient, err := buildGraphClient(ctx, logger, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}()
		storeOpts = append(storeOpts, repository.WithConnectionRepository(repository.NewGraphConnectionRepository(graphClient)))
	}
	store := repository.NewStore(db, storeOpts...)

	ingestor := service.NewBulkIngestor(
		service.NewUserService(store.Users(), auth.NewBcryptHasher(cfg.Auth.BcryptCost)),
		service.NewConnectionService(store.Users(), store.Connections()),
		service.NewTransactionService(store, store.Transactions(), nil, logger),
		workers,
	)

	start := time.Now()
	logger.Info("ingesting users", "count", len(dataset.Users), "workers", workers)
	if err := ingestor.IngestUsers(ctx, dataset.Users); err != nil {
		return fmt.Errorf("users: %w", err)
	}

	logger.Info("ingesting connections", "count", len(dataset.Connections))
	if err := ingestor.IngestConnections(ctx, dataset.Connections); err != nil {
		return fmt.Errorf("connections: %w", err)
	}

	logger.Info("ingesting transfers", "count", len(dataset.Transfers))
	err = ingestor.IngestTransfers(ctx, dataset.Transfers)
	var taskErr *service.TaskError
	if errors.As(err, &taskErr) {
		logger.Warn("some transfers were rejected", "rejected", len(taskErr.Errors), "total", len(dataset.Transfers))
	} else if err != nil {
		return fmt.Errorf("transfers: %w", err)
	}

	logger.Info("ingestion complete",
		"duration", time.Since(start).String(),
		"users", len(dataset.Users),
		"connections", len(dataset.Connections),
		"transfers", len(dataset.Transfers),
	)
	return nil
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	client, err := graph.NewNeo4jClient(ctx, graph.OptionsFromConfig(cfg.Graph))
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
	return client, nil
}
