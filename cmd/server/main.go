package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/vanshika/paymybuddy/backend/internal/auth"
	"github.com/vanshika/paymybuddy/backend/internal/cache"
	"github.com/vanshika/paymybuddy/backend/internal/config"
	"github.com/vanshika/paymybuddy/backend/internal/events"
	"github.com/vanshika/paymybuddy/backend/internal/graph"
	"github.com/vanshika/paymybuddy/backend/internal/logging"
	"github.com/vanshika/paymybuddy/backend/internal/repository"
	"github.com/vanshika/paymybuddy/backend/internal/server"
	"github.com/vanshika/paymybuddy/backend/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.Auth.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg config.Config) error {
	db, err := repository.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			logger.Warn("closing database failed", "error", err)
		}
	}()

	health := server.CompositeHealth{{Name: "database", Check: repository.DatabaseHealth{DB: db}}}
	var storeOpts []repository.StoreOption

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		return fmt.Errorf("create graph client: %w", err)
	}
	if graphClient != nil {
		defer func() {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}()
		health = append(health, server.NamedCheck{Name: "graph", Check: server.GraphHealthService{Client: graphClient}})
		if cfg.Graph.ConnectionBackend == "graph" {
			storeOpts = append(storeOpts, repository.WithConnectionRepository(repository.NewGraphConnectionRepository(graphClient)))
			logger.Info("friend connections stored in graph", "uri", cfg.Graph.URI)
		}
	}

	store := repository.NewStore(db, storeOpts...)

	var profiles auth.ProfileCache
	if cfg.Cache.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return err
		}
		defer closeRedis(logger, redisClient)
		profileCache := cache.NewRedisProfileCache(redisClient, cfg.Cache.ProfileTTL)
		profiles = profileCache
		health = append(health, server.NamedCheck{Name: "redis", Check: profileCache})
		logger.Info("profile cache enabled", "ttl", cfg.Cache.ProfileTTL.String())
	}

	var publisher events.Publisher
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.Events.TransferSubject)
		if err != nil {
			return err
		}
		defer func() {
			if err := natsPublisher.Close(); err != nil {
				logger.Warn("draining nats connection failed", "error", err)
			}
		}()
		publisher = natsPublisher
		logger.Info("transfer events enabled", "subject", cfg.Events.TransferSubject)
	}

	users := service.NewUserService(store.Users(), auth.NewBcryptHasher(cfg.Auth.BcryptCost))
	apiHandlers := server.NewAPIHandlers(logger, server.APIDependencies{
		Users:        users,
		Connections:  service.NewConnectionService(store.Users(), store.Connections()),
		Transactions: service.NewTransactionService(store, store.Transactions(), publisher, logger),
		Tokens:       auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Resolver:     auth.NewResolver(store.Users(), profiles, logger),
		Limiter:      server.NewCallerLimiter(cfg.RateLimit.TransfersPerMinute, cfg.RateLimit.Burst),
	})

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           health,
		API:              apiHandlers,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins(),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			serveErr = fmt.Errorf("server stopped unexpectedly: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	return serveErr
}

// buildGraphClient returns nil when no graph URI is configured.
func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, nil
	}
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

func closeRedis(logger *slog.Logger, client *redis.Client) {
	if err := client.Close(); err != nil {
		logger.Warn("closing redis client failed", "error", err)
	}
}
