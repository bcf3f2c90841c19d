package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coupon-api/internal/config"
	"coupon-api/internal/coupon"
	"coupon-api/internal/database"
	"coupon-api/internal/handler"
	"coupon-api/internal/repository"
	"coupon-api/internal/router"
	"coupon-api/internal/service"
	"coupon-api/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting coupon API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the tree store backend
	treeStore, err := newTreeStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer treeStore.Close()

	// Initialize repositories
	couponRepo := repository.NewCouponRepository(treeStore, logger)
	usageRepo := repository.NewUsageRepository(treeStore, logger)
	orderRepo := repository.NewOrderRepository(treeStore, logger)

	// Initialize coupon service
	couponService := service.NewCouponService(couponRepo, usageRepo, orderRepo, logger)

	// Seed coupon definitions from files or S3 when enabled
	if cfg.Seed.Enabled {
		loader := newSeedLoader(ctx, cfg, logger)
		if err := coupon.Seed(ctx, loader, cfg.Seed.Files, couponService, logger); err != nil {
			return fmt.Errorf("failed to seed coupons: %w", err)
		}
	}

	// Initialize HTTP handler and router
	couponHandler := handler.NewCouponHandler(couponService, logger)
	mux := router.New(couponHandler, cfg.Auth.AdminAPIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newTreeStore builds the configured tree store backend.
func newTreeStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.TreeStore, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendBolt:
		return store.NewBolt(cfg.Store.BoltPath, logger)

	case config.StoreBackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Store.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := store.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return store.NewPostgres(pool, logger), nil

	case config.StoreBackendMemory:
		logger.Warn().Msg("using in-memory store, state will not survive a restart")
		return store.NewMemory(), nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

// newSeedLoader builds the coupon seed loader, with S3 and local fallback.
func newSeedLoader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) coupon.Loader {
	fileLoader := coupon.NewFileLoader(logger)

	if !cfg.S3.Enabled {
		logger.Info().Msg("using local file system for coupon seed files (S3 disabled)")
		return fileLoader
	}

	s3Loader, err := coupon.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader
	}

	return coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
}
