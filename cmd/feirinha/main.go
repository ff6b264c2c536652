package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/feirinha/internal/categories"
	"github.com/dukerupert/feirinha/internal/config"
	"github.com/dukerupert/feirinha/internal/database"
	"github.com/dukerupert/feirinha/internal/lists"
	"github.com/dukerupert/feirinha/internal/logging"
	"github.com/dukerupert/feirinha/internal/markets"
	"github.com/dukerupert/feirinha/internal/persist"
	"github.com/dukerupert/feirinha/internal/places"
	"github.com/dukerupert/feirinha/internal/server"
	"github.com/dukerupert/feirinha/internal/store"
	ws "github.com/dukerupert/feirinha/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "feirinha: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv := store.NewKVStore(db)
	persistLogger := logger.Named("persist")
	hub := ws.NewHub(logger.Named("websocket"))

	listSlot := persist.NewSlot[lists.Document](lists.StorageKey, kv, persistLogger)
	categorySlot := persist.NewSlot[categories.Document](categories.StorageKey, kv, persistLogger)
	marketSlot := persist.NewSlot[markets.Document](markets.StorageKey, kv, persistLogger)
	slots := []io.Closer{listSlot, categorySlot, marketSlot}

	listStore := lists.Open(ctx, listSlot, logger.Named("lists"), lists.Options{
		Strict:   cfg.Strict,
		OnChange: hub.Notify,
	})
	categoryStore := categories.Open(ctx, categorySlot, categories.DefaultCatalog, logger.Named("categories"), categories.Options{
		Strict:   cfg.Strict,
		OnChange: hub.Notify,
	})
	marketStore := markets.Open(ctx, marketSlot, logger.Named("markets"), markets.Options{
		OnChange: hub.Notify,
	})

	placesClient := places.NewClient(places.Config{
		APIKey:  cfg.PlacesAPIKey,
		BaseURL: cfg.PlacesBaseURL,
	}, logger.Named("places"))
	if !placesClient.Configured() {
		logger.Warn("no places API key, market search disabled")
	}

	srv := server.New(server.Deps{
		Lists:      listStore,
		Categories: categoryStore,
		Markets:    marketStore,
		Places:     placesClient,
		Hub:        hub,
		DB:         db,
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		srv.RateLimiter().Run(gctx, time.Minute)
		return nil
	})

	g.Go(func() error {
		logger.Info("feirinha running", zap.String("addr", cfg.Addr), zap.String("db", cfg.DBPath))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	runErr := g.Wait()

	// Pending snapshots must reach the database before it closes.
	for _, s := range slots {
		if err := s.Close(); err != nil {
			logger.Error("final persist failed", zap.Error(err))
		}
	}
	logger.Info("stopped")
	return runErr
}
