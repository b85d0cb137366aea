package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/bracketd/internal/command"
	"github.com/AdamBeresnev/bracketd/internal/config"
	"github.com/AdamBeresnev/bracketd/internal/db"
	"github.com/AdamBeresnev/bracketd/internal/logging"
	"github.com/AdamBeresnev/bracketd/internal/metrics"
	"github.com/AdamBeresnev/bracketd/internal/service"
	"github.com/AdamBeresnev/bracketd/internal/store"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bracketd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "bracketd",
	})
	slog.SetDefault(logger)

	repo, closeRepo, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	recorder := metrics.NewRecorder()
	svc := services{
		tournaments: service.NewTournamentService(repo, logger),
		matches:     service.NewMatchService(repo, logger),
		players:     service.NewPlayerService(repo, logger),
	}

	handler := command.NewHandler(svc.tournaments, svc.matches, svc.players, recorder, logger)
	commandServer := command.NewServer(handler, recorder, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      newRouter(svc, recorder, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return commandServer.ListenAndServe(gCtx, cfg.CommandAddr)
	})
	g.Go(func() error {
		logging.Info(logger, "http server listening", logging.FieldAddr, cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logging.Info(logger, "shutting down", "timeout", cfg.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			httpServer.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logging.Info(logger, "application exited")
	return nil
}

// openRepository picks the storage backend named by DB_DRIVER and applies
// migrations for SQL backends.
func openRepository(cfg *config.Config, logger *slog.Logger) (store.Repository, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		logging.Warn(logger, "using in-memory storage, nothing will be persisted")
		return store.NewMemoryStore(), func() {}, nil
	}

	database, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(database.DB, cfg.DBDriver); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logging.Info(logger, "database ready", "driver", cfg.DBDriver)

	closeDB := func() {
		if err := database.Close(); err != nil {
			logging.Error(logger, "failed to close database connection", err)
		}
	}
	return store.NewSQLStore(database), closeDB, nil
}
