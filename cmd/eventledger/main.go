package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/eventledger/internal/clock"
	"github.com/dukerupert/eventledger/internal/config"
	"github.com/dukerupert/eventledger/internal/database"
	"github.com/dukerupert/eventledger/internal/ledger"
	"github.com/dukerupert/eventledger/internal/logging"
	"github.com/dukerupert/eventledger/internal/proposal"
	"github.com/dukerupert/eventledger/internal/server"
	"github.com/dukerupert/eventledger/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eventledger: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	slot, closer, err := openSlot(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	repo := ledger.Open(slot, logger.With("component", "ledger"))

	proposer := proposal.NewService(proposal.Config{
		Endpoint: cfg.ProposalEndpoint,
		APIKey:   cfg.ProposalAPIKey,
		Model:    cfg.ProposalModel,
		Timeout:  cfg.ProposalTimeout,
	})
	if !proposer.Configured() {
		logger.Info("description proposals disabled, no endpoint configured")
	}

	srv := server.New(repo, clock.System(), proposer, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.BackupManager().Start(ctx); err != nil {
		return fmt.Errorf("start backups: %w", err)
	}
	defer srv.BackupManager().Stop()

	go srv.RateLimiter().Run(ctx, 5*time.Minute)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("eventledger listening", "addr", httpServer.Addr, "storage", cfg.Storage, "events", repo.Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openSlot opens the configured backend and returns the ledger slot along
// with the handle to close on exit.
func openSlot(cfg config.Config) (ledger.Slot, io.Closer, error) {
	switch cfg.Storage {
	case config.StorageBadger:
		db, err := store.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using badger storage", "dir", cfg.BadgerDir, "slot", cfg.Slot)
		return store.NewBadgerSlotStore(db, cfg.Slot), db, nil
	default:
		db, err := database.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		slog.Info("using sqlite storage", "path", cfg.DBPath, "slot", cfg.Slot)
		return store.NewSlotStore(db, cfg.Slot), db, nil
	}
}
