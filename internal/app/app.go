// Package app wires the store, sync engine, scheduler, and HTTP server
// into a runnable service. Both the server binary and the CLI serve
// command boot through Run.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"radsync/internal/api"
	"radsync/internal/config"
	internaldb "radsync/internal/db"
	"radsync/internal/db/repository"
	"radsync/internal/domain"
	syncengine "radsync/internal/sync"
	"radsync/internal/upstream"
)

// jobTimeout bounds each scheduled run so a stalled upstream cannot hold
// the job mutex forever.
const jobTimeout = 5 * time.Minute

// Run boots the service and blocks until ctx is cancelled or the server
// fails. The store is migrated on startup.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	// Open the RADIUS store with hardened connection settings.
	// writeDB: single-connection pool for serialized writes (WAL + txlock=immediate).
	// readDB:  4-connection pool for concurrent reads (WAL, no txlock).
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.RadiusDBPath, 4)
	if err != nil {
		return fmt.Errorf("open radius store: %w", err)
	}
	defer writeDB.Close()
	defer readDB.Close()

	// Run migrations on the write pool (DDL requires write access)
	if err := internaldb.RunMigrations(writeDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store := repository.NewStore(writeDB, readDB)

	var source domain.VoucherSource
	var notifier domain.Notifier
	if cfg.Upstream.URL != "" {
		client := upstream.NewClient(cfg.Upstream.URL, cfg.Upstream.Token, cfg.Upstream.Secret, cfg.Upstream.Timeout)
		source = client
		notifier = client
	}

	projector := syncengine.NewProjector(store, cfg.Sync.BandwidthEncoding, logger)
	binder := syncengine.NewMacBinder(store, logger)
	detector := syncengine.NewDetector(store, notifier, cfg.Sync.ActivationBatchLimit, logger)
	deleter := syncengine.NewDeleter(store, source, cfg.Sync.DeletionWindow, logger)
	toggler := syncengine.NewToggler(store)

	handler := api.NewHandler(projector, binder, deleter, toggler, store, logger)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler.Router(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.SchedulerEnabled() {
		sched := syncengine.NewScheduler(projector, detector, deleter, source, jobTimeout, logger)
		if err := sched.Start(syncengine.Schedules{
			Vouchers:    cfg.Sync.VoucherCron,
			Activations: cfg.Sync.ActivationCron,
			Deletions:   cfg.Sync.DeletionCron,
		}); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		g.Go(func() error {
			<-gctx.Done()
			sched.Stop()
			return nil
		})
		logger.Info("scheduler started",
			"vouchers", cfg.Sync.VoucherCron,
			"activations", cfg.Sync.ActivationCron,
			"deletions", cfg.Sync.DeletionCron)
	}

	g.Go(func() error {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
