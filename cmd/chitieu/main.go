package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"chitieu/internal/analytics"
	"chitieu/internal/backend"
	"chitieu/internal/budget"
	"chitieu/internal/cli"
	apphttp "chitieu/internal/http"
	applog "chitieu/internal/log"
	"chitieu/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	logger.Info("Starting chitieu server")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		logger.Error("Failed to assemble backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if deps.Cleanup != nil {
			if err := deps.Cleanup(); err != nil {
				logger.Error("Cleanup failed", applog.FieldError, err)
			}
		}
	}()

	store := budget.NewStore(deps.KV, logger.Logger)
	if err := store.Initialize(ctx); err != nil {
		logger.Error("Failed to initialize budget store", applog.FieldError, err)
		os.Exit(1)
	}

	var alerts services.AlertPublisher
	if deps.Alerts != nil {
		alerts = deps.Alerts
	}

	loc := cfg.Location()
	svc := services.NewBudgetService(store, analytics.New(loc), deps.Source, alerts, loc)

	// Prime this month's spending before serving requests. A failing
	// source is not fatal; the API can still serve budgets and a later
	// refresh can succeed.
	if err := svc.RefreshCurrentMonth(ctx); err != nil {
		logger.Warn("Initial refresh failed", applog.FieldError, err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"source", cfg.TxSource,
			"timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := svc.RefreshCurrentMonth(gctx); err != nil {
					logger.Error("Periodic refresh failed", applog.FieldError, err)
				}
			}
		}
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
