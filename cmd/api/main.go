package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/interfaces/scheduler"
	"fintrack/internal/shared/config"
	"fintrack/internal/shared/logger"
	"fintrack/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", logger.Err(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Money is sent as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		})
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				log.Error("failed to shut down telemetry", logger.Err(err))
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	listenerCtx, cancelListener := context.WithCancel(context.Background())
	defer cancelListener()
	deps.Listener.Start(listenerCtx)
	defer deps.Listener.Stop()

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(scheduler.Config{
			ScheduleTimes: cfg.Scheduler.ScheduleTimes,
			WorkerCount:   cfg.Scheduler.WorkerCount,
			JobDelay:      cfg.Scheduler.JobDelay,
			QueueSize:     cfg.Scheduler.QueueSize,
			RunOnStartup:  cfg.Scheduler.RunOnStartup,
			JobProvider:   scheduler.NewJobProvider(deps.RecurringService, deps.BudgetService, deps.AlertService),
		})
		if err != nil {
			return err
		}
		sched.Start()
		log.Info("scheduler started", "times", cfg.Scheduler.ScheduleTimes, "workers", cfg.Scheduler.WorkerCount)
	} else {
		log.Info("scheduler is disabled")
	}

	handler := SetupRoutes(deps, cfg)
	srv, redirectSrv, serverErr := StartServers(NewServerConfigFromConfig(handler, cfg))

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		log.Error("server failed", logger.Err(err))
		GracefulShutdown(srv, redirectSrv, sched, cfg.Server.ShutdownTimeout)
		return err
	}

	GracefulShutdown(srv, redirectSrv, sched, cfg.Server.ShutdownTimeout)
	return nil
}
