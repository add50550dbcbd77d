// Package main is the entry point for the workflow core service. It wires
// all dependencies using samber/do v2, starts the HTTP server and the sweep
// runner, and handles graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/teamsuite/workflow-core/internal/adapters/http"
	"github.com/teamsuite/workflow-core/internal/adapters/http/handlers"
	"github.com/teamsuite/workflow-core/internal/adapters/http/middleware"

	"github.com/teamsuite/workflow-core/internal/adapters/clients/notify"
	"github.com/teamsuite/workflow-core/internal/adapters/storage/memory"
	"github.com/teamsuite/workflow-core/internal/adapters/storage/postgres"
	"github.com/teamsuite/workflow-core/internal/app"
	"github.com/teamsuite/workflow-core/internal/platform/config"
	"github.com/teamsuite/workflow-core/internal/platform/health"
	"github.com/teamsuite/workflow-core/internal/platform/logging"
	"github.com/teamsuite/workflow-core/internal/platform/telemetry"
	"github.com/teamsuite/workflow-core/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
	storageInitTimeout    = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	store := do.MustInvoke[ports.Store](injector)
	notifier := do.MustInvoke[*notify.Client](injector)
	if checker, ok := store.(ports.HealthChecker); ok {
		registry.Register(checker)
	}
	registry.Register(notifier.HTTPClient())

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Start the sweep runner in background when enabled.
	sweepCtx, stopSweeps := context.WithCancel(ctx)
	defer stopSweeps()

	var sweepWG sync.WaitGroup
	if cfg.Sweeper.Enabled {
		runner := do.MustInvoke[*app.SweepRunner](injector)
		sweepWG.Add(1)
		go func() {
			defer sweepWG.Done()
			runner.Run(sweepCtx)
		}()
	}

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: stop sweeps, drain HTTP requests.
	stopSweeps()
	sweepWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	if pg, ok := store.(*postgres.Store); ok {
		pg.Close()
	}

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

// newStore builds the configured storage backend.
func newStore(cfg *config.Config) (ports.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), storageInitTimeout)
		defer cancel()
		return postgres.New(ctx, cfg.Storage.Postgres)
	default:
		return memory.New(), nil
	}
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(_ do.Injector) (ports.Store, error) {
		return newStore(cfg)
	})

	do.Provide(injector, func(i do.Injector) (*notify.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return notify.New(&cfg.Notifier, metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.Notifier, error) {
		return do.MustInvoke[*notify.Client](i), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.MembershipService, error) {
		store := do.MustInvoke[ports.Store](i)
		return app.NewMembershipService(store, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.SprintService, error) {
		auth := do.MustInvoke[ports.MembershipService](i)
		store := do.MustInvoke[ports.Store](i)
		notifier := do.MustInvoke[ports.Notifier](i)
		return app.NewSprintService(auth, store, notifier, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.IssueService, error) {
		auth := do.MustInvoke[ports.MembershipService](i)
		store := do.MustInvoke[ports.Store](i)
		notifier := do.MustInvoke[ports.Notifier](i)
		return app.NewIssueService(auth, store, notifier, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*app.SweepRunner, error) {
		store := do.MustInvoke[ports.Store](i)
		notifier := do.MustInvoke[ports.Notifier](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		sweeper := app.NewSweeper(store, notifier,
			cfg.Sweeper.EndingHorizon, cfg.Sweeper.Workers, metrics, logger)
		return app.NewSweepRunner(sweeper, cfg.Sweeper.Interval, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.SprintHandler, error) {
		sprints := do.MustInvoke[ports.SprintService](i)
		members := do.MustInvoke[ports.MembershipService](i)
		return handlers.NewSprintHandler(sprints, members), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.IssueHandler, error) {
		svc := do.MustInvoke[ports.IssueService](i)
		return handlers.NewIssueHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		sprintH := do.MustInvoke[*handlers.SprintHandler](i)
		issueH := do.MustInvoke[*handlers.IssueHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(sprintH, issueH, healthH,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
