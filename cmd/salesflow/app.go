package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dukex/salesflow/pkg/cmd"
	"github.com/dukex/salesflow/pkg/config"
	"github.com/dukex/salesflow/pkg/log"
	"github.com/dukex/salesflow/pkg/otelhelper"
	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/dukex/salesflow/pkg/registry"
	"github.com/dukex/salesflow/pkg/services"
	"github.com/dukex/salesflow/pkg/workflow"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

// app holds the collaborators every command needs.
type app struct {
	config      config.Config
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	workflows   *services.Workflow
	tracer      trace.Tracer
	closers     []func(context.Context) error
}

func newApp(ctx context.Context, command *cli.Command, module string) (*app, error) {
	cfg, err := loadConfig(command)
	if err != nil {
		return nil, err
	}

	log.Setup(cfg.LogLevel)

	a := &app{
		config: cfg,
		logger: log.WithModule(module),
		tracer: otelhelper.NoopTracer(),
	}

	base, err := cmd.NewPersistence(ctx, a.logger, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, base.Close)

	cached, cacheCloser, err := cmd.WithCache(ctx, cfg.Cache, base, a.logger)
	if err != nil {
		_ = a.Close(ctx)

		return nil, err
	}

	a.closers = append(a.closers, closeWith(cacheCloser))
	a.persistence = cached
	a.registry = cmd.NewRegistry(a.logger, cached)
	a.workflows = services.NewWorkflow(cached, a.registry)

	if cfg.TracingEnabled {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, cfg.ServiceName)
		if err != nil {
			_ = a.Close(ctx)

			return nil, fmt.Errorf("failed to set up tracing: %w", err)
		}

		a.tracer = tracer
		a.closers = append(a.closers, shutdown)
	}

	return a, nil
}

// ErrStorageUnhealthy is returned when the persistence layer fails its health check.
var ErrStorageUnhealthy = errors.New("storage is unhealthy")

// checkStorage fails when workflow definitions cannot be read.
func (a *app) checkStorage(ctx context.Context) error {
	status, healthy := a.workflows.HealthCheck(ctx)
	if !healthy {
		a.logger.ErrorContext(ctx, "Storage health check failed", "status", status)

		return fmt.Errorf("%w: %s", ErrStorageUnhealthy, status)
	}

	a.logger.DebugContext(ctx, status)

	return nil
}

func (a *app) engine(opts ...workflow.Option) *workflow.Engine {
	opts = append([]workflow.Option{workflow.WithTracer(a.tracer)}, opts...)

	return workflow.NewEngine(a.persistence.WorkflowRepository(), a.persistence, a.registry, a.logger, opts...)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func closeWith(closer io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return closer.Close()
	}
}
