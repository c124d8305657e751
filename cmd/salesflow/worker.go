package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/salesflow/pkg/cmd"
	"github.com/dukex/salesflow/pkg/workflow"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

func NewWorkerCommand() *cli.Command {
	return &cli.Command{
		Name:    "worker",
		Aliases: []string{"w"},
		Usage:   "Consume CRM events and run the matching workflows",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Sources: cli.EnvVars("WORKER_ID"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			a, err := newApp(ctx, command, "salesflow-worker")
			if err != nil {
				return err
			}

			defer func() {
				err := a.Close(ctx)
				if err != nil {
					a.logger.ErrorContext(ctx, "Failed to close resources", "error", err)
				}
			}()

			err = a.checkStorage(ctx)
			if err != nil {
				return err
			}

			workerID := a.config.WorkerID
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := a.logger.With("worker_id", workerID)
			logger.InfoContext(ctx, "Initializing salesflow worker")

			eventBus, err := cmd.NewEventBus(a.config, logger)
			if err != nil {
				return err
			}

			defer func() {
				err := eventBus.Close()
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			engine := a.engine(workflow.WithPublisher(eventBus), workflow.WithWorkerID(workerID))

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return NewWorkerManager(workerID, engine, eventBus, logger).Start(ctx)
		},
	}
}
