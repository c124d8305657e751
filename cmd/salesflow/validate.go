package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/registry"
	"github.com/jedib0t/go-pretty/v6/table"
	cli "github.com/urfave/cli/v3"
)

var ErrInvalidActions = errors.New("invalid action parameters found")

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Decode the parameters of every stored workflow action",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "tenant-id",
				Usage: "Only validate the workflows of this tenant",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			a, err := newApp(ctx, command, "salesflow-validate")
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

			workflows, err := a.workflows.List(ctx, command.Int64("tenant-id"))
			if err != nil {
				return fmt.Errorf("failed to fetch workflows: %w", err)
			}

			a.logger.InfoContext(ctx, "Validating workflow actions", "workflows", len(workflows))

			return validateWorkflows(os.Stdout, a.registry, workflows)
		},
	}
}

// validateWorkflows renders one row per action. Kinds without an executor are reported
// but do not fail validation.
func validateWorkflows(out io.Writer, reg *registry.Registry, workflows []*models.Workflow) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"Workflow", "Tenant", "Trigger", "Action", "Kind", "Result"})

	invalid := 0

	for _, workflow := range workflows {
		for _, action := range workflow.Actions {
			result := "ok"

			registered, err := reg.ValidateParameters(action.Kind, action.ParametersJSON)

			switch {
			case !registered:
				result = "no executor"
			case err != nil:
				result = err.Error()
				invalid++
			}

			tw.AppendRow(table.Row{workflow.ID, workflow.TenantID, workflow.Trigger, action.ID, action.Kind, result})
		}
	}

	tw.AppendFooter(table.Row{"", "", "", "", "Invalid", invalid})
	tw.Render()

	if invalid > 0 {
		return fmt.Errorf("%w: %d", ErrInvalidActions, invalid)
	}

	return nil
}
