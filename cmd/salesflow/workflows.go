package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/services"
	"github.com/jedib0t/go-pretty/v6/table"
	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

var ErrWorkflowFileRequired = errors.New("a workflow file is required")

// WorkflowFile is the YAML document accepted by "workflows import".
type WorkflowFile struct {
	Workflows []*models.Workflow `yaml:"workflows"`
}

func NewWorkflowsCommand() *cli.Command {
	return &cli.Command{
		Name:  "workflows",
		Usage: "Manage workflow definitions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List workflow definitions",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "tenant-id",
						Usage: "Only list the workflows of this tenant",
					},
				},
				Action: withApp("salesflow-workflows", func(ctx context.Context, command *cli.Command, a *app) error {
					workflows, err := a.workflows.List(ctx, command.Int64("tenant-id"))
					if err != nil {
						return err
					}

					renderWorkflows(os.Stdout, workflows)

					return nil
				}),
			},
			{
				Name:      "import",
				Usage:     "Create or replace workflows from a YAML file",
				ArgsUsage: "<file>",
				Action: withApp("salesflow-workflows", func(ctx context.Context, command *cli.Command, a *app) error {
					path := command.Args().First()
					if path == "" {
						return ErrWorkflowFileRequired
					}

					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("failed to read %s: %w", path, err)
					}

					imported, err := importWorkflows(ctx, a.workflows, data)
					if err != nil {
						return err
					}

					renderWorkflows(os.Stdout, imported)

					return nil
				}),
			},
			{
				Name:      "activate",
				Usage:     "Activate a workflow",
				ArgsUsage: "<id>",
				Action:    setActiveAction(true),
			},
			{
				Name:      "deactivate",
				Usage:     "Deactivate a workflow",
				ArgsUsage: "<id>",
				Action:    setActiveAction(false),
			},
		},
	}
}

func withApp(module string, fn func(ctx context.Context, command *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		a, err := newApp(ctx, command, module)
		if err != nil {
			return err
		}

		defer func() {
			err := a.Close(ctx)
			if err != nil {
				a.logger.ErrorContext(ctx, "Failed to close resources", "error", err)
			}
		}()

		return fn(ctx, command, a)
	}
}

func setActiveAction(active bool) cli.ActionFunc {
	return withApp("salesflow-workflows", func(ctx context.Context, command *cli.Command, a *app) error {
		id, err := strconv.ParseInt(command.Args().First(), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid workflow id %q: %w", command.Args().First(), err)
		}

		workflow, err := a.workflows.SetActive(ctx, id, active)
		if err != nil {
			return err
		}

		renderWorkflows(os.Stdout, []*models.Workflow{workflow})

		return nil
	})
}

// importWorkflows creates workflows without an id and imports the others keeping their
// ids. It stops at the first invalid workflow.
func importWorkflows(ctx context.Context, service *services.Workflow, data []byte) ([]*models.Workflow, error) {
	var file WorkflowFile

	err := yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workflow file: %w", err)
	}

	imported := make([]*models.Workflow, 0, len(file.Workflows))

	for i, workflow := range file.Workflows {
		var saved *models.Workflow

		if workflow.ID == 0 {
			saved, err = service.Create(ctx, workflow)
		} else {
			saved, err = service.Import(ctx, workflow)
		}

		if err != nil {
			return imported, fmt.Errorf("workflow %d (%s): %w", i, workflow.Name, err)
		}

		imported = append(imported, saved)
	}

	return imported, nil
}

func renderWorkflows(out io.Writer, workflows []*models.Workflow) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"ID", "Name", "Tenant", "Trigger", "Active", "Actions"})

	for _, workflow := range workflows {
		tw.AppendRow(table.Row{workflow.ID, workflow.Name, workflow.TenantID, workflow.Trigger, workflow.IsActive, len(workflow.Actions)})
	}

	tw.Render()
}
