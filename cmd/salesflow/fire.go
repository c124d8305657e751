package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/persistence"
	cli "github.com/urfave/cli/v3"
)

var ErrSubjectRequired = errors.New("exactly one of --contact-id or --task-id is required")

func NewFireCommand() *cli.Command {
	return &cli.Command{
		Name:  "fire",
		Usage: "Run the workflows of a trigger against a stored contact or task",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "trigger",
				Usage:    "Trigger name, e.g. ContactCreated or TaskCompleted",
				Required: true,
			},
			&cli.Int64Flag{
				Name:  "contact-id",
				Usage: "Contact the trigger is fired for",
			},
			&cli.Int64Flag{
				Name:  "task-id",
				Usage: "Task the trigger is fired for",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			trigger, err := models.ParseTrigger(command.String("trigger"))
			if err != nil {
				return err
			}

			a, err := newApp(ctx, command, "salesflow-fire")
			if err != nil {
				return err
			}

			defer func() {
				err := a.Close(ctx)
				if err != nil {
					a.logger.ErrorContext(ctx, "Failed to close resources", "error", err)
				}
			}()

			subject, err := loadSubject(ctx, a.persistence, command.Int64("contact-id"), command.Int64("task-id"))
			if err != nil {
				return err
			}

			return a.engine().RunTriggers(ctx, trigger, subject)
		},
	}
}

// loadSubject reads the triggering entity in a read-only session.
func loadSubject(ctx context.Context, p persistence.Persistence, contactID, taskID int64) (models.Subject, error) {
	if (contactID == 0) == (taskID == 0) {
		return nil, ErrSubjectRequired
	}

	session, err := p.Begin(ctx)
	if err != nil {
		return nil, err
	}

	defer func() { _ = session.Rollback() }()

	if contactID != 0 {
		contact, err := session.Contacts().GetByID(ctx, contactID)
		if err != nil {
			return nil, fmt.Errorf("failed to load contact %d: %w", contactID, err)
		}

		return models.ContactSubject{Contact: contact}, nil
	}

	task, err := session.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", taskID, err)
	}

	return models.TaskSubject{Task: task}, nil
}
