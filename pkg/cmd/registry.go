// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/dukex/salesflow/pkg/actions/createtask"
	"github.com/dukex/salesflow/pkg/actions/leadstatus"
	"github.com/dukex/salesflow/pkg/actions/lifecyclestage"
	"github.com/dukex/salesflow/pkg/persistence"
	"github.com/dukex/salesflow/pkg/registry"
	"github.com/dukex/salesflow/pkg/services"
)

// NewRegistry registers every built-in executor. SendEmail has no executor and is skipped
// by the engine.
func NewRegistry(logger *slog.Logger, p persistence.Persistence) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.MustRegister(
		leadstatus.NewExecutor(),
		lifecyclestage.NewExecutor(),
		createtask.NewExecutor(services.NewTask(p, logger)),
	)

	return reg
}
