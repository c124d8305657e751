package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/salesflow/pkg/cmd"
	"github.com/dukex/salesflow/pkg/persistence/file"
	"github.com/dukex/salesflow/pkg/registry"
	"github.com/dukex/salesflow/pkg/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testEnv struct {
	persistence *file.Persistence
	registry    *registry.Registry
	workflows   *services.Workflow
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	reg := cmd.NewRegistry(testLogger(), p)

	return &testEnv{
		persistence: p,
		registry:    reg,
		workflows:   services.NewWorkflow(p, reg),
	}
}
