// Package registry maps action kinds to the executors that perform them.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dukex/salesflow/pkg/models"
	"github.com/dukex/salesflow/pkg/protocol"
)

// ErrExecutorAlreadyRegistered is returned when a second executor claims an action kind.
var ErrExecutorAlreadyRegistered = errors.New("executor already registered")

// Registry is the ActionKind to Executor table consulted by the engine on every dispatch.
// Lookups are partial: a kind without an executor is reported as missing, never a panic.
type Registry struct {
	logger    *slog.Logger
	mu        sync.RWMutex
	executors map[models.ActionKind]protocol.Executor
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:    log,
		executors: make(map[models.ActionKind]protocol.Executor),
	}
}

// Register adds an executor under the kind it declares.
func (r *Registry) Register(executor protocol.Executor) error {
	kind := executor.Kind()
	if !kind.IsValid() {
		return fmt.Errorf("cannot register executor for unknown action kind %d", int(kind))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.executors[kind]; exists {
		return fmt.Errorf("%w: %s", ErrExecutorAlreadyRegistered, kind)
	}

	r.executors[kind] = executor
	r.logger.Debug("Registered action executor", "action_kind", kind.String())

	return nil
}

// MustRegister registers every executor and panics on the first failure.
func (r *Registry) MustRegister(executors ...protocol.Executor) {
	for _, executor := range executors {
		if err := r.Register(executor); err != nil {
			panic(err)
		}
	}
}

// Executor returns the executor registered for kind.
func (r *Registry) Executor(kind models.ActionKind) (protocol.Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	executor, ok := r.executors[kind]

	return executor, ok
}

// Kinds returns the registered action kinds in ascending order.
func (r *Registry) Kinds() []models.ActionKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]models.ActionKind, 0, len(r.executors))
	for kind := range r.executors {
		kinds = append(kinds, kind)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

// ValidateParameters checks an action's parameters payload with its executor, when the
// executor supports it. The boolean reports whether an executor is registered for kind.
func (r *Registry) ValidateParameters(kind models.ActionKind, raw string) (bool, error) {
	executor, ok := r.Executor(kind)
	if !ok {
		return false, nil
	}

	validator, ok := executor.(protocol.ParameterValidator)
	if !ok {
		return true, nil
	}

	return true, validator.ValidateParameters(raw)
}
