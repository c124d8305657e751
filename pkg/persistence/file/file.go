// Package file provides file-based persistence for workflow definitions and CRM records.
// Every record is stored as one JSON document under <root>/<collection>/<id>.json.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dukex/salesflow/pkg/persistence"
)

const (
	workflowsCollection  = "workflows"
	actionsCollection    = "actions"
	contactsCollection   = "contacts"
	tasksCollection      = "tasks"
	activitiesCollection = "activities"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root         string
	mu           sync.Mutex
	sequences    map[string]int64
	workflowRepo *WorkflowRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{
		root:      cleanRoot,
		sequences: make(map[string]int64),
	}
	p.workflowRepo = &WorkflowRepository{persistence: p}

	return p
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// WorkflowRepository returns the workflow repository implementation for file persistence.
func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

// Begin starts a session that stages writes in memory until Commit.
func (fp *Persistence) Begin(_ context.Context) (persistence.Session, error) {
	return newSession(fp), nil
}

// nextID allocates the next identifier of a collection. Identifiers are never reused,
// even when the session that allocated them rolls back.
func (fp *Persistence) nextID(collection string) (int64, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	current, ok := fp.sequences[collection]
	if !ok {
		var err error

		current, err = fp.highestID(collection)
		if err != nil {
			return 0, err
		}
	}

	current++
	fp.sequences[collection] = current

	return current, nil
}

// observeIDLocked keeps the sequence ahead of explicitly assigned identifiers.
// The caller must hold fp.mu.
func (fp *Persistence) observeIDLocked(collection string, id int64) {
	if current, ok := fp.sequences[collection]; ok && id > current {
		fp.sequences[collection] = id
	}
}

func (fp *Persistence) highestID(collection string) (int64, error) {
	// Actions live inside their workflow document.
	if collection == actionsCollection {
		return fp.workflowRepo.highestActionID()
	}

	ids, err := fp.listIDs(collection)
	if err != nil || len(ids) == 0 {
		return 0, err
	}

	return ids[len(ids)-1], nil
}

func (fp *Persistence) collectionDir(collection string) string {
	return path.Join(fp.root, collection)
}

func (fp *Persistence) recordPath(collection string, id int64) string {
	return path.Join(fp.collectionDir(collection), strconv.FormatInt(id, 10)+".json")
}

// listIDs returns the identifiers stored in a collection in ascending order.
func (fp *Persistence) listIDs(collection string) ([]int64, error) {
	jsonFiles, err := fs.Glob(os.DirFS(fp.collectionDir(collection)), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", collection, err)
	}

	ids := make([]int64, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id, err := strconv.ParseInt(strings.TrimSuffix(file, ".json"), 10, 64)
		if err != nil {
			continue
		}

		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// readRecord loads a record into target. It returns false when the file does not exist.
func (fp *Persistence) readRecord(collection string, id int64, target any) (bool, error) {
	data, err := os.ReadFile(fp.recordPath(collection, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s %d: %w", collection, id, err)
	}

	err = json.Unmarshal(data, target)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal %s %d: %w", collection, id, err)
	}

	return true, nil
}

func (fp *Persistence) writeRecord(collection string, id int64, record any) error {
	err := os.MkdirAll(fp.collectionDir(collection), 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", collection, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %d: %w", collection, id, err)
	}

	// Write then rename so readers never observe a partial document.
	target := fp.recordPath(collection, id)
	tmp := target + ".tmp"

	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write %s %d: %w", collection, id, err)
	}

	return os.Rename(tmp, target)
}

func (fp *Persistence) removeRecord(collection string, id int64) error {
	err := os.Remove(fp.recordPath(collection, id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s %d: %w", collection, id, err)
	}

	return nil
}
