package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dukex/salesflow/pkg/models"
	gocache "github.com/patrickmn/go-cache"
)

// MaxMemoryTTL bounds how long a MemoryStore serves an entry. Writes made by other
// processes never reach a MemoryStore, so this is also the longest a worker can keep
// running a workflow that was changed elsewhere.
const MaxMemoryTTL = 30 * time.Second

// MemoryStore keeps entries in process. Entries are cloned on the way in and out so
// callers cannot mutate cached definitions.
type MemoryStore struct {
	cache *gocache.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[int64]uint64
}

// NewMemoryStore creates a store whose entries expire after ttl. A ttl that is not
// positive or exceeds MaxMemoryTTL is replaced by MaxMemoryTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 || ttl > MaxMemoryTTL {
		ttl = MaxMemoryTTL
	}

	return &MemoryStore{
		cache:       gocache.New(ttl, 2*ttl),
		ttl:         ttl,
		generations: make(map[int64]uint64),
	}
}

func (s *MemoryStore) Get(_ context.Context, tenantID int64, trigger models.Trigger) ([]*models.Workflow, bool, error) {
	value, found := s.cache.Get(memoryKey(tenantID, trigger))
	if !found {
		return nil, false, nil
	}

	workflows, ok := value.([]*models.Workflow)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cache entry type %T", value)
	}

	return cloneWorkflows(workflows), true, nil
}

func (s *MemoryStore) Generation(_ context.Context, tenantID int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.generations[tenantID], nil
}

func (s *MemoryStore) Set(_ context.Context, tenantID int64, trigger models.Trigger, generation uint64, workflows []*models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[tenantID] != generation {
		return nil
	}

	s.cache.SetDefault(memoryKey(tenantID, trigger), cloneWorkflows(workflows))

	return nil
}

func (s *MemoryStore) InvalidateTenant(_ context.Context, tenantID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[tenantID]++

	prefix := fmt.Sprintf("%d:", tenantID)

	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}

	return nil
}

func memoryKey(tenantID int64, trigger models.Trigger) string {
	return fmt.Sprintf("%d:%d", tenantID, int(trigger))
}
