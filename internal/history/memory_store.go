package history

import (
	"sync"

	"github.com/laittg/chainable/pkg/api"
)

// MemoryStore is a simple, goroutine-safe RunStore backed by a map.
// Records are not durable; it is intended for tests and development.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[string]*api.RunRecord
	order []string // insertion order for stable listing
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*api.RunRecord),
	}
}

// Ensure MemoryStore implements api.RunStore.
var _ api.RunStore = (*MemoryStore)(nil)

func (s *MemoryStore) SaveRun(rec *api.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	copied := *rec
	s.runs[rec.ID] = &copied
	return nil
}

func (s *MemoryStore) GetRun(id string) (*api.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[id]
	if !ok {
		return nil, api.ErrRunNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *MemoryStore) ListRuns(filter api.RunFilter) ([]*api.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.RunRecord
	for _, id := range s.order {
		rec := s.runs[id]
		if filter.Chain != "" && rec.Chain != filter.Chain {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}
