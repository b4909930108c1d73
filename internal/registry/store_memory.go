package registry

import (
	"context"
	"sort"
	"sync"

	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
)

// InMemoryStore keeps the reference data in a map. Reference rows are
// immutable after seeding so a plain RWMutex suffices.
type InMemoryStore struct {
	mu        sync.RWMutex
	positions map[id.PositionID]*Position
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{positions: make(map[id.PositionID]*Position)}
}

func (s *InMemoryStore) Create(_ context.Context, position *Position) error {
	if err := position.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *position
	s.positions[position.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, positionID id.PositionID) (*Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if position, ok := s.positions[positionID]; ok {
		copied := *position
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Search(_ context.Context, filter SearchFilter) ([]*Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Position
	for _, position := range s.positions {
		if filter.Matches(position) {
			copied := *position
			results = append(results, &copied)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Title < results[j].Title
	})
	return results, nil
}
