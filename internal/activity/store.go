package activity

import (
	"context"
	"sort"
	"sync"

	id "mandate/pkg/domain"
)

// Store is the append-only persistence boundary for activity entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByActor(ctx context.Context, actorID id.UserID, limit int) ([]Entry, error)
	ListByClaim(ctx context.Context, claimID id.ClaimID, limit int) ([]Entry, error)
}

// InMemoryStore keeps entries in a slice; appends preserve arrival order so
// listings can tie-break identical timestamps stably.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID id.UserID, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []Entry
	for _, entry := range s.entries {
		if entry.ActorID == actorID {
			results = append(results, entry)
		}
	}
	return newestFirst(results, limit), nil
}

func (s *InMemoryStore) ListByClaim(_ context.Context, claimID id.ClaimID, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []Entry
	for _, entry := range s.entries {
		if entry.ClaimID != nil && *entry.ClaimID == claimID {
			results = append(results, entry)
		}
	}
	return newestFirst(results, limit), nil
}

func newestFirst(entries []Entry, limit int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
