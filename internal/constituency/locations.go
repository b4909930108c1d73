package constituency

import (
	"context"
	"sync"

	id "mandate/pkg/domain"
)

// LocationReader resolves a citizen's registered location from the identity
// collaborator's profile data. A missing profile yields an empty location,
// not an error; the matcher treats empty fields as non-constituency.
type LocationReader interface {
	LocationOf(ctx context.Context, userID id.UserID) (CitizenLocation, error)
}

// StaticLocations is an in-memory LocationReader for development wiring and
// tests.
type StaticLocations struct {
	mu        sync.RWMutex
	locations map[id.UserID]CitizenLocation
}

func NewStaticLocations() *StaticLocations {
	return &StaticLocations{locations: make(map[id.UserID]CitizenLocation)}
}

func (s *StaticLocations) Set(userID id.UserID, loc CitizenLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[userID] = loc
}

func (s *StaticLocations) LocationOf(_ context.Context, userID id.UserID) (CitizenLocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locations[userID], nil
}
