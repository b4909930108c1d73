package store

import (
	"context"
	"sort"
	"sync"

	"mandate/internal/claims/models"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
)

// InMemory keeps claims in a map guarded by a mutex. The vacancy check and
// insert run under the same lock, giving the same atomicity the partial
// unique index gives the PostgreSQL store.
type InMemory struct {
	mu     sync.RWMutex
	claims map[id.ClaimID]*models.Claim
}

func NewInMemory() *InMemory {
	return &InMemory{claims: make(map[id.ClaimID]*models.Claim)}
}

func (s *InMemory) CreateIfPositionVacant(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.claims {
		if existing.PositionID == claim.PositionID && existing.IsActive {
			return sentinel.ErrAlreadyClaimed
		}
	}
	copied := *claim
	s.claims[claim.ID] = &copied
	return nil
}

func (s *InMemory) FindByID(_ context.Context, claimID id.ClaimID) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if claim, ok := s.claims[claimID]; ok {
		copied := *claim
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ActiveByPosition(_ context.Context, positionID id.PositionID) (*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, claim := range s.claims {
		if claim.PositionID == positionID && claim.IsActive {
			copied := *claim
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByPosition(_ context.Context, positionID id.PositionID) ([]*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []*models.Claim
	for _, claim := range s.claims {
		if claim.PositionID == positionID {
			copied := *claim
			results = append(results, &copied)
		}
	}
	sortByTermStartDesc(results)
	return results, nil
}

func (s *InMemory) ListByClaimant(_ context.Context, claimantID id.UserID) ([]*models.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var results []*models.Claim
	for _, claim := range s.claims {
		if claim.ClaimantID == claimantID {
			copied := *claim
			results = append(results, &copied)
		}
	}
	sortByTermStartDesc(results)
	return results, nil
}

func (s *InMemory) Update(_ context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[claim.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *claim
	s.claims[claim.ID] = &copied
	return nil
}

func sortByTermStartDesc(claims []*models.Claim) {
	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].TermStart.After(claims[j].TermStart)
	})
}
