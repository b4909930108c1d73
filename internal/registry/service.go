package registry

import (
	"context"
	"errors"
	"strings"

	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/sentinel"
)

// HolderReader resolves the active verified holder of a position, if any.
// Implemented by an adapter over the claims store so the registry does not
// depend on the claims aggregate.
type HolderReader interface {
	ActiveVerifiedHolder(ctx context.Context, positionID id.PositionID) (*HolderSummary, error)
}

// SearchResult pairs a position with its sitting holder, when one exists.
type SearchResult struct {
	Position *Position      `json:"position"`
	Holder   *HolderSummary `json:"holder,omitempty"`
}

// Service serves position lookups and searches. Read-only; seeding happens at
// the store level.
type Service struct {
	store   Store
	cache   *SearchCache
	holders HolderReader
	metrics *Metrics
}

func NewService(store Store, holders HolderReader, opts ...Option) *Service {
	s := &Service{store: store, holders: holders}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Option func(*Service)

func WithSearchCache(cache *SearchCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Get returns a single position.
func (s *Service) Get(ctx context.Context, positionID id.PositionID) (*Position, error) {
	if positionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "position id is required")
	}
	position, err := s.store.FindByID(ctx, positionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "position not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "position lookup failed")
	}
	return position, nil
}

// Search returns positions matching the filter, each annotated with the
// sitting verified holder when one exists.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]SearchResult, error) {
	if strings.TrimSpace(filter.Country) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "country is required")
	}

	positions, hit := s.cachedSearch(ctx, filter)
	s.metrics.recordSearch(hit)
	if !hit {
		var err error
		positions, err = s.store.Search(ctx, filter)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "position search failed")
		}
		if s.cache != nil {
			// Cache population is best-effort.
			_ = s.cache.Set(ctx, filter, positions)
		}
	}

	results := make([]SearchResult, 0, len(positions))
	for _, position := range positions {
		result := SearchResult{Position: position}
		holder, err := s.holders.ActiveVerifiedHolder(ctx, position.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "holder lookup failed")
		}
		result.Holder = holder
		results = append(results, result)
	}
	return results, nil
}

func (s *Service) cachedSearch(ctx context.Context, filter SearchFilter) ([]*Position, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, filter)
}
