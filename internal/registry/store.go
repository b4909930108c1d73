package registry

import (
	"context"

	id "mandate/pkg/domain"
)

// Store is interface-driven to keep the domain logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business code.
type Store interface {
	// Create inserts a reference row. Used only by administrative seeding.
	Create(ctx context.Context, position *Position) error
	FindByID(ctx context.Context, positionID id.PositionID) (*Position, error)
	Search(ctx context.Context, filter SearchFilter) ([]*Position, error)
}
