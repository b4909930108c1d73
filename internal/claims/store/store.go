// Package store persists office holder claims.
//
// The central correctness property lives here: at most one active claim per
// position, enforced at the write boundary. The in-memory implementation
// scans under its mutex; the PostgreSQL implementation relies on a partial
// unique index and translates its violation into sentinel.ErrAlreadyClaimed.
// Services treat that sentinel as the authoritative conflict signal — the
// service-level pre-check is only a fast path.
package store

import (
	"context"

	"mandate/internal/claims/models"
	id "mandate/pkg/domain"
)

type Store interface {
	// CreateIfPositionVacant inserts the claim unless the position already
	// has an active claim, in which case it returns sentinel.ErrAlreadyClaimed.
	CreateIfPositionVacant(ctx context.Context, claim *models.Claim) error

	FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error)

	// ActiveByPosition returns the single active claim on a position,
	// regardless of verification status, or sentinel.ErrNotFound.
	ActiveByPosition(ctx context.Context, positionID id.PositionID) (*models.Claim, error)

	// ListByPosition returns every claim ever made on a position.
	ListByPosition(ctx context.Context, positionID id.PositionID) ([]*models.Claim, error)

	ListByClaimant(ctx context.Context, claimantID id.UserID) ([]*models.Claim, error)

	// Update persists lifecycle changes to an existing claim.
	Update(ctx context.Context, claim *models.Claim) error
}
