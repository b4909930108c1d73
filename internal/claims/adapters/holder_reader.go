// Package adapters bridges the claim store to read interfaces other features
// declare, keeping the package dependency graph acyclic.
package adapters

import (
	"context"

	"mandate/internal/claims/store"
	"mandate/internal/registry"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
)

// HolderReader exposes the sitting office holder of a position to the
// registry. Implements registry.HolderReader.
type HolderReader struct {
	claims store.Store
}

func NewHolderReader(claims store.Store) *HolderReader {
	return &HolderReader{claims: claims}
}

// ActiveVerifiedHolder returns the sitting verified holder of a position, or
// sentinel.ErrNotFound when the seat is vacant or the active claim is still
// pending.
func (h *HolderReader) ActiveVerifiedHolder(ctx context.Context, positionID id.PositionID) (*registry.HolderSummary, error) {
	claim, err := h.claims.ActiveByPosition(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if !claim.IsSittingHolder() {
		return nil, sentinel.ErrNotFound
	}
	return &registry.HolderSummary{
		ClaimID:    claim.ID,
		ClaimantID: claim.ClaimantID,
		TermStart:  claim.TermStart,
		TermEnd:    claim.TermEnd,
	}, nil
}
