package registry

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "mandate/pkg/domain"
)

// Seed loads a starter set of Kenyan positions into an empty store. Used by
// the development wiring and tests; production reference data arrives through
// migrations.
func Seed(ctx context.Context, store Store) error {
	now := time.Now().UTC()
	seedRows := []*Position{
		{
			PositionCode:     "KE:president",
			CountryCode:      "KE",
			GovernanceLevel:  LevelNational,
			JurisdictionName: "Kenya",
			Title:            "President",
			Description:      "Head of State and Government",
			TermYears:        5,
			IsElected:        true,
		},
		{
			PositionCode:     "KE:governor:nairobi",
			CountryCode:      "KE",
			GovernanceLevel:  LevelCounty,
			JurisdictionName: "Nairobi City County",
			Title:            "Governor, Nairobi City County",
			TermYears:        5,
			IsElected:        true,
		},
		{
			PositionCode:     "KE:mp:westlands",
			CountryCode:      "KE",
			GovernanceLevel:  LevelConstituency,
			JurisdictionName: "Westlands",
			Title:            "Member of Parliament, Westlands",
			TermYears:        5,
			IsElected:        true,
		},
		{
			PositionCode:     "KE:mca:parklands",
			CountryCode:      "KE",
			GovernanceLevel:  LevelWard,
			JurisdictionName: "Parklands/Highridge",
			Title:            "Member of County Assembly, Parklands/Highridge",
			TermYears:        5,
			IsElected:        true,
		},
	}
	for _, row := range seedRows {
		row.ID = id.PositionID(uuid.New())
		row.CreatedAt = now
		if err := store.Create(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
