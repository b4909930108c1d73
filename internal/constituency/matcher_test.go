package constituency

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"mandate/internal/registry"
	id "mandate/pkg/domain"
)

func position(level registry.GovernanceLevel, jurisdiction string) *registry.Position {
	return &registry.Position{
		ID:               id.PositionID(uuid.New()),
		CountryCode:      "KE",
		GovernanceLevel:  level,
		JurisdictionName: jurisdiction,
		Title:            "Officeholder",
	}
}

func TestIsConstituent(t *testing.T) {
	nairobi := CitizenLocation{County: "Nairobi", Constituency: "Westlands", Ward: "Parklands"}

	tests := []struct {
		name     string
		loc      CitizenLocation
		position *registry.Position
		want     bool
	}{
		{"national office answers to everyone", CitizenLocation{}, position(registry.LevelNational, "Kenya"), true},
		{"county match", nairobi, position(registry.LevelCounty, "Nairobi"), true},
		{"county mismatch", nairobi, position(registry.LevelCounty, "Mombasa"), false},
		{"constituency match", nairobi, position(registry.LevelConstituency, "Westlands"), true},
		{"constituency mismatch", nairobi, position(registry.LevelConstituency, "Dagoretti North"), false},
		{"ward match", nairobi, position(registry.LevelWard, "Parklands"), true},
		{"ward mismatch", nairobi, position(registry.LevelWard, "Karura"), false},
		{"match ignores case", CitizenLocation{County: "nairobi"}, position(registry.LevelCounty, "NAIROBI"), true},
		{"match ignores surrounding whitespace", CitizenLocation{County: " Nairobi "}, position(registry.LevelCounty, "Nairobi"), true},
		{"unregistered level is a definitive no", CitizenLocation{County: "Nairobi"}, position(registry.LevelWard, "Parklands"), false},
		{"empty location fails non-national checks", CitizenLocation{}, position(registry.LevelCounty, "Nairobi"), false},
		{"nil position", nairobi, nil, false},
		{"unknown governance level", nairobi, position(registry.GovernanceLevel("planetary"), "Earth"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConstituent(tt.loc, tt.position))
		})
	}
}

func TestStaticLocations(t *testing.T) {
	locations := NewStaticLocations()
	citizen := id.UserID(uuid.New())
	locations.Set(citizen, CitizenLocation{County: "Kisumu"})

	got, err := locations.LocationOf(context.Background(), citizen)
	assert.NoError(t, err)
	assert.Equal(t, "Kisumu", got.County)

	// Unknown citizens resolve to the empty location, never an error.
	missing, err := locations.LocationOf(context.Background(), id.UserID(uuid.New()))
	assert.NoError(t, err)
	assert.Zero(t, missing)
}
