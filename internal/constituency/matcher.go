// Package constituency decides whether a citizen's registered location makes
// them a constituent of a given office. Pure functions, no side effects; used
// as a guard before accepting citizen-initiated interactions.
package constituency

import (
	"strings"

	"mandate/internal/registry"
)

// CitizenLocation is the location slice of an identity's profile, consumed
// from the external identity collaborator. Empty fields mean the citizen has
// not registered that level.
type CitizenLocation struct {
	County       string `json:"county"`
	Constituency string `json:"constituency"`
	Ward         string `json:"ward"`
}

// IsConstituent reports whether the citizen's registered location falls
// within the position's jurisdiction.
//
// National positions answer to every citizen. For county, constituency and
// ward positions the corresponding location field must be present and equal
// to the jurisdiction name, ignoring case and surrounding whitespace. A
// missing field or mismatched text is a definitive no.
func IsConstituent(loc CitizenLocation, position *registry.Position) bool {
	if position == nil {
		return false
	}
	switch position.GovernanceLevel {
	case registry.LevelNational:
		return true
	case registry.LevelCounty:
		return jurisdictionEqual(loc.County, position.JurisdictionName)
	case registry.LevelConstituency:
		return jurisdictionEqual(loc.Constituency, position.JurisdictionName)
	case registry.LevelWard:
		return jurisdictionEqual(loc.Ward, position.JurisdictionName)
	default:
		return false
	}
}

func jurisdictionEqual(citizenField, jurisdiction string) bool {
	citizenField = strings.TrimSpace(citizenField)
	if citizenField == "" {
		return false
	}
	return strings.EqualFold(citizenField, strings.TrimSpace(jurisdiction))
}
