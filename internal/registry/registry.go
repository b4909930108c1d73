// Package registry holds the read-mostly reference data describing claimable
// government positions. Positions are seeded administratively and never
// mutated by the engine.
package registry

import (
	"strings"
	"time"

	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
)

// GovernanceLevel is the administrative tier a position governs.
type GovernanceLevel string

const (
	LevelNational     GovernanceLevel = "national"
	LevelCounty       GovernanceLevel = "county"
	LevelConstituency GovernanceLevel = "constituency"
	LevelWard         GovernanceLevel = "ward"
)

// ParseGovernanceLevel validates a raw level string at trust boundaries.
func ParseGovernanceLevel(raw string) (GovernanceLevel, error) {
	switch GovernanceLevel(raw) {
	case LevelNational, LevelCounty, LevelConstituency, LevelWard:
		return GovernanceLevel(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown governance level: "+raw)
	}
}

// Position is immutable reference data identifying a claimable office.
type Position struct {
	ID               id.PositionID   `json:"id"`
	PositionCode     string          `json:"position_code"` // e.g. "KE:president", "KE:governor:nairobi"
	CountryCode      string          `json:"country_code"`
	GovernanceLevel  GovernanceLevel `json:"governance_level"`
	JurisdictionName string          `json:"jurisdiction_name"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	TermYears        int             `json:"term_years,omitempty"`
	IsElected        bool            `json:"is_elected"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Validate checks the invariants of seeded reference rows.
func (p *Position) Validate() error {
	if p.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "position id is required")
	}
	if strings.TrimSpace(p.CountryCode) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "country code is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "position title is required")
	}
	if strings.TrimSpace(p.JurisdictionName) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "jurisdiction name is required")
	}
	if _, err := ParseGovernanceLevel(string(p.GovernanceLevel)); err != nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "invalid governance level")
	}
	return nil
}

// HolderSummary is the active verified office holder attached to search
// results. Kept minimal so the registry stays decoupled from the claims
// aggregate.
type HolderSummary struct {
	ClaimID    id.ClaimID `json:"claim_id"`
	ClaimantID id.UserID  `json:"claimant_id"`
	TermStart  time.Time  `json:"term_start"`
	TermEnd    time.Time  `json:"term_end"`
}

// SearchFilter narrows a position search. Country is required; Level and
// FreeText are optional. FreeText matches title and jurisdiction name.
type SearchFilter struct {
	Country  string
	Level    *GovernanceLevel
	FreeText string
}

// Matches reports whether a position satisfies the filter. Shared by the
// in-memory store and tests; the Postgres store expresses the same predicate
// in SQL.
func (f SearchFilter) Matches(p *Position) bool {
	if !strings.EqualFold(p.CountryCode, f.Country) {
		return false
	}
	if f.Level != nil && p.GovernanceLevel != *f.Level {
		return false
	}
	if f.FreeText != "" {
		needle := strings.ToLower(f.FreeText)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.JurisdictionName), needle) {
			return false
		}
	}
	return true
}
