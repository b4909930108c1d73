// Package domain defines the typed identifiers shared across the engine.
//
// Each aggregate gets its own UUID-backed type so the compiler rejects
// cross-aggregate mixups (passing a PromiseID where a ClaimID is expected).
package domain

import (
	"github.com/google/uuid"

	dErrors "mandate/pkg/domain-errors"
)

type (
	// UserID identifies an identity supplied by the external identity collaborator.
	UserID uuid.UUID
	// PositionID identifies a claimable government position.
	PositionID uuid.UUID
	// ClaimID identifies an office holder claim on a position.
	ClaimID uuid.UUID
	// PromiseID identifies a promise tracked against a claim.
	PromiseID uuid.UUID
	// ProjectID identifies a project tracked against a claim.
	ProjectID uuid.UUID
	// QuestionID identifies a constituent question.
	QuestionID uuid.UUID
)

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id PositionID) String() string { return uuid.UUID(id).String() }
func (id ClaimID) String() string    { return uuid.UUID(id).String() }
func (id PromiseID) String() string  { return uuid.UUID(id).String() }
func (id ProjectID) String() string  { return uuid.UUID(id).String() }
func (id QuestionID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PositionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClaimID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PromiseID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id QuestionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Parsing happens at trust boundaries (HTTP, storage rows).
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	return UserID(parsed), err
}

func ParsePositionID(raw string) (PositionID, error) {
	parsed, err := parseUUID(raw, "position")
	return PositionID(parsed), err
}

func ParseClaimID(raw string) (ClaimID, error) {
	parsed, err := parseUUID(raw, "claim")
	return ClaimID(parsed), err
}

func ParsePromiseID(raw string) (PromiseID, error) {
	parsed, err := parseUUID(raw, "promise")
	return PromiseID(parsed), err
}

func ParseProjectID(raw string) (ProjectID, error) {
	parsed, err := parseUUID(raw, "project")
	return ProjectID(parsed), err
}

func ParseQuestionID(raw string) (QuestionID, error) {
	parsed, err := parseUUID(raw, "question")
	return QuestionID(parsed), err
}
