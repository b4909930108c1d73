package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mandate/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	positionID := PositionID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ UserID = positionID   // compile error
	// var _ PositionID = userID   // compile error

	// Verify they're distinct at runtime too
	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(positionID))
}

// TestParseID_SecurityInvariants validates security-critical parsing rules.
//
// These are trust boundary invariants - parsing must reject attack vectors
// at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Attack vectors
		{"SQL injection attempt", "'; DROP TABLE users;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400​-e29b-41d4-a716-446655440000", true},

		// Edge cases
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		// Note: uuid.Parse trims whitespace, so " uuid " is accepted as valid

		// Valid
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClaimID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures all ID types share identical
// parsing behavior.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.New().String()

	parsers := map[string]func(string) error{
		"UserID":     func(raw string) error { _, err := ParseUserID(raw); return err },
		"PositionID": func(raw string) error { _, err := ParsePositionID(raw); return err },
		"ClaimID":    func(raw string) error { _, err := ParseClaimID(raw); return err },
		"PromiseID":  func(raw string) error { _, err := ParsePromiseID(raw); return err },
		"ProjectID":  func(raw string) error { _, err := ParseProjectID(raw); return err },
		"QuestionID": func(raw string) error { _, err := ParseQuestionID(raw); return err },
	}

	for name, parse := range parsers {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, parse(valid))
			assert.Error(t, parse(""))
			assert.Error(t, parse("invalid"))
			assert.Error(t, parse(uuid.Nil.String()))
		})
	}
}

func TestIDStringAndIsNil(t *testing.T) {
	var zero ClaimID
	assert.True(t, zero.IsNil())

	value := uuid.New()
	claimID := ClaimID(value)
	assert.False(t, claimID.IsNil())
	assert.Equal(t, value.String(), claimID.String())
}
