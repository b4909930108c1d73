package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
)

var (
	testNow       = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testTermStart = time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)
	testTermEnd   = time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC)
)

func newTestClaim(t *testing.T) *Claim {
	t.Helper()
	claim, err := NewClaim(
		id.ClaimID(uuid.New()),
		id.PositionID(uuid.New()),
		id.UserID(uuid.New()),
		testTermStart,
		testTermEnd,
		MethodOfficialLink,
		LinkProof("https://parliament.go.ke/members/42"),
		testNow,
	)
	require.NoError(t, err)
	return claim
}

func TestNewClaim(t *testing.T) {
	t.Run("starts pending and active", func(t *testing.T) {
		claim := newTestClaim(t)
		assert.Equal(t, StatusPending, claim.VerificationStatus)
		assert.True(t, claim.IsActive)
		assert.False(t, claim.IsHistorical)
		assert.Equal(t, testNow, claim.ClaimedAt)
		assert.Nil(t, claim.VerifiedBy)
		assert.Nil(t, claim.VerifiedAt)
	})

	tests := []struct {
		name       string
		positionID id.PositionID
		claimantID id.UserID
		termStart  time.Time
		termEnd    time.Time
		method     VerificationMethod
		proof      Proof
		wantCode   dErrors.Code
	}{
		{
			name:       "nil position id",
			claimantID: id.UserID(uuid.New()),
			termStart:  testTermStart,
			termEnd:    testTermEnd,
			method:     MethodOfficialLink,
			proof:      LinkProof("https://example.gov"),
			wantCode:   dErrors.CodeValidation,
		},
		{
			name:       "nil claimant id",
			positionID: id.PositionID(uuid.New()),
			termStart:  testTermStart,
			termEnd:    testTermEnd,
			method:     MethodOfficialLink,
			proof:      LinkProof("https://example.gov"),
			wantCode:   dErrors.CodeValidation,
		},
		{
			name:       "zero term start",
			positionID: id.PositionID(uuid.New()),
			claimantID: id.UserID(uuid.New()),
			termEnd:    testTermEnd,
			method:     MethodOfficialLink,
			proof:      LinkProof("https://example.gov"),
			wantCode:   dErrors.CodeValidation,
		},
		{
			name:       "term start after term end",
			positionID: id.PositionID(uuid.New()),
			claimantID: id.UserID(uuid.New()),
			termStart:  testTermEnd,
			termEnd:    testTermStart,
			method:     MethodOfficialLink,
			proof:      LinkProof("https://example.gov"),
			wantCode:   dErrors.CodeValidation,
		},
		{
			name:       "term start equal to term end",
			positionID: id.PositionID(uuid.New()),
			claimantID: id.UserID(uuid.New()),
			termStart:  testTermStart,
			termEnd:    testTermStart,
			method:     MethodOfficialLink,
			proof:      LinkProof("https://example.gov"),
			wantCode:   dErrors.CodeValidation,
		},
		{
			name:       "proof kind mismatch",
			positionID: id.PositionID(uuid.New()),
			claimantID: id.UserID(uuid.New()),
			termStart:  testTermStart,
			termEnd:    testTermEnd,
			method:     MethodEmailVerification,
			proof:      LinkProof("https://example.gov"),
			wantCode:   dErrors.CodeValidation,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClaim(id.ClaimID(uuid.New()), tc.positionID, tc.claimantID, tc.termStart, tc.termEnd, tc.method, tc.proof, testNow)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tc.wantCode), "got %v", err)
		})
	}
}

func TestClaimLifecycle(t *testing.T) {
	admin := id.UserID(uuid.New())

	t.Run("verification records who and when", func(t *testing.T) {
		claim := newTestClaim(t)
		require.NoError(t, claim.CanResolve())

		claim.ApplyVerification(admin, testNow)
		assert.Equal(t, StatusVerified, claim.VerificationStatus)
		assert.True(t, claim.IsSittingHolder())
		assert.True(t, claim.EverVerified())
		require.NotNil(t, claim.VerifiedBy)
		assert.Equal(t, admin, *claim.VerifiedBy)
		require.NotNil(t, claim.VerifiedAt)
		assert.Equal(t, testNow, *claim.VerifiedAt)
	})

	t.Run("rejection deactivates without history", func(t *testing.T) {
		claim := newTestClaim(t)
		claim.ApplyRejection(admin, "no supporting evidence", testNow)
		assert.Equal(t, StatusRejected, claim.VerificationStatus)
		assert.False(t, claim.IsActive)
		assert.False(t, claim.IsHistorical)
		assert.False(t, claim.EverVerified())
		assert.Equal(t, "no supporting evidence", claim.RejectionNotes)
	})

	t.Run("resolved claims cannot resolve again", func(t *testing.T) {
		claim := newTestClaim(t)
		claim.ApplyVerification(admin, testNow)
		err := claim.CanResolve()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("supersession retires a verified claim into history", func(t *testing.T) {
		claim := newTestClaim(t)
		claim.ApplyVerification(admin, testNow)
		claim.ApplySupersession()
		assert.False(t, claim.IsActive)
		assert.True(t, claim.IsHistorical)
		assert.False(t, claim.IsSittingHolder())
		assert.True(t, claim.EverVerified(), "a superseded holder still held office")
	})

	t.Run("only active pending claims withdraw", func(t *testing.T) {
		claim := newTestClaim(t)
		require.NoError(t, claim.CanWithdraw())
		claim.ApplyWithdrawal()
		assert.False(t, claim.IsActive)

		verified := newTestClaim(t)
		verified.ApplyVerification(admin, testNow)
		err := verified.CanWithdraw()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestProofValidate(t *testing.T) {
	tests := []struct {
		name    string
		method  VerificationMethod
		proof   Proof
		wantErr bool
	}{
		{"document with url", MethodDocumentUpload, DocumentProof("memory://claims/abc"), false},
		{"document without url", MethodDocumentUpload, Proof{Kind: ProofKindDocument}, true},
		{"email with address", MethodEmailVerification, EmailProof("governor@nairobi.go.ke"), false},
		{"email without at sign", MethodEmailVerification, EmailProof("not-an-address"), true},
		{"link with url", MethodOfficialLink, LinkProof("https://parliament.go.ke"), false},
		{"link with blank url", MethodOfficialLink, LinkProof("   "), true},
		{"kind mismatch", MethodOfficialLink, EmailProof("mp@parliament.go.ke"), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.proof.Validate(tc.method)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
