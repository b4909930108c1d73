package succession

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claimmodels "mandate/internal/claims/models"
	claimstore "mandate/internal/claims/store"
	ledgermodels "mandate/internal/ledger/models"
	ledgerstore "mandate/internal/ledger/store"
	id "mandate/pkg/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	service    *Service
	claims     *claimstore.InMemory
	ledger     *ledgerstore.InMemory
	positionID id.PositionID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		claims:     claimstore.NewInMemory(),
		ledger:     ledgerstore.NewInMemory(),
		positionID: id.PositionID(uuid.New()),
	}
	f.service = New(
		f.claims,
		f.ledger.Promises(),
		f.ledger.Questions(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

// addClaim creates a claim starting its term at the given year and drives it
// into the requested state.
func (f *fixture) addClaim(t *testing.T, year int, status claimmodels.VerificationStatus, historical bool) *claimmodels.Claim {
	t.Helper()
	claim, err := claimmodels.NewClaim(
		id.ClaimID(uuid.New()),
		f.positionID,
		id.UserID(uuid.New()),
		time.Date(year, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year+5, 9, 1, 0, 0, 0, 0, time.UTC),
		claimmodels.MethodOfficialLink,
		claimmodels.LinkProof("https://example.go.ke"),
		testNow,
	)
	require.NoError(t, err)

	// Sidestep the single-active-claim rule: history legitimately holds many
	// claims on one position, only one of them active.
	claim.IsActive = false
	require.NoError(t, f.claims.CreateIfPositionVacant(context.Background(), claim))

	admin := id.UserID(uuid.New())
	switch status {
	case claimmodels.StatusVerified:
		claim.ApplyVerification(admin, testNow)
		claim.IsActive = true
		if historical {
			claim.ApplySupersession()
		}
	case claimmodels.StatusRejected:
		claim.ApplyRejection(admin, "insufficient proof", testNow)
	}
	require.NoError(t, f.claims.Update(context.Background(), claim))
	return claim
}

func (f *fixture) addPromise(t *testing.T, claimID id.ClaimID, completed bool) {
	t.Helper()
	promise, err := ledgermodels.NewPromise(
		id.PromiseID(uuid.New()), claimID, "A promise", "", "", nil, testNow)
	require.NoError(t, err)
	if completed {
		require.NoError(t, promise.ApplyUpdate(ledgermodels.PromiseCompleted, 100, testNow))
	}
	require.NoError(t, f.ledger.Promises().Create(context.Background(), promise))
}

func (f *fixture) addQuestion(t *testing.T, claimID id.ClaimID, answered bool) {
	t.Helper()
	question, err := ledgermodels.NewQuestion(
		id.QuestionID(uuid.New()), claimID, id.UserID(uuid.New()), "A question?", testNow)
	require.NoError(t, err)
	if answered {
		require.NoError(t, question.ApplyAnswer("An answer.", testNow))
	}
	require.NoError(t, f.ledger.Questions().Create(context.Background(), question))
}

func TestListHolders(t *testing.T) {
	t.Run("only claims that ever held office, newest term first", func(t *testing.T) {
		f := newFixture(t)
		older := f.addClaim(t, 2013, claimmodels.StatusVerified, true)
		f.addClaim(t, 2017, claimmodels.StatusRejected, false)
		f.addClaim(t, 2020, claimmodels.StatusPending, false)
		current := f.addClaim(t, 2022, claimmodels.StatusVerified, false)

		records, err := f.service.ListHolders(context.Background(), f.positionID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, current.ID, records[0].Claim.ID)
		assert.True(t, records[0].IsCurrent)
		assert.Equal(t, older.ID, records[1].Claim.ID)
		assert.False(t, records[1].IsCurrent)
	})

	t.Run("empty ledgers yield no rates", func(t *testing.T) {
		f := newFixture(t)
		f.addClaim(t, 2022, claimmodels.StatusVerified, false)

		records, err := f.service.ListHolders(context.Background(), f.positionID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Nil(t, records[0].PromiseCompletionRate, "no promises means no rate, not 0%")
		assert.Nil(t, records[0].QuestionResponseRate)
	})

	t.Run("rates reflect the holder's ledger", func(t *testing.T) {
		f := newFixture(t)
		claim := f.addClaim(t, 2022, claimmodels.StatusVerified, false)

		f.addPromise(t, claim.ID, true)
		f.addPromise(t, claim.ID, true)
		f.addPromise(t, claim.ID, false)
		f.addPromise(t, claim.ID, false)

		f.addQuestion(t, claim.ID, true)
		f.addQuestion(t, claim.ID, false)

		records, err := f.service.ListHolders(context.Background(), f.positionID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.NotNil(t, records[0].PromiseCompletionRate)
		assert.InDelta(t, 0.5, *records[0].PromiseCompletionRate, 1e-9)
		require.NotNil(t, records[0].QuestionResponseRate)
		assert.InDelta(t, 0.5, *records[0].QuestionResponseRate, 1e-9)
	})

	t.Run("unknown position yields an empty history", func(t *testing.T) {
		f := newFixture(t)
		records, err := f.service.ListHolders(context.Background(), id.PositionID(uuid.New()))
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
