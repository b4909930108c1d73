package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandate/internal/activity"
	"mandate/internal/blob"
	"mandate/internal/claims/models"
	"mandate/internal/claims/store"
	"mandate/internal/registry"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/requestcontext"
)

var (
	testNow       = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testTermStart = time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)
	testTermEnd   = time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC)
)

type denyMembership struct{}

func (denyMembership) IsRegisteredMember(context.Context, id.UserID) (bool, error) {
	return false, nil
}

type fixture struct {
	service   *Service
	claims    *store.InMemory
	positions *registry.InMemoryStore
	activity  *activity.InMemoryStore
	blobs     *blob.InMemoryStore
}

func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()
	f := &fixture{
		claims:    store.NewInMemory(),
		positions: registry.NewInMemoryStore(),
		activity:  activity.NewInMemoryStore(),
		blobs:     blob.NewInMemoryStore(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	emitter := activity.NewEmitter(f.activity, nil, logger)
	f.service = New(
		f.claims,
		f.positions,
		AllowAllMembers{},
		emitter,
		logger,
		WithBlobStore(f.blobs),
	)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *fixture) addPosition(t *testing.T) id.PositionID {
	t.Helper()
	position := &registry.Position{
		ID:               id.PositionID(uuid.New()),
		PositionCode:     "KE:mp:" + uuid.NewString(),
		CountryCode:      "KE",
		GovernanceLevel:  registry.LevelConstituency,
		JurisdictionName: "Westlands",
		Title:            "Member of Parliament",
		TermYears:        5,
		IsElected:        true,
		CreatedAt:        testNow,
	}
	require.NoError(t, f.positions.Create(context.Background(), position))
	return position.ID
}

func authedCtx(userID id.UserID) context.Context {
	ctx := requestcontext.WithActorID(context.Background(), userID)
	return requestcontext.WithTime(ctx, testNow)
}

func adminCtx(userID id.UserID) context.Context {
	return requestcontext.WithAdmin(authedCtx(userID), true)
}

func validInput(positionID id.PositionID) SubmitClaimInput {
	return SubmitClaimInput{
		PositionID: positionID,
		TermStart:  testTermStart,
		TermEnd:    testTermEnd,
		Method:     models.MethodOfficialLink,
		Proof:      models.LinkProof("https://parliament.go.ke/members/42"),
	}
}

func TestSubmitClaim(t *testing.T) {
	t.Run("creates a pending active claim and logs activity", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		claimant := id.UserID(uuid.New())

		claim, err := f.service.SubmitClaim(authedCtx(claimant), validInput(positionID))
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, claim.VerificationStatus)
		assert.True(t, claim.IsActive)
		assert.Equal(t, claimant, claim.ClaimantID)
		assert.Equal(t, testNow, claim.ClaimedAt)

		entries, err := f.activity.ListByActor(context.Background(), claimant, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, activity.TypeClaimSubmitted, entries[0].Type)
	})

	t.Run("requires authentication", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)

		_, err := f.service.SubmitClaim(context.Background(), validInput(positionID))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects non-members", func(t *testing.T) {
		f := newFixture(t)
		f.service.membership = denyMembership{}
		positionID := f.addPosition(t)

		_, err := f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), validInput(positionID))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects unknown position", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), validInput(id.PositionID(uuid.New())))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects inverted term", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		in := validInput(positionID)
		in.TermStart, in.TermEnd = in.TermEnd, in.TermStart

		_, err := f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), in)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("conflicts while another claim is active", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)

		_, err := f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), validInput(positionID))
		require.NoError(t, err)

		_, err = f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), validInput(positionID))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("stores an uploaded proof document", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		in := validInput(positionID)
		in.Method = models.MethodDocumentUpload
		in.Proof = models.Proof{}
		in.ProofDocument = []byte("appointment letter")

		claim, err := f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), in)
		require.NoError(t, err)
		assert.Equal(t, models.ProofKindDocument, claim.Proof.Kind)
		require.True(t, strings.HasPrefix(claim.Proof.URL, "memory://"), "got %s", claim.Proof.URL)

		data, ok := f.blobs.Get(strings.TrimPrefix(claim.Proof.URL, "memory://"))
		require.True(t, ok, "proof document must be persisted under %s", claim.Proof.URL)
		assert.Equal(t, []byte("appointment letter"), data)
	})

	t.Run("exactly one winner under concurrent submission", func(t *testing.T) {
		const racers = 50
		f := newFixture(t)
		positionID := f.addPosition(t)

		var wg sync.WaitGroup
		errs := make(chan error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), validInput(positionID))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var successes, conflicts int
		for err := range errs {
			switch {
			case err == nil:
				successes++
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, racers-1, conflicts)
	})
}

func TestResolveClaim(t *testing.T) {
	submit := func(t *testing.T, f *fixture, positionID id.PositionID) *models.Claim {
		t.Helper()
		claim, err := f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), validInput(positionID))
		require.NoError(t, err)
		return claim
	}

	t.Run("verifies a pending claim", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		claim := submit(t, f, positionID)
		admin := id.UserID(uuid.New())

		resolved, err := f.service.ResolveClaim(adminCtx(admin), claim.ID, models.DecisionVerified, "")
		require.NoError(t, err)
		assert.True(t, resolved.IsSittingHolder())
		require.NotNil(t, resolved.VerifiedBy)
		assert.Equal(t, admin, *resolved.VerifiedBy)
		require.NotNil(t, resolved.VerifiedAt)
		assert.Equal(t, testNow, *resolved.VerifiedAt)
	})

	t.Run("rejects with notes", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		claim := submit(t, f, positionID)

		resolved, err := f.service.ResolveClaim(adminCtx(id.UserID(uuid.New())), claim.ID, models.DecisionRejected, "document is for a different office")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, resolved.VerificationStatus)
		assert.False(t, resolved.IsActive)
		assert.Equal(t, "document is for a different office", resolved.RejectionNotes)

		// The seat is free again after rejection.
		_, err = f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), validInput(positionID))
		assert.NoError(t, err)
	})

	t.Run("requires the admin role", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		claim := submit(t, f, positionID)

		_, err := f.service.ResolveClaim(authedCtx(id.UserID(uuid.New())), claim.ID, models.DecisionVerified, "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("cannot resolve twice", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		claim := submit(t, f, positionID)
		ctx := adminCtx(id.UserID(uuid.New()))

		_, err := f.service.ResolveClaim(ctx, claim.ID, models.DecisionVerified, "")
		require.NoError(t, err)
		_, err = f.service.ResolveClaim(ctx, claim.ID, models.DecisionRejected, "changed my mind")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("verifying a successor retires the sitting holder into history", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		ctx := adminCtx(id.UserID(uuid.New()))

		first := submit(t, f, positionID)
		_, err := f.service.ResolveClaim(ctx, first.ID, models.DecisionVerified, "")
		require.NoError(t, err)

		// A verified holder keeps the seat occupied, so the successor claim is
		// created directly at the store to model the next electoral term.
		successor, err := models.NewClaim(
			id.ClaimID(uuid.New()), positionID, id.UserID(uuid.New()),
			testTermEnd, testTermEnd.AddDate(5, 0, 0),
			models.MethodOfficialLink, models.LinkProof("https://parliament.go.ke/members/43"),
			testNow,
		)
		require.NoError(t, err)
		successor.IsActive = false
		require.NoError(t, f.claims.CreateIfPositionVacant(context.Background(), successor))
		successor.IsActive = true
		require.NoError(t, f.claims.Update(context.Background(), successor))

		resolved, err := f.service.ResolveClaim(ctx, successor.ID, models.DecisionVerified, "")
		require.NoError(t, err)
		assert.True(t, resolved.IsSittingHolder())

		retired, err := f.service.GetClaim(context.Background(), first.ID)
		require.NoError(t, err)
		assert.False(t, retired.IsActive)
		assert.True(t, retired.IsHistorical)
		assert.True(t, retired.EverVerified())
	})

	t.Run("missing claim is not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ResolveClaim(adminCtx(id.UserID(uuid.New())), id.ClaimID(uuid.New()), models.DecisionVerified, "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestWithdrawClaim(t *testing.T) {
	t.Run("claimant withdraws a pending claim", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		claimant := id.UserID(uuid.New())

		claim, err := f.service.SubmitClaim(authedCtx(claimant), validInput(positionID))
		require.NoError(t, err)

		withdrawn, err := f.service.WithdrawClaim(authedCtx(claimant), claim.ID)
		require.NoError(t, err)
		assert.False(t, withdrawn.IsActive)
		assert.Equal(t, models.StatusPending, withdrawn.VerificationStatus)

		// Withdrawal frees the seat.
		_, err = f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), validInput(positionID))
		assert.NoError(t, err)
	})

	t.Run("only the claimant may withdraw", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)

		claim, err := f.service.SubmitClaim(authedCtx(id.UserID(uuid.New())), validInput(positionID))
		require.NoError(t, err)

		_, err = f.service.WithdrawClaim(authedCtx(id.UserID(uuid.New())), claim.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("verified claims cannot be withdrawn", func(t *testing.T) {
		f := newFixture(t)
		positionID := f.addPosition(t)
		claimant := id.UserID(uuid.New())

		claim, err := f.service.SubmitClaim(authedCtx(claimant), validInput(positionID))
		require.NoError(t, err)
		_, err = f.service.ResolveClaim(adminCtx(id.UserID(uuid.New())), claim.ID, models.DecisionVerified, "")
		require.NoError(t, err)

		_, err = f.service.WithdrawClaim(authedCtx(claimant), claim.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestWrapClaimErr(t *testing.T) {
	assert.True(t, dErrors.HasCode(wrapClaimErr(errors.New("connection refused")), dErrors.CodeUnavailable))
}
