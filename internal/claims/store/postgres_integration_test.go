//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"mandate/internal/claims/models"
	"mandate/internal/registry"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
	"mandate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg        *containers.PostgresContainer
	store     *Postgres
	positions *registry.PostgresStore
	ctx       context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.positions = registry.NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))
}

func (s *PostgresStoreSuite) newPosition() id.PositionID {
	position := &registry.Position{
		ID:               id.PositionID(uuid.New()),
		PositionCode:     "KE:governor:" + uuid.NewString(),
		CountryCode:      "KE",
		GovernanceLevel:  registry.LevelCounty,
		JurisdictionName: "Nairobi",
		Title:            "Governor",
		TermYears:        5,
		IsElected:        true,
		CreatedAt:        time.Now().UTC(),
	}
	s.Require().NoError(s.positions.Create(s.ctx, position))
	return position.ID
}

func (s *PostgresStoreSuite) newClaim(positionID id.PositionID) *models.Claim {
	claim, err := models.NewClaim(
		id.ClaimID(uuid.New()),
		positionID,
		id.UserID(uuid.New()),
		time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC),
		models.MethodOfficialLink,
		models.LinkProof("https://nairobi.go.ke/governor"),
		time.Now().UTC(),
	)
	s.Require().NoError(err)
	return claim
}

func (s *PostgresStoreSuite) TestCreateRoundTrip() {
	positionID := s.newPosition()
	claim := s.newClaim(positionID)
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, claim))

	found, err := s.store.FindByID(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(claim.ID, found.ID)
	s.Equal(claim.PositionID, found.PositionID)
	s.Equal(claim.ClaimantID, found.ClaimantID)
	s.Equal(models.StatusPending, found.VerificationStatus)
	s.Equal(models.ProofKindLink, found.Proof.Kind)
	s.Equal("https://nairobi.go.ke/governor", found.Proof.URL)
	s.True(found.IsActive)
	s.Nil(found.VerifiedBy)
	s.Nil(found.VerifiedAt)
}

func (s *PostgresStoreSuite) TestPartialIndexRejectsSecondActiveClaim() {
	positionID := s.newPosition()
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, s.newClaim(positionID)))

	err := s.store.CreateIfPositionVacant(s.ctx, s.newClaim(positionID))
	s.ErrorIs(err, sentinel.ErrAlreadyClaimed)
}

func (s *PostgresStoreSuite) TestInactiveClaimFreesPosition() {
	positionID := s.newPosition()
	first := s.newClaim(positionID)
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, first))

	first.ApplyWithdrawal()
	s.Require().NoError(s.store.Update(s.ctx, first))

	s.NoError(s.store.CreateIfPositionVacant(s.ctx, s.newClaim(positionID)))
}

func (s *PostgresStoreSuite) TestUpdatePersistsVerification() {
	positionID := s.newPosition()
	claim := s.newClaim(positionID)
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, claim))

	admin := id.UserID(uuid.New())
	verifiedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	claim.ApplyVerification(admin, verifiedAt)
	s.Require().NoError(s.store.Update(s.ctx, claim))

	found, err := s.store.FindByID(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusVerified, found.VerificationStatus)
	s.Require().NotNil(found.VerifiedBy)
	s.Equal(admin, *found.VerifiedBy)
	s.Require().NotNil(found.VerifiedAt)
	s.True(found.VerifiedAt.Equal(verifiedAt))
}

func (s *PostgresStoreSuite) TestUpdateMissingClaim() {
	positionID := s.newPosition()
	s.ErrorIs(s.store.Update(s.ctx, s.newClaim(positionID)), sentinel.ErrNotFound)
}

// TestConcurrentClaimsSingleWinner drives many simultaneous inserts at one
// position; the partial unique index must let exactly one through.
func (s *PostgresStoreSuite) TestConcurrentClaimsSingleWinner() {
	const racers = 50
	positionID := s.newPosition()

	claims := make([]*models.Claim, racers)
	for i := range claims {
		claims[i] = s.newClaim(positionID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for _, claim := range claims {
		wg.Add(1)
		go func(c *models.Claim) {
			defer wg.Done()
			errs <- s.store.CreateIfPositionVacant(s.ctx, c)
		}(claim)
	}
	wg.Wait()
	close(errs)

	var successes, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			s.ErrorIs(err, sentinel.ErrAlreadyClaimed)
			conflicts++
		}
	}
	s.Equal(1, successes)
	s.Equal(racers-1, conflicts)

	active, err := s.store.ActiveByPosition(s.ctx, positionID)
	s.Require().NoError(err)
	s.True(active.IsActive)
}
