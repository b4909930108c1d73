package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"mandate/internal/claims/models"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newClaim(positionID id.PositionID, termStart time.Time) *models.Claim {
	claim, err := models.NewClaim(
		id.ClaimID(uuid.New()),
		positionID,
		id.UserID(uuid.New()),
		termStart,
		termStart.AddDate(5, 0, 0),
		models.MethodOfficialLink,
		models.LinkProof("https://parliament.go.ke/members/1"),
		time.Now().UTC(),
	)
	s.Require().NoError(err)
	return claim
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	claim := s.newClaim(id.PositionID(uuid.New()), time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, claim))

	found, err := s.store.FindByID(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.Equal(claim.ID, found.ID)
	s.Equal(models.StatusPending, found.VerificationStatus)
}

func (s *InMemoryStoreSuite) TestFindMissingReturnsNotFound() {
	_, err := s.store.FindByID(s.ctx, id.ClaimID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSecondActiveClaimRejected() {
	positionID := id.PositionID(uuid.New())
	first := s.newClaim(positionID, time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, first))

	second := s.newClaim(positionID, time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC))
	err := s.store.CreateIfPositionVacant(s.ctx, second)
	s.ErrorIs(err, sentinel.ErrAlreadyClaimed)

	_, err = s.store.FindByID(s.ctx, second.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "rejected claim must not be stored")
}

func (s *InMemoryStoreSuite) TestInactiveClaimFreesPosition() {
	positionID := id.PositionID(uuid.New())
	first := s.newClaim(positionID, time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, first))

	first.ApplyWithdrawal()
	s.Require().NoError(s.store.Update(s.ctx, first))

	second := s.newClaim(positionID, time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC))
	s.NoError(s.store.CreateIfPositionVacant(s.ctx, second))
}

func (s *InMemoryStoreSuite) TestActiveByPosition() {
	positionID := id.PositionID(uuid.New())
	_, err := s.store.ActiveByPosition(s.ctx, positionID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	claim := s.newClaim(positionID, time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, claim))

	active, err := s.store.ActiveByPosition(s.ctx, positionID)
	s.Require().NoError(err)
	s.Equal(claim.ID, active.ID)
}

func (s *InMemoryStoreSuite) TestListByPositionNewestTermFirst() {
	positionID := id.PositionID(uuid.New())
	older := s.newClaim(positionID, time.Date(2017, 9, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, older))
	older.ApplyVerification(id.UserID(uuid.New()), time.Now().UTC())
	older.ApplySupersession()
	s.Require().NoError(s.store.Update(s.ctx, older))

	newer := s.newClaim(positionID, time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, newer))

	claims, err := s.store.ListByPosition(s.ctx, positionID)
	s.Require().NoError(err)
	s.Require().Len(claims, 2)
	s.Equal(newer.ID, claims[0].ID)
	s.Equal(older.ID, claims[1].ID)
}

func (s *InMemoryStoreSuite) TestUpdateMissingReturnsNotFound() {
	claim := s.newClaim(id.PositionID(uuid.New()), time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC))
	s.ErrorIs(s.store.Update(s.ctx, claim), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestStoreReturnsCopies() {
	claim := s.newClaim(id.PositionID(uuid.New()), time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(s.store.CreateIfPositionVacant(s.ctx, claim))

	found, err := s.store.FindByID(s.ctx, claim.ID)
	s.Require().NoError(err)
	found.IsActive = false

	again, err := s.store.FindByID(s.ctx, claim.ID)
	s.Require().NoError(err)
	s.True(again.IsActive, "mutating a returned claim must not affect the store")
}

func (s *InMemoryStoreSuite) TestConcurrentCreatesOnePosition() {
	const attempts = 50
	positionID := id.PositionID(uuid.New())

	claims := make([]*models.Claim, attempts)
	for i := range claims {
		claims[i] = s.newClaim(positionID, time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC))
	}

	var wg sync.WaitGroup
	errs := make(chan error, attempts)
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
	s.Equal(attempts-1, conflicts)
}
