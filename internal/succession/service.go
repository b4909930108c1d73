// Package succession builds the historical record of an office: everyone who
// ever verifiably held a position, newest term first, scored by how they
// performed while in office.
package succession

import (
	"context"
	"errors"
	"log/slog"

	claimmodels "mandate/internal/claims/models"
	ledgermodels "mandate/internal/ledger/models"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/sentinel"
)

// ClaimsByPosition is the slice of the claim store this package reads.
type ClaimsByPosition interface {
	ListByPosition(ctx context.Context, positionID id.PositionID) ([]*claimmodels.Claim, error)
}

// PromiseReader lists a holder's tracked promises.
type PromiseReader interface {
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*ledgermodels.Promise, error)
}

// QuestionReader lists a holder's constituent questions.
type QuestionReader interface {
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*ledgermodels.Question, error)
}

// HolderRecord is one row of the succession history. Rates are nil, not
// zero, when the holder had nothing to be measured on — an empty ledger is
// "no data", not "0% delivery".
type HolderRecord struct {
	Claim                 *claimmodels.Claim `json:"claim"`
	IsCurrent             bool               `json:"is_current"`
	PromiseCompletionRate *float64           `json:"promise_completion_rate,omitempty"`
	QuestionResponseRate  *float64           `json:"question_response_rate,omitempty"`
}

type Service struct {
	claims    ClaimsByPosition
	promises  PromiseReader
	questions QuestionReader
	logger    *slog.Logger
}

func New(claims ClaimsByPosition, promises PromiseReader, questions QuestionReader, logger *slog.Logger) *Service {
	return &Service{claims: claims, promises: promises, questions: questions, logger: logger}
}

// ListHolders returns every claim that ever held the office — the sitting
// holder and the superseded ones — most recent term first. Pending and
// rejected claims never held office and are excluded.
func (s *Service) ListHolders(ctx context.Context, positionID id.PositionID) ([]HolderRecord, error) {
	claims, err := s.claims.ListByPosition(ctx, positionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "position not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "claim lookup failed")
	}

	records := make([]HolderRecord, 0, len(claims))
	for _, claim := range claims {
		if !claim.EverVerified() {
			continue
		}
		record := HolderRecord{
			Claim:     claim,
			IsCurrent: claim.IsSittingHolder(),
		}
		record.PromiseCompletionRate, err = s.promiseRate(ctx, claim.ID)
		if err != nil {
			return nil, err
		}
		record.QuestionResponseRate, err = s.questionRate(ctx, claim.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Service) promiseRate(ctx context.Context, claimID id.ClaimID) (*float64, error) {
	promises, err := s.promises.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "promise lookup failed")
	}
	if len(promises) == 0 {
		return nil, nil
	}
	var completed int
	for _, promise := range promises {
		if promise.IsCompleted() {
			completed++
		}
	}
	rate := float64(completed) / float64(len(promises))
	return &rate, nil
}

func (s *Service) questionRate(ctx context.Context, claimID id.ClaimID) (*float64, error) {
	questions, err := s.questions.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "question lookup failed")
	}
	if len(questions) == 0 {
		return nil, nil
	}
	var answered int
	for _, question := range questions {
		if question.IsAnswered() {
			answered++
		}
	}
	rate := float64(answered) / float64(len(questions))
	return &rate, nil
}
