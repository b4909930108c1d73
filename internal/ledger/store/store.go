// Package store persists the accountability ledger: promises, projects, and
// questions.
//
// Two write-boundary rules live here. Linking a project to an office holder
// succeeds only while the project is unowned (sentinel.ErrAlreadyOwned
// otherwise), and answering a question succeeds only while it is unanswered
// (sentinel.ErrInvalidState otherwise). Both are conditional updates so
// racing callers cannot double-link or double-answer.
package store

import (
	"context"
	"time"

	"mandate/internal/ledger/models"
	id "mandate/pkg/domain"
)

type PromiseStore interface {
	Create(ctx context.Context, promise *models.Promise) error
	FindByID(ctx context.Context, promiseID id.PromiseID) (*models.Promise, error)
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Promise, error)
	Update(ctx context.Context, promise *models.Promise) error
}

type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error)
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Project, error)

	// LinkIfUnowned attaches the project to a claim, failing with
	// sentinel.ErrAlreadyOwned when another claim got there first.
	LinkIfUnowned(ctx context.Context, projectID id.ProjectID, claimID id.ClaimID) error

	Update(ctx context.Context, project *models.Project) error
	AppendUpdate(ctx context.Context, update *models.ProjectUpdate) error
	ListUpdates(ctx context.Context, projectID id.ProjectID) ([]*models.ProjectUpdate, error)
}

type QuestionStore interface {
	Create(ctx context.Context, question *models.Question) error
	FindByID(ctx context.Context, questionID id.QuestionID) (*models.Question, error)

	// ListByClaim orders pinned questions first, then by upvotes descending,
	// then newest first.
	ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Question, error)

	// SetAnswerIfUnanswered records the answer, failing with
	// sentinel.ErrInvalidState when the question already has one.
	SetAnswerIfUnanswered(ctx context.Context, questionID id.QuestionID, answer string, answeredAt time.Time) error

	// IncrementUpvotes bumps the counter atomically and returns the new total.
	IncrementUpvotes(ctx context.Context, questionID id.QuestionID) (int, error)

	SetPinned(ctx context.Context, questionID id.QuestionID, pinned bool) error
}
