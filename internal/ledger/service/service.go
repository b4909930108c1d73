// Package service implements the accountability ledger operations: tracking
// promises, recording development projects, and the constituent Q&A loop.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mandate/internal/activity"
	claimmodels "mandate/internal/claims/models"
	"mandate/internal/constituency"
	ledgermetrics "mandate/internal/ledger/metrics"
	"mandate/internal/ledger/models"
	"mandate/internal/ledger/store"
	"mandate/internal/registry"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/sentinel"
	"mandate/pkg/platform/tx"
	"mandate/pkg/requestcontext"
)

// ClaimReader is the slice of the claim manager the ledger needs. Satisfied
// by the claims store.
type ClaimReader interface {
	FindByID(ctx context.Context, claimID id.ClaimID) (*claimmodels.Claim, error)
}

// PositionReader resolves the position a claim is held against, for
// constituency checks. Satisfied by registry.Store.
type PositionReader interface {
	FindByID(ctx context.Context, positionID id.PositionID) (*registry.Position, error)
}

// Service guards every ledger write behind the office holder identity:
// promises, project state, answers, and pins belong to the sitting verified
// holder of the claim; questions belong to that holder's constituents.
type Service struct {
	promises  store.PromiseStore
	projects  store.ProjectStore
	questions store.QuestionStore
	claims    ClaimReader
	positions PositionReader
	locations constituency.LocationReader
	emitter   *activity.Emitter
	metrics   *ledgermetrics.Metrics
	tx        tx.Runner
	logger    *slog.Logger
}

type Option func(*Service)

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) { s.tx = runner }
}

func New(
	promises store.PromiseStore,
	projects store.ProjectStore,
	questions store.QuestionStore,
	claims ClaimReader,
	positions PositionReader,
	locations constituency.LocationReader,
	emitter *activity.Emitter,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		promises:  promises,
		projects:  projects,
		questions: questions,
		claims:    claims,
		positions: positions,
		locations: locations,
		emitter:   emitter,
		logger:    logger,
		tx:        tx.PassthroughRunner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// requireHolder loads the claim and checks that the caller is its sitting
// verified holder.
func (s *Service) requireHolder(ctx context.Context, claimID id.ClaimID) (*claimmodels.Claim, error) {
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	claim, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "claim lookup failed")
	}
	if !claim.IsSittingHolder() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "claim is not a sitting verified office holder")
	}
	if claim.ClaimantID != actor {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the office holder may modify this ledger")
	}
	return claim, nil
}

// AddPromiseInput describes a new tracked promise.
type AddPromiseInput struct {
	ClaimID     id.ClaimID
	Title       string
	Description string
	Category    string
	Deadline    *time.Time
}

// AddPromise puts a campaign promise on the holder's ledger.
func (s *Service) AddPromise(ctx context.Context, in AddPromiseInput) (*models.Promise, error) {
	claim, err := s.requireHolder(ctx, in.ClaimID)
	if err != nil {
		return nil, err
	}

	promise, err := models.NewPromise(
		id.PromiseID(uuid.New()),
		claim.ID,
		in.Title,
		in.Description,
		in.Category,
		in.Deadline,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}
	if err := s.promises.Create(ctx, promise); err != nil {
		return nil, wrapLedgerErr(err)
	}

	s.metrics.RecordPromiseTracked()
	s.emitter.Emit(ctx, activity.Entry{
		ID:      uuid.New(),
		ActorID: claim.ClaimantID,
		ClaimID: &claim.ID,
		Type:    activity.TypePromiseTracked,
		Title:   "Promise tracked: " + promise.Title,
		RefType: "promise",
		RefID:   promise.ID.String(),
	})
	return promise, nil
}

// UpdatePromise moves a promise through its lifecycle. The note travels into
// the activity stream so constituents see why the status changed, not just
// that it did.
func (s *Service) UpdatePromise(ctx context.Context, promiseID id.PromiseID, status models.PromiseStatus, progress int, note string) (*models.Promise, error) {
	promise, err := s.promises.FindByID(ctx, promiseID)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}
	claim, err := s.requireHolder(ctx, promise.ClaimID)
	if err != nil {
		return nil, err
	}

	if err := promise.ApplyUpdate(status, progress, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.promises.Update(ctx, promise); err != nil {
		return nil, wrapLedgerErr(err)
	}

	description := note
	if description == "" {
		description = string(promise.Status)
	}
	s.metrics.RecordPromiseUpdate(string(promise.Status))
	s.emitter.Emit(ctx, activity.Entry{
		ID:          uuid.New(),
		ActorID:     claim.ClaimantID,
		ClaimID:     &claim.ID,
		Type:        activity.TypePromiseUpdated,
		Title:       "Promise updated: " + promise.Title,
		Description: description,
		RefType:     "promise",
		RefID:       promise.ID.String(),
	})
	return promise, nil
}

// ListPromises returns a holder's tracked promises, newest first. Public
// read.
func (s *Service) ListPromises(ctx context.Context, claimID id.ClaimID) ([]*models.Promise, error) {
	promises, err := s.promises.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}
	return promises, nil
}

// AddProjectInput describes a new development project. ClaimID nil records
// the project unowned.
type AddProjectInput struct {
	ClaimID     *id.ClaimID
	Title       string
	Description string
	County      string
}

// AddProject records a development project. Any member may record an unowned
// project; recording directly onto a ledger requires being its holder.
func (s *Service) AddProject(ctx context.Context, in AddProjectInput) (*models.Project, error) {
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	var owner *id.ClaimID
	if in.ClaimID != nil {
		claim, err := s.requireHolder(ctx, *in.ClaimID)
		if err != nil {
			return nil, err
		}
		owner = &claim.ID
	}

	project, err := models.NewProject(
		id.ProjectID(uuid.New()),
		owner,
		actor,
		in.Title,
		in.Description,
		in.County,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, wrapLedgerErr(err)
	}

	s.metrics.RecordProject()
	s.emitter.Emit(ctx, activity.Entry{
		ID:      uuid.New(),
		ActorID: actor,
		ClaimID: owner,
		Type:    activity.TypeProjectAdded,
		Title:   "Project recorded: " + project.Title,
		RefType: "project",
		RefID:   project.ID.String(),
	})
	return project, nil
}

// LinkExistingProject takes an unowned project onto the holder's ledger.
// Ownership is first-wins and permanent.
func (s *Service) LinkExistingProject(ctx context.Context, projectID id.ProjectID, claimID id.ClaimID) (*models.Project, error) {
	claim, err := s.requireHolder(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if err := s.projects.LinkIfUnowned(ctx, projectID, claim.ID); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		case errors.Is(err, sentinel.ErrAlreadyOwned):
			return nil, dErrors.New(dErrors.CodeConflict, "project is already on another ledger")
		default:
			return nil, wrapLedgerErr(err)
		}
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}

	s.emitter.Emit(ctx, activity.Entry{
		ID:      uuid.New(),
		ActorID: claim.ClaimantID,
		ClaimID: &claim.ID,
		Type:    activity.TypeProjectLinked,
		Title:   "Project linked: " + project.Title,
		RefType: "project",
		RefID:   project.ID.String(),
	})
	return project, nil
}

// RecordProjectUpdateInput is one progress report.
type RecordProjectUpdateInput struct {
	ProjectID       id.ProjectID
	Type            models.UpdateType
	Notes           string
	ProgressPercent *int
}

// RecordProjectUpdate appends a progress report and folds it into the
// project state in one transaction. Only the owning holder reports.
func (s *Service) RecordProjectUpdate(ctx context.Context, in RecordProjectUpdateInput) (*models.ProjectUpdate, error) {
	project, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}
	if !project.IsOwned() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "project is not on any ledger yet")
	}
	claim, err := s.requireHolder(ctx, *project.ClaimID)
	if err != nil {
		return nil, err
	}

	update, err := models.NewProjectUpdate(
		uuid.New(),
		project.ID,
		claim.ClaimantID,
		in.Type,
		in.Notes,
		in.ProgressPercent,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	// Fold first: ApplyUpdate stamps the resulting status onto the report,
	// which must be in place before the report row is written.
	project.ApplyUpdate(update, update.CreatedAt)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.projects.AppendUpdate(txCtx, update); err != nil {
			return wrapLedgerErr(err)
		}
		if err := s.projects.Update(txCtx, project); err != nil {
			return wrapLedgerErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordProjectUpdate(string(update.Type))
	s.emitter.Emit(ctx, activity.Entry{
		ID:          uuid.New(),
		ActorID:     claim.ClaimantID,
		ClaimID:     &claim.ID,
		Type:        activity.TypeProjectUpdated,
		Title:       "Project update: " + project.Title,
		Description: string(update.Type),
		RefType:     "project",
		RefID:       project.ID.String(),
	})
	return update, nil
}

// ListProjects returns the projects on a holder's ledger. Public read.
func (s *Service) ListProjects(ctx context.Context, claimID id.ClaimID) ([]*models.Project, error) {
	projects, err := s.projects.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}
	return projects, nil
}

// ListProjectUpdates returns a project's progress reports, newest first.
func (s *Service) ListProjectUpdates(ctx context.Context, projectID id.ProjectID) ([]*models.ProjectUpdate, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, wrapLedgerErr(err)
	}
	updates, err := s.projects.ListUpdates(ctx, projectID)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}
	return updates, nil
}

// AskQuestion submits a constituent question to a sitting office holder. The
// asker must live in the position's jurisdiction.
func (s *Service) AskQuestion(ctx context.Context, claimID id.ClaimID, body string) (*models.Question, error) {
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	claim, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "claim lookup failed")
	}
	if !claim.IsSittingHolder() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "questions go to sitting verified office holders")
	}

	position, err := s.positions.FindByID(ctx, claim.PositionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "position lookup failed")
	}
	location, err := s.locations.LocationOf(ctx, actor)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "location lookup failed")
	}
	if !constituency.IsConstituent(location, position) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only constituents may question this office holder")
	}

	question, err := models.NewQuestion(
		id.QuestionID(uuid.New()),
		claim.ID,
		actor,
		body,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, wrapLedgerErr(err)
	}

	s.metrics.RecordQuestionAsked()
	s.emitter.Emit(ctx, activity.Entry{
		ID:      uuid.New(),
		ActorID: actor,
		ClaimID: &claim.ID,
		Type:    activity.TypeQuestionAsked,
		Title:   "Question asked",
		RefType: "question",
		RefID:   question.ID.String(),
	})
	return question, nil
}

// AnswerQuestion records the holder's answer. First answer wins; answers are
// immutable.
func (s *Service) AnswerQuestion(ctx context.Context, questionID id.QuestionID, answer string) (*models.Question, error) {
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}
	claim, err := s.requireHolder(ctx, question.ClaimID)
	if err != nil {
		return nil, err
	}
	if err := question.ApplyAnswer(answer, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	if err := s.questions.SetAnswerIfUnanswered(ctx, question.ID, question.Answer, *question.AnsweredAt); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "question not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeInvalidState, "question has already been answered")
		default:
			return nil, wrapLedgerErr(err)
		}
	}

	s.metrics.RecordQuestionAnswered()
	s.emitter.Emit(ctx, activity.Entry{
		ID:      uuid.New(),
		ActorID: claim.ClaimantID,
		ClaimID: &claim.ID,
		Type:    activity.TypeQuestionAnswered,
		Title:   "Question answered",
		RefType: "question",
		RefID:   question.ID.String(),
	})
	return question, nil
}

// UpvoteQuestion bumps a question's upvote count and returns the new total.
func (s *Service) UpvoteQuestion(ctx context.Context, questionID id.QuestionID) (int, error) {
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	upvotes, err := s.questions.IncrementUpvotes(ctx, questionID)
	if err != nil {
		return 0, wrapLedgerErr(err)
	}
	s.metrics.RecordUpvote()
	return upvotes, nil
}

// PinQuestion lets the holder pin or unpin a question on their public page.
func (s *Service) PinQuestion(ctx context.Context, questionID id.QuestionID, pinned bool) (*models.Question, error) {
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}
	if _, err := s.requireHolder(ctx, question.ClaimID); err != nil {
		return nil, err
	}
	if err := s.questions.SetPinned(ctx, question.ID, pinned); err != nil {
		return nil, wrapLedgerErr(err)
	}
	question.IsPinned = pinned
	return question, nil
}

// ListQuestions returns a holder's questions, pinned first then by upvotes.
// Public read.
func (s *Service) ListQuestions(ctx context.Context, claimID id.ClaimID) ([]*models.Question, error) {
	questions, err := s.questions.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, wrapLedgerErr(err)
	}
	return questions, nil
}

func wrapLedgerErr(err error) error {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "ledger record not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger store operation failed")
	}
}
