package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mandate/internal/activity"
	"mandate/internal/blob"
	claimmetrics "mandate/internal/claims/metrics"
	"mandate/internal/claims/models"
	"mandate/internal/claims/store"
	"mandate/internal/registry"
	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
	"mandate/pkg/platform/sentinel"
	"mandate/pkg/platform/tx"
	"mandate/pkg/requestcontext"
)

// PositionReader is the slice of the position registry the claim manager
// needs. Satisfied by registry.Store.
type PositionReader interface {
	FindByID(ctx context.Context, positionID id.PositionID) (*registry.Position, error)
}

// MembershipChecker is the eligibility collaborator: only registered members
// of the civic community may claim positions.
type MembershipChecker interface {
	IsRegisteredMember(ctx context.Context, userID id.UserID) (bool, error)
}

// AllowAllMembers accepts every identity. Development wiring; production
// plugs the community service in here.
type AllowAllMembers struct{}

func (AllowAllMembers) IsRegisteredMember(context.Context, id.UserID) (bool, error) {
	return true, nil
}

// Service owns the claim lifecycle: submission, uniqueness enforcement,
// verification bookkeeping, and succession on resolution.
type Service struct {
	claims     store.Store
	positions  PositionReader
	membership MembershipChecker
	blobs      blob.Store
	emitter    *activity.Emitter
	metrics    *claimmetrics.Metrics
	tx         tx.Runner
	logger     *slog.Logger
}

type Option func(*Service)

func WithMetrics(m *claimmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithBlobStore(blobs blob.Store) Option {
	return func(s *Service) { s.blobs = blobs }
}

func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) { s.tx = runner }
}

func New(
	claims store.Store,
	positions PositionReader,
	membership MembershipChecker,
	emitter *activity.Emitter,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		claims:     claims,
		positions:  positions,
		membership: membership,
		emitter:    emitter,
		logger:     logger,
		tx:         tx.PassthroughRunner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitClaimInput carries a citizen's claim to a position.
type SubmitClaimInput struct {
	PositionID id.PositionID
	TermStart  time.Time
	TermEnd    time.Time
	Method     models.VerificationMethod
	Proof      models.Proof
	// ProofDocument, when present with the document_upload method, is stored
	// through the blob collaborator and its URL becomes the proof payload.
	ProofDocument []byte
}

// SubmitClaim validates and persists a new pending claim.
//
// Preconditions run in order: term bounds, claimant eligibility, position
// existence, position vacancy. The vacancy pre-check is a fast-path courtesy
// only — the store's conditional insert is the authoritative arbiter when two
// submissions race.
func (s *Service) SubmitClaim(ctx context.Context, in SubmitClaimInput) (*models.Claim, error) {
	claimant := requestcontext.ActorID(ctx)
	if claimant.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required to claim a position")
	}

	if in.TermStart.IsZero() || in.TermEnd.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "term start and term end are required")
	}
	if !in.TermStart.Before(in.TermEnd) {
		return nil, dErrors.New(dErrors.CodeValidation, "term start must precede term end")
	}

	member, err := s.membership.IsRegisteredMember(ctx, claimant)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "membership check failed")
	}
	if !member {
		return nil, dErrors.New(dErrors.CodeValidation, "claimant is not a registered community member")
	}

	if _, err := s.positions.FindByID(ctx, in.PositionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "position does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "position lookup failed")
	}

	proof, err := s.resolveProof(ctx, claimant, in)
	if err != nil {
		return nil, err
	}

	claim, err := models.NewClaim(
		id.ClaimID(uuid.New()),
		in.PositionID,
		claimant,
		in.TermStart,
		in.TermEnd,
		in.Method,
		proof,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	// Fast path: tell the caller about an obvious conflict before writing.
	if _, err := s.claims.ActiveByPosition(ctx, in.PositionID); err == nil {
		s.metrics.RecordConflict()
		return nil, dErrors.New(dErrors.CodeConflict, "position already has an active claim")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "claim lookup failed")
	}

	if err := s.claims.CreateIfPositionVacant(ctx, claim); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyClaimed) {
			// Lost the race after the pre-check; the store's answer is final.
			s.metrics.RecordConflict()
			return nil, dErrors.New(dErrors.CodeConflict, "position already has an active claim")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "claim could not be persisted")
	}

	s.metrics.RecordSubmitted()
	s.emitter.Emit(ctx, activity.Entry{
		ID:      uuid.New(),
		ActorID: claimant,
		ClaimID: &claim.ID,
		Type:    activity.TypeClaimSubmitted,
		Title:   "Position claim submitted",
		RefType: "claim",
		RefID:   claim.ID.String(),
	})
	return claim, nil
}

func (s *Service) resolveProof(ctx context.Context, claimant id.UserID, in SubmitClaimInput) (models.Proof, error) {
	if in.Method == models.MethodDocumentUpload && len(in.ProofDocument) > 0 && in.Proof.URL == "" {
		if s.blobs == nil {
			return models.Proof{}, dErrors.New(dErrors.CodeValidation, "document upload is not available")
		}
		key := fmt.Sprintf("claims/%s/%s", claimant.String(), uuid.NewString())
		url, err := s.blobs.Store(ctx, key, in.ProofDocument)
		if err != nil {
			return models.Proof{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "proof document could not be stored")
		}
		return models.DocumentProof(url), nil
	}
	return in.Proof, nil
}

// ResolveClaim applies an administrative verification decision.
//
// On verified: any other active pending claim on the position is rejected,
// and a previously verified sitting claim is retired into history
// (succession). On rejected: the claim deactivates without ever having held
// office.
func (s *Service) ResolveClaim(ctx context.Context, claimID id.ClaimID, decision models.Decision, notes string) (*models.Claim, error) {
	admin := requestcontext.ActorID(ctx)
	if admin.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !requestcontext.IsAdmin(ctx) {
		return nil, dErrors.New(dErrors.CodeForbidden, "claim resolution is an administrative action")
	}

	var (
		resolved   *models.Claim
		superseded []*models.Claim
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		claim, err := s.claims.FindByID(txCtx, claimID)
		if err != nil {
			return wrapClaimErr(err)
		}
		if err := claim.CanResolve(); err != nil {
			return err
		}

		now := requestcontext.Now(txCtx)
		switch decision {
		case models.DecisionVerified:
			others, err := s.claims.ListByPosition(txCtx, claim.PositionID)
			if err != nil {
				return wrapClaimErr(err)
			}
			for _, other := range others {
				if other.ID == claim.ID || !other.IsActive {
					continue
				}
				switch other.VerificationStatus {
				case models.StatusVerified:
					other.ApplySupersession()
					superseded = append(superseded, other)
				case models.StatusPending:
					other.ApplyRejection(admin, "superseded by a verified claim", now)
				}
				if err := s.claims.Update(txCtx, other); err != nil {
					return wrapClaimErr(err)
				}
			}
			claim.ApplyVerification(admin, now)
		case models.DecisionRejected:
			claim.ApplyRejection(admin, notes, now)
		default:
			return dErrors.New(dErrors.CodeInvalidInput, "decision must be verified or rejected")
		}

		if err := s.claims.Update(txCtx, claim); err != nil {
			return wrapClaimErr(err)
		}
		resolved = claim
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordResolved(string(decision))
	s.emitResolution(ctx, resolved, superseded, decision)
	return resolved, nil
}

func (s *Service) emitResolution(ctx context.Context, claim *models.Claim, superseded []*models.Claim, decision models.Decision) {
	entryType := activity.TypeClaimVerified
	title := "Position claim verified"
	if decision == models.DecisionRejected {
		entryType = activity.TypeClaimRejected
		title = "Position claim rejected"
	}
	s.emitter.Emit(ctx, activity.Entry{
		ID:      uuid.New(),
		ActorID: claim.ClaimantID,
		ClaimID: &claim.ID,
		Type:    entryType,
		Title:   title,
		RefType: "claim",
		RefID:   claim.ID.String(),
	})
	for _, prior := range superseded {
		s.emitter.Emit(ctx, activity.Entry{
			ID:      uuid.New(),
			ActorID: prior.ClaimantID,
			ClaimID: &prior.ID,
			Type:    activity.TypeClaimSuperseded,
			Title:   "Term ended: succeeded by a newly verified office holder",
			RefType: "claim",
			RefID:   prior.ID.String(),
		})
	}
}

// WithdrawClaim deactivates the caller's own pending claim.
func (s *Service) WithdrawClaim(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	claim, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		return nil, wrapClaimErr(err)
	}
	if claim.ClaimantID != actor {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the claimant may withdraw a claim")
	}
	if err := claim.CanWithdraw(); err != nil {
		return nil, err
	}
	claim.ApplyWithdrawal()
	if err := s.claims.Update(ctx, claim); err != nil {
		return nil, wrapClaimErr(err)
	}

	s.emitter.Emit(ctx, activity.Entry{
		ID:      uuid.New(),
		ActorID: actor,
		ClaimID: &claim.ID,
		Type:    activity.TypeClaimWithdrawn,
		Title:   "Position claim withdrawn",
		RefType: "claim",
		RefID:   claim.ID.String(),
	})
	return claim, nil
}

// GetClaim returns a single claim. Public read.
func (s *Service) GetClaim(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	claim, err := s.claims.FindByID(ctx, claimID)
	if err != nil {
		return nil, wrapClaimErr(err)
	}
	return claim, nil
}

// ListByPosition returns every claim ever made on a position, newest term
// first.
func (s *Service) ListByPosition(ctx context.Context, positionID id.PositionID) ([]*models.Claim, error) {
	claims, err := s.claims.ListByPosition(ctx, positionID)
	if err != nil {
		return nil, wrapClaimErr(err)
	}
	return claims, nil
}

func wrapClaimErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "claim not found")
	case errors.Is(err, sentinel.ErrAlreadyClaimed):
		return dErrors.New(dErrors.CodeConflict, "position already has an active claim")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "claim store operation failed")
	}
}
