package models

import (
	"time"

	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
)

// VerificationStatus is the claim lifecycle state.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusRejected VerificationStatus = "rejected"
)

// ParseVerificationStatus validates a raw status at trust boundaries.
func ParseVerificationStatus(raw string) (VerificationStatus, error) {
	switch VerificationStatus(raw) {
	case StatusPending, StatusVerified, StatusRejected:
		return VerificationStatus(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown verification status: "+raw)
	}
}

// Decision is the administrative resolution of a pending claim.
type Decision string

const (
	DecisionVerified Decision = "verified"
	DecisionRejected Decision = "rejected"
)

func ParseDecision(raw string) (Decision, error) {
	switch Decision(raw) {
	case DecisionVerified, DecisionRejected:
		return Decision(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "decision must be verified or rejected")
	}
}

// Claim is the aggregate root for an office holder claim.
//
// Invariants:
//   - TermStart strictly precedes TermEnd
//   - Proof matches the verification method (tagged variant)
//   - VerificationStatus transitions: pending -> verified | rejected, nothing else
//   - At most one claim per position may hold IsActive=true; the store
//     enforces this at the write boundary (partial unique index / mutex scan)
//   - IsHistorical becomes true only when a verified claim is superseded by a
//     later verified claim on the same position
type Claim struct {
	ID                 id.ClaimID         `json:"id"`
	PositionID         id.PositionID      `json:"position_id"`
	ClaimantID         id.UserID          `json:"claimant_id"`
	TermStart          time.Time          `json:"term_start"`
	TermEnd            time.Time          `json:"term_end"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	VerificationMethod VerificationMethod `json:"verification_method"`
	Proof              Proof              `json:"proof"`
	IsActive           bool               `json:"is_active"`
	IsHistorical       bool               `json:"is_historical"`
	ClaimedAt          time.Time          `json:"claimed_at"`
	VerifiedBy         *id.UserID         `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
	RejectionNotes     string             `json:"rejection_notes,omitempty"`
}

// NewClaim constructs a pending, active claim, validating the term bounds and
// the proof variant. Validation happens before any write.
func NewClaim(
	claimID id.ClaimID,
	positionID id.PositionID,
	claimantID id.UserID,
	termStart, termEnd time.Time,
	method VerificationMethod,
	proof Proof,
	now time.Time,
) (*Claim, error) {
	if positionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "position id is required")
	}
	if claimantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "claimant id is required")
	}
	if termStart.IsZero() || termEnd.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "term start and term end are required")
	}
	if !termStart.Before(termEnd) {
		return nil, dErrors.New(dErrors.CodeValidation, "term start must precede term end")
	}
	if err := proof.Validate(method); err != nil {
		return nil, err
	}
	return &Claim{
		ID:                 claimID,
		PositionID:         positionID,
		ClaimantID:         claimantID,
		TermStart:          termStart,
		TermEnd:            termEnd,
		VerificationStatus: StatusPending,
		VerificationMethod: method,
		Proof:              proof,
		IsActive:           true,
		IsHistorical:       false,
		ClaimedAt:          now,
	}, nil
}

// IsSittingHolder reports whether the claim currently holds the office.
func (c *Claim) IsSittingHolder() bool {
	return c.IsActive && c.VerificationStatus == StatusVerified
}

// EverVerified reports whether the claim held office at any point — either
// sitting now or superseded into history. Rejected claims never held office.
func (c *Claim) EverVerified() bool {
	return c.VerificationStatus == StatusVerified
}

// CanResolve checks that the claim is still awaiting an administrative
// decision.
func (c *Claim) CanResolve() error {
	if c.VerificationStatus != StatusPending {
		return dErrors.New(dErrors.CodeInvalidState, "claim has already been resolved")
	}
	if !c.IsActive {
		return dErrors.New(dErrors.CodeInvalidState, "claim is no longer active")
	}
	return nil
}

// ApplyVerification marks the claim verified. Call CanResolve first.
func (c *Claim) ApplyVerification(verifiedBy id.UserID, now time.Time) {
	c.VerificationStatus = StatusVerified
	c.VerifiedBy = &verifiedBy
	c.VerifiedAt = &now
}

// ApplyRejection marks the claim rejected and inactive. A rejected claim
// never held office, so it does not become historical.
func (c *Claim) ApplyRejection(rejectedBy id.UserID, notes string, now time.Time) {
	c.VerificationStatus = StatusRejected
	c.IsActive = false
	c.VerifiedBy = &rejectedBy
	c.VerifiedAt = &now
	c.RejectionNotes = notes
}

// ApplySupersession retires a previously verified claim when a later claim on
// the same position is verified.
func (c *Claim) ApplySupersession() {
	c.IsActive = false
	c.IsHistorical = true
}

// CanWithdraw checks that the claimant may still withdraw the claim.
func (c *Claim) CanWithdraw() error {
	if c.VerificationStatus != StatusPending || !c.IsActive {
		return dErrors.New(dErrors.CodeInvalidState, "only active pending claims can be withdrawn")
	}
	return nil
}

// ApplyWithdrawal deactivates a pending claim at the claimant's request.
func (c *Claim) ApplyWithdrawal() {
	c.IsActive = false
}
