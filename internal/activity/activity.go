// Package activity is the append-only activity log: an immutable record of
// every engine mutation, consumed as a read model by the timeline aggregator
// and published to Kafka for downstream consumers. Entries are never updated
// or deleted.
package activity

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "mandate/pkg/domain"
)

// Entry types. The prefix up to the first underscore is the entry's category
// for timeline filtering ("promise_updated" matches filter "promise").
const (
	TypeClaimSubmitted   = "claim_submitted"
	TypeClaimVerified    = "claim_verified"
	TypeClaimRejected    = "claim_rejected"
	TypeClaimSuperseded  = "claim_superseded"
	TypeClaimWithdrawn   = "claim_withdrawn"
	TypePromiseTracked   = "promise_tracked"
	TypePromiseUpdated   = "promise_updated"
	TypeProjectAdded     = "project_added"
	TypeProjectLinked    = "project_linked"
	TypeProjectUpdated   = "project_updated"
	TypeQuestionAsked    = "question_asked"
	TypeQuestionAnswered = "question_answered"
)

// Entry is one immutable activity record.
type Entry struct {
	ID          uuid.UUID   `json:"id"`
	ActorID     id.UserID   `json:"actor_id"`
	ClaimID     *id.ClaimID `json:"claim_id,omitempty"` // office holder scope, when applicable
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	RefType     string      `json:"ref_type"` // entity that produced the entry
	RefID       string      `json:"ref_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// Category derives the filter tag from the entry type prefix.
func (e Entry) Category() string {
	if idx := strings.IndexByte(e.Type, '_'); idx > 0 {
		return e.Type[:idx]
	}
	return e.Type
}
