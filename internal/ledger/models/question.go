package models

import (
	"strings"
	"time"

	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
)

// Question is a constituent's question to an office holder. Answered exactly
// once; upvotes rank unanswered questions for the holder's attention.
type Question struct {
	ID         id.QuestionID `json:"id"`
	ClaimID    id.ClaimID    `json:"claim_id"`
	AskedBy    id.UserID     `json:"asked_by"`
	Body       string        `json:"body"`
	Answer     string        `json:"answer,omitempty"`
	AnsweredAt *time.Time    `json:"answered_at,omitempty"`
	Upvotes    int           `json:"upvotes"`
	IsPinned   bool          `json:"is_pinned"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewQuestion validates a constituent question.
func NewQuestion(questionID id.QuestionID, claimID id.ClaimID, askedBy id.UserID, body string, now time.Time) (*Question, error) {
	if claimID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "claim id is required")
	}
	if askedBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "asker id is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "question body is required")
	}
	return &Question{
		ID:        questionID,
		ClaimID:   claimID,
		AskedBy:   askedBy,
		Body:      body,
		CreatedAt: now,
	}, nil
}

// IsAnswered reports whether the holder has responded.
func (q *Question) IsAnswered() bool {
	return q.AnsweredAt != nil
}

// ApplyAnswer records the holder's response. Answers are immutable once
// given; the store enforces the same rule at the write boundary.
func (q *Question) ApplyAnswer(answer string, now time.Time) error {
	if strings.TrimSpace(answer) == "" {
		return dErrors.New(dErrors.CodeValidation, "answer is required")
	}
	if q.IsAnswered() {
		return dErrors.New(dErrors.CodeInvalidState, "question has already been answered")
	}
	q.Answer = answer
	q.AnsweredAt = &now
	return nil
}
