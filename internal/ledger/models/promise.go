// Package models holds the accountability ledger aggregates: the promises,
// development projects, and constituent questions attached to a verified
// office holder claim.
package models

import (
	"strings"
	"time"

	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
)

// PromiseStatus is the lifecycle of a campaign promise.
type PromiseStatus string

const (
	PromisePending    PromiseStatus = "pending"
	PromiseInProgress PromiseStatus = "in_progress"
	PromiseCompleted  PromiseStatus = "completed"
	PromiseFailed     PromiseStatus = "failed"
)

func ParsePromiseStatus(raw string) (PromiseStatus, error) {
	switch PromiseStatus(raw) {
	case PromisePending, PromiseInProgress, PromiseCompleted, PromiseFailed:
		return PromiseStatus(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown promise status: "+raw)
	}
}

// Promise is a campaign commitment tracked against an office holder.
type Promise struct {
	ID              id.PromiseID  `json:"id"`
	ClaimID         id.ClaimID    `json:"claim_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	Category        string        `json:"category,omitempty"`
	Deadline        *time.Time    `json:"deadline,omitempty"`
	Status          PromiseStatus `json:"status"`
	ProgressPercent int           `json:"progress_percent"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
}

// NewPromise creates a pending promise at zero progress. The deadline is
// optional; a promise without one is open-ended.
func NewPromise(promiseID id.PromiseID, claimID id.ClaimID, title, description, category string, deadline *time.Time, now time.Time) (*Promise, error) {
	if claimID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "claim id is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "promise title is required")
	}
	if deadline != nil && deadline.Before(now) {
		return nil, dErrors.New(dErrors.CodeValidation, "promise deadline must be in the future")
	}
	return &Promise{
		ID:          promiseID,
		ClaimID:     claimID,
		Title:       title,
		Description: description,
		Category:    category,
		Deadline:    deadline,
		Status:      PromisePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ApplyUpdate moves the promise to a new status and progress. Progress is
// clamped to [0,100]; completion forces 100 and stamps CompletedAt exactly
// once.
func (p *Promise) ApplyUpdate(status PromiseStatus, progress int, now time.Time) error {
	if _, err := ParsePromiseStatus(string(status)); err != nil {
		return err
	}
	p.Status = status
	p.ProgressPercent = clampPercent(progress)
	if status == PromiseCompleted {
		p.ProgressPercent = 100
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
	}
	p.UpdatedAt = now
	return nil
}

// IsCompleted reports whether the promise was delivered.
func (p *Promise) IsCompleted() bool {
	return p.Status == PromiseCompleted
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
