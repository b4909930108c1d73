package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "mandate/pkg/domain"
	dErrors "mandate/pkg/domain-errors"
)

// ProjectStatus is the lifecycle of a development project. It is derived
// from the updates reported against the project, never set directly.
type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectStalled    ProjectStatus = "stalled"
	ProjectCompleted  ProjectStatus = "completed"
)

// UpdateType classifies a project progress report.
type UpdateType string

const (
	UpdateProgress   UpdateType = "progress"
	UpdateMilestone  UpdateType = "milestone"
	UpdateDelay      UpdateType = "delay"
	UpdateIssue      UpdateType = "issue"
	UpdateCompletion UpdateType = "completion"
)

func ParseUpdateType(raw string) (UpdateType, error) {
	switch UpdateType(raw) {
	case UpdateProgress, UpdateMilestone, UpdateDelay, UpdateIssue, UpdateCompletion:
		return UpdateType(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown update type: "+raw)
	}
}

// Project is a development project in a jurisdiction. A project may exist
// unowned (recorded by any citizen) until an office holder links it to their
// ledger; once linked it never changes hands.
type Project struct {
	ID              id.ProjectID  `json:"id"`
	ClaimID         *id.ClaimID   `json:"claim_id,omitempty"` // nil while unowned
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	County          string        `json:"county,omitempty"`
	Status          ProjectStatus `json:"status"`
	ProgressPercent int           `json:"progress_percent"`
	CreatedBy       id.UserID     `json:"created_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewProject records a project. When claimID is non-nil the project starts
// owned by that office holder.
func NewProject(projectID id.ProjectID, claimID *id.ClaimID, createdBy id.UserID, title, description, county string, now time.Time) (*Project, error) {
	if createdBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "creator id is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "project title is required")
	}
	return &Project{
		ID:          projectID,
		ClaimID:     claimID,
		Title:       title,
		Description: description,
		County:      county,
		Status:      ProjectPending,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsOwned reports whether an office holder has taken the project onto their
// ledger.
func (p *Project) IsOwned() bool {
	return p.ClaimID != nil
}

// IsCompleted reports whether the project was delivered.
func (p *Project) IsCompleted() bool {
	return p.Status == ProjectCompleted
}

// ApplyUpdate folds a progress report into the project state and snapshots
// the resulting status onto the report. A completion update forces 100% and
// status completed; delay and issue reports mark the project stalled; other
// types put it in progress, adjusting the percentage only when one is
// supplied.
func (p *Project) ApplyUpdate(update *ProjectUpdate, now time.Time) {
	switch update.Type {
	case UpdateCompletion:
		p.ProgressPercent = 100
		p.Status = ProjectCompleted
	case UpdateDelay, UpdateIssue:
		if update.ProgressPercent != nil {
			p.ProgressPercent = clampPercent(*update.ProgressPercent)
		}
		p.Status = ProjectStalled
	default:
		if update.ProgressPercent != nil {
			p.ProgressPercent = clampPercent(*update.ProgressPercent)
		}
		p.Status = ProjectInProgress
	}
	p.UpdatedAt = now
	update.NewStatus = p.Status
}

// ProjectUpdate is one immutable progress report against a project.
// NewStatus snapshots where the report left the project, so the update
// history reads coherently even after later reports move the project on.
type ProjectUpdate struct {
	ID              uuid.UUID     `json:"id"`
	ProjectID       id.ProjectID  `json:"project_id"`
	AuthorID        id.UserID     `json:"author_id"`
	Type            UpdateType    `json:"update_type"`
	Notes           string        `json:"notes,omitempty"`
	ProgressPercent *int          `json:"progress_percent,omitempty"`
	NewStatus       ProjectStatus `json:"new_status,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// NewProjectUpdate validates and timestamps a progress report.
func NewProjectUpdate(updateID uuid.UUID, projectID id.ProjectID, authorID id.UserID, updateType UpdateType, notes string, progress *int, now time.Time) (*ProjectUpdate, error) {
	if projectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "project id is required")
	}
	if authorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "author id is required")
	}
	if _, err := ParseUpdateType(string(updateType)); err != nil {
		return nil, err
	}
	if updateType != UpdateCompletion && progress == nil && strings.TrimSpace(notes) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "an update needs notes or a progress percentage")
	}
	if progress != nil {
		clamped := clampPercent(*progress)
		progress = &clamped
	}
	return &ProjectUpdate{
		ID:              updateID,
		ProjectID:       projectID,
		AuthorID:        authorID,
		Type:            updateType,
		Notes:           notes,
		ProgressPercent: progress,
		CreatedAt:       now,
	}, nil
}
