package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mandate/internal/ledger/models"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
	txcontext "mandate/pkg/platform/tx"
)

// Postgres persists the ledger in PostgreSQL. The link and answer operations
// are single conditional UPDATEs, so their write-boundary rules hold without
// explicit locking.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Promises() PromiseStore   { return (*pgPromises)(s) }
func (s *Postgres) Projects() ProjectStore   { return (*pgProjects)(s) }
func (s *Postgres) Questions() QuestionStore { return (*pgQuestions)(s) }

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

const promiseColumns = `id, claim_id, title, description, category, deadline,
	status, progress_percent, created_at, updated_at, completed_at`

type pgPromises Postgres

func (s *pgPromises) Create(ctx context.Context, promise *models.Promise) error {
	query := `
		INSERT INTO promises (` + promiseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := (*Postgres)(s).execer(ctx).ExecContext(ctx, query,
		uuid.UUID(promise.ID),
		uuid.UUID(promise.ClaimID),
		promise.Title,
		promise.Description,
		promise.Category,
		promise.Deadline,
		string(promise.Status),
		promise.ProgressPercent,
		promise.CreatedAt,
		promise.UpdatedAt,
		promise.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert promise: %w", err)
	}
	return nil
}

func (s *pgPromises) FindByID(ctx context.Context, promiseID id.PromiseID) (*models.Promise, error) {
	query := `SELECT ` + promiseColumns + ` FROM promises WHERE id = $1`
	promise, err := scanPromise((*Postgres)(s).execer(ctx).QueryRowContext(ctx, query, uuid.UUID(promiseID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return promise, err
}

func (s *pgPromises) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Promise, error) {
	query := `SELECT ` + promiseColumns + ` FROM promises WHERE claim_id = $1 ORDER BY created_at DESC`
	rows, err := (*Postgres)(s).execer(ctx).QueryContext(ctx, query, uuid.UUID(claimID))
	if err != nil {
		return nil, fmt.Errorf("list promises: %w", err)
	}
	defer rows.Close()

	var promises []*models.Promise
	for rows.Next() {
		promise, err := scanPromise(rows)
		if err != nil {
			return nil, err
		}
		promises = append(promises, promise)
	}
	return promises, rows.Err()
}

func (s *pgPromises) Update(ctx context.Context, promise *models.Promise) error {
	query := `
		UPDATE promises SET
			status = $2,
			progress_percent = $3,
			updated_at = $4,
			completed_at = $5
		WHERE id = $1
	`
	result, err := (*Postgres)(s).execer(ctx).ExecContext(ctx, query,
		uuid.UUID(promise.ID),
		string(promise.Status),
		promise.ProgressPercent,
		promise.UpdatedAt,
		promise.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update promise: %w", err)
	}
	return requireAffected(result)
}

func scanPromise(row rowScanner) (*models.Promise, error) {
	var (
		promise     models.Promise
		promiseID   uuid.UUID
		claimID     uuid.UUID
		deadline    sql.NullTime
		status      string
		completedAt sql.NullTime
	)
	err := row.Scan(
		&promiseID,
		&claimID,
		&promise.Title,
		&promise.Description,
		&promise.Category,
		&deadline,
		&status,
		&promise.ProgressPercent,
		&promise.CreatedAt,
		&promise.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	promise.ID = id.PromiseID(promiseID)
	promise.ClaimID = id.ClaimID(claimID)
	promise.Status = models.PromiseStatus(status)
	if deadline.Valid {
		at := deadline.Time
		promise.Deadline = &at
	}
	if completedAt.Valid {
		at := completedAt.Time
		promise.CompletedAt = &at
	}
	return &promise, nil
}

const projectColumns = `id, claim_id, title, description, county, status,
	progress_percent, created_by, created_at, updated_at`

type pgProjects Postgres

func (s *pgProjects) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := (*Postgres)(s).execer(ctx).ExecContext(ctx, query,
		uuid.UUID(project.ID),
		nullableClaimID(project.ClaimID),
		project.Title,
		project.Description,
		project.County,
		string(project.Status),
		project.ProgressPercent,
		uuid.UUID(project.CreatedBy),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *pgProjects) FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	project, err := scanProject((*Postgres)(s).execer(ctx).QueryRowContext(ctx, query, uuid.UUID(projectID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return project, err
}

func (s *pgProjects) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE claim_id = $1 ORDER BY created_at DESC`
	rows, err := (*Postgres)(s).execer(ctx).QueryContext(ctx, query, uuid.UUID(claimID))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (s *pgProjects) LinkIfUnowned(ctx context.Context, projectID id.ProjectID, claimID id.ClaimID) error {
	query := `UPDATE projects SET claim_id = $2 WHERE id = $1 AND claim_id IS NULL`
	result, err := (*Postgres)(s).execer(ctx).ExecContext(ctx, query,
		uuid.UUID(projectID), uuid.UUID(claimID))
	if err != nil {
		return fmt.Errorf("link project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("link project rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}
	// Zero rows: the project is missing or already owned. Disambiguate.
	if _, err := s.FindByID(ctx, projectID); err != nil {
		return err
	}
	return sentinel.ErrAlreadyOwned
}

func (s *pgProjects) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects SET
			status = $2,
			progress_percent = $3,
			updated_at = $4
		WHERE id = $1
	`
	result, err := (*Postgres)(s).execer(ctx).ExecContext(ctx, query,
		uuid.UUID(project.ID),
		string(project.Status),
		project.ProgressPercent,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireAffected(result)
}

func (s *pgProjects) AppendUpdate(ctx context.Context, update *models.ProjectUpdate) error {
	query := `
		INSERT INTO project_updates (id, project_id, author_id, update_type, notes, progress_percent, new_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := (*Postgres)(s).execer(ctx).ExecContext(ctx, query,
		update.ID,
		uuid.UUID(update.ProjectID),
		uuid.UUID(update.AuthorID),
		string(update.Type),
		update.Notes,
		update.ProgressPercent,
		string(update.NewStatus),
		update.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project update: %w", err)
	}
	return nil
}

func (s *pgProjects) ListUpdates(ctx context.Context, projectID id.ProjectID) ([]*models.ProjectUpdate, error) {
	query := `
		SELECT id, project_id, author_id, update_type, notes, progress_percent, new_status, created_at
		FROM project_updates WHERE project_id = $1 ORDER BY created_at DESC
	`
	rows, err := (*Postgres)(s).execer(ctx).QueryContext(ctx, query, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list project updates: %w", err)
	}
	defer rows.Close()

	var updates []*models.ProjectUpdate
	for rows.Next() {
		var (
			update    models.ProjectUpdate
			projectID uuid.UUID
			authorID  uuid.UUID
			kind      string
			progress  sql.NullInt64
			newStatus string
		)
		err := rows.Scan(&update.ID, &projectID, &authorID, &kind, &update.Notes, &progress, &newStatus, &update.CreatedAt)
		if err != nil {
			return nil, err
		}
		update.ProjectID = id.ProjectID(projectID)
		update.AuthorID = id.UserID(authorID)
		update.Type = models.UpdateType(kind)
		update.NewStatus = models.ProjectStatus(newStatus)
		if progress.Valid {
			v := int(progress.Int64)
			update.ProgressPercent = &v
		}
		updates = append(updates, &update)
	}
	return updates, rows.Err()
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		project   models.Project
		projectID uuid.UUID
		claimID   uuid.NullUUID
		status    string
		createdBy uuid.UUID
	)
	err := row.Scan(
		&projectID,
		&claimID,
		&project.Title,
		&project.Description,
		&project.County,
		&status,
		&project.ProgressPercent,
		&createdBy,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.ID = id.ProjectID(projectID)
	project.Status = models.ProjectStatus(status)
	project.CreatedBy = id.UserID(createdBy)
	if claimID.Valid {
		owner := id.ClaimID(claimID.UUID)
		project.ClaimID = &owner
	}
	return &project, nil
}

const questionColumns = `id, claim_id, asked_by, body, answer, answered_at,
	upvotes, is_pinned, created_at`

type pgQuestions Postgres

func (s *pgQuestions) Create(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (` + questionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := (*Postgres)(s).execer(ctx).ExecContext(ctx, query,
		uuid.UUID(question.ID),
		uuid.UUID(question.ClaimID),
		uuid.UUID(question.AskedBy),
		question.Body,
		nullableString(question.Answer),
		question.AnsweredAt,
		question.Upvotes,
		question.IsPinned,
		question.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *pgQuestions) FindByID(ctx context.Context, questionID id.QuestionID) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	question, err := scanQuestion((*Postgres)(s).execer(ctx).QueryRowContext(ctx, query, uuid.UUID(questionID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return question, err
}

func (s *pgQuestions) ListByClaim(ctx context.Context, claimID id.ClaimID) ([]*models.Question, error) {
	query := `
		SELECT ` + questionColumns + ` FROM questions
		WHERE claim_id = $1
		ORDER BY is_pinned DESC, upvotes DESC, created_at DESC
	`
	rows, err := (*Postgres)(s).execer(ctx).QueryContext(ctx, query, uuid.UUID(claimID))
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

func (s *pgQuestions) SetAnswerIfUnanswered(ctx context.Context, questionID id.QuestionID, answer string, answeredAt time.Time) error {
	query := `UPDATE questions SET answer = $2, answered_at = $3 WHERE id = $1 AND answer IS NULL`
	result, err := (*Postgres)(s).execer(ctx).ExecContext(ctx, query,
		uuid.UUID(questionID), answer, answeredAt)
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("answer question rows affected: %w", err)
	}
	if affected == 1 {
		return nil
	}
	if _, err := s.FindByID(ctx, questionID); err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}

func (s *pgQuestions) IncrementUpvotes(ctx context.Context, questionID id.QuestionID) (int, error) {
	query := `UPDATE questions SET upvotes = upvotes + 1 WHERE id = $1 RETURNING upvotes`
	var upvotes int
	err := (*Postgres)(s).execer(ctx).QueryRowContext(ctx, query, uuid.UUID(questionID)).Scan(&upvotes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("upvote question: %w", err)
	}
	return upvotes, nil
}

func (s *pgQuestions) SetPinned(ctx context.Context, questionID id.QuestionID, pinned bool) error {
	query := `UPDATE questions SET is_pinned = $2 WHERE id = $1`
	result, err := (*Postgres)(s).execer(ctx).ExecContext(ctx, query,
		uuid.UUID(questionID), pinned)
	if err != nil {
		return fmt.Errorf("pin question: %w", err)
	}
	return requireAffected(result)
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var (
		question   models.Question
		questionID uuid.UUID
		claimID    uuid.UUID
		askedBy    uuid.UUID
		answer     sql.NullString
		answeredAt sql.NullTime
	)
	err := row.Scan(
		&questionID,
		&claimID,
		&askedBy,
		&question.Body,
		&answer,
		&answeredAt,
		&question.Upvotes,
		&question.IsPinned,
		&question.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	question.ID = id.QuestionID(questionID)
	question.ClaimID = id.ClaimID(claimID)
	question.AskedBy = id.UserID(askedBy)
	if answer.Valid {
		question.Answer = answer.String
	}
	if answeredAt.Valid {
		at := answeredAt.Time
		question.AnsweredAt = &at
	}
	return &question, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullableClaimID(claimID *id.ClaimID) uuid.NullUUID {
	if claimID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*claimID), Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
