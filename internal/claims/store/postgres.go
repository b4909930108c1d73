package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"mandate/internal/claims/models"
	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
	txcontext "mandate/pkg/platform/tx"
)

// Unique partial index enforcing "at most one active claim per position";
// see migrations/001_init.sql.
const activeClaimIndex = "office_holder_claims_one_active_per_position"

// Postgres persists claims in PostgreSQL. The partial unique index on
// (position_id) WHERE is_active makes the vacancy check atomic with the
// insert, so two racing submissions resolve deterministically.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer joins a service-opened transaction when one is present in context.
func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const claimColumns = `id, position_id, claimant_id, term_start, term_end,
	verification_status, verification_method, proof,
	is_active, is_historical, claimed_at, verified_by, verified_at, rejection_notes`

func (s *Postgres) CreateIfPositionVacant(ctx context.Context, claim *models.Claim) error {
	proofJSON, err := json.Marshal(claim.Proof)
	if err != nil {
		return fmt.Errorf("marshal proof: %w", err)
	}

	query := `
		INSERT INTO office_holder_claims (` + claimColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(claim.ID),
		uuid.UUID(claim.PositionID),
		uuid.UUID(claim.ClaimantID),
		claim.TermStart,
		claim.TermEnd,
		string(claim.VerificationStatus),
		string(claim.VerificationMethod),
		proofJSON,
		claim.IsActive,
		claim.IsHistorical,
		claim.ClaimedAt,
		nullableUUID(claim.VerifiedBy),
		claim.VerifiedAt,
		claim.RejectionNotes,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == activeClaimIndex {
			// The index rejection is the authoritative conflict signal.
			return sentinel.ErrAlreadyClaimed
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, claimID id.ClaimID) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM office_holder_claims WHERE id = $1`
	claim, err := scanClaim(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(claimID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}
	return claim, nil
}

func (s *Postgres) ActiveByPosition(ctx context.Context, positionID id.PositionID) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM office_holder_claims WHERE position_id = $1 AND is_active`
	claim, err := scanClaim(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(positionID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active claim: %w", err)
	}
	return claim, nil
}

func (s *Postgres) ListByPosition(ctx context.Context, positionID id.PositionID) ([]*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM office_holder_claims WHERE position_id = $1 ORDER BY term_start DESC`
	return s.list(ctx, query, uuid.UUID(positionID))
}

func (s *Postgres) ListByClaimant(ctx context.Context, claimantID id.UserID) ([]*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM office_holder_claims WHERE claimant_id = $1 ORDER BY term_start DESC`
	return s.list(ctx, query, uuid.UUID(claimantID))
}

func (s *Postgres) list(ctx context.Context, query string, arg any) ([]*models.Claim, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	var results []*models.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		results = append(results, claim)
	}
	return results, rows.Err()
}

func (s *Postgres) Update(ctx context.Context, claim *models.Claim) error {
	proofJSON, err := json.Marshal(claim.Proof)
	if err != nil {
		return fmt.Errorf("marshal proof: %w", err)
	}

	query := `
		UPDATE office_holder_claims SET
			verification_status = $2,
			proof = $3,
			is_active = $4,
			is_historical = $5,
			verified_by = $6,
			verified_at = $7,
			rejection_notes = $8
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(claim.ID),
		string(claim.VerificationStatus),
		proofJSON,
		claim.IsActive,
		claim.IsHistorical,
		nullableUUID(claim.VerifiedBy),
		claim.VerifiedAt,
		claim.RejectionNotes,
	)
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*models.Claim, error) {
	var (
		claim      models.Claim
		claimID    uuid.UUID
		positionID uuid.UUID
		claimantID uuid.UUID
		status     string
		method     string
		proofJSON  []byte
		verifiedBy uuid.NullUUID
		verifiedAt sql.NullTime
	)
	err := row.Scan(
		&claimID,
		&positionID,
		&claimantID,
		&claim.TermStart,
		&claim.TermEnd,
		&status,
		&method,
		&proofJSON,
		&claim.IsActive,
		&claim.IsHistorical,
		&claim.ClaimedAt,
		&verifiedBy,
		&verifiedAt,
		&claim.RejectionNotes,
	)
	if err != nil {
		return nil, err
	}
	claim.ID = id.ClaimID(claimID)
	claim.PositionID = id.PositionID(positionID)
	claim.ClaimantID = id.UserID(claimantID)
	claim.VerificationStatus = models.VerificationStatus(status)
	claim.VerificationMethod = models.VerificationMethod(method)
	if err := json.Unmarshal(proofJSON, &claim.Proof); err != nil {
		return nil, fmt.Errorf("unmarshal proof: %w", err)
	}
	if verifiedBy.Valid {
		by := id.UserID(verifiedBy.UUID)
		claim.VerifiedBy = &by
	}
	if verifiedAt.Valid {
		at := verifiedAt.Time
		claim.VerifiedAt = &at
	}
	return &claim, nil
}

func nullableUUID(userID *id.UserID) any {
	if userID == nil {
		return nil
	}
	return uuid.UUID(*userID)
}
