package activity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "mandate/pkg/domain"
)

// PostgresStore persists activity entries. Append-only: there is no update or
// delete path.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `id, actor_id, claim_id, activity_type, title, description, ref_type, ref_id, occurred_at`

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `INSERT INTO activity_log (` + entryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	var claimID any
	if entry.ClaimID != nil {
		claimID = uuid.UUID(*entry.ClaimID)
	}
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		uuid.UUID(entry.ActorID),
		claimID,
		entry.Type,
		entry.Title,
		entry.Description,
		entry.RefType,
		entry.RefID,
		entry.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByActor(ctx context.Context, actorID id.UserID, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM activity_log WHERE actor_id = $1 ORDER BY occurred_at DESC LIMIT $2`
	return s.list(ctx, query, uuid.UUID(actorID), normalizeLimit(limit))
}

func (s *PostgresStore) ListByClaim(ctx context.Context, claimID id.ClaimID, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM activity_log WHERE claim_id = $1 ORDER BY occurred_at DESC LIMIT $2`
	return s.list(ctx, query, uuid.UUID(claimID), normalizeLimit(limit))
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity entries: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var (
			entry   Entry
			actorID uuid.UUID
			claimID uuid.NullUUID
		)
		err := rows.Scan(
			&entry.ID,
			&actorID,
			&claimID,
			&entry.Type,
			&entry.Title,
			&entry.Description,
			&entry.RefType,
			&entry.RefID,
			&entry.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		entry.ActorID = id.UserID(actorID)
		if claimID.Valid {
			cid := id.ClaimID(claimID.UUID)
			entry.ClaimID = &cid
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}
