package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	id "mandate/pkg/domain"
	"mandate/pkg/platform/sentinel"
)

// PostgresStore persists positions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const positionColumns = `id, position_code, country_code, governance_level, jurisdiction_name, title, description, term_years, is_elected, created_at`

func (s *PostgresStore) Create(ctx context.Context, position *Position) error {
	if err := position.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO positions (` + positionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (position_code) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(position.ID),
		position.PositionCode,
		position.CountryCode,
		string(position.GovernanceLevel),
		position.JurisdictionName,
		position.Title,
		position.Description,
		position.TermYears,
		position.IsElected,
		position.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, positionID id.PositionID) (*Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`
	position, err := scanPosition(s.db.QueryRowContext(ctx, query, uuid.UUID(positionID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find position: %w", err)
	}
	return position, nil
}

func (s *PostgresStore) Search(ctx context.Context, filter SearchFilter) ([]*Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE lower(country_code) = lower($1)`
	args := []any{filter.Country}

	if filter.Level != nil {
		args = append(args, string(*filter.Level))
		query += fmt.Sprintf(" AND governance_level = $%d", len(args))
	}
	if filter.FreeText != "" {
		args = append(args, "%"+strings.ToLower(filter.FreeText)+"%")
		query += fmt.Sprintf(" AND (lower(title) LIKE $%d OR lower(jurisdiction_name) LIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY title"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search positions: %w", err)
	}
	defer rows.Close()

	var results []*Position
	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		results = append(results, position)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (*Position, error) {
	var (
		position Position
		rawID    uuid.UUID
		level    string
	)
	err := row.Scan(
		&rawID,
		&position.PositionCode,
		&position.CountryCode,
		&level,
		&position.JurisdictionName,
		&position.Title,
		&position.Description,
		&position.TermYears,
		&position.IsElected,
		&position.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	position.ID = id.PositionID(rawID)
	position.GovernanceLevel = GovernanceLevel(level)
	return &position, nil
}
