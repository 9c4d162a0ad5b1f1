package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucas-arr/leadgate/internal/models"
)

type LeadStore struct {
	pool *pgxpool.Pool
}

func NewLeadStore(pool *pgxpool.Pool) *LeadStore {
	return &LeadStore{pool: pool}
}

func (s *LeadStore) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Lead, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM leads WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	query := `
		SELECT id, account_id, record_id, data, created_at
		FROM leads
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]models.Lead, 0)
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(
			&l.ID,
			&l.AccountID,
			&l.RecordID,
			&l.Data,
			&l.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", err)
	}

	return leads, total, nil
}

func (s *LeadStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	query := `
		SELECT id, account_id, record_id, data, created_at
		FROM leads
		WHERE id = $1`

	var l models.Lead
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.AccountID,
		&l.RecordID,
		&l.Data,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &l, nil
}
