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

type RecordStore struct {
	pool *pgxpool.Pool
}

func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

// CreateWithLead writes the raw record and its derived lead in one
// transaction. The lead's record_id foreign key orders the two inserts;
// commit makes both visible at once, rollback removes both. A record
// without its lead (or the reverse) can never be observed.
func (s *RecordStore) CreateWithLead(ctx context.Context, accountID uuid.UUID, payload map[string]any, meta models.RecordMetadata, leadData map[string]any) (*models.Record, *models.Lead, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin ingest tx: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback(ctx)

	rec := &models.Record{
		AccountID: accountID,
		Payload:   payload,
		Metadata:  meta,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO records (account_id, payload, metadata)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		accountID, payload, meta,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("insert record: %w", err)
	}

	lead := &models.Lead{
		AccountID: accountID,
		RecordID:  rec.ID,
		Data:      leadData,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO leads (account_id, record_id, data)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		accountID, rec.ID, leadData,
	).Scan(&lead.ID, &lead.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("insert lead: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit ingest tx: %w", err)
	}
	return rec, lead, nil
}

func (s *RecordStore) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Record, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM records WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	query := `
		SELECT id, account_id, payload, COALESCE(metadata, '{}'::jsonb), created_at
		FROM records
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.AccountID,
			&rec.Payload,
			&rec.Metadata,
			&rec.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate records: %w", err)
	}

	return records, total, nil
}

func (s *RecordStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	query := `
		SELECT id, account_id, payload, COALESCE(metadata, '{}'::jsonb), created_at
		FROM records
		WHERE id = $1`

	var rec models.Record
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.AccountID,
		&rec.Payload,
		&rec.Metadata,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}
