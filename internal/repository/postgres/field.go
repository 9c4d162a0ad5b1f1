package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/repository"
)

type FieldStore struct {
	pool *pgxpool.Pool
}

func NewFieldStore(pool *pgxpool.Pool) *FieldStore {
	return &FieldStore{pool: pool}
}

const fieldColumns = `id, account_id, field_name, data_type, COALESCE(description, ''), required, created_at`

func scanField(row pgx.Row) (*models.FieldDefinition, error) {
	var f models.FieldDefinition
	err := row.Scan(
		&f.ID,
		&f.AccountID,
		&f.FieldName,
		&f.DataType,
		&f.Description,
		&f.Required,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FieldStore) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.FieldDefinition, error) {
	query := `
		SELECT ` + fieldColumns + `
		FROM field_definitions
		WHERE account_id = $1`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defer rows.Close()

	fields := make([]models.FieldDefinition, 0)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		fields = append(fields, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}

	return fields, nil
}

func (s *FieldStore) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.FieldDefinition, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM field_definitions WHERE account_id = $1`, accountID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count fields: %w", err)
	}

	query := `
		SELECT ` + fieldColumns + `
		FROM field_definitions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list fields page: %w", err)
	}
	defer rows.Close()

	fields := make([]models.FieldDefinition, 0)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan field: %w", err)
		}
		fields = append(fields, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate fields: %w", err)
	}

	return fields, total, nil
}

func (s *FieldStore) GetByID(ctx context.Context, id uuid.UUID) (*models.FieldDefinition, error) {
	query := `
		SELECT ` + fieldColumns + `
		FROM field_definitions
		WHERE id = $1`

	f, err := scanField(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get field: %w", err)
	}
	return f, nil
}

// CreateIfAbsent is the race-safe create-or-fetch behind field
// auto-creation. The insert relies on the (account_id, field_name) unique
// constraint: ON CONFLICT DO NOTHING turns a lost race into "no row
// returned", and the follow-up select fetches whatever the winner wrote.
// Losing the race is success, not an error.
//
// The select can itself come up empty if an admin hard-deletes the
// winning row in the gap — then the insert is simply tried again
// (re-creating a just-deleted name is allowed; there are no tombstones).
func (s *FieldStore) CreateIfAbsent(ctx context.Context, accountID uuid.UUID, name string, dataType models.FieldType, description string, required bool) (*models.FieldDefinition, bool, error) {
	insert := `
		INSERT INTO field_definitions (account_id, field_name, data_type, description, required)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		ON CONFLICT (account_id, field_name) DO NOTHING
		RETURNING ` + fieldColumns

	sel := `
		SELECT ` + fieldColumns + `
		FROM field_definitions
		WHERE account_id = $1 AND field_name = $2`

	for attempt := 0; attempt < 3; attempt++ {
		f, err := scanField(s.pool.QueryRow(ctx, insert, accountID, name, dataType, description, required))
		if err == nil {
			return f, true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, fmt.Errorf("insert field: %w", err)
		}

		f, err = scanField(s.pool.QueryRow(ctx, sel, accountID, name))
		if err == nil {
			return f, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, fmt.Errorf("get field by name: %w", err)
		}
	}

	return nil, false, fmt.Errorf("create field %q: kept losing the creation race", name)
}

func (s *FieldStore) Update(ctx context.Context, id uuid.UUID, params repository.UpdateFieldParams) (*models.FieldDefinition, error) {
	query := `
		UPDATE field_definitions
		SET data_type   = COALESCE($2, data_type),
		    description = COALESCE($3, description),
		    required    = COALESCE($4, required)
		WHERE id = $1
		RETURNING ` + fieldColumns

	f, err := scanField(s.pool.QueryRow(ctx, query, id, params.DataType, params.Description, params.Required))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update field: %w", err)
	}
	return f, nil
}

// Delete hard-deletes. Historical lead data referencing the name stays as
// written; only future validation stops.
func (s *FieldStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM field_definitions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
