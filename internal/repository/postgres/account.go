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

type AccountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

const accountColumns = `id, name, api_key, active, auto_create_fields, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.APIKey,
		&a.Active,
		&a.AutoCreateFields,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AccountStore) Create(ctx context.Context, name, apiKey string, autoCreateFields bool) (*models.Account, error) {
	query := `
		INSERT INTO accounts (name, api_key, auto_create_fields)
		VALUES ($1, $2, $3)
		RETURNING ` + accountColumns

	a, err := scanAccount(s.pool.QueryRow(ctx, query, name, apiKey, autoCreateFields))
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`

	a, err := scanAccount(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// GetActiveByAPIKey filters on active in the query itself, so an inactive
// account is indistinguishable from a missing one — both come back nil, nil.
func (s *AccountStore) GetActiveByAPIKey(ctx context.Context, apiKey string) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE api_key = $1 AND active = true`

	a, err := scanAccount(s.pool.QueryRow(ctx, query, apiKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by api key: %w", err)
	}
	return a, nil
}

func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]models.Account, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM accounts WHERE active = true`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE active = true
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, total, nil
}

// Update applies only the non-nil params. COALESCE keeps the stored value
// when a param arrives as NULL, so one statement covers every combination.
func (s *AccountStore) Update(ctx context.Context, id uuid.UUID, params repository.UpdateAccountParams) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET name               = COALESCE($2, name),
		    active             = COALESCE($3, active),
		    auto_create_fields = COALESCE($4, auto_create_fields),
		    updated_at         = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	a, err := scanAccount(s.pool.QueryRow(ctx, query, id, params.Name, params.Active, params.AutoCreateFields))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET active = false, updated_at = now()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
