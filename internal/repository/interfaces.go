package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/models"
)

// Every method takes context.Context first: all of these do I/O, and the
// request's deadline/cancellation must reach the database. Every query is
// scoped by account where the data is per-tenant — the repository never
// trusts the caller to have filtered already.

// UpdateAccountParams carries the admin-editable account attributes.
// Nil pointer = leave unchanged. APIKey is deliberately absent: it is
// immutable after creation.
type UpdateAccountParams struct {
	Name             *string
	Active           *bool
	AutoCreateFields *bool
}

// AccountRepository is the tenant store.
type AccountRepository interface {
	// Create inserts an account with a freshly generated api_key.
	Create(ctx context.Context, name, apiKey string, autoCreateFields bool) (*models.Account, error)

	// GetByID returns an account regardless of active flag (the admin
	// surface can see deactivated accounts). Returns nil, nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)

	// GetActiveByAPIKey resolves an ingest api_key. Inactive accounts
	// resolve exactly like missing ones (nil, nil) so unauthenticated
	// callers can't probe tenant existence or status.
	GetActiveByAPIKey(ctx context.Context, apiKey string) (*models.Account, error)

	// List returns active accounts, newest first, plus the total count.
	List(ctx context.Context, limit, offset int) ([]models.Account, int, error)

	// Update applies the non-nil params. Returns ErrNotFound if the
	// account doesn't exist.
	Update(ctx context.Context, id uuid.UUID, params UpdateAccountParams) (*models.Account, error)

	// Deactivate soft-deletes (active=false). Accounts are never
	// hard-deleted.
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// UpdateFieldParams carries the admin-editable field attributes.
type UpdateFieldParams struct {
	DataType    *models.FieldType
	Description *string
	Required    *bool
}

// FieldRepository is the per-account schema store.
type FieldRepository interface {
	// ListByAccount returns every definition for the account — the
	// schema snapshot the ingest pipeline resolves against.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.FieldDefinition, error)

	// List is the paginated admin view, newest first, plus total count.
	List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.FieldDefinition, int, error)

	// GetByID returns nil, nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.FieldDefinition, error)

	// CreateIfAbsent inserts a definition, or fetches the existing one
	// when (account_id, field_name) already exists. The bool reports
	// whether this call created the row. Concurrent callers racing on
	// the same name all succeed; exactly one of them creates.
	CreateIfAbsent(ctx context.Context, accountID uuid.UUID, name string, dataType models.FieldType, description string, required bool) (*models.FieldDefinition, bool, error)

	// Update applies the non-nil params. Returns ErrNotFound if the
	// field doesn't exist.
	Update(ctx context.Context, id uuid.UUID, params UpdateFieldParams) (*models.FieldDefinition, error)

	// Delete hard-deletes a definition. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// RecordRepository persists raw captures and their derived leads.
type RecordRepository interface {
	// CreateWithLead writes one record and its lead in a single
	// transaction: both rows exist afterwards or neither does, and no
	// reader ever observes one without the other.
	CreateWithLead(ctx context.Context, accountID uuid.UUID, payload map[string]any, meta models.RecordMetadata, leadData map[string]any) (*models.Record, *models.Lead, error)

	// List returns records for an account, newest first, plus total.
	List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Record, int, error)

	// GetByID returns nil, nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error)
}

// LeadRepository is the read side for derived leads (they are only ever
// written through RecordRepository.CreateWithLead).
type LeadRepository interface {
	List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Lead, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)
}

// UserRepository stores admin-surface operators.
type UserRepository interface {
	// Create inserts a user. Returns ErrDuplicate if the email is taken.
	Create(ctx context.Context, email, displayName, passwordHash string) (*models.User, error)

	// GetByEmail returns nil, nil if not found.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
