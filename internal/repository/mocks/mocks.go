package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/repository"
	"github.com/stretchr/testify/mock"
)

// AccountRepository is a mock for repository.AccountRepository.
type AccountRepository struct {
	mock.Mock
}

func (m *AccountRepository) Create(ctx context.Context, name, apiKey string, autoCreateFields bool) (*models.Account, error) {
	args := m.Called(ctx, name, apiKey, autoCreateFields)
	if a, ok := args.Get(0).(*models.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*models.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccountRepository) GetActiveByAPIKey(ctx context.Context, apiKey string) (*models.Account, error) {
	args := m.Called(ctx, apiKey)
	if a, ok := args.Get(0).(*models.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccountRepository) List(ctx context.Context, limit, offset int) ([]models.Account, int, error) {
	args := m.Called(ctx, limit, offset)
	if list, ok := args.Get(0).([]models.Account); ok {
		return list, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *AccountRepository) Update(ctx context.Context, id uuid.UUID, params repository.UpdateAccountParams) (*models.Account, error) {
	args := m.Called(ctx, id, params)
	if a, ok := args.Get(0).(*models.Account); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// FieldRepository is a mock for repository.FieldRepository.
type FieldRepository struct {
	mock.Mock
}

func (m *FieldRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.FieldDefinition, error) {
	args := m.Called(ctx, accountID)
	if list, ok := args.Get(0).([]models.FieldDefinition); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FieldRepository) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.FieldDefinition, int, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if list, ok := args.Get(0).([]models.FieldDefinition); ok {
		return list, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *FieldRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FieldDefinition, error) {
	args := m.Called(ctx, id)
	if f, ok := args.Get(0).(*models.FieldDefinition); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FieldRepository) CreateIfAbsent(ctx context.Context, accountID uuid.UUID, name string, dataType models.FieldType, description string, required bool) (*models.FieldDefinition, bool, error) {
	args := m.Called(ctx, accountID, name, dataType, description, required)
	if f, ok := args.Get(0).(*models.FieldDefinition); ok {
		return f, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *FieldRepository) Update(ctx context.Context, id uuid.UUID, params repository.UpdateFieldParams) (*models.FieldDefinition, error) {
	args := m.Called(ctx, id, params)
	if f, ok := args.Get(0).(*models.FieldDefinition); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FieldRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// RecordRepository is a mock for repository.RecordRepository.
type RecordRepository struct {
	mock.Mock
}

func (m *RecordRepository) CreateWithLead(ctx context.Context, accountID uuid.UUID, payload map[string]any, meta models.RecordMetadata, leadData map[string]any) (*models.Record, *models.Lead, error) {
	args := m.Called(ctx, accountID, payload, meta, leadData)
	rec, _ := args.Get(0).(*models.Record)
	lead, _ := args.Get(1).(*models.Lead)
	return rec, lead, args.Error(2)
}

func (m *RecordRepository) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Record, int, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if list, ok := args.Get(0).([]models.Record); ok {
		return list, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.Record); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// LeadRepository is a mock for repository.LeadRepository.
type LeadRepository struct {
	mock.Mock
}

func (m *LeadRepository) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Lead, int, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if list, ok := args.Get(0).([]models.Lead); ok {
		return list, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if l, ok := args.Get(0).(*models.Lead); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

// UserRepository is a mock for repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, email, displayName, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, email, displayName, passwordHash)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
