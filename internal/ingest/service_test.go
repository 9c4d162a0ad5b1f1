package ingest_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/ingest"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/repository"
	"github.com/lucas-arr/leadgate/internal/repository/mocks"
	"github.com/lucas-arr/leadgate/internal/schema"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const apiKey = "lg_test_key"

func testAccount(autoCreate bool) *models.Account {
	return &models.Account{
		ID:               uuid.New(),
		Name:             "acme",
		APIKey:           apiKey,
		Active:           true,
		AutoCreateFields: autoCreate,
	}
}

func fieldDef(accountID uuid.UUID, name string, dt models.FieldType) *models.FieldDefinition {
	return &models.FieldDefinition{
		ID:        uuid.New(),
		AccountID: accountID,
		FieldName: name,
		DataType:  dt,
	}
}

func newService(accounts repository.AccountRepository, fields repository.FieldRepository, records repository.RecordRepository, excluded []string) *ingest.Service {
	return ingest.NewService(accounts, fields, records, nil, nil, excluded, zap.NewNop())
}

func expectCreateWithLead(records *mocks.RecordRepository, account *models.Account, capture *map[string]any) {
	records.On("CreateWithLead", mock.Anything, account.ID, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			if capture != nil {
				*capture = args.Get(4).(map[string]any)
			}
		}).
		Return(
			&models.Record{ID: uuid.New(), AccountID: account.ID},
			&models.Lead{ID: uuid.New(), AccountID: account.ID},
			nil,
		)
}

func TestIngestAutoCreatesFieldsForThisPayload(t *testing.T) {
	ctx := context.Background()
	account := testAccount(true)

	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", ctx, apiKey).Return(account, nil)

	fields := &mocks.FieldRepository{}
	fields.On("ListByAccount", ctx, account.ID).Return([]models.FieldDefinition{}, nil)
	fields.On("CreateIfAbsent", ctx, account.ID, "email", models.FieldTypeEmail, "", false).
		Return(fieldDef(account.ID, "email", models.FieldTypeEmail), true, nil)
	fields.On("CreateIfAbsent", ctx, account.ID, "score", models.FieldTypeNumber, "", false).
		Return(fieldDef(account.ID, "score", models.FieldTypeNumber), true, nil)

	var leadData map[string]any
	records := &mocks.RecordRepository{}
	expectCreateWithLead(records, account, &leadData)

	svc := newService(accounts, fields, records, nil)
	result, err := svc.Ingest(ctx, apiKey, map[string]any{"email": "a@b.com", "score": "7"}, "10.0.0.1")
	require.NoError(t, err)

	// Fields created mid-call apply to this payload, not just later ones.
	require.Equal(t, []string{"email", "score"}, result.FieldsCreated)
	require.Empty(t, result.UnknownFields)
	require.True(t, result.AutoCreateEnabled)
	require.Equal(t, "a@b.com", leadData["email"])
	require.Equal(t, 7.0, leadData["score"])
}

func TestIngestReportsUnknownsWhenAutoCreateDisabled(t *testing.T) {
	ctx := context.Background()
	account := testAccount(false)

	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", ctx, apiKey).Return(account, nil)

	fields := &mocks.FieldRepository{}
	fields.On("ListByAccount", ctx, account.ID).Return([]models.FieldDefinition{
		*fieldDef(account.ID, "email", models.FieldTypeString),
	}, nil)

	var leadData map[string]any
	records := &mocks.RecordRepository{}
	expectCreateWithLead(records, account, &leadData)

	svc := newService(accounts, fields, records, nil)
	result, err := svc.Ingest(ctx, apiKey, map[string]any{"email": "a@b.com", "phone": "+1555"}, "")
	require.NoError(t, err)

	require.Equal(t, []string{"phone"}, result.UnknownFields)
	require.Empty(t, result.FieldsCreated)
	require.False(t, result.AutoCreateEnabled)
	require.Equal(t, map[string]any{"email": "a@b.com"}, leadData)
	fields.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestUnknownAPIKey(t *testing.T) {
	ctx := context.Background()

	accounts := &mocks.AccountRepository{}
	// Inactive accounts come back from the repository exactly like
	// missing ones, so this covers both.
	accounts.On("GetActiveByAPIKey", ctx, apiKey).Return((*models.Account)(nil), nil)

	svc := newService(accounts, &mocks.FieldRepository{}, &mocks.RecordRepository{}, nil)
	_, err := svc.Ingest(ctx, apiKey, map[string]any{"email": "a@b.com"}, "")
	require.ErrorIs(t, err, ingest.ErrAccountNotFound)
}

func TestIngestDemotesCoercionFailureWithoutAborting(t *testing.T) {
	ctx := context.Background()
	account := testAccount(true)

	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", ctx, apiKey).Return(account, nil)

	fields := &mocks.FieldRepository{}
	fields.On("ListByAccount", ctx, account.ID).Return([]models.FieldDefinition{
		*fieldDef(account.ID, "score", models.FieldTypeNumber),
		*fieldDef(account.ID, "email", models.FieldTypeEmail),
	}, nil)

	var leadData map[string]any
	records := &mocks.RecordRepository{}
	expectCreateWithLead(records, account, &leadData)

	svc := newService(accounts, fields, records, nil)
	result, err := svc.Ingest(ctx, apiKey, map[string]any{
		"score": "not-a-number",
		"email": "a@b.com",
	}, "")
	require.NoError(t, err)

	// The bad field is demoted, not auto-created (a definition already
	// exists) and not fatal — the rest of the payload lands.
	require.Equal(t, []string{"score"}, result.UnknownFields)
	require.Empty(t, result.FieldsCreated)
	require.Equal(t, map[string]any{"email": "a@b.com"}, leadData)
	fields.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestAdoptsDefinitionFromLostRace(t *testing.T) {
	ctx := context.Background()
	account := testAccount(true)

	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", ctx, apiKey).Return(account, nil)

	fields := &mocks.FieldRepository{}
	fields.On("ListByAccount", ctx, account.ID).Return([]models.FieldDefinition{}, nil)
	// Another call created "email" first; created=false.
	fields.On("CreateIfAbsent", ctx, account.ID, "email", models.FieldTypeEmail, "", false).
		Return(fieldDef(account.ID, "email", models.FieldTypeEmail), false, nil)

	var leadData map[string]any
	records := &mocks.RecordRepository{}
	expectCreateWithLead(records, account, &leadData)

	svc := newService(accounts, fields, records, nil)
	result, err := svc.Ingest(ctx, apiKey, map[string]any{"email": "a@b.com"}, "")
	require.NoError(t, err)

	// Losing the race is success: the field is known, just not "created
	// by this call".
	require.Empty(t, result.FieldsCreated)
	require.Empty(t, result.UnknownFields)
	require.Equal(t, "a@b.com", leadData["email"])
}

func TestIngestEmptyPayloadSucceeds(t *testing.T) {
	ctx := context.Background()
	account := testAccount(true)

	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", ctx, apiKey).Return(account, nil)

	fields := &mocks.FieldRepository{}
	fields.On("ListByAccount", ctx, account.ID).Return([]models.FieldDefinition{}, nil)

	var leadData map[string]any
	records := &mocks.RecordRepository{}
	expectCreateWithLead(records, account, &leadData)

	svc := newService(accounts, fields, records, nil)
	result, err := svc.Ingest(ctx, apiKey, map[string]any{}, "")
	require.NoError(t, err)

	require.Empty(t, result.UnknownFields)
	require.Empty(t, result.FieldsCreated)
	require.Empty(t, leadData)
}

func TestIngestSurfacesPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	account := testAccount(false)

	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", ctx, apiKey).Return(account, nil)

	fields := &mocks.FieldRepository{}
	fields.On("ListByAccount", ctx, account.ID).Return([]models.FieldDefinition{}, nil)

	records := &mocks.RecordRepository{}
	records.On("CreateWithLead", mock.Anything, account.ID, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil, context.DeadlineExceeded)

	svc := newService(accounts, fields, records, nil)
	_, err := svc.Ingest(ctx, apiKey, map[string]any{"x": "y"}, "")
	require.Error(t, err)
	require.NotErrorIs(t, err, ingest.ErrAccountNotFound)
}

func TestIngestSkipsExcludedFields(t *testing.T) {
	ctx := context.Background()
	account := testAccount(true)

	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", ctx, apiKey).Return(account, nil)

	fields := &mocks.FieldRepository{}
	fields.On("ListByAccount", ctx, account.ID).Return([]models.FieldDefinition{}, nil)

	var leadData map[string]any
	records := &mocks.RecordRepository{}
	expectCreateWithLead(records, account, &leadData)

	svc := newService(accounts, fields, records, []string{"BATCH_ID"})
	result, err := svc.Ingest(ctx, apiKey, map[string]any{"BATCH_ID": "b-17"}, "")
	require.NoError(t, err)

	// Excluded keys are neither unknown nor auto-created; they only
	// survive in the raw record payload.
	require.Empty(t, result.UnknownFields)
	require.Empty(t, result.FieldsCreated)
	require.Empty(t, leadData)
	fields.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ---------------------------------------------------------------------
// Concurrency: N calls introducing the same new field must produce
// exactly one definition, and every call must succeed. The fakes below
// reproduce the storage-level guarantees (uniqueness on (account, name),
// atomic record+lead insert) without a database.
// ---------------------------------------------------------------------

type fakeAccountRepo struct {
	account *models.Account
}

func (f *fakeAccountRepo) Create(ctx context.Context, name, apiKey string, autoCreateFields bool) (*models.Account, error) {
	panic("not used")
}
func (f *fakeAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return f.account, nil
}
func (f *fakeAccountRepo) GetActiveByAPIKey(ctx context.Context, apiKey string) (*models.Account, error) {
	if f.account.APIKey == apiKey && f.account.Active {
		return f.account, nil
	}
	return nil, nil
}
func (f *fakeAccountRepo) List(ctx context.Context, limit, offset int) ([]models.Account, int, error) {
	panic("not used")
}
func (f *fakeAccountRepo) Update(ctx context.Context, id uuid.UUID, params repository.UpdateAccountParams) (*models.Account, error) {
	panic("not used")
}
func (f *fakeAccountRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	panic("not used")
}

type fieldKey struct {
	accountID uuid.UUID
	name      string
}

type fakeFieldRepo struct {
	mu      sync.Mutex
	defs    map[fieldKey]models.FieldDefinition
	creates int
}

func newFakeFieldRepo() *fakeFieldRepo {
	return &fakeFieldRepo{defs: make(map[fieldKey]models.FieldDefinition)}
}

func (f *fakeFieldRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.FieldDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.FieldDefinition, 0)
	for k, d := range f.defs {
		if k.accountID == accountID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeFieldRepo) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.FieldDefinition, int, error) {
	panic("not used")
}

func (f *fakeFieldRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FieldDefinition, error) {
	panic("not used")
}

func (f *fakeFieldRepo) CreateIfAbsent(ctx context.Context, accountID uuid.UUID, name string, dataType models.FieldType, description string, required bool) (*models.FieldDefinition, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fieldKey{accountID, name}
	if existing, ok := f.defs[key]; ok {
		return &existing, false, nil
	}
	d := models.FieldDefinition{
		ID:        uuid.New(),
		AccountID: accountID,
		FieldName: name,
		DataType:  dataType,
		Required:  required,
	}
	f.defs[key] = d
	f.creates++
	return &d, true, nil
}

func (f *fakeFieldRepo) Update(ctx context.Context, id uuid.UUID, params repository.UpdateFieldParams) (*models.FieldDefinition, error) {
	panic("not used")
}

func (f *fakeFieldRepo) Delete(ctx context.Context, id uuid.UUID) error {
	panic("not used")
}

type fakeRecordRepo struct {
	mu    sync.Mutex
	pairs int
}

func (f *fakeRecordRepo) CreateWithLead(ctx context.Context, accountID uuid.UUID, payload map[string]any, meta models.RecordMetadata, leadData map[string]any) (*models.Record, *models.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairs++
	rec := &models.Record{ID: uuid.New(), AccountID: accountID, Payload: payload, Metadata: meta}
	lead := &models.Lead{ID: uuid.New(), AccountID: accountID, RecordID: rec.ID, Data: leadData}
	return rec, lead, nil
}

func (f *fakeRecordRepo) List(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Record, int, error) {
	panic("not used")
}

func (f *fakeRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	panic("not used")
}

func TestConcurrentIngestCreatesFieldExactlyOnce(t *testing.T) {
	const n = 32

	account := testAccount(true)
	fields := newFakeFieldRepo()
	records := &fakeRecordRepo{}
	svc := newService(&fakeAccountRepo{account: account}, fields, records, nil)

	var wg sync.WaitGroup
	errs := make([]error, n)
	results := make([]*ingest.Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Ingest(context.Background(), apiKey,
				map[string]any{"utm_source": "newsletter"}, "10.0.0.1")
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Empty(t, results[i].UnknownFields)
		if len(results[i].FieldsCreated) > 0 {
			winners++
		}
	}

	// Exactly one definition row, exactly one call that reports having
	// created it, and a record+lead pair per call.
	require.Equal(t, 1, fields.creates)
	require.Equal(t, 1, winners)
	require.Equal(t, n, records.pairs)

	defs, err := fields.ListByAccount(context.Background(), account.ID)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "utm_source", defs[0].FieldName)
	require.Equal(t, models.FieldTypeString, defs[0].DataType)

	// Round-trip: the value read back from lead data equals the coerced
	// form of the raw value.
	v, err := schema.Coerce("newsletter", defs[0].DataType)
	require.NoError(t, err)
	require.Equal(t, "newsletter", v.Interface())
}
