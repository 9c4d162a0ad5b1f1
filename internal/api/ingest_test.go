package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/ingest"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIngestRouter(accounts *mocks.AccountRepository, fields *mocks.FieldRepository, records *mocks.RecordRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	svc := ingest.NewService(accounts, fields, records, nil, nil, nil, logger)
	handler := NewIngestHandler(svc, nil, logger)

	r := gin.New()
	r.POST("/ingest/:api_key", handler.Ingest)
	return r
}

func postIngest(t *testing.T, r *gin.Engine, apiKey, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ingest/"+apiKey, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIngestEndpointRejectsMalformedBody(t *testing.T) {
	r := newIngestRouter(&mocks.AccountRepository{}, &mocks.FieldRepository{}, &mocks.RecordRepository{})

	for _, body := range []string{"not json", `[1, 2, 3]`, `"just a string"`} {
		w := postIngest(t, r, "lg_whatever", body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestIngestEndpointUnknownKey(t *testing.T) {
	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", mock.Anything, "lg_missing").Return((*models.Account)(nil), nil)

	r := newIngestRouter(accounts, &mocks.FieldRepository{}, &mocks.RecordRepository{})
	w := postIngest(t, r, "lg_missing", `{"email": "a@b.com"}`)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "account not found or inactive", resp["error"])
}

func TestIngestEndpointSuccess(t *testing.T) {
	account := &models.Account{
		ID:               uuid.New(),
		Name:             "acme",
		APIKey:           "lg_good",
		Active:           true,
		AutoCreateFields: false,
	}
	recordID := uuid.New()
	leadID := uuid.New()

	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", mock.Anything, "lg_good").Return(account, nil)

	fields := &mocks.FieldRepository{}
	fields.On("ListByAccount", mock.Anything, account.ID).Return([]models.FieldDefinition{
		{ID: uuid.New(), AccountID: account.ID, FieldName: "email", DataType: models.FieldTypeEmail},
	}, nil)

	records := &mocks.RecordRepository{}
	records.On("CreateWithLead", mock.Anything, account.ID, mock.Anything, mock.Anything, mock.Anything).
		Return(
			&models.Record{ID: recordID, AccountID: account.ID},
			&models.Lead{ID: leadID, AccountID: account.ID, RecordID: recordID},
			nil,
		)

	r := newIngestRouter(accounts, fields, records)
	w := postIngest(t, r, "lg_good", `{"email": "a@b.com", "mystery": 1}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success           bool     `json:"success"`
		RecordID          string   `json:"record_id"`
		LeadID            string   `json:"lead_id"`
		UnknownFields     []string `json:"unknown_fields"`
		AutoCreateEnabled bool     `json:"auto_create_enabled"`
		FieldsCreated     []string `json:"fields_created"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, recordID.String(), resp.RecordID)
	require.Equal(t, leadID.String(), resp.LeadID)
	require.Equal(t, []string{"mystery"}, resp.UnknownFields)
	require.False(t, resp.AutoCreateEnabled)
	require.Empty(t, resp.FieldsCreated)
}

func TestIngestEndpointNullBody(t *testing.T) {
	account := &models.Account{ID: uuid.New(), APIKey: "lg_good", Active: true}

	accounts := &mocks.AccountRepository{}
	accounts.On("GetActiveByAPIKey", mock.Anything, "lg_good").Return(account, nil)

	fields := &mocks.FieldRepository{}
	fields.On("ListByAccount", mock.Anything, account.ID).Return([]models.FieldDefinition{}, nil)

	records := &mocks.RecordRepository{}
	records.On("CreateWithLead", mock.Anything, account.ID, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Record{ID: uuid.New()}, &models.Lead{ID: uuid.New()}, nil)

	r := newIngestRouter(accounts, fields, records)
	w := postIngest(t, r, "lg_good", `null`)
	require.Equal(t, http.StatusOK, w.Code)
}
