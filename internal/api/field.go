package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/cache"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/repository"
	"go.uber.org/zap"
)

// FieldHandler is the admin surface for schema slots. Every write here
// invalidates the account's cached schema snapshot so in-flight ingest
// bursts pick the change up within one cache miss.
type FieldHandler struct {
	repo     repository.FieldRepository
	accounts repository.AccountRepository
	schemas  *cache.SchemaCache
	logger   *zap.Logger
}

func NewFieldHandler(repo repository.FieldRepository, accounts repository.AccountRepository, schemas *cache.SchemaCache, logger *zap.Logger) *FieldHandler {
	return &FieldHandler{repo: repo, accounts: accounts, schemas: schemas, logger: logger}
}

type createFieldRequest struct {
	FieldName   string `json:"field_name" binding:"required"`
	DataType    string `json:"data_type" binding:"required"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type updateFieldRequest struct {
	DataType    *string `json:"data_type"`
	Description *string `json:"description"`
	Required    *bool   `json:"required"`
}

// List handles GET /v1/accounts/:id/fields.
func (h *FieldHandler) List(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}
	page, pageSize, ok := pageParams(c, 50, 200)
	if !ok {
		return
	}

	fields, total, err := h.repo.List(c.Request.Context(), accountID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.logger.Error("failed to list fields", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list fields"})
		return
	}

	c.JSON(http.StatusOK, listResponse[models.FieldDefinition]{
		Items:    fields,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Create handles POST /v1/accounts/:id/fields. Uses the same race-safe
// create-or-fetch the ingest pipeline uses; an existing name is a 409
// here rather than an adopt-and-continue.
func (h *FieldHandler) Create(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var req createFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dataType := models.FieldType(req.DataType)
	if !dataType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data_type"})
		return
	}

	field, created, err := h.repo.CreateIfAbsent(c.Request.Context(), accountID, req.FieldName, dataType, req.Description, req.Required)
	if err != nil {
		h.logger.Error("failed to create field", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create field"})
		return
	}
	if !created {
		c.JSON(http.StatusConflict, gin.H{"error": "field already exists for this account"})
		return
	}

	h.schemas.Invalidate(c.Request.Context(), accountID)
	c.JSON(http.StatusCreated, field)
}

// Update handles PUT /v1/fields/:id.
func (h *FieldHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field id"})
		return
	}

	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dataType *models.FieldType
	if req.DataType != nil {
		dt := models.FieldType(*req.DataType)
		if !dt.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data_type"})
			return
		}
		dataType = &dt
	}

	field, err := h.repo.Update(c.Request.Context(), id, repository.UpdateFieldParams{
		DataType:    dataType,
		Description: req.Description,
		Required:    req.Required,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "field not found"})
			return
		}
		h.logger.Error("failed to update field", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update field"})
		return
	}

	h.schemas.Invalidate(c.Request.Context(), field.AccountID)
	c.JSON(http.StatusOK, field)
}

// Delete handles DELETE /v1/fields/:id — a hard delete. Historical lead
// data keeps the values it captured under this name; a later ingest (or
// admin) may freely re-create the name.
func (h *FieldHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field id"})
		return
	}

	// Fetch first: the account id is needed for cache invalidation and
	// is gone once the row is.
	field, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get field", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete field"})
		return
	}
	if field == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "field not found"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.logger.Error("failed to delete field", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete field"})
		return
	}

	h.schemas.Invalidate(c.Request.Context(), field.AccountID)
	c.Status(http.StatusNoContent)
}

func (h *FieldHandler) accountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return uuid.Nil, false
	}

	account, err := h.accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get account"})
		return uuid.Nil, false
	}
	if account == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return uuid.Nil, false
	}

	return account.ID, true
}
