package api

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/repository"
	"go.uber.org/zap"
)

type AccountHandler struct {
	repo   repository.AccountRepository
	logger *zap.Logger
}

func NewAccountHandler(repo repository.AccountRepository, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{repo: repo, logger: logger}
}

// newAPIKey generates the opaque ingest credential: a recognizable prefix
// plus 32 random bytes, urlsafe. Generated exactly once per account and
// never rotated through this API.
func newAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "lg_" + base64.RawURLEncoding.EncodeToString(buf), nil
}

type createAccountRequest struct {
	Name             string `json:"name" binding:"required"`
	AutoCreateFields *bool  `json:"auto_create_fields"`
}

type updateAccountRequest struct {
	Name             *string `json:"name"`
	Active           *bool   `json:"active"`
	AutoCreateFields *bool   `json:"auto_create_fields"`
}

// Create handles POST /v1/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	autoCreate := true
	if req.AutoCreateFields != nil {
		autoCreate = *req.AutoCreateFields
	}

	apiKey, err := newAPIKey()
	if err != nil {
		h.logger.Error("failed to generate api key", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	account, err := h.repo.Create(c.Request.Context(), req.Name, apiKey, autoCreate)
	if err != nil {
		h.logger.Error("failed to create account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, account)
}

// List handles GET /v1/accounts?page=1&page_size=20.
func (h *AccountHandler) List(c *gin.Context) {
	page, pageSize, ok := pageParams(c, 20, 100)
	if !ok {
		return
	}

	accounts, total, err := h.repo.List(c.Request.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		h.logger.Error("failed to list accounts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list accounts"})
		return
	}

	c.JSON(http.StatusOK, listResponse[models.Account]{
		Items:    accounts,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetByID handles GET /v1/accounts/:id.
func (h *AccountHandler) GetByID(c *gin.Context) {
	account, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, account)
}

// Update handles PUT /v1/accounts/:id. The api_key is not updatable.
func (h *AccountHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.repo.Update(c.Request.Context(), id, repository.UpdateAccountParams{
		Name:             req.Name,
		Active:           req.Active,
		AutoCreateFields: req.AutoCreateFields,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		h.logger.Error("failed to update account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update account"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// Delete handles DELETE /v1/accounts/:id — a soft delete. The account's
// api_key stops resolving but its data stays queryable by admins.
func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		h.logger.Error("failed to deactivate account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate account"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleAutoCreate handles PATCH /v1/accounts/:id/toggle-auto-create.
func (h *AccountHandler) ToggleAutoCreate(c *gin.Context) {
	account, ok := h.lookup(c)
	if !ok {
		return
	}

	flipped := !account.AutoCreateFields
	updated, err := h.repo.Update(c.Request.Context(), account.ID, repository.UpdateAccountParams{
		AutoCreateFields: &flipped,
	})
	if err != nil {
		h.logger.Error("failed to toggle auto-create", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle auto-create"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *AccountHandler) lookup(c *gin.Context) (*models.Account, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return nil, false
	}

	account, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get account"})
		return nil, false
	}
	if account == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return nil, false
	}

	return account, true
}
