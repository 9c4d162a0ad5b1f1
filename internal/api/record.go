package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/repository"
	"go.uber.org/zap"
)

// RecordHandler is the read-only admin view over raw captures. Records
// are written exclusively by the ingest pipeline and never modified here.
type RecordHandler struct {
	repo   repository.RecordRepository
	logger *zap.Logger
}

func NewRecordHandler(repo repository.RecordRepository, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{repo: repo, logger: logger}
}

// List handles GET /v1/accounts/:id/records.
func (h *RecordHandler) List(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}
	page, pageSize, ok := pageParams(c, 20, 100)
	if !ok {
		return
	}

	records, total, err := h.repo.List(c.Request.Context(), accountID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.logger.Error("failed to list records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
		return
	}

	c.JSON(http.StatusOK, listResponse[models.Record]{
		Items:    records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetByID handles GET /v1/records/:id.
func (h *RecordHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get record"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}
