package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lucas-arr/leadgate/internal/models"
	"github.com/lucas-arr/leadgate/internal/repository"
	"go.uber.org/zap"
)

// LeadHandler is the read-only admin view over derived leads.
type LeadHandler struct {
	repo   repository.LeadRepository
	logger *zap.Logger
}

func NewLeadHandler(repo repository.LeadRepository, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{repo: repo, logger: logger}
}

// List handles GET /v1/accounts/:id/leads.
func (h *LeadHandler) List(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}
	page, pageSize, ok := pageParams(c, 20, 100)
	if !ok {
		return
	}

	leads, total, err := h.repo.List(c.Request.Context(), accountID, pageSize, (page-1)*pageSize)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
		return
	}

	c.JSON(http.StatusOK, listResponse[models.Lead]{
		Items:    leads,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetByID handles GET /v1/leads/:id.
func (h *LeadHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
		return
	}

	lead, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get lead", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get lead"})
		return
	}
	if lead == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}

	c.JSON(http.StatusOK, lead)
}
