package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucas-arr/leadgate/internal/ingest"
	"github.com/lucas-arr/leadgate/internal/observ"
	"go.uber.org/zap"
)

// IngestHandler owns the one endpoint webhook senders hit. It is public:
// the api_key in the path is the caller's entire identity, and failures
// deliberately leak nothing about which tenants exist.
type IngestHandler struct {
	service *ingest.Service
	metrics *observ.Metrics
	logger  *zap.Logger
}

func NewIngestHandler(service *ingest.Service, metrics *observ.Metrics, logger *zap.Logger) *IngestHandler {
	return &IngestHandler{service: service, metrics: metrics, logger: logger}
}

type ingestResponse struct {
	Success bool `json:"success"`
	ingest.Result
}

// Ingest handles POST /ingest/:api_key with a free-form JSON object body.
func (h *IngestHandler) Ingest(c *gin.Context) {
	start := time.Now()

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}
	if payload == nil {
		// A literal JSON null binds to a nil map; treat it like the
		// empty heartbeat payload it effectively is.
		payload = map[string]any{}
	}

	result, err := h.service.Ingest(c.Request.Context(), c.Param("api_key"), payload, c.ClientIP())

	outcome := "ok"
	switch {
	case errors.Is(err, ingest.ErrAccountNotFound):
		outcome = "account_not_found"
	case err != nil:
		outcome = "persistence_error"
	}
	if h.metrics != nil {
		h.metrics.IngestTotal.WithLabelValues(outcome).Inc()
		h.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}

	switch {
	case errors.Is(err, ingest.ErrAccountNotFound):
		// Same body for unknown and inactive keys.
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found or inactive"})
	case err != nil:
		h.logger.Error("ingest failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingest failed"})
	default:
		c.JSON(http.StatusOK, ingestResponse{Success: true, Result: *result})
	}
}
