package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"beehive_monitor/internal/metrics"
	"beehive_monitor/internal/sensor"
	"beehive_monitor/internal/service"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// @Summary      Push a reading
// @Description  Devices without a serial link post readings here. Both fields are required.
// @Tags         readings
// @Accept       json
// @Produce      json
// @Param        X-Device-Key  header  string          false  "Device key, when configured"
// @Param        body          body    sensor.Reading  true   "Reading"
// @Success      202  {object}  models.IngestResult
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/readings [post]
func (h *Handler) pushReading(c *gin.Context) {
	var in sensor.Reading
	if err := c.ShouldBindJSON(&in); err != nil {
		metrics.SamplesRejected.WithLabelValues(metrics.SourcePush).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sample, err := in.Sample(time.Now(), metrics.SourcePush)
	if err != nil {
		metrics.SamplesRejected.WithLabelValues(metrics.SourcePush).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.services.Ingest(c.Request.Context(), sample)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSample) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to ingest reading", "push_ingest_failed", err)
		return
	}
	c.JSON(http.StatusAccepted, res)
}

// @Summary      Current readings
// @Description  Reads the attached sensor once, then returns the latest sample, the last window averages and the alert state.
// @Tags         readings
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/data [get]
// @Security     BearerAuth
func (h *Handler) getData(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Poll(c.Request.Context()))
}

// @Summary      Alert state
// @Tags         readings
// @Produce      json
// @Success      200  {object}  models.AlertState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/alerts [get]
// @Security     BearerAuth
func (h *Handler) getAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Alert())
}
