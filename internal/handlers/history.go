package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"beehive_monitor/internal/store"
)

const errNoData = "no data available"

// storeError maps aggregate store errors to responses.
func (h *Handler) storeError(c *gin.Context, logKey string, err error) {
	switch {
	case errors.Is(err, store.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": errNoData})
	case errors.Is(err, store.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date; use YYYY-MM-DD"})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to read stored data", logKey, err)
	}
}

// @Summary      Day history
// @Description  Per-minute means for a day. Without a date, today is used.
// @Tags         history
// @Produce      json
// @Param        date  path  string  false  "Day (YYYY-MM-DD)"  example(2025-06-01)
// @Success      200   {object}  models.DayHistory
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/history/{date} [get]
// @Security     BearerAuth
func (h *Handler) getHistory(c *gin.Context) {
	hist, err := h.services.ByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		h.storeError(c, "history_failed", err)
		return
	}
	c.JSON(http.StatusOK, hist)
}

// @Summary      Extremes
// @Description  Min, max, mean and sample standard deviation over all recorded windows.
// @Tags         history
// @Produce      json
// @Success      200  {object}  models.Extremes
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/extremes [get]
// @Security     BearerAuth
func (h *Handler) getExtremes(c *gin.Context) {
	ex, err := h.services.Extremes(c.Request.Context())
	if err != nil {
		h.storeError(c, "extremes_failed", err)
		return
	}
	c.JSON(http.StatusOK, ex)
}
