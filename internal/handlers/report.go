package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type renderFunc func(ctx context.Context, date string, w io.Writer) error

// sendReport renders into a buffer first so a failure can still produce
// a JSON error instead of a truncated download.
func (h *Handler) sendReport(c *gin.Context, render renderFunc, contentType, ext string) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	var buf bytes.Buffer
	if err := render(c.Request.Context(), date, &buf); err != nil {
		h.storeError(c, "report_failed", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="hive-%s.%s"`, date, ext))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// @Summary      PDF report
// @Tags         reports
// @Produce      application/pdf
// @Param        date  query  string  false  "Day (YYYY-MM-DD), default today"
// @Success      200   {file}    file
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/report/pdf [get]
// @Security     BearerAuth
func (h *Handler) getPDFReport(c *gin.Context) {
	h.sendReport(c, h.services.PDF, contentTypePDF, "pdf")
}

// @Summary      Excel export
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        date  query  string  false  "Day (YYYY-MM-DD), default today"
// @Success      200   {file}    file
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/report/xlsx [get]
// @Security     BearerAuth
func (h *Handler) getExcelReport(c *gin.Context) {
	h.sendReport(c, h.services.Excel, contentTypeXLSX, "xlsx")
}
