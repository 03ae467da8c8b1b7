package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type exportService interface {
	Feed(ctx context.Context, timetableID string) (*dto.CalendarFeed, error)
	CSV(ctx context.Context, timetableID string) ([]byte, error)
	PDF(ctx context.Context, timetableID string) ([]byte, error)
}

// ExportHandler exposes read-only calendar and file renditions of committed
// timetables.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Register mounts export routes on the router group.
func (h *ExportHandler) Register(group *gin.RouterGroup) {
	group.GET("/timetables/:id/calendar", h.Calendar)
	group.GET("/timetables/:id/export/csv", h.CSV)
	group.GET("/timetables/:id/export/pdf", h.PDF)
}

// Calendar godoc
// @Summary Calendar feed for a committed timetable
// @Description Renders each slot as a weekly-recurring calendar event.
// @Tags exports
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope{data=dto.CalendarFeed}
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/calendar [get]
func (h *ExportHandler) Calendar(c *gin.Context) {
	feed, err := h.exports.Feed(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed, nil)
}

// CSV godoc
// @Summary CSV export of a committed timetable
// @Tags exports
// @Produce text/csv
// @Param id path string true "Timetable ID"
// @Success 200 {string} string "CSV content"
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/export/csv [get]
func (h *ExportHandler) CSV(c *gin.Context) {
	id := c.Param("id")
	data, err := h.exports.CSV(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%s.csv", id))
	c.Data(http.StatusOK, "text/csv", data)
}

// PDF godoc
// @Summary PDF export of a committed timetable
// @Tags exports
// @Produce application/pdf
// @Param id path string true "Timetable ID"
// @Success 200 {string} string "PDF content"
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/export/pdf [get]
func (h *ExportHandler) PDF(c *gin.Context) {
	id := c.Param("id")
	data, err := h.exports.PDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=timetable-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", data)
}
