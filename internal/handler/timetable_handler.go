package handler

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type composerService interface {
	Compose(ctx context.Context, req dto.ComposeTimetableRequest) (*dto.ComposeTimetableResponse, error)
}

type simulatorService interface {
	Simulate(ctx context.Context, req dto.SimulateTimetableRequest) (*dto.SimulateTimetableResponse, error)
}

type timetableLifecycle interface {
	Get(ctx context.Context, id string) (*models.Timetable, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, *models.Pagination, error)
	Activate(ctx context.Context, id string) (*models.Timetable, error)
	Delete(ctx context.Context, id string) error
}

// TimetableHandler exposes composition, simulation and lifecycle endpoints.
type TimetableHandler struct {
	composer  composerService
	simulator simulatorService
	lifecycle timetableLifecycle
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(composer composerService, simulator simulatorService, lifecycle timetableLifecycle) *TimetableHandler {
	return &TimetableHandler{composer: composer, simulator: simulator, lifecycle: lifecycle}
}

// Register mounts timetable routes on the router group.
func (h *TimetableHandler) Register(group *gin.RouterGroup) {
	group.POST("/timetables/compose", h.Compose)
	group.GET("/timetables", h.List)
	group.GET("/timetables/:id", h.Get)
	group.POST("/timetables/:id/simulate", h.Simulate)
	group.POST("/timetables/:id/activate", h.Activate)
	group.DELETE("/timetables/:id", h.Delete)
}

// Compose godoc
// @Summary Compose a timetable from an ordered proposal batch
// @Description Validates each proposal in order, rejects clashing slots and commits the survivors as a new timetable version.
// @Tags timetables
// @Accept json
// @Produce json
// @Param payload body dto.ComposeTimetableRequest true "Composition request"
// @Success 201 {object} response.Envelope{data=dto.ComposeTimetableResponse}
// @Failure 400 {object} response.Envelope
// @Router /timetables/compose [post]
func (h *TimetableHandler) Compose(c *gin.Context) {
	var req dto.ComposeTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid compose payload"))
		return
	}

	result, err := h.composer.Compose(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Simulate godoc
// @Summary Simulate edits against a committed timetable
// @Description Applies an ordered edit batch to a detached copy and reports per-edit results and impact. Nothing is persisted.
// @Tags timetables
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.SimulateTimetableRequest true "Simulation request"
// @Success 200 {object} response.Envelope{data=dto.SimulateTimetableResponse}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/simulate [post]
func (h *TimetableHandler) Simulate(c *gin.Context) {
	var req dto.SimulateTimetableRequest
	// Patches are an allow-list; unknown fields are a caller mistake worth
	// failing loudly on, not silently dropping.
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid simulate payload"))
		return
	}
	req.TimetableID = c.Param("id")

	result, err := h.simulator.Simulate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, result, nil)
}

// Get godoc
// @Summary Get a timetable with its slots
// @Tags timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope{data=models.Timetable}
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	timetable, err := h.lifecycle.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, timetable, nil)
}

// List godoc
// @Summary List timetables
// @Tags timetables
// @Produce json
// @Param termId query string false "Filter by term"
// @Param classId query string false "Filter by class"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope{data=[]models.Timetable}
// @Router /timetables [get]
func (h *TimetableHandler) List(c *gin.Context) {
	filter := models.TimetableFilter{
		TermID: c.Query("termId"),
	}
	if classID := strings.TrimSpace(c.Query("classId")); classID != "" {
		filter.ClassID = &classID
	}
	if raw := strings.TrimSpace(c.Query("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	timetables, pagination, err := h.lifecycle.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, timetables, pagination)
}

// Activate godoc
// @Summary Activate a timetable version
// @Description Marks the timetable active and deactivates every sibling in the same term and class scope.
// @Tags timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope{data=models.Timetable}
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id}/activate [post]
func (h *TimetableHandler) Activate(c *gin.Context) {
	timetable, err := h.lifecycle.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, timetable, nil)
}

// Delete godoc
// @Summary Delete an inactive timetable version
// @Tags timetables
// @Param id path string true "Timetable ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.lifecycle.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
