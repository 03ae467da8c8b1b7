package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type composerStub struct {
	lastRequest dto.ComposeTimetableRequest
	result      *dto.ComposeTimetableResponse
	err         error
}

func (s *composerStub) Compose(_ context.Context, req dto.ComposeTimetableRequest) (*dto.ComposeTimetableResponse, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type simulatorStub struct {
	lastRequest dto.SimulateTimetableRequest
	result      *dto.SimulateTimetableResponse
	err         error
}

func (s *simulatorStub) Simulate(_ context.Context, req dto.SimulateTimetableRequest) (*dto.SimulateTimetableResponse, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type lifecycleStub struct {
	timetable *models.Timetable
	err       error
	deleted   []string
}

func (s *lifecycleStub) Get(_ context.Context, _ string) (*models.Timetable, error) {
	return s.timetable, s.err
}

func (s *lifecycleStub) List(_ context.Context, _ models.TimetableFilter) ([]models.Timetable, *models.Pagination, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return []models.Timetable{*s.timetable}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (s *lifecycleStub) Activate(_ context.Context, _ string) (*models.Timetable, error) {
	return s.timetable, s.err
}

func (s *lifecycleStub) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func newTestRouter(composer *composerStub, simulator *simulatorStub, lifecycle *lifecycleStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewTimetableHandler(composer, simulator, lifecycle).Register(r.Group("/api/v1"))
	return r
}

func TestTimetableHandlerCompose(t *testing.T) {
	composer := &composerStub{result: &dto.ComposeTimetableResponse{
		Timetable:         &models.Timetable{ID: "tt-1", TermID: "term-1"},
		AcceptedProposals: 1,
	}}
	router := newTestRouter(composer, &simulatorStub{}, &lifecycleStub{})

	body := `{"termId":"term-1","proposals":[{"day":"MONDAY","startTime":"09:00","endTime":"10:00"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timetables/compose", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "term-1", composer.lastRequest.TermID)

	var envelope struct {
		Data dto.ComposeTimetableResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "tt-1", envelope.Data.Timetable.ID)
}

func TestTimetableHandlerComposeMalformedBody(t *testing.T) {
	router := newTestRouter(&composerStub{}, &simulatorStub{}, &lifecycleStub{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timetables/compose", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerSimulate(t *testing.T) {
	simulator := &simulatorStub{result: &dto.SimulateTimetableResponse{
		SimulatedTimetable: &models.Timetable{ID: "tt-1"},
	}}
	router := newTestRouter(&composerStub{}, simulator, &lifecycleStub{})

	body := `{"changes":[{"action":"delete","slotId":"b1"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timetables/tt-1/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tt-1", simulator.lastRequest.TimetableID)
	require.Len(t, simulator.lastRequest.Changes, 1)
	assert.Equal(t, "delete", simulator.lastRequest.Changes[0].Action)
}

func TestTimetableHandlerSimulateRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(&composerStub{}, &simulatorStub{}, &lifecycleStub{})

	body := `{"changes":[{"action":"update","slotId":"b1","patch":{"version":99}}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timetables/tt-1/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerGetNotFound(t *testing.T) {
	lifecycle := &lifecycleStub{err: appErrors.Clone(appErrors.ErrNotFound, "timetable not found")}
	router := newTestRouter(&composerStub{}, &simulatorStub{}, lifecycle)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timetables/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}

func TestTimetableHandlerList(t *testing.T) {
	lifecycle := &lifecycleStub{timetable: &models.Timetable{ID: "tt-1", TermID: "term-1"}}
	router := newTestRouter(&composerStub{}, &simulatorStub{}, lifecycle)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timetables?termId=term-1&active=true", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data       []models.Timetable `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestTimetableHandlerListInvalidActiveFlag(t *testing.T) {
	lifecycle := &lifecycleStub{timetable: &models.Timetable{ID: "tt-1"}}
	router := newTestRouter(&composerStub{}, &simulatorStub{}, lifecycle)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timetables?active=banana", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerDelete(t *testing.T) {
	lifecycle := &lifecycleStub{}
	router := newTestRouter(&composerStub{}, &simulatorStub{}, lifecycle)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/timetables/tt-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"tt-1"}, lifecycle.deleted)
}

func TestTimetableHandlerDeleteActiveConflict(t *testing.T) {
	lifecycle := &lifecycleStub{err: appErrors.Clone(appErrors.ErrConflict, "cannot delete the active timetable")}
	router := newTestRouter(&composerStub{}, &simulatorStub{}, lifecycle)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/timetables/tt-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
