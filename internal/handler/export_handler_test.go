package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type exportStub struct {
	feed *dto.CalendarFeed
	csv  []byte
	pdf  []byte
	err  error
}

func (s *exportStub) Feed(_ context.Context, _ string) (*dto.CalendarFeed, error) {
	return s.feed, s.err
}

func (s *exportStub) CSV(_ context.Context, _ string) ([]byte, error) {
	return s.csv, s.err
}

func (s *exportStub) PDF(_ context.Context, _ string) ([]byte, error) {
	return s.pdf, s.err
}

func newExportRouter(stub *exportStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewExportHandler(stub).Register(r.Group("/api/v1"))
	return r
}

func TestExportHandlerCalendar(t *testing.T) {
	router := newExportRouter(&exportStub{feed: &dto.CalendarFeed{TimetableID: "tt-1"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timetables/tt-1/calendar", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"timetableId":"tt-1"`)
}

func TestExportHandlerCalendarNotFound(t *testing.T) {
	router := newExportRouter(&exportStub{err: appErrors.Clone(appErrors.ErrNotFound, "timetable not found")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timetables/missing/calendar", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportHandlerCSV(t *testing.T) {
	router := newExportRouter(&exportStub{csv: []byte("Day,Start\nMONDAY,09:00\n")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timetables/tt-1/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable-tt-1.csv")
}

func TestExportHandlerPDF(t *testing.T) {
	router := newExportRouter(&exportStub{pdf: []byte("%PDF-1.4")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timetables/tt-1/export/pdf", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}
