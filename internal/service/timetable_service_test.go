package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestTimetableServiceGet(t *testing.T) {
	repo := &timetableRepoStub{
		findResult: &models.Timetable{ID: "tt-1", TermID: "term-1"},
	}
	slots := &slotRepoStub{listResult: baselineSlots()}
	svc := NewTimetableService(repo, slots, nil, nil, 0, nil)

	timetable, err := svc.Get(context.Background(), "tt-1")

	require.NoError(t, err)
	assert.Equal(t, "tt-1", timetable.ID)
	assert.Len(t, timetable.TimeSlots, 2)
}

func TestTimetableServiceGetNotFound(t *testing.T) {
	repo := &timetableRepoStub{findErr: sql.ErrNoRows}
	svc := NewTimetableService(repo, &slotRepoStub{}, nil, nil, 0, nil)

	_, err := svc.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceListDefaultsPagination(t *testing.T) {
	repo := &timetableRepoStub{
		listResult: []models.Timetable{{ID: "tt-1"}},
		listTotal:  1,
	}
	svc := NewTimetableService(repo, &slotRepoStub{}, nil, nil, 0, nil)

	timetables, pagination, err := svc.List(context.Background(), models.TimetableFilter{})

	require.NoError(t, err)
	assert.Len(t, timetables, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestTimetableServiceActivate(t *testing.T) {
	repo := &timetableRepoStub{
		findResult: &models.Timetable{ID: "tt-1", TermID: "term-1"},
	}
	db, mock := newTxProvider(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := NewTimetableService(repo, &slotRepoStub{}, db, nil, 0, nil)

	timetable, err := svc.Activate(context.Background(), "tt-1")

	require.NoError(t, err)
	assert.True(t, timetable.IsActive)
	assert.Equal(t, []string{"tt-1"}, repo.activated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableServiceActivateNotFound(t *testing.T) {
	repo := &timetableRepoStub{findErr: sql.ErrNoRows}
	db, _ := newTxProvider(t)
	svc := NewTimetableService(repo, &slotRepoStub{}, db, nil, 0, nil)

	_, err := svc.Activate(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceDeleteRejectsActive(t *testing.T) {
	repo := &timetableRepoStub{
		findResult: &models.Timetable{ID: "tt-1", IsActive: true},
	}
	svc := NewTimetableService(repo, &slotRepoStub{}, nil, nil, 0, nil)

	err := svc.Delete(context.Background(), "tt-1")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestTimetableServiceDeleteInactive(t *testing.T) {
	repo := &timetableRepoStub{
		findResult: &models.Timetable{ID: "tt-1", IsActive: false},
	}
	svc := NewTimetableService(repo, &slotRepoStub{}, nil, nil, 0, nil)

	err := svc.Delete(context.Background(), "tt-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"tt-1"}, repo.deleted)
}
