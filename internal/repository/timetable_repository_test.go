package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestTimetableRepositoryCreateVersioned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version\), 0\) \+ 1`).
		WithArgs("term-1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
	mock.ExpectExec(`INSERT INTO timetables`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	timetable := &models.Timetable{TermID: "term-1", CreatedBy: "scheduler"}
	err := repo.CreateVersioned(context.Background(), nil, timetable)

	require.NoError(t, err)
	assert.Equal(t, 3, timetable.Version)
	assert.NotEmpty(t, timetable.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "term_id", "version", "is_active"}).
		AddRow("tt-1", "term-1", 2, true)
	mock.ExpectQuery(`SELECT .+ FROM timetables WHERE id = \$1`).
		WithArgs("tt-1").
		WillReturnRows(rows)

	timetable, err := repo.FindByID(context.Background(), "tt-1")

	require.NoError(t, err)
	assert.Equal(t, "tt-1", timetable.ID)
	assert.Equal(t, 2, timetable.Version)
	assert.True(t, timetable.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM timetables WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")

	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM timetables`).
		WithArgs("term-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM timetables WHERE .+ ORDER BY created_at DESC`).
		WithArgs("term-1", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "term_id", "version"}).
			AddRow("tt-1", "term-1", 1))

	timetables, total, err := repo.List(context.Background(), models.TimetableFilter{
		TermID:   "term-1",
		Page:     1,
		PageSize: 20,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, timetables, 1)
	assert.Equal(t, "tt-1", timetables[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryActivate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimetableRepository(db)

	mock.ExpectExec(`UPDATE timetables SET is_active = FALSE`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE timetables SET is_active = TRUE`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Activate(context.Background(), nil, "tt-1", "term-1", nil)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryActivateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimetableRepository(db)

	mock.ExpectExec(`UPDATE timetables SET is_active = FALSE`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE timetables SET is_active = TRUE`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Activate(context.Background(), nil, "missing", "term-1", nil)

	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimetableRepository(db)

	mock.ExpectExec(`DELETE FROM timetables WHERE id = \$1`).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "tt-1")

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
