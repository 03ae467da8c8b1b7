package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimetableRepository persists timetable headers.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a timetable with the next version number for its
// term and class scope. Null class ids share one version sequence.
func (r *TimetableRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	runner := r.exec(exec)

	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	timetable.CreatedAt = now
	timetable.UpdatedAt = now

	var version int
	row := runner.QueryRowxContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1
		 FROM timetables
		 WHERE term_id = $1 AND class_id IS NOT DISTINCT FROM $2`,
		timetable.TermID, timetable.ClassID,
	)
	if err := row.Scan(&version); err != nil {
		return fmt.Errorf("next timetable version: %w", err)
	}
	timetable.Version = version

	query := `INSERT INTO timetables (
		id, term_id, class_id, version, is_active, created_by, last_modified_by, meta, created_at, updated_at
	) VALUES (
		:id, :term_id, :class_id, :version, :is_active, :created_by, :last_modified_by, :meta, :created_at, :updated_at
	)`
	if _, err := sqlx.NamedExecContext(ctx, runner, query, timetable); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// FindByID returns one timetable header.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	var timetable models.Timetable
	query := `SELECT id, term_id, class_id, version, is_active, created_by, last_modified_by, meta, created_at, updated_at
		FROM timetables WHERE id = $1`
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// List returns timetables matching the filter plus the unpaged total.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if strings.TrimSpace(filter.TermID) != "" {
		args = append(args, filter.TermID)
		conditions = append(conditions, fmt.Sprintf("term_id = $%d", len(args)))
	}
	if filter.ClassID != nil {
		args = append(args, *filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM timetables WHERE %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count timetables: %w", err)
	}

	limit := filter.PageSize
	offset := (filter.Page - 1) * filter.PageSize
	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(
		`SELECT id, term_id, class_id, version, is_active, created_by, last_modified_by, meta, created_at, updated_at
		 FROM timetables WHERE %s
		 ORDER BY created_at DESC
		 LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args),
	)

	timetables := make([]models.Timetable, 0)
	if err := r.db.SelectContext(ctx, &timetables, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, total, nil
}

// Activate deactivates every timetable in the same term and class scope and
// activates the given one. Returns sql.ErrNoRows when the target is missing.
func (r *TimetableRepository) Activate(ctx context.Context, exec sqlx.ExtContext, id, termID string, classID *string) error {
	runner := r.exec(exec)

	if _, err := runner.ExecContext(ctx,
		`UPDATE timetables SET is_active = FALSE, updated_at = $1
		 WHERE term_id = $2 AND class_id IS NOT DISTINCT FROM $3 AND id <> $4`,
		time.Now().UTC(), termID, classID, id,
	); err != nil {
		return fmt.Errorf("deactivate sibling timetables: %w", err)
	}

	result, err := runner.ExecContext(ctx,
		`UPDATE timetables SET is_active = TRUE, updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("activate timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("activation rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timetable header; slot rows cascade at the schema level.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
