package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimetableSlotRepository persists the slot rows of committed timetables.
type TimetableSlotRepository struct {
	db *sqlx.DB
}

// NewTimetableSlotRepository constructs a slot repository.
func NewTimetableSlotRepository(db *sqlx.DB) *TimetableSlotRepository {
	return &TimetableSlotRepository{db: db}
}

func (r *TimetableSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch writes all slots of one timetable. Position preserves the
// acceptance order so reads reproduce composition output exactly.
func (r *TimetableSlotRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimeSlot) error {
	runner := r.exec(exec)
	query := `INSERT INTO timetable_slots (
		id, timetable_id, day_of_week, start_time, end_time,
		course_id, teacher_id, room_id, class_id, session_type,
		equipment_needed, position, created_at
	) VALUES (
		:id, :timetable_id, :day_of_week, :start_time, :end_time,
		:course_id, :teacher_id, :room_id, :class_id, :session_type,
		:equipment_needed, :position, :created_at
	)`

	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		if slots[i].CreatedAt.IsZero() {
			slots[i].CreatedAt = time.Now().UTC()
		}
		if _, err := sqlx.NamedExecContext(ctx, runner, query, slots[i]); err != nil {
			return fmt.Errorf("insert timetable slot %d: %w", i, err)
		}
	}
	return nil
}

// ListByTimetable returns slots in their committed acceptance order.
func (r *TimetableSlotRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimeSlot, error) {
	slots := make([]models.TimeSlot, 0)
	query := `SELECT id, timetable_id, day_of_week, start_time, end_time,
		course_id, teacher_id, room_id, class_id, session_type,
		equipment_needed, position, created_at
		FROM timetable_slots
		WHERE timetable_id = $1
		ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &slots, query, timetableID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}
