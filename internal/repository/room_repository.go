package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// RoomRepository reads the room directory used for equipment checks and
// export locations.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// FindByID returns one room.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	query := `SELECT id, name, building, capacity, equipment, active, created_at, updated_at
		FROM rooms WHERE id = $1`
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByIDs returns the rooms matching the given ids. Unknown ids are
// silently absent from the result.
func (r *RoomRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Room, error) {
	if len(ids) == 0 {
		return []models.Room{}, nil
	}
	rooms := make([]models.Room, 0, len(ids))
	query := `SELECT id, name, building, capacity, equipment, active, created_at, updated_at
		FROM rooms WHERE id = ANY($1)`
	if err := r.db.SelectContext(ctx, &rooms, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
