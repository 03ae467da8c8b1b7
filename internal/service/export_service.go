package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

// ExportConfig bounds calendar rendition behaviour.
type ExportConfig struct {
	RecurrenceWeeks int
	FeedName        string
}

// ExportService renders committed timetables as read-only calendar feeds and
// flat file exports. It never mutates schedule state.
type ExportService struct {
	timetables timetableRepository
	slots      timetableSlotRepository
	rooms      roomDirectory
	cache      *CacheService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService wires export dependencies.
func NewExportService(
	timetables timetableRepository,
	slots timetableSlotRepository,
	rooms roomDirectory,
	cache *CacheService,
	logger *zap.Logger,
	cfg ExportConfig,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RecurrenceWeeks <= 0 {
		cfg.RecurrenceWeeks = 16
	}
	if strings.TrimSpace(cfg.FeedName) == "" {
		cfg.FeedName = "Timetable"
	}
	return &ExportService{
		timetables: timetables,
		slots:      slots,
		rooms:      rooms,
		cache:      cache,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		cfg:        cfg,
	}
}

// Feed renders the calendar feed for one committed timetable. Each slot
// becomes a weekly-recurring event with a fixed occurrence count.
func (s *ExportService) Feed(ctx context.Context, timetableID string) (*dto.CalendarFeed, error) {
	key := fmt.Sprintf("%s:feed:%s", timetableCachePrefix, timetableID)
	var cached dto.CalendarFeed
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	timetable, slots, roomNames, err := s.load(ctx, timetableID)
	if err != nil {
		return nil, err
	}

	events := make([]dto.CalendarEvent, 0, len(slots))
	for _, slot := range slots {
		events = append(events, dto.CalendarEvent{
			UID:         slot.ID,
			Title:       eventTitle(slot),
			Day:         slot.DayOfWeek,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
			Location:    slotLocation(slot, roomNames),
			SessionType: string(slot.SessionType),
			CourseID:    slot.CourseID,
			TeacherID:   slot.TeacherID,
			ClassID:     slot.ClassID,
			Recurrence:  fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", s.cfg.RecurrenceWeeks),
		})
	}

	feed := &dto.CalendarFeed{
		TimetableID: timetable.ID,
		Name:        fmt.Sprintf("%s %s", s.cfg.FeedName, timetable.TermID),
		Version:     timetable.Version,
		Events:      events,
		GeneratedAt: time.Now().UTC(),
	}
	_ = s.cache.Set(ctx, key, feed, 0)
	return feed, nil
}

// CSV renders the timetable as a flat CSV grid.
func (s *ExportService) CSV(ctx context.Context, timetableID string) ([]byte, error) {
	grid, _, err := s.grid(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(grid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return data, nil
}

// PDF renders the timetable as a printable PDF grid.
func (s *ExportService) PDF(ctx context.Context, timetableID string) ([]byte, error) {
	grid, timetable, err := s.grid(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s %s v%d", s.cfg.FeedName, timetable.TermID, timetable.Version)
	data, err := s.pdf.Render(grid, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return data, nil
}

func (s *ExportService) grid(ctx context.Context, timetableID string) (export.Grid, *models.Timetable, error) {
	timetable, slots, roomNames, err := s.load(ctx, timetableID)
	if err != nil {
		return export.Grid{}, nil, err
	}

	rows := make([]map[string]string, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, map[string]string{
			"Day":     slot.DayOfWeek,
			"Start":   slot.StartTime,
			"End":     slot.EndTime,
			"Course":  strPtrValue(slot.CourseID),
			"Teacher": strPtrValue(slot.TeacherID),
			"Room":    slotLocation(slot, roomNames),
			"Class":   strPtrValue(slot.ClassID),
			"Type":    string(slot.SessionType),
		})
	}
	return export.Grid{
		Headers: []string{"Day", "Start", "End", "Course", "Teacher", "Room", "Class", "Type"},
		Rows:    rows,
	}, timetable, nil
}

func (s *ExportService) load(ctx context.Context, timetableID string) (*models.Timetable, []models.TimeSlot, map[string]string, error) {
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	slots, err := s.slots.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}

	roomNames := make(map[string]string)
	if s.rooms != nil {
		ids := make([]string, 0)
		seen := make(map[string]bool)
		for _, slot := range slots {
			if slot.RoomID == nil || seen[*slot.RoomID] {
				continue
			}
			seen[*slot.RoomID] = true
			ids = append(ids, *slot.RoomID)
		}
		if len(ids) > 0 {
			rooms, roomErr := s.rooms.ListByIDs(ctx, ids)
			if roomErr != nil {
				s.logger.Warn("room lookup failed during export", zap.Error(roomErr))
			} else {
				for _, room := range rooms {
					roomNames[room.ID] = room.Name
				}
			}
		}
	}
	return timetable, slots, roomNames, nil
}

func eventTitle(slot models.TimeSlot) string {
	if slot.CourseID != nil && *slot.CourseID != "" {
		return fmt.Sprintf("%s (%s)", *slot.CourseID, slot.SessionType)
	}
	return string(slot.SessionType)
}

// slotLocation resolves the room display name, falling back to the raw id
// when the directory cannot resolve it.
func slotLocation(slot models.TimeSlot, roomNames map[string]string) string {
	if slot.RoomID == nil {
		return ""
	}
	if name, ok := roomNames[*slot.RoomID]; ok && name != "" {
		return name
	}
	return *slot.RoomID
}

func strPtrValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
