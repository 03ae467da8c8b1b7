package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

const timetableCachePrefix = "timetable"

// TimetableService manages the lifecycle of committed timetables: lookup,
// listing, activation and deletion. Activation enforces the single-active
// rule per term and class scope.
type TimetableService struct {
	timetables timetableRepository
	slots      timetableSlotRepository
	tx         txProvider
	cache      *CacheService
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewTimetableService wires lifecycle dependencies.
func NewTimetableService(
	timetables timetableRepository,
	slots timetableSlotRepository,
	tx txProvider,
	cache *CacheService,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		timetables: timetables,
		slots:      slots,
		tx:         tx,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Get returns one timetable with its ordered slots, cache-aside.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.Timetable, error) {
	key := fmt.Sprintf("%s:%s", timetableCachePrefix, id)

	var cached models.Timetable
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	slots, err := s.slots.ListByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}
	timetable.TimeSlots = slots

	_ = s.cache.Set(ctx, key, timetable, s.cacheTTL)
	return timetable, nil
}

// List returns timetables matching the filter with total count pagination.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, *models.Pagination, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	timetables, total, err := s.timetables.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return timetables, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}, nil
}

// Activate marks one timetable active and deactivates every sibling sharing
// its term and class scope, in a single transaction.
func (s *TimetableService) Activate(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to begin activation transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.timetables.Activate(ctx, tx, id, timetable.TermID, timetable.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
			return nil, err
		}
		err = appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to activate timetable")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to commit activation")
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, timetableCachePrefix+":*")
	timetable.IsActive = true

	s.logger.Info("timetable activated",
		zap.String("timetable_id", id),
		zap.String("term_id", timetable.TermID),
	)
	return timetable, nil
}

// Delete removes a timetable. The active timetable cannot be deleted; it
// must be superseded by activating another version first.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if timetable.IsActive {
		return appErrors.Clone(appErrors.ErrConflict, "cannot delete the active timetable")
	}

	if err := s.timetables.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to delete timetable")
	}

	_ = s.cache.Invalidate(ctx, fmt.Sprintf("%s:%s", timetableCachePrefix, id))
	s.logger.Info("timetable deleted", zap.String("timetable_id", id))
	return nil
}
