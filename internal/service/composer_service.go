package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type timetableRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error)
	Activate(ctx context.Context, exec sqlx.ExtContext, id, termID string, classID *string) error
	Delete(ctx context.Context, id string) error
}

type timetableSlotRepository interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.TimeSlot) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimeSlot, error)
}

type roomDirectory interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Room, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// ComposerConfig bounds composition behaviour.
type ComposerConfig struct {
	MaxTeacherHours  int
	MaxProposalBatch int
}

// ComposerService folds ordered proposal batches into committed timetables.
type ComposerService struct {
	timetables timetableRepository
	slots      timetableSlotRepository
	rooms      roomDirectory
	detector   ClashDetector
	checker    *ConstraintChecker
	tx         txProvider
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	cfg        ComposerConfig
}

// NewComposerService wires composer dependencies.
func NewComposerService(
	timetables timetableRepository,
	slots timetableSlotRepository,
	rooms roomDirectory,
	detector ClashDetector,
	checker *ConstraintChecker,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg ComposerConfig,
) *ComposerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if detector == nil {
		detector = NewPairwiseClashDetector()
	}
	if checker == nil {
		checker = NewConstraintChecker()
	}
	if cfg.MaxTeacherHours <= 0 {
		cfg.MaxTeacherHours = DefaultMaxTeacherHours
	}
	if cfg.MaxProposalBatch <= 0 {
		cfg.MaxProposalBatch = 5000
	}
	return &ComposerService{
		timetables: timetables,
		slots:      slots,
		rooms:      rooms,
		detector:   detector,
		checker:    checker,
		tx:         tx,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// Compose validates each proposal in input order, rejects clashing ones and
// commits the surviving slots as a new timetable version. Order encodes
// priority: an accepted slot is never evicted to admit a later proposal.
func (s *ComposerService) Compose(ctx context.Context, req dto.ComposeTimetableRequest) (*dto.ComposeTimetableResponse, error) {
	start := time.Now()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid compose payload")
	}
	if len(req.Proposals) > s.cfg.MaxProposalBatch {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("proposal batch exceeds limit of %d", s.cfg.MaxProposalBatch))
	}

	maxHours := req.Constraints.MaxTeacherHours
	if maxHours <= 0 {
		maxHours = s.cfg.MaxTeacherHours
	}

	roomMap, err := s.loadRooms(ctx, req.Proposals)
	if err != nil {
		return nil, err
	}

	accepted := make([]models.TimeSlot, 0, len(req.Proposals))
	clashes := make([]dto.RejectedProposal, 0)
	warnings := make([]models.ConstraintWarning, 0)
	invalid := make([]dto.InvalidProposal, 0)

	for i, proposal := range req.Proposals {
		if reason, ok := validateProposal(proposal); !ok {
			invalid = append(invalid, dto.InvalidProposal{Index: i, Proposal: proposal, Reason: reason})
			continue
		}

		slot := slotFromProposal(proposal)
		slot.Position = len(accepted)

		accepted = append(accepted, slot)
		report := s.detector.Detect(accepted)
		if report.HasClash {
			accepted = accepted[:len(accepted)-1]
			clashes = append(clashes, dto.RejectedProposal{Proposal: proposal, Clash: report})
			s.metrics.RecordClash(report.Type)
			continue
		}

		warnings = append(warnings, s.checker.CheckSlot(accepted, slot, maxHours, roomMap)...)
	}

	timetable := &models.Timetable{
		ID:             uuid.NewString(),
		TermID:         req.TermID,
		ClassID:        req.ClassID,
		CreatedBy:      req.RequestedBy,
		LastModifiedBy: req.RequestedBy,
		TimeSlots:      accepted,
	}
	if meta, marshalErr := composeMeta(req.Constraints); marshalErr == nil {
		timetable.Meta = meta
	}

	if len(accepted) > 0 {
		if err := s.persist(ctx, timetable); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordComposition(len(accepted), len(clashes), time.Since(start))
	s.logger.Info("timetable composed",
		zap.String("timetable_id", timetable.ID),
		zap.Int("accepted", len(accepted)),
		zap.Int("rejected", len(clashes)),
		zap.Int("invalid", len(invalid)),
	)

	return &dto.ComposeTimetableResponse{
		Timetable:         timetable,
		Clashes:           clashes,
		Warnings:          warnings,
		Invalid:           invalid,
		AcceptedProposals: len(accepted),
		RejectedProposals: len(clashes),
	}, nil
}

// persist writes the timetable and all of its slots in one transaction.
// A failed commit leaves no partial schedule behind.
func (s *ComposerService) persist(ctx context.Context, timetable *models.Timetable) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to begin timetable transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.timetables.CreateVersioned(ctx, tx, timetable); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create timetable")
		return err
	}
	for i := range timetable.TimeSlots {
		timetable.TimeSlots[i].TimetableID = timetable.ID
	}
	if err = s.slots.InsertBatch(ctx, tx, timetable.TimeSlots); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist timetable slots")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to commit timetable transaction")
		return err
	}
	return nil
}

func (s *ComposerService) loadRooms(ctx context.Context, proposals []dto.SlotProposal) (map[string]models.Room, error) {
	if s.rooms == nil {
		return map[string]models.Room{}, nil
	}
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, proposal := range proposals {
		if proposal.RoomID == nil || seen[*proposal.RoomID] {
			continue
		}
		seen[*proposal.RoomID] = true
		ids = append(ids, *proposal.RoomID)
	}
	if len(ids) == 0 {
		return map[string]models.Room{}, nil
	}
	rooms, err := s.rooms.ListByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room directory")
	}
	result := make(map[string]models.Room, len(rooms))
	for _, room := range rooms {
		result[room.ID] = room
	}
	return result, nil
}

// validateProposal enforces the per-item required shape: a known day name
// and a parseable HH:MM window with start strictly before end.
func validateProposal(proposal dto.SlotProposal) (string, bool) {
	if strings.TrimSpace(proposal.Day) == "" {
		return "day is required", false
	}
	if !models.ValidDay(proposal.Day) {
		return fmt.Sprintf("unknown day %q", proposal.Day), false
	}
	if strings.TrimSpace(proposal.StartTime) == "" || strings.TrimSpace(proposal.EndTime) == "" {
		return "startTime and endTime are required", false
	}
	startMin, ok := models.MinuteOfDay(proposal.StartTime)
	if !ok {
		return fmt.Sprintf("malformed startTime %q", proposal.StartTime), false
	}
	endMin, ok := models.MinuteOfDay(proposal.EndTime)
	if !ok {
		return fmt.Sprintf("malformed endTime %q", proposal.EndTime), false
	}
	if endMin <= startMin {
		return "startTime must be before endTime", false
	}
	return "", true
}

func slotFromProposal(proposal dto.SlotProposal) models.TimeSlot {
	sessionType := models.SessionType(strings.ToUpper(strings.TrimSpace(proposal.SessionType)))
	if sessionType == "" {
		sessionType = models.SessionTypeLecture
	}
	return models.TimeSlot{
		ID:              uuid.NewString(),
		DayOfWeek:       strings.ToUpper(strings.TrimSpace(proposal.Day)),
		StartTime:       strings.TrimSpace(proposal.StartTime),
		EndTime:         strings.TrimSpace(proposal.EndTime),
		CourseID:        proposal.CourseID,
		TeacherID:       proposal.TeacherID,
		RoomID:          proposal.RoomID,
		ClassID:         proposal.ClassID,
		SessionType:     sessionType,
		EquipmentNeeded: proposal.EquipmentNeeded,
	}
}

func composeMeta(constraints dto.ComposeConstraints) (types.JSONText, error) {
	payload := map[string]any{
		"maxTeacherHours": constraints.MaxTeacherHours,
		"preferredRooms":  constraints.PreferredRooms,
		"avoidDays":       constraints.AvoidDays,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return types.JSONText(raw), nil
}
