package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// SimulatorService applies hypothetical edits to a detached copy of a
// committed timetable and reports the delta impact. Nothing is persisted;
// the baseline is never structurally changed, whatever the outcome.
type SimulatorService struct {
	timetables timetableRepository
	slots      timetableSlotRepository
	detector   ClashDetector
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
}

// NewSimulatorService wires simulator dependencies.
func NewSimulatorService(
	timetables timetableRepository,
	slots timetableSlotRepository,
	detector ClashDetector,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
) *SimulatorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if detector == nil {
		detector = NewPairwiseClashDetector()
	}
	return &SimulatorService{
		timetables: timetables,
		slots:      slots,
		detector:   detector,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
	}
}

// Simulate loads the baseline, applies the ordered edit batch to a working
// copy and computes before/after impact metrics.
func (s *SimulatorService) Simulate(ctx context.Context, req dto.SimulateTimetableRequest) (*dto.SimulateTimetableResponse, error) {
	start := time.Now()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid simulate payload")
	}

	baseline, err := s.timetables.FindByID(ctx, req.TimetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	baselineSlots, err := s.slots.ListByTimetable(ctx, req.TimetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable slots")
	}

	working, results := applyChanges(baselineSlots, req.Changes, s.detector)
	impact := computeImpact(baselineSlots, working)

	simulated := *baseline
	simulated.TimeSlots = working

	s.metrics.RecordSimulation(len(req.Changes), time.Since(start))
	s.logger.Info("timetable simulated",
		zap.String("timetable_id", req.TimetableID),
		zap.Int("changes", len(req.Changes)),
		zap.Int("slots_before", len(baselineSlots)),
		zap.Int("slots_after", len(working)),
	)

	return &dto.SimulateTimetableResponse{
		SimulatedTimetable: &simulated,
		Results:            results,
		Impact:             impact,
	}, nil
}

// applyChanges runs the edit batch against a deep copy of baseline. It is a
// pure function of its inputs: baseline is never written to, and a failed
// edit leaves the working copy exactly as the previous edit left it.
func applyChanges(baseline []models.TimeSlot, changes []dto.SimulationChange, detector ClashDetector) ([]models.TimeSlot, []dto.SimulationResult) {
	working := models.CloneSlots(baseline)
	results := make([]dto.SimulationResult, 0, len(changes))

	for _, change := range changes {
		action := strings.ToLower(strings.TrimSpace(change.Action))
		switch action {
		case dto.ChangeActionAdd:
			results = append(results, applyAdd(&working, change, detector))
		case dto.ChangeActionUpdate:
			results = append(results, applyUpdate(&working, change, detector))
		case dto.ChangeActionDelete:
			results = append(results, applyDelete(&working, change))
		default:
			results = append(results, dto.SimulationResult{
				Action:  change.Action,
				Success: false,
				Error:   fmt.Sprintf("unsupported action %q", change.Action),
			})
		}
	}
	return working, results
}

func applyAdd(working *[]models.TimeSlot, change dto.SimulationChange, detector ClashDetector) dto.SimulationResult {
	if change.NewData == nil {
		return dto.SimulationResult{Action: dto.ChangeActionAdd, Success: false, Error: "newData is required for add"}
	}
	if reason, ok := validateProposal(*change.NewData); !ok {
		return dto.SimulationResult{Action: dto.ChangeActionAdd, Success: false, Error: reason}
	}

	slot := slotFromProposal(*change.NewData)
	slot.Position = len(*working)

	*working = append(*working, slot)
	report := detector.Detect(*working)
	if report.HasClash {
		*working = (*working)[:len(*working)-1]
		clash := report
		return dto.SimulationResult{Action: dto.ChangeActionAdd, Success: false, Clash: &clash}
	}
	added := slot.Clone()
	return dto.SimulationResult{Action: dto.ChangeActionAdd, Success: true, Slot: &added}
}

func applyUpdate(working *[]models.TimeSlot, change dto.SimulationChange, detector ClashDetector) dto.SimulationResult {
	idx, err := resolveSlotRef(*working, change)
	if err != "" {
		return dto.SimulationResult{Action: dto.ChangeActionUpdate, Success: false, Error: err}
	}
	if change.Patch == nil {
		return dto.SimulationResult{Action: dto.ChangeActionUpdate, Success: false, Error: "patch is required for update"}
	}

	captured := (*working)[idx]
	merged := captured.Clone()
	applyPatch(&merged, *change.Patch)

	if reason, ok := validateSlotShape(merged); !ok {
		return dto.SimulationResult{Action: dto.ChangeActionUpdate, Success: false, Error: reason}
	}

	(*working)[idx] = merged
	report := detector.Detect(*working)
	if report.HasClash {
		(*working)[idx] = captured
		clash := report
		return dto.SimulationResult{Action: dto.ChangeActionUpdate, Success: false, Clash: &clash}
	}
	updated := merged.Clone()
	return dto.SimulationResult{Action: dto.ChangeActionUpdate, Success: true, Slot: &updated}
}

// applyDelete always succeeds once the reference resolves: removing a slot
// cannot introduce a clash.
func applyDelete(working *[]models.TimeSlot, change dto.SimulationChange) dto.SimulationResult {
	idx, err := resolveSlotRef(*working, change)
	if err != "" {
		return dto.SimulationResult{Action: dto.ChangeActionDelete, Success: false, Error: err}
	}
	captured := (*working)[idx].Clone()
	*working = append((*working)[:idx], (*working)[idx+1:]...)
	return dto.SimulationResult{Action: dto.ChangeActionDelete, Success: true, OldSlot: &captured}
}

// resolveSlotRef prefers the stable slot id over the fragile positional
// index. Positional indexes address the evolving working array, so callers
// using them must account for earlier edits in the same batch.
func resolveSlotRef(working []models.TimeSlot, change dto.SimulationChange) (int, string) {
	if id := strings.TrimSpace(change.SlotID); id != "" {
		for i, slot := range working {
			if slot.ID == id {
				return i, ""
			}
		}
		return 0, fmt.Sprintf("slot %s not found", id)
	}
	if change.SlotIndex == nil {
		return 0, "slotId or slotIndex is required"
	}
	idx := *change.SlotIndex
	if idx < 0 || idx >= len(working) {
		return 0, fmt.Sprintf("slotIndex %d out of range [0,%d)", idx, len(working))
	}
	return idx, ""
}

func applyPatch(slot *models.TimeSlot, patch dto.SlotPatch) {
	if patch.Day != nil {
		slot.DayOfWeek = strings.ToUpper(strings.TrimSpace(*patch.Day))
	}
	if patch.StartTime != nil {
		slot.StartTime = strings.TrimSpace(*patch.StartTime)
	}
	if patch.EndTime != nil {
		slot.EndTime = strings.TrimSpace(*patch.EndTime)
	}
	if patch.CourseID != nil {
		slot.CourseID = patch.CourseID
	}
	if patch.TeacherID != nil {
		slot.TeacherID = patch.TeacherID
	}
	if patch.RoomID != nil {
		slot.RoomID = patch.RoomID
	}
	if patch.ClassID != nil {
		slot.ClassID = patch.ClassID
	}
	if patch.SessionType != nil {
		slot.SessionType = models.SessionType(strings.ToUpper(strings.TrimSpace(*patch.SessionType)))
	}
	if patch.EquipmentNeeded != nil {
		slot.EquipmentNeeded = append([]string{}, patch.EquipmentNeeded...)
	}
}

func validateSlotShape(slot models.TimeSlot) (string, bool) {
	if !models.ValidDay(slot.DayOfWeek) {
		return fmt.Sprintf("unknown day %q", slot.DayOfWeek), false
	}
	startMin, ok := models.MinuteOfDay(slot.StartTime)
	if !ok {
		return fmt.Sprintf("malformed startTime %q", slot.StartTime), false
	}
	endMin, ok := models.MinuteOfDay(slot.EndTime)
	if !ok {
		return fmt.Sprintf("malformed endTime %q", slot.EndTime), false
	}
	if endMin <= startMin {
		return "startTime must be before endTime", false
	}
	return "", true
}

// computeImpact reports per-teacher and per-room scheduled hours before and
// after the simulation. Identities are ordered by first appearance across
// baseline then simulated slots so output is deterministic.
func computeImpact(baseline, simulated []models.TimeSlot) dto.ImpactReport {
	teacherIDs := identityOrder(baseline, simulated, func(s models.TimeSlot) *string { return s.TeacherID })
	roomIDs := identityOrder(baseline, simulated, func(s models.TimeSlot) *string { return s.RoomID })

	teacherImpact := make([]dto.TeacherImpact, 0, len(teacherIDs))
	for _, id := range teacherIDs {
		original := hoursFor(baseline, id, func(s models.TimeSlot) *string { return s.TeacherID })
		current := hoursFor(simulated, id, func(s models.TimeSlot) *string { return s.TeacherID })
		teacherImpact = append(teacherImpact, dto.TeacherImpact{
			TeacherID:      id,
			OriginalHours:  original,
			SimulatedHours: current,
			Change:         current - original,
			PercentChange:  percentChange(original, current),
		})
	}

	roomUtilization := make([]dto.RoomUtilization, 0, len(roomIDs))
	for _, id := range roomIDs {
		original := hoursFor(baseline, id, func(s models.TimeSlot) *string { return s.RoomID })
		current := hoursFor(simulated, id, func(s models.TimeSlot) *string { return s.RoomID })
		roomUtilization = append(roomUtilization, dto.RoomUtilization{
			RoomID:         id,
			OriginalHours:  original,
			SimulatedHours: current,
			Change:         current - original,
			PercentChange:  percentChange(original, current),
		})
	}

	return dto.ImpactReport{TeacherImpact: teacherImpact, RoomUtilization: roomUtilization}
}

func identityOrder(baseline, simulated []models.TimeSlot, identity func(models.TimeSlot) *string) []string {
	seen := make(map[string]bool)
	order := make([]string, 0)
	for _, slots := range [][]models.TimeSlot{baseline, simulated} {
		for _, slot := range slots {
			id := identity(slot)
			if id == nil || seen[*id] {
				continue
			}
			seen[*id] = true
			order = append(order, *id)
		}
	}
	return order
}

func hoursFor(slots []models.TimeSlot, id string, identity func(models.TimeSlot) *string) float64 {
	var total float64
	for _, slot := range slots {
		if ref := identity(slot); ref != nil && *ref == id {
			total += slot.DurationHours()
		}
	}
	return total
}

// percentChange returns nil when there are no original hours: a division
// sentinel, never a fault.
func percentChange(original, current float64) *float64 {
	if original == 0 {
		return nil
	}
	value := (current - original) / original * 100
	return &value
}
