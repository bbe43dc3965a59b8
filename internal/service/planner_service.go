package service

import (
	"context"
	"errors"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrBlueprintNotFound    = errors.New("blueprint not found")
	ErrPhaseAlreadyExists   = errors.New("phase already exists for this program")
	ErrPhaseNotFound        = errors.New("phase not found for this program")
	ErrPhaseFull            = errors.New("phase already holds the maximum number of days")
	ErrBlockAlreadyAssigned = errors.New("routine block is already assigned to this day")
	ErrInvalidOrder         = errors.New("order list must be a permutation of the existing entries")
	ErrSectionNotFound      = errors.New("section not found")
)

// ProgramPlan is the single view model consumed by the planner UI. The
// grid view renders phases as rows; the calendar view re-chunks each
// phase's day slice into rows of seven.
type ProgramPlan struct {
	Program domain.Program `json:"program"`
	Phases  []PhasePlan    `json:"phases"`
}

// PhasePlan groups the ordered days of one phase.
type PhasePlan struct {
	PhaseNumber int       `json:"phaseNumber"`
	Days        []DayPlan `json:"days"`
}

// DayPlan is one grid cell with its routine blocks resolved in display
// order. IsRestDay is computed, never stored.
type DayPlan struct {
	Blueprint domain.Blueprint      `json:"blueprint"`
	Blocks    []domain.RoutineBlock `json:"blocks"`
	IsRestDay bool                  `json:"isRestDay"`
}

// PlanCache caches assembled program plans. Implementations must treat
// every operation as best effort; a cache failure never fails the request.
type PlanCache interface {
	GetPlan(ctx context.Context, programID string) (*ProgramPlan, bool)
	SetPlan(ctx context.Context, programID string, plan *ProgramPlan)
	InvalidatePlan(ctx context.Context, programID string)
}

// --- Service Interface ---
type PlannerService interface {
	CreatePhase(ctx context.Context, coachID, programID primitive.ObjectID, phaseNumber, dayCount int) ([]domain.Blueprint, error)
	AddDayToPhase(ctx context.Context, coachID, programID primitive.ObjectID, phaseNumber int) (*domain.Blueprint, error)
	DeletePhase(ctx context.Context, coachID, programID primitive.ObjectID, phaseNumber int) error
	DeleteDay(ctx context.Context, coachID, blueprintID primitive.ObjectID) error
	// UpdateBlueprint partially updates the day title and coach notes.
	// A nil pointer leaves the field untouched; a pointer to "" clears it.
	UpdateBlueprint(ctx context.Context, coachID, blueprintID primitive.ObjectID, dayTitle, notes *string) error

	AssignRoutineBlock(ctx context.Context, coachID, blueprintID, blockID primitive.ObjectID) error
	UnassignRoutineBlock(ctx context.Context, coachID, blueprintID, blockID primitive.ObjectID) error
	ReorderRoutineBlocks(ctx context.Context, coachID, blueprintID primitive.ObjectID, orderedBlockIDs []primitive.ObjectID) error
	ClearRoutineBlocks(ctx context.Context, coachID, blueprintID primitive.ObjectID) error

	AddSection(ctx context.Context, coachID, blueprintID primitive.ObjectID, title, content string) (*domain.Section, error)
	UpdateSection(ctx context.Context, coachID, blueprintID, sectionID primitive.ObjectID, title, content string) error
	DeleteSection(ctx context.Context, coachID, blueprintID, sectionID primitive.ObjectID) error
	ReorderSections(ctx context.Context, coachID, blueprintID primitive.ObjectID, orderedSectionIDs []primitive.ObjectID) error

	GetProgramPlan(ctx context.Context, coachID, programID primitive.ObjectID) (*ProgramPlan, error)
}

// --- Service Implementation ---

type plannerService struct {
	programRepo   repository.ProgramRepository
	blueprintRepo repository.BlueprintRepository
	blockRepo     repository.RoutineBlockRepository
	planCache     PlanCache // optional, may be nil
	logger        *zap.Logger
}

// NewPlannerService creates a new instance of plannerService. planCache
// may be nil to run without caching.
func NewPlannerService(
	programRepo repository.ProgramRepository,
	blueprintRepo repository.BlueprintRepository,
	blockRepo repository.RoutineBlockRepository,
	planCache PlanCache,
	logger *zap.Logger,
) PlannerService {
	return &plannerService{
		programRepo:   programRepo,
		blueprintRepo: blueprintRepo,
		blockRepo:     blockRepo,
		planCache:     planCache,
		logger:        logger,
	}
}

// === Phase / Day Management ===

// CreatePhase creates dayCount empty cells numbered 1..dayCount. Rejects
// when the phase number is already taken for the program.
func (s *plannerService) CreatePhase(ctx context.Context, coachID, programID primitive.ObjectID, phaseNumber, dayCount int) ([]domain.Blueprint, error) {
	if phaseNumber < 1 || dayCount < 1 || dayCount > domain.MaxDaysPerPhase {
		return nil, ErrValidationFailed
	}
	if _, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID); err != nil {
		return nil, err
	}

	exists, err := s.blueprintRepo.PhaseExists(ctx, programID, phaseNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhaseAlreadyExists
	}

	blueprints := make([]domain.Blueprint, dayCount)
	for i := 0; i < dayCount; i++ {
		blueprints[i] = domain.Blueprint{
			ProgramID:   programID,
			PhaseNumber: phaseNumber,
			DayNumber:   i + 1,
		}
	}

	if err := s.blueprintRepo.InsertMany(ctx, blueprints); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPhaseAlreadyExists
		}
		return nil, err
	}

	s.invalidate(ctx, programID)
	s.logger.Info("phase created",
		zap.String("programId", programID.Hex()),
		zap.Int("phase", phaseNumber),
		zap.Int("days", dayCount))

	return blueprints, nil
}

// AddDayToPhase appends one more day to an existing phase. A phase caps
// out at seven days.
func (s *plannerService) AddDayToPhase(ctx context.Context, coachID, programID primitive.ObjectID, phaseNumber int) (*domain.Blueprint, error) {
	if _, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID); err != nil {
		return nil, err
	}

	maxDay, count, err := s.blueprintRepo.MaxDayInPhase(ctx, programID, phaseNumber)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrPhaseNotFound
	}
	if count >= domain.MaxDaysPerPhase {
		return nil, ErrPhaseFull
	}

	day := maxDay + 1
	if day > domain.MaxDaysPerPhase {
		// Deleting a mid-phase day leaves a gap below the max. Reuse the
		// lowest free number so day numbers stay within the weekly grid.
		day, err = s.lowestFreeDay(ctx, programID, phaseNumber)
		if err != nil {
			return nil, err
		}
	}

	blueprints := []domain.Blueprint{{
		ProgramID:   programID,
		PhaseNumber: phaseNumber,
		DayNumber:   day,
	}}
	if err := s.blueprintRepo.InsertMany(ctx, blueprints); err != nil {
		return nil, err
	}

	s.invalidate(ctx, programID)
	return &blueprints[0], nil
}

// lowestFreeDay returns the smallest unused day number in the phase.
func (s *plannerService) lowestFreeDay(ctx context.Context, programID primitive.ObjectID, phaseNumber int) (int, error) {
	cells, err := s.blueprintRepo.GetByProgramID(ctx, programID)
	if err != nil {
		return 0, err
	}

	used := make(map[int]bool)
	for _, cell := range cells {
		if cell.PhaseNumber == phaseNumber {
			used[cell.DayNumber] = true
		}
	}
	for day := 1; day <= domain.MaxDaysPerPhase; day++ {
		if !used[day] {
			return day, nil
		}
	}
	return 0, ErrPhaseFull
}

// DeletePhase deletes every cell of the phase; cells in other phases of
// the same program are untouched.
func (s *plannerService) DeletePhase(ctx context.Context, coachID, programID primitive.ObjectID, phaseNumber int) error {
	if _, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID); err != nil {
		return err
	}

	deleted, err := s.blueprintRepo.DeleteByPhase(ctx, programID, phaseNumber)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrPhaseNotFound
	}

	s.invalidate(ctx, programID)
	s.logger.Info("phase deleted",
		zap.String("programId", programID.Hex()),
		zap.Int("phase", phaseNumber),
		zap.Int64("cells", deleted))
	return nil
}

// DeleteDay removes a single day cell together with its embedded block
// order and sections.
func (s *plannerService) DeleteDay(ctx context.Context, coachID, blueprintID primitive.ObjectID) error {
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return err
	}

	if err := s.blueprintRepo.Delete(ctx, blueprintID); err != nil {
		return err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return nil
}

// UpdateBlueprint partially updates the day title and coach notes.
func (s *plannerService) UpdateBlueprint(ctx context.Context, coachID, blueprintID primitive.ObjectID, dayTitle, notes *string) error {
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return err
	}
	if dayTitle == nil && notes == nil {
		return nil
	}

	if err := s.blueprintRepo.UpdateMeta(ctx, blueprintID, dayTitle, notes); err != nil {
		return err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return nil
}

// === Routine Block Assignment ===

// AssignRoutineBlock appends the block at the end of the day's order.
func (s *plannerService) AssignRoutineBlock(ctx context.Context, coachID, blueprintID, blockID primitive.ObjectID) error {
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return err
	}
	if _, err := s.blockRepo.GetByID(ctx, blockID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineBlockNotFound
		}
		return err
	}

	if err := s.blueprintRepo.AppendRoutineBlock(ctx, blueprintID, blockID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrBlockAlreadyAssigned
		}
		return err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return nil
}

// UnassignRoutineBlock removes one block from the day's order.
func (s *plannerService) UnassignRoutineBlock(ctx context.Context, coachID, blueprintID, blockID primitive.ObjectID) error {
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return err
	}

	if err := s.blueprintRepo.RemoveRoutineBlock(ctx, blueprintID, blockID); err != nil {
		return err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return nil
}

// ReorderRoutineBlocks rewrites the day's whole block order. The given
// list must be a permutation of the currently assigned block IDs.
func (s *plannerService) ReorderRoutineBlocks(ctx context.Context, coachID, blueprintID primitive.ObjectID, orderedBlockIDs []primitive.ObjectID) error {
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return err
	}
	if !isPermutation(blueprint.RoutineBlockIDs, orderedBlockIDs) {
		return ErrInvalidOrder
	}

	if err := s.blueprintRepo.SetRoutineBlockOrder(ctx, blueprintID, orderedBlockIDs); err != nil {
		return err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return nil
}

// ClearRoutineBlocks removes all block associations in one operation.
func (s *plannerService) ClearRoutineBlocks(ctx context.Context, coachID, blueprintID primitive.ObjectID) error {
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return err
	}

	if err := s.blueprintRepo.ClearRoutineBlocks(ctx, blueprintID); err != nil {
		return err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return nil
}

// === Sections ===

// AddSection appends a freeform note section at the end of the day's
// section order.
func (s *plannerService) AddSection(ctx context.Context, coachID, blueprintID primitive.ObjectID, title, content string) (*domain.Section, error) {
	if title == "" {
		return nil, ErrValidationFailed
	}
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return nil, err
	}

	section := domain.Section{
		ID:      primitive.NewObjectID(),
		Title:   title,
		Content: content,
	}
	if err := s.blueprintRepo.AppendSection(ctx, blueprintID, section); err != nil {
		return nil, err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return &section, nil
}

// UpdateSection rewrites one section's title and content.
func (s *plannerService) UpdateSection(ctx context.Context, coachID, blueprintID, sectionID primitive.ObjectID, title, content string) error {
	if title == "" {
		return ErrValidationFailed
	}
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return err
	}

	section := domain.Section{ID: sectionID, Title: title, Content: content}
	if err := s.blueprintRepo.UpdateSection(ctx, blueprintID, section); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSectionNotFound
		}
		return err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return nil
}

// DeleteSection removes one section from the day.
func (s *plannerService) DeleteSection(ctx context.Context, coachID, blueprintID, sectionID primitive.ObjectID) error {
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return err
	}

	if err := s.blueprintRepo.RemoveSection(ctx, blueprintID, sectionID); err != nil {
		return err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return nil
}

// ReorderSections rewrites the day's whole section order.
func (s *plannerService) ReorderSections(ctx context.Context, coachID, blueprintID primitive.ObjectID, orderedSectionIDs []primitive.ObjectID) error {
	blueprint, err := s.authorizeBlueprint(ctx, blueprintID, coachID)
	if err != nil {
		return err
	}

	existingIDs := make([]primitive.ObjectID, len(blueprint.Sections))
	byID := make(map[primitive.ObjectID]domain.Section, len(blueprint.Sections))
	for i, section := range blueprint.Sections {
		existingIDs[i] = section.ID
		byID[section.ID] = section
	}
	if !isPermutation(existingIDs, orderedSectionIDs) {
		return ErrInvalidOrder
	}

	reordered := make([]domain.Section, len(orderedSectionIDs))
	for i, id := range orderedSectionIDs {
		reordered[i] = byID[id]
	}

	if err := s.blueprintRepo.SetSections(ctx, blueprintID, reordered); err != nil {
		return err
	}
	s.invalidate(ctx, blueprint.ProgramID)
	return nil
}

// === Plan View ===

// GetProgramPlan assembles the full planner view model: the program plus
// all cells grouped by phase, each day carrying its ordered blocks and
// ordered sections.
func (s *plannerService) GetProgramPlan(ctx context.Context, coachID, programID primitive.ObjectID) (*ProgramPlan, error) {
	program, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID)
	if err != nil {
		return nil, err
	}

	if s.planCache != nil {
		if plan, ok := s.planCache.GetPlan(ctx, programID.Hex()); ok {
			return plan, nil
		}
	}

	blueprints, err := s.blueprintRepo.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}

	// Resolve every referenced block once, then re-sequence per day.
	blockIDSet := make(map[primitive.ObjectID]bool)
	var blockIDs []primitive.ObjectID
	for _, bp := range blueprints {
		for _, id := range bp.RoutineBlockIDs {
			if !blockIDSet[id] {
				blockIDSet[id] = true
				blockIDs = append(blockIDs, id)
			}
		}
	}
	blocks, err := s.blockRepo.GetByIDs(ctx, blockIDs)
	if err != nil {
		return nil, err
	}
	blocksByID := make(map[primitive.ObjectID]domain.RoutineBlock, len(blocks))
	for _, block := range blocks {
		blocksByID[block.ID] = block
	}

	plan := &ProgramPlan{Program: *program, Phases: []PhasePlan{}}
	for _, bp := range blueprints {
		dayBlocks := make([]domain.RoutineBlock, 0, len(bp.RoutineBlockIDs))
		for _, id := range bp.RoutineBlockIDs {
			if block, ok := blocksByID[id]; ok {
				dayBlocks = append(dayBlocks, block)
			}
		}

		day := DayPlan{
			Blueprint: bp,
			Blocks:    dayBlocks,
			IsRestDay: bp.IsRestDay(),
		}

		if n := len(plan.Phases); n == 0 || plan.Phases[n-1].PhaseNumber != bp.PhaseNumber {
			plan.Phases = append(plan.Phases, PhasePlan{PhaseNumber: bp.PhaseNumber})
		}
		last := len(plan.Phases) - 1
		plan.Phases[last].Days = append(plan.Phases[last].Days, day)
	}

	if s.planCache != nil {
		s.planCache.SetPlan(ctx, programID.Hex(), plan)
	}
	return plan, nil
}

// === Helpers ===

// authorizeBlueprint resolves blueprint → program → coach and verifies
// ownership.
func (s *plannerService) authorizeBlueprint(ctx context.Context, blueprintID, coachID primitive.ObjectID) (*domain.Blueprint, error) {
	blueprint, err := s.blueprintRepo.GetByID(ctx, blueprintID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBlueprintNotFound
		}
		return nil, err
	}
	if _, err := authorizeProgramCoach(ctx, s.programRepo, blueprint.ProgramID, coachID); err != nil {
		return nil, err
	}
	return blueprint, nil
}

func (s *plannerService) invalidate(ctx context.Context, programID primitive.ObjectID) {
	if s.planCache != nil {
		s.planCache.InvalidatePlan(ctx, programID.Hex())
	}
}

// isPermutation reports whether candidate contains exactly the same IDs
// as existing, in any order, with no additions or omissions.
func isPermutation(existing, candidate []primitive.ObjectID) bool {
	if len(existing) != len(candidate) {
		return false
	}
	counts := make(map[primitive.ObjectID]int, len(existing))
	for _, id := range existing {
		counts[id]++
	}
	for _, id := range candidate {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
