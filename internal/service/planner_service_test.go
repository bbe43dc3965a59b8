package service

import (
	"context"
	"testing"

	"mkhwan/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type plannerFixture struct {
	svc           PlannerService
	programRepo   *mockProgramRepo
	blueprintRepo *mockBlueprintRepo
	blockRepo     *mockRoutineBlockRepo
	coachID       primitive.ObjectID
	programID     primitive.ObjectID
}

func newPlannerFixture(t *testing.T) *plannerFixture {
	t.Helper()

	programRepo := newMockProgramRepo()
	blueprintRepo := newMockBlueprintRepo()
	blockRepo := newMockRoutineBlockRepo()

	coachID := primitive.NewObjectID()
	programID, err := programRepo.Create(context.Background(), &domain.Program{
		CoachID: coachID,
		Title:   "12 Week Strength",
	})
	require.NoError(t, err)

	return &plannerFixture{
		svc:           NewPlannerService(programRepo, blueprintRepo, blockRepo, nil, zap.NewNop()),
		programRepo:   programRepo,
		blueprintRepo: blueprintRepo,
		blockRepo:     blockRepo,
		coachID:       coachID,
		programID:     programID,
	}
}

func (f *plannerFixture) createBlock(t *testing.T, name string) primitive.ObjectID {
	t.Helper()
	id, err := f.blockRepo.Create(context.Background(), &domain.RoutineBlock{
		CoachID: f.coachID,
		Name:    name,
		Format:  domain.FormatStrength,
	})
	require.NoError(t, err)
	return id
}

func TestCreatePhase(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	blueprints, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 5)
	require.NoError(t, err)
	require.Len(t, blueprints, 5)
	for i, bp := range blueprints {
		assert.Equal(t, 1, bp.PhaseNumber)
		assert.Equal(t, i+1, bp.DayNumber)
		assert.True(t, bp.IsRestDay(), "new cells start empty")
	}

	// Same phase number again is rejected.
	_, err = f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 3)
	assert.ErrorIs(t, err, ErrPhaseAlreadyExists)

	// A different phase is fine.
	_, err = f.svc.CreatePhase(ctx, f.coachID, f.programID, 2, 7)
	assert.NoError(t, err)
}

func TestCreatePhaseValidation(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 0)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 8)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.CreatePhase(ctx, f.coachID, f.programID, 0, 3)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestCreatePhaseOwnership(t *testing.T) {
	f := newPlannerFixture(t)

	_, err := f.svc.CreatePhase(context.Background(), primitive.NewObjectID(), f.programID, 1, 3)
	assert.ErrorIs(t, err, ErrNoPermission)
}

func TestAddDayToPhase(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 6)
	require.NoError(t, err)

	bp, err := f.svc.AddDayToPhase(ctx, f.coachID, f.programID, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, bp.DayNumber)

	// Phase is now full.
	_, err = f.svc.AddDayToPhase(ctx, f.coachID, f.programID, 1)
	assert.ErrorIs(t, err, ErrPhaseFull)

	// Unknown phase.
	_, err = f.svc.AddDayToPhase(ctx, f.coachID, f.programID, 9)
	assert.ErrorIs(t, err, ErrPhaseNotFound)
}

func TestAddDayToPhaseReusesGap(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 7)
	require.NoError(t, err)

	// Delete day 3 out of the middle, then add a day back. The new cell
	// must take the freed number, never day 8.
	gap, err := f.blueprintRepo.GetByProgramPhaseDay(ctx, f.programID, 1, 3)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteDay(ctx, f.coachID, gap.ID))

	bp, err := f.svc.AddDayToPhase(ctx, f.coachID, f.programID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, bp.DayNumber)

	// Phase is full again.
	_, err = f.svc.AddDayToPhase(ctx, f.coachID, f.programID, 1)
	assert.ErrorIs(t, err, ErrPhaseFull)
}

func TestDeletePhaseScopedToPhase(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 3)
	require.NoError(t, err)
	_, err = f.svc.CreatePhase(ctx, f.coachID, f.programID, 2, 4)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePhase(ctx, f.coachID, f.programID, 1))

	remaining, err := f.blueprintRepo.GetByProgramID(ctx, f.programID)
	require.NoError(t, err)
	require.Len(t, remaining, 4)
	for _, bp := range remaining {
		assert.Equal(t, 2, bp.PhaseNumber)
	}

	// Deleting an already empty phase reports not found.
	assert.ErrorIs(t, f.svc.DeletePhase(ctx, f.coachID, f.programID, 1), ErrPhaseNotFound)
}

func TestUpdateBlueprintPartial(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	blueprints, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 1)
	require.NoError(t, err)
	bpID := blueprints[0].ID

	title := "Lower Body"
	require.NoError(t, f.svc.UpdateBlueprint(ctx, f.coachID, bpID, &title, nil))

	notes := "Focus on bracing"
	require.NoError(t, f.svc.UpdateBlueprint(ctx, f.coachID, bpID, nil, &notes))

	bp, err := f.blueprintRepo.GetByID(ctx, bpID)
	require.NoError(t, err)
	assert.Equal(t, "Lower Body", bp.DayTitle)
	assert.Equal(t, "Focus on bracing", bp.Notes)

	// Empty string clears, nil leaves alone.
	empty := ""
	require.NoError(t, f.svc.UpdateBlueprint(ctx, f.coachID, bpID, &empty, nil))
	bp, err = f.blueprintRepo.GetByID(ctx, bpID)
	require.NoError(t, err)
	assert.Equal(t, "", bp.DayTitle)
	assert.Equal(t, "Focus on bracing", bp.Notes)
}

func TestAssignRoutineBlock(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	blueprints, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 1)
	require.NoError(t, err)
	bpID := blueprints[0].ID

	blockA := f.createBlock(t, "Warm Up")
	blockB := f.createBlock(t, "Main Lift")

	require.NoError(t, f.svc.AssignRoutineBlock(ctx, f.coachID, bpID, blockA))
	require.NoError(t, f.svc.AssignRoutineBlock(ctx, f.coachID, bpID, blockB))

	// Assigning the same block to the same day again is rejected.
	assert.ErrorIs(t, f.svc.AssignRoutineBlock(ctx, f.coachID, bpID, blockA), ErrBlockAlreadyAssigned)

	// Unknown block.
	err = f.svc.AssignRoutineBlock(ctx, f.coachID, bpID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrRoutineBlockNotFound)

	bp, err := f.blueprintRepo.GetByID(ctx, bpID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{blockA, blockB}, bp.RoutineBlockIDs)
	assert.False(t, bp.IsRestDay())
}

func TestReorderRoutineBlocks(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	blueprints, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 1)
	require.NoError(t, err)
	bpID := blueprints[0].ID

	blockA := f.createBlock(t, "A")
	blockB := f.createBlock(t, "B")
	blockC := f.createBlock(t, "C")
	for _, id := range []primitive.ObjectID{blockA, blockB, blockC} {
		require.NoError(t, f.svc.AssignRoutineBlock(ctx, f.coachID, bpID, id))
	}

	require.NoError(t, f.svc.ReorderRoutineBlocks(ctx, f.coachID, bpID, []primitive.ObjectID{blockC, blockA, blockB}))

	bp, err := f.blueprintRepo.GetByID(ctx, bpID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{blockC, blockA, blockB}, bp.RoutineBlockIDs)

	// Not a permutation: missing an ID.
	err = f.svc.ReorderRoutineBlocks(ctx, f.coachID, bpID, []primitive.ObjectID{blockA, blockB})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	// Not a permutation: foreign ID swapped in.
	err = f.svc.ReorderRoutineBlocks(ctx, f.coachID, bpID, []primitive.ObjectID{blockA, blockB, primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	// Not a permutation: duplicated ID.
	err = f.svc.ReorderRoutineBlocks(ctx, f.coachID, bpID, []primitive.ObjectID{blockA, blockA, blockB})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestClearRoutineBlocks(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	blueprints, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 1)
	require.NoError(t, err)
	bpID := blueprints[0].ID

	require.NoError(t, f.svc.AssignRoutineBlock(ctx, f.coachID, bpID, f.createBlock(t, "A")))
	require.NoError(t, f.svc.ClearRoutineBlocks(ctx, f.coachID, bpID))

	bp, err := f.blueprintRepo.GetByID(ctx, bpID)
	require.NoError(t, err)
	assert.Empty(t, bp.RoutineBlockIDs)
	assert.True(t, bp.IsRestDay())
}

func TestSections(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	blueprints, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 1)
	require.NoError(t, err)
	bpID := blueprints[0].ID

	warmup, err := f.svc.AddSection(ctx, f.coachID, bpID, "Warm Up", "10 min easy row")
	require.NoError(t, err)
	cooldown, err := f.svc.AddSection(ctx, f.coachID, bpID, "Cool Down", "stretch")
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateSection(ctx, f.coachID, bpID, warmup.ID, "Warm Up", "12 min easy row"))
	assert.ErrorIs(t,
		f.svc.UpdateSection(ctx, f.coachID, bpID, primitive.NewObjectID(), "X", "y"),
		ErrSectionNotFound)

	require.NoError(t, f.svc.ReorderSections(ctx, f.coachID, bpID, []primitive.ObjectID{cooldown.ID, warmup.ID}))

	bp, err := f.blueprintRepo.GetByID(ctx, bpID)
	require.NoError(t, err)
	require.Len(t, bp.Sections, 2)
	assert.Equal(t, "Cool Down", bp.Sections[0].Title)
	assert.Equal(t, "12 min easy row", bp.Sections[1].Content)

	require.NoError(t, f.svc.DeleteSection(ctx, f.coachID, bpID, warmup.ID))
	bp, err = f.blueprintRepo.GetByID(ctx, bpID)
	require.NoError(t, err)
	require.Len(t, bp.Sections, 1)
}

func TestGetProgramPlan(t *testing.T) {
	f := newPlannerFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreatePhase(ctx, f.coachID, f.programID, 1, 2)
	require.NoError(t, err)
	_, err = f.svc.CreatePhase(ctx, f.coachID, f.programID, 2, 1)
	require.NoError(t, err)

	day1, err := f.blueprintRepo.GetByProgramPhaseDay(ctx, f.programID, 1, 1)
	require.NoError(t, err)
	blockA := f.createBlock(t, "A")
	blockB := f.createBlock(t, "B")
	require.NoError(t, f.svc.AssignRoutineBlock(ctx, f.coachID, day1.ID, blockA))
	require.NoError(t, f.svc.AssignRoutineBlock(ctx, f.coachID, day1.ID, blockB))
	require.NoError(t, f.svc.ReorderRoutineBlocks(ctx, f.coachID, day1.ID, []primitive.ObjectID{blockB, blockA}))

	plan, err := f.svc.GetProgramPlan(ctx, f.coachID, f.programID)
	require.NoError(t, err)
	require.Len(t, plan.Phases, 2)
	assert.Equal(t, 1, plan.Phases[0].PhaseNumber)
	require.Len(t, plan.Phases[0].Days, 2)
	require.Len(t, plan.Phases[1].Days, 1)

	// Blocks come back in the stored display order.
	firstDay := plan.Phases[0].Days[0]
	require.Len(t, firstDay.Blocks, 2)
	assert.Equal(t, "B", firstDay.Blocks[0].Name)
	assert.Equal(t, "A", firstDay.Blocks[1].Name)
	assert.False(t, firstDay.IsRestDay)

	// The untouched second day is a rest day.
	assert.True(t, plan.Phases[0].Days[1].IsRestDay)
}
