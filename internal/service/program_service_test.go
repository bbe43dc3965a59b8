package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newProgramFixture(t *testing.T) (ProgramService, *mockProgramRepo, primitive.ObjectID) {
	t.Helper()
	programRepo := newMockProgramRepo()
	svc := NewProgramService(programRepo, zap.NewNop())
	return svc, programRepo, primitive.NewObjectID()
}

func TestCreateProgram(t *testing.T) {
	svc, _, coachID := newProgramFixture(t)
	ctx := context.Background()

	program, err := svc.CreateProgram(ctx, coachID, ProgramInput{
		Title:         "12-Week Hyrox Prep",
		Price:         99000,
		DurationWeeks: 12,
		DaysPerWeek:   4,
	})
	require.NoError(t, err)
	assert.False(t, program.ID.IsZero())
	assert.Equal(t, coachID, program.CoachID)
	assert.False(t, program.IsPublic, "programs start as drafts")

	_, err = svc.CreateProgram(ctx, coachID, ProgramInput{Title: ""})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.CreateProgram(ctx, coachID, ProgramInput{Title: "X", DaysPerWeek: 8})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.CreateProgram(ctx, coachID, ProgramInput{Title: "X", DurationWeeks: -1})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUpdateProgramOwnership(t *testing.T) {
	svc, _, coachID := newProgramFixture(t)
	ctx := context.Background()

	program, err := svc.CreateProgram(ctx, coachID, ProgramInput{Title: "Original"})
	require.NoError(t, err)

	updated, err := svc.UpdateProgram(ctx, coachID, program.ID, ProgramInput{
		Title:     "Renamed",
		IsPublic:  true,
		IsForSale: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.IsForSale)

	_, err = svc.UpdateProgram(ctx, primitive.NewObjectID(), program.ID, ProgramInput{Title: "Hijacked"})
	assert.ErrorIs(t, err, ErrNoPermission)

	_, err = svc.UpdateProgram(ctx, coachID, primitive.NewObjectID(), ProgramInput{Title: "Ghost"})
	assert.ErrorIs(t, err, ErrProgramNotFound)
}

func TestListOnSale(t *testing.T) {
	svc, _, coachID := newProgramFixture(t)
	ctx := context.Background()

	_, err := svc.CreateProgram(ctx, coachID, ProgramInput{
		Title: "Catalog Item", IsPublic: true, IsForSale: true,
	})
	require.NoError(t, err)
	_, err = svc.CreateProgram(ctx, coachID, ProgramInput{
		Title: "Private Coaching", IsPublic: false, IsForSale: true,
	})
	require.NoError(t, err)
	_, err = svc.CreateProgram(ctx, coachID, ProgramInput{
		Title: "Draft", IsPublic: true, IsForSale: false,
	})
	require.NoError(t, err)

	catalog, err := svc.ListOnSale(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Catalog Item", catalog[0].Title)

	mine, err := svc.GetCoachPrograms(ctx, coachID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}
