package service

import (
	"context"
	"testing"
	"time"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/performance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type progressFixture struct {
	svc            ProgressService
	logRepo        *mockWorkoutLogRepo
	exerciseRepo   *mockExerciseRepo
	enrollmentRepo *mockEnrollmentRepo
	coachID        primitive.ObjectID
	programID      primitive.ObjectID
	memberID       primitive.ObjectID
	squatID        primitive.ObjectID
	runID          primitive.ObjectID
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()
	ctx := context.Background()

	logRepo := newMockWorkoutLogRepo()
	exerciseRepo := newMockExerciseRepo()
	enrollmentRepo := newMockEnrollmentRepo()
	programRepo := newMockProgramRepo()

	coachID := primitive.NewObjectID()
	programID, err := programRepo.Create(ctx, &domain.Program{CoachID: coachID, Title: "Hyrox Prep"})
	require.NoError(t, err)

	squatID, err := exerciseRepo.Create(ctx, &domain.Exercise{
		CoachID:        coachID,
		Title:          "Back Squat",
		ValueType:      domain.ValueWeight,
		Classification: domain.ClassSquat,
	})
	require.NoError(t, err)
	runID, err := exerciseRepo.Create(ctx, &domain.Exercise{
		CoachID:        coachID,
		Title:          "1km Run",
		ValueType:      domain.ValueTime,
		Classification: domain.ClassRun,
	})
	require.NoError(t, err)

	return &progressFixture{
		svc:            NewProgressService(logRepo, exerciseRepo, enrollmentRepo, programRepo, zap.NewNop()),
		logRepo:        logRepo,
		exerciseRepo:   exerciseRepo,
		enrollmentRepo: enrollmentRepo,
		coachID:        coachID,
		programID:      programID,
		memberID:       primitive.NewObjectID(),
		squatID:        squatID,
		runID:          runID,
	}
}

func (f *progressFixture) logWeight(t *testing.T, daysAgo int, weight float64) {
	t.Helper()
	_, err := f.logRepo.Create(context.Background(), &domain.WorkoutLog{
		UserID:     f.memberID,
		ExerciseID: &f.squatID,
		LogDate:    time.Now().UTC().AddDate(0, 0, -daysAgo),
		Intensity:  domain.IntensityHigh,
		MaxWeight:  weight,
	})
	require.NoError(t, err)
}

func (f *progressFixture) logRun(t *testing.T, daysAgo, seconds int) {
	t.Helper()
	_, err := f.logRepo.Create(context.Background(), &domain.WorkoutLog{
		UserID:        f.memberID,
		ExerciseID:    &f.runID,
		LogDate:       time.Now().UTC().AddDate(0, 0, -daysAgo),
		Intensity:     domain.IntensityMedium,
		TotalDuration: seconds,
	})
	require.NoError(t, err)
}

func TestGetMemberProgress(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	f.logWeight(t, 21, 100)
	f.logWeight(t, 7, 120)
	f.logRun(t, 14, 260)
	f.logRun(t, 3, 240)

	summary, err := f.svc.GetMemberProgress(ctx, f.memberID, nil)
	require.NoError(t, err)

	require.Len(t, summary.PRs, 2)
	var squat performance.ExerciseProgress
	for _, p := range summary.PRs {
		if p.ExerciseID == f.squatID {
			squat = p
		}
	}
	assert.Equal(t, "Back Squat", squat.ExerciseTitle)
	assert.Equal(t, 120.0, squat.CurrentPR)
	assert.InDelta(t, 20.0, squat.GrowthRate, 0.001)

	require.Contains(t, summary.BigThree, domain.ClassSquat)
	assert.Equal(t, 120.0, summary.BigThree[domain.ClassSquat].Value)

	require.Contains(t, summary.Hyrox, domain.ClassRun)
	assert.Equal(t, 240.0, summary.Hyrox[domain.ClassRun].Value, "fastest run wins")

	assert.Equal(t, 2, summary.IntensityStats[domain.IntensityHigh])
	assert.Equal(t, 2, summary.IntensityStats[domain.IntensityMedium])

	// Scoped to one exercise, only that history remains.
	summary, err = f.svc.GetMemberProgress(ctx, f.memberID, &f.squatID)
	require.NoError(t, err)
	require.Len(t, summary.PRs, 1)
	assert.Equal(t, f.squatID, summary.PRs[0].ExerciseID)
}

func TestGetExerciseTrend(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	f.logWeight(t, 40, 100)
	f.logWeight(t, 5, 115)

	trend, err := f.svc.GetExerciseTrend(ctx, f.memberID, f.squatID, 3)
	require.NoError(t, err)
	assert.Equal(t, performance.TrendUp, trend.Trend)
	assert.InDelta(t, 15.0, trend.ChangePercent, 0.001)

	// A window too short to hold both points reads as stable.
	trend, err = f.svc.GetExerciseTrend(ctx, f.memberID, f.squatID, 1)
	require.NoError(t, err)
	assert.Equal(t, performance.TrendStable, trend.Trend)

	_, err = f.svc.GetExerciseTrend(ctx, f.memberID, f.squatID, 0)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestGetMemberProgressForCoach(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	f.logWeight(t, 2, 100)

	// Not enrolled yet: the coach sees nothing.
	_, err := f.svc.GetMemberProgressForCoach(ctx, f.coachID, f.programID, f.memberID)
	assert.ErrorIs(t, err, ErrNoPermission)

	_, err = f.enrollmentRepo.Create(ctx, &domain.Enrollment{
		UserID:    f.memberID,
		ProgramID: f.programID,
		Status:    domain.EnrollmentActive,
	})
	require.NoError(t, err)

	summary, err := f.svc.GetMemberProgressForCoach(ctx, f.coachID, f.programID, f.memberID)
	require.NoError(t, err)
	assert.Len(t, summary.PRs, 1)

	// Foreign coach and unknown program.
	_, err = f.svc.GetMemberProgressForCoach(ctx, primitive.NewObjectID(), f.programID, f.memberID)
	assert.ErrorIs(t, err, ErrNoPermission)
	_, err = f.svc.GetMemberProgressForCoach(ctx, f.coachID, primitive.NewObjectID(), f.memberID)
	assert.ErrorIs(t, err, ErrProgramNotFound)
}
