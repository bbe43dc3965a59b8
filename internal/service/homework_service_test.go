package service

import (
	"context"
	"testing"
	"time"

	"mkhwan/coach-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type homeworkFixture struct {
	svc           HomeworkService
	logRepo       *mockWorkoutLogRepo
	blueprintRepo *mockBlueprintRepo
	userRepo      *mockUserRepo
	coachID       primitive.ObjectID
	programID     primitive.ObjectID
	blueprintID   primitive.ObjectID
}

func newHomeworkFixture(t *testing.T) *homeworkFixture {
	t.Helper()

	logRepo := newMockWorkoutLogRepo()
	blueprintRepo := newMockBlueprintRepo()
	programRepo := newMockProgramRepo()
	userRepo := newMockUserRepo()

	coachID := primitive.NewObjectID()
	programID, err := programRepo.Create(context.Background(), &domain.Program{
		CoachID: coachID,
		Title:   "CrossFit Basics",
	})
	require.NoError(t, err)

	blueprints := []domain.Blueprint{{ProgramID: programID, PhaseNumber: 1, DayNumber: 1}}
	require.NoError(t, blueprintRepo.InsertMany(context.Background(), blueprints))

	return &homeworkFixture{
		svc:           NewHomeworkService(logRepo, blueprintRepo, programRepo, userRepo, zap.NewNop()),
		logRepo:       logRepo,
		blueprintRepo: blueprintRepo,
		userRepo:      userRepo,
		coachID:       coachID,
		programID:     programID,
		blueprintID:   blueprints[0].ID,
	}
}

func (f *homeworkFixture) addMember(t *testing.T, name string) primitive.ObjectID {
	t.Helper()
	id, err := f.userRepo.Create(context.Background(), &domain.User{
		Name:  name,
		Email: name + "@example.com",
		Role:  domain.RoleMember,
	})
	require.NoError(t, err)
	return id
}

func (f *homeworkFixture) submit(t *testing.T, userID primitive.ObjectID) *domain.WorkoutLog {
	t.Helper()
	log, err := f.svc.CreateWorkoutLog(context.Background(), userID, WorkoutLogInput{
		BlueprintID: &f.blueprintID,
		LogDate:     time.Now().UTC(),
		Intensity:   domain.IntensityMedium,
		MaxWeight:   100,
	})
	require.NoError(t, err)
	return log
}

func TestCreateWorkoutLog(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()
	memberID := f.addMember(t, "jiho")

	log := f.submit(t, memberID)
	assert.False(t, log.ID.IsZero())
	assert.False(t, log.IsCheckedByCoach)

	// A log may reference no planning day at all (free training).
	free, err := f.svc.CreateWorkoutLog(ctx, memberID, WorkoutLogInput{
		LogDate:   time.Now().UTC(),
		Intensity: domain.IntensityLow,
	})
	require.NoError(t, err)
	assert.Nil(t, free.BlueprintID)

	// Unknown blueprint reference is rejected.
	bogus := primitive.NewObjectID()
	_, err = f.svc.CreateWorkoutLog(ctx, memberID, WorkoutLogInput{
		BlueprintID: &bogus,
		LogDate:     time.Now().UTC(),
		Intensity:   domain.IntensityLow,
	})
	assert.ErrorIs(t, err, ErrBlueprintNotFound)

	// Invalid intensity is rejected.
	_, err = f.svc.CreateWorkoutLog(ctx, memberID, WorkoutLogInput{
		LogDate:   time.Now().UTC(),
		Intensity: "EXTREME",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestWorkoutLogOwnerOnlyMutation(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()
	owner := f.addMember(t, "owner")
	stranger := f.addMember(t, "stranger")

	log := f.submit(t, owner)

	_, err := f.svc.UpdateWorkoutLog(ctx, stranger, log.ID, WorkoutLogInput{
		LogDate:   time.Now().UTC(),
		Intensity: domain.IntensityHigh,
	})
	assert.ErrorIs(t, err, ErrNoPermission)

	assert.ErrorIs(t, f.svc.DeleteWorkoutLog(ctx, stranger, log.ID), ErrWorkoutLogNotFound)
	require.NoError(t, f.svc.DeleteWorkoutLog(ctx, owner, log.ID))
}

func TestCoachReviewRequiresBlueprint(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()
	memberID := f.addMember(t, "jiho")

	// Free-training log: no blueprint, so no coach can review it.
	free, err := f.svc.CreateWorkoutLog(ctx, memberID, WorkoutLogInput{
		LogDate:   time.Now().UTC(),
		Intensity: domain.IntensityLow,
	})
	require.NoError(t, err)

	err = f.svc.UpdateCoachComment(ctx, f.coachID, free.ID, "nice work")
	assert.ErrorIs(t, err, ErrNoPermission)

	// Homework log: the owning coach can review, others cannot.
	homework := f.submit(t, memberID)
	require.NoError(t, f.svc.UpdateCoachComment(ctx, f.coachID, homework.ID, "nice work"))

	got, err := f.logRepo.GetByID(ctx, homework.ID)
	require.NoError(t, err)
	assert.Equal(t, "nice work", got.CoachComment)

	err = f.svc.UpdateCoachComment(ctx, primitive.NewObjectID(), homework.ID, "hijack")
	assert.ErrorIs(t, err, ErrNoPermission)
}

func TestToggleCoachCheck(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()
	log := f.submit(t, f.addMember(t, "jiho"))

	checked, err := f.svc.ToggleCoachCheck(ctx, f.coachID, log.ID)
	require.NoError(t, err)
	assert.True(t, checked)

	checked, err = f.svc.ToggleCoachCheck(ctx, f.coachID, log.ID)
	require.NoError(t, err)
	assert.False(t, checked)
}

func TestGetHomeworkSubmissions(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()

	alice := f.addMember(t, "alice")
	bob := f.addMember(t, "bob")

	f.submit(t, alice)
	time.Sleep(2 * time.Millisecond)
	f.submit(t, bob)

	submissions, err := f.svc.GetHomeworkSubmissions(ctx, f.coachID, f.programID, 1, 1)
	require.NoError(t, err)
	require.Len(t, submissions, 2)

	// Newest submission first; rank is purely positional.
	assert.Equal(t, 1, submissions[0].Rank)
	assert.Equal(t, "bob", submissions[0].MemberName)
	assert.Equal(t, 2, submissions[1].Rank)
	assert.Equal(t, "alice", submissions[1].MemberName)

	// Unknown planning cell.
	_, err = f.svc.GetHomeworkSubmissions(ctx, f.coachID, f.programID, 1, 9)
	assert.ErrorIs(t, err, ErrBlueprintNotFound)

	// Foreign coach.
	_, err = f.svc.GetHomeworkSubmissions(ctx, primitive.NewObjectID(), f.programID, 1, 1)
	assert.ErrorIs(t, err, ErrNoPermission)
}

func TestGetHomeworkStats(t *testing.T) {
	f := newHomeworkFixture(t)
	ctx := context.Background()

	first := f.submit(t, f.addMember(t, "alice"))
	f.submit(t, f.addMember(t, "bob"))
	f.submit(t, f.addMember(t, "carol"))

	_, err := f.svc.ToggleCoachCheck(ctx, f.coachID, first.ID)
	require.NoError(t, err)

	stats, err := f.svc.GetHomeworkStats(ctx, f.coachID, f.programID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(2), stats.Pending)
}
