package service

import (
	"context"
	"errors"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/performance"
	"mkhwan/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// defaultFrequencyMonths is the trailing window for the frequency chart.
const defaultFrequencyMonths = 6

// ProgressSummary bundles every performance aggregation the member
// dashboard renders.
type ProgressSummary struct {
	PRs              []performance.ExerciseProgress                    `json:"prs"`
	BigThree         map[domain.Classification]performance.CategoryPR `json:"bigThree"`
	Hyrox            map[domain.Classification]performance.CategoryPR `json:"hyrox"`
	IntensityStats   map[domain.Intensity]int                          `json:"intensityStats"`
	MonthlyFrequency map[string]int                                    `json:"monthlyFrequency"`
}

// --- Service Interface ---
type ProgressService interface {
	// GetMemberProgress builds the member's own performance summary,
	// optionally restricted to one exercise.
	GetMemberProgress(ctx context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) (*ProgressSummary, error)
	// GetMemberProgressForCoach is the coach-side view of an enrolled
	// member's summary; the member must be enrolled in one of the
	// coach's programs.
	GetMemberProgressForCoach(ctx context.Context, coachID, programID, memberID primitive.ObjectID) (*ProgressSummary, error)
	// GetExerciseTrend classifies the member's recent direction on one
	// exercise over the trailing number of months.
	GetExerciseTrend(ctx context.Context, userID, exerciseID primitive.ObjectID, months int) (*performance.GrowthTrend, error)
}

// --- Service Implementation ---

type progressService struct {
	logRepo        repository.WorkoutLogRepository
	exerciseRepo   repository.ExerciseRepository
	enrollmentRepo repository.EnrollmentRepository
	programRepo    repository.ProgramRepository
	logger         *zap.Logger
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	logRepo repository.WorkoutLogRepository,
	exerciseRepo repository.ExerciseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	programRepo repository.ProgramRepository,
	logger *zap.Logger,
) ProgressService {
	return &progressService{
		logRepo:        logRepo,
		exerciseRepo:   exerciseRepo,
		enrollmentRepo: enrollmentRepo,
		programRepo:    programRepo,
		logger:         logger,
	}
}

// GetMemberProgress builds the performance summary from the member's logs.
func (s *progressService) GetMemberProgress(ctx context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) (*ProgressSummary, error) {
	logs, err := s.logRepo.GetByUserID(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	return s.buildSummary(ctx, logs)
}

// GetMemberProgressForCoach verifies the coach owns the program and that
// the member is enrolled in it, then builds the same summary.
func (s *progressService) GetMemberProgressForCoach(ctx context.Context, coachID, programID, memberID primitive.ObjectID) (*ProgressSummary, error) {
	if _, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID); err != nil {
		return nil, err
	}
	if _, err := s.enrollmentRepo.GetByUserAndProgram(ctx, memberID, programID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPermission
		}
		return nil, err
	}
	return s.GetMemberProgress(ctx, memberID, nil)
}

// GetExerciseTrend classifies the recent direction on one exercise.
func (s *progressService) GetExerciseTrend(ctx context.Context, userID, exerciseID primitive.ObjectID, months int) (*performance.GrowthTrend, error) {
	if months < 1 {
		return nil, ErrValidationFailed
	}

	logs, err := s.logRepo.GetByUserID(ctx, userID, &exerciseID)
	if err != nil {
		return nil, err
	}

	history := make([]performance.HistoryPoint, len(logs))
	for i, log := range logs {
		history[i] = performance.HistoryPoint{Date: log.LogDate, Weight: log.MaxWeight}
	}

	trend := performance.RecentGrowthTrend(history, months)
	return &trend, nil
}

// buildSummary resolves exercise metadata for the logs and runs every
// aggregation.
func (s *progressService) buildSummary(ctx context.Context, logs []domain.WorkoutLog) (*ProgressSummary, error) {
	idSet := make(map[primitive.ObjectID]bool)
	var exerciseIDs []primitive.ObjectID
	for _, log := range logs {
		if log.ExerciseID != nil && !idSet[*log.ExerciseID] {
			idSet[*log.ExerciseID] = true
			exerciseIDs = append(exerciseIDs, *log.ExerciseID)
		}
	}

	exercises, err := s.exerciseRepo.GetByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]domain.Exercise, len(exercises))
	for _, ex := range exercises {
		byID[ex.ID] = ex
	}

	return &ProgressSummary{
		PRs:              performance.ExtractPRs(logs, byID),
		BigThree:         performance.BigThreePRs(logs, byID),
		Hyrox:            performance.HyroxPRs(logs, byID),
		IntensityStats:   performance.IntensityStats(logs),
		MonthlyFrequency: performance.MonthlyFrequency(logs, defaultFrequencyMonths),
	}, nil
}
