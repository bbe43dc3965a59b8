package service

import (
	"context"
	"errors"
	"time"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrWorkoutLogNotFound = errors.New("workout log not found")
)

// WorkoutLogInput carries the member-editable log fields.
type WorkoutLogInput struct {
	ExerciseID    *primitive.ObjectID
	BlueprintID   *primitive.ObjectID
	LogDate       time.Time
	Content       map[string]any
	Intensity     domain.Intensity
	MaxWeight     float64
	TotalVolume   float64
	TotalDuration int
}

// HomeworkSubmission is one leaderboard row. Rank is the position in the
// recency-ordered submission list, not a score-derived standing.
type HomeworkSubmission struct {
	Rank       int               `json:"rank"`
	MemberName string            `json:"memberName"`
	Log        domain.WorkoutLog `json:"log"`
}

// HomeworkStats aggregates submission counts across a whole program.
type HomeworkStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"` // Checked by the coach
	Pending   int64 `json:"pending"`
}

// --- Service Interface ---
type HomeworkService interface {
	// Member-facing log management; every mutation is owner-only.
	CreateWorkoutLog(ctx context.Context, userID primitive.ObjectID, input WorkoutLogInput) (*domain.WorkoutLog, error)
	UpdateWorkoutLog(ctx context.Context, userID, logID primitive.ObjectID, input WorkoutLogInput) (*domain.WorkoutLog, error)
	DeleteWorkoutLog(ctx context.Context, userID, logID primitive.ObjectID) error
	GetMemberLogs(ctx context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error)

	// Coach review; authorization follows log → blueprint → program →
	// coach. A log without a blueprint has no program to resolve and is
	// therefore never reviewable through this path.
	UpdateCoachComment(ctx context.Context, coachID, logID primitive.ObjectID, comment string) error
	ToggleCoachCheck(ctx context.Context, coachID, logID primitive.ObjectID) (checked bool, err error)

	GetHomeworkSubmissions(ctx context.Context, coachID, programID primitive.ObjectID, phaseNumber, dayNumber int) ([]HomeworkSubmission, error)
	GetHomeworkStats(ctx context.Context, coachID, programID primitive.ObjectID) (*HomeworkStats, error)
}

// --- Service Implementation ---

type homeworkService struct {
	logRepo       repository.WorkoutLogRepository
	blueprintRepo repository.BlueprintRepository
	programRepo   repository.ProgramRepository
	userRepo      repository.UserRepository
	logger        *zap.Logger
}

// NewHomeworkService creates a new instance of homeworkService.
func NewHomeworkService(
	logRepo repository.WorkoutLogRepository,
	blueprintRepo repository.BlueprintRepository,
	programRepo repository.ProgramRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) HomeworkService {
	return &homeworkService{
		logRepo:       logRepo,
		blueprintRepo: blueprintRepo,
		programRepo:   programRepo,
		userRepo:      userRepo,
		logger:        logger,
	}
}

// === Member Log Management ===

// CreateWorkoutLog records a member's workout result.
func (s *homeworkService) CreateWorkoutLog(ctx context.Context, userID primitive.ObjectID, input WorkoutLogInput) (*domain.WorkoutLog, error) {
	if userID == primitive.NilObjectID || input.LogDate.IsZero() {
		return nil, ErrValidationFailed
	}
	if !domain.ValidIntensity(input.Intensity) {
		return nil, ErrValidationFailed
	}
	if input.BlueprintID != nil {
		if _, err := s.blueprintRepo.GetByID(ctx, *input.BlueprintID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrBlueprintNotFound
			}
			return nil, err
		}
	}

	log := &domain.WorkoutLog{
		UserID:        userID,
		ExerciseID:    input.ExerciseID,
		BlueprintID:   input.BlueprintID,
		LogDate:       input.LogDate.UTC(),
		Content:       input.Content,
		Intensity:     input.Intensity,
		MaxWeight:     input.MaxWeight,
		TotalVolume:   input.TotalVolume,
		TotalDuration: input.TotalDuration,
	}

	logID, err := s.logRepo.Create(ctx, log)
	if err != nil {
		return nil, err
	}
	log.ID = logID
	return log, nil
}

// UpdateWorkoutLog rewrites the member-editable fields of an owned log.
func (s *homeworkService) UpdateWorkoutLog(ctx context.Context, userID, logID primitive.ObjectID, input WorkoutLogInput) (*domain.WorkoutLog, error) {
	if input.LogDate.IsZero() || !domain.ValidIntensity(input.Intensity) {
		return nil, ErrValidationFailed
	}

	log, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutLogNotFound
		}
		return nil, err
	}
	if log.UserID != userID {
		return nil, ErrNoPermission
	}

	log.ExerciseID = input.ExerciseID
	log.BlueprintID = input.BlueprintID
	log.LogDate = input.LogDate.UTC()
	log.Content = input.Content
	log.Intensity = input.Intensity
	log.MaxWeight = input.MaxWeight
	log.TotalVolume = input.TotalVolume
	log.TotalDuration = input.TotalDuration

	if err := s.logRepo.Update(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// DeleteWorkoutLog removes an owned log. The repository filter pins the
// owner, so a foreign log reads as not found.
func (s *homeworkService) DeleteWorkoutLog(ctx context.Context, userID, logID primitive.ObjectID) error {
	err := s.logRepo.Delete(ctx, logID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutLogNotFound
	}
	return err
}

// GetMemberLogs returns the member's logs in chronological order,
// optionally filtered to one exercise.
func (s *homeworkService) GetMemberLogs(ctx context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error) {
	return s.logRepo.GetByUserID(ctx, userID, exerciseID)
}

// === Coach Review ===

// UpdateCoachComment stores the coach's review comment on a submission.
func (s *homeworkService) UpdateCoachComment(ctx context.Context, coachID, logID primitive.ObjectID, comment string) error {
	if _, err := s.authorizeCoachReview(ctx, logID, coachID); err != nil {
		return err
	}
	return s.logRepo.SetCoachComment(ctx, logID, comment)
}

// ToggleCoachCheck flips the checked flag and returns the new state.
func (s *homeworkService) ToggleCoachCheck(ctx context.Context, coachID, logID primitive.ObjectID) (bool, error) {
	log, err := s.authorizeCoachReview(ctx, logID, coachID)
	if err != nil {
		return false, err
	}

	checked := !log.IsCheckedByCoach
	if err := s.logRepo.SetCheckFlag(ctx, logID, checked); err != nil {
		return false, err
	}
	return checked, nil
}

// GetHomeworkSubmissions returns all submissions for one planning day
// across enrolled members, newest first. Rank badges in the UI are purely
// positional, so rank here is just the array index + 1.
func (s *homeworkService) GetHomeworkSubmissions(ctx context.Context, coachID, programID primitive.ObjectID, phaseNumber, dayNumber int) ([]HomeworkSubmission, error) {
	if _, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID); err != nil {
		return nil, err
	}

	blueprint, err := s.blueprintRepo.GetByProgramPhaseDay(ctx, programID, phaseNumber, dayNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBlueprintNotFound
		}
		return nil, err
	}

	logs, err := s.logRepo.GetByBlueprintID(ctx, blueprint.ID)
	if err != nil {
		return nil, err
	}

	// Resolve member names once per distinct submitter.
	names := make(map[primitive.ObjectID]string)
	submissions := make([]HomeworkSubmission, len(logs))
	for i, log := range logs {
		name, ok := names[log.UserID]
		if !ok {
			if member, err := s.userRepo.GetByID(ctx, log.UserID); err == nil {
				name = member.Name
			}
			names[log.UserID] = name
		}
		submissions[i] = HomeworkSubmission{
			Rank:       i + 1,
			MemberName: name,
			Log:        log,
		}
	}
	return submissions, nil
}

// GetHomeworkStats aggregates submission counts across every planning
// day of the program.
func (s *homeworkService) GetHomeworkStats(ctx context.Context, coachID, programID primitive.ObjectID) (*HomeworkStats, error) {
	if _, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID); err != nil {
		return nil, err
	}

	blueprints, err := s.blueprintRepo.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, err
	}
	blueprintIDs := make([]primitive.ObjectID, len(blueprints))
	for i, bp := range blueprints {
		blueprintIDs[i] = bp.ID
	}

	total, checked, err := s.logRepo.CountByBlueprintIDs(ctx, blueprintIDs)
	if err != nil {
		return nil, err
	}

	return &HomeworkStats{
		Total:     total,
		Completed: checked,
		Pending:   total - checked,
	}, nil
}

// authorizeCoachReview resolves log → blueprint → program → coach. A log
// with no blueprint cannot receive coach review through this path.
func (s *homeworkService) authorizeCoachReview(ctx context.Context, logID, coachID primitive.ObjectID) (*domain.WorkoutLog, error) {
	log, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutLogNotFound
		}
		return nil, err
	}
	if log.BlueprintID == nil {
		return nil, ErrNoPermission
	}

	blueprint, err := s.blueprintRepo.GetByID(ctx, *log.BlueprintID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoPermission
		}
		return nil, err
	}
	if _, err := authorizeProgramCoach(ctx, s.programRepo, blueprint.ProgramID, coachID); err != nil {
		return nil, err
	}
	return log, nil
}
