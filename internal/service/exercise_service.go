package service

import (
	"context"
	"errors"
	"fmt"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/repository"
	"mkhwan/coach-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
)

// ExerciseSearchInput narrows a library search; see the repository filter
// for the AND/OR semantics.
type ExerciseSearchInput struct {
	Search     string
	Categories []string
	ValueTypes []domain.WorkoutValueType
	Page       int
}

// ExercisePage is one page of library search results.
type ExercisePage struct {
	Exercises []domain.Exercise `json:"exercises"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	PageSize  int               `json:"pageSize"`
}

// libraryPageSize is fixed at the call site in the original UI.
const libraryPageSize = 20

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, coachID primitive.ObjectID, title, category string, valueType domain.WorkoutValueType, classification domain.Classification) (*domain.Exercise, error)
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	SearchExercises(ctx context.Context, coachID primitive.ObjectID, input ExerciseSearchInput) (*ExercisePage, error)
	UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, title, category string, valueType domain.WorkoutValueType, classification domain.Classification) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error

	// RequestMediaUpload returns a presigned PUT URL for the exercise's
	// demo media and records the object key.
	RequestMediaUpload(ctx context.Context, coachID, exerciseID primitive.ObjectID, fileName, contentType string) (uploadURL string, err error)
	// GetMediaDownloadURL returns a presigned GET URL for the stored media.
	GetMediaDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
	logger       *zap.Logger
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage, logger *zap.Logger) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
		logger:       logger,
	}
}

// CreateExercise handles the creation of a new library exercise. When no
// classification is given, the title keyword heuristic backfills one.
func (s *exerciseService) CreateExercise(ctx context.Context, coachID primitive.ObjectID, title, category string, valueType domain.WorkoutValueType, classification domain.Classification) (*domain.Exercise, error) {
	if title == "" || coachID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}
	if classification == domain.ClassUntagged {
		classification = domain.ClassifyExerciseName(title)
	}

	exercise := &domain.Exercise{
		CoachID:        coachID,
		Title:          title,
		Category:       category,
		ValueType:      valueType,
		Classification: classification,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExercise retrieves a single exercise.
func (s *exerciseService) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// SearchExercises runs the paginated library query scoped to the coach.
func (s *exerciseService) SearchExercises(ctx context.Context, coachID primitive.ObjectID, input ExerciseSearchInput) (*ExercisePage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	exercises, total, err := s.exerciseRepo.Search(ctx, repository.ExerciseSearchFilter{
		CoachID:    coachID,
		Search:     input.Search,
		Categories: input.Categories,
		ValueTypes: input.ValueTypes,
		Page:       page,
		PageSize:   libraryPageSize,
	})
	if err != nil {
		return nil, err
	}

	return &ExercisePage{
		Exercises: exercises,
		Total:     total,
		Page:      page,
		PageSize:  libraryPageSize,
	}, nil
}

// UpdateExercise rewrites exercise attributes, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID, title, category string, valueType domain.WorkoutValueType, classification domain.Classification) (*domain.Exercise, error) {
	if title == "" {
		return nil, ErrValidationFailed
	}

	exercise, err := s.authorizeExercise(ctx, exerciseID, coachID)
	if err != nil {
		return nil, err
	}

	exercise.Title = title
	exercise.Category = category
	exercise.ValueType = valueType
	exercise.Classification = classification

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

// DeleteExercise removes an exercise, ensuring ownership at the
// repository filter level.
func (s *exerciseService) DeleteExercise(ctx context.Context, coachID, exerciseID primitive.ObjectID) error {
	err := s.exerciseRepo.Delete(ctx, exerciseID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrExerciseNotFound
	}
	return err
}

// RequestMediaUpload issues a presigned PUT URL for the exercise's demo
// media and records the generated object key.
func (s *exerciseService) RequestMediaUpload(ctx context.Context, coachID, exerciseID primitive.ObjectID, fileName, contentType string) (string, error) {
	if fileName == "" || contentType == "" {
		return "", ErrValidationFailed
	}
	if _, err := s.authorizeExercise(ctx, exerciseID, coachID); err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("exercises/%s/%s-%s", exerciseID.Hex(), uuid.NewString(), fileName)
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, 0)
	if err != nil {
		s.logger.Error("presigned upload URL failed",
			zap.String("exerciseId", exerciseID.Hex()), zap.Error(err))
		return "", err
	}

	if err := s.exerciseRepo.SetMediaKey(ctx, exerciseID, objectKey); err != nil {
		return "", err
	}
	return uploadURL, nil
}

// GetMediaDownloadURL issues a presigned GET URL for the stored media.
func (s *exerciseService) GetMediaDownloadURL(ctx context.Context, exerciseID primitive.ObjectID) (string, error) {
	exercise, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return "", err
	}
	if exercise.MediaKey == "" {
		return "", ErrExerciseNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.MediaKey, 0)
}

// authorizeExercise loads the exercise and verifies the coach owns it.
func (s *exerciseService) authorizeExercise(ctx context.Context, exerciseID, coachID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.CoachID != coachID {
		return nil, ErrNoPermission
	}
	return exercise, nil
}
