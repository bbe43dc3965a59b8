package service

import (
	"context"
	"errors"
	"fmt"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrRoutineBlockNotFound  = errors.New("routine block not found")
	ErrRoutineItemNotFound   = errors.New("routine item not found")
	ErrInvalidWorkoutFormat  = errors.New("invalid workout format")
	ErrInvalidRecommendation = errors.New("recommendation does not match the workout format template")
)

// RoutineBlockInput carries the coach-editable block attributes.
type RoutineBlockInput struct {
	Name               string
	Format             domain.WorkoutFormat
	TargetValue        string
	Description        string
	LeaderboardEnabled bool
}

// --- Service Interface ---
type RoutineService interface {
	CreateRoutineBlock(ctx context.Context, coachID primitive.ObjectID, name string, format domain.WorkoutFormat) (*domain.RoutineBlock, error)
	GetRoutineBlock(ctx context.Context, id primitive.ObjectID) (*domain.RoutineBlock, error)
	GetCoachRoutineBlocks(ctx context.Context, coachID primitive.ObjectID) ([]domain.RoutineBlock, error)
	UpdateRoutineBlock(ctx context.Context, coachID, blockID primitive.ObjectID, input RoutineBlockInput) (*domain.RoutineBlock, error)
	DeleteRoutineBlock(ctx context.Context, coachID, blockID primitive.ObjectID) error

	AddRoutineItem(ctx context.Context, coachID, blockID, exerciseID primitive.ObjectID, recommendation map[string]any) (*domain.RoutineItem, error)
	DeleteRoutineItem(ctx context.Context, coachID, blockID, itemID primitive.ObjectID) error
	ReorderRoutineItems(ctx context.Context, coachID, blockID primitive.ObjectID, orderedItemIDs []primitive.ObjectID) error
}

// --- Service Implementation ---

type routineService struct {
	blockRepo    repository.RoutineBlockRepository
	exerciseRepo repository.ExerciseRepository
	logger       *zap.Logger
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(
	blockRepo repository.RoutineBlockRepository,
	exerciseRepo repository.ExerciseRepository,
	logger *zap.Logger,
) RoutineService {
	return &routineService{
		blockRepo:    blockRepo,
		exerciseRepo: exerciseRepo,
		logger:       logger,
	}
}

// CreateRoutineBlock creates a block with the minimal required fields;
// everything else defaults to empty/false.
func (s *routineService) CreateRoutineBlock(ctx context.Context, coachID primitive.ObjectID, name string, format domain.WorkoutFormat) (*domain.RoutineBlock, error) {
	if name == "" || coachID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}
	if !domain.ValidWorkoutFormat(format) {
		return nil, ErrInvalidWorkoutFormat
	}

	block := &domain.RoutineBlock{
		CoachID: coachID,
		Name:    name,
		Format:  format,
	}

	blockID, err := s.blockRepo.Create(ctx, block)
	if err != nil {
		return nil, err
	}

	s.logger.Info("routine block created",
		zap.String("blockId", blockID.Hex()),
		zap.String("format", string(format)))

	return s.blockRepo.GetByID(ctx, blockID)
}

// GetRoutineBlock retrieves a single routine block.
func (s *routineService) GetRoutineBlock(ctx context.Context, id primitive.ObjectID) (*domain.RoutineBlock, error) {
	block, err := s.blockRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineBlockNotFound
		}
		return nil, err
	}
	return block, nil
}

// GetCoachRoutineBlocks retrieves all blocks owned by the coach.
func (s *routineService) GetCoachRoutineBlocks(ctx context.Context, coachID primitive.ObjectID) ([]domain.RoutineBlock, error) {
	return s.blockRepo.GetByCoachID(ctx, coachID)
}

// UpdateRoutineBlock rewrites block attributes, ensuring ownership.
func (s *routineService) UpdateRoutineBlock(ctx context.Context, coachID, blockID primitive.ObjectID, input RoutineBlockInput) (*domain.RoutineBlock, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if !domain.ValidWorkoutFormat(input.Format) {
		return nil, ErrInvalidWorkoutFormat
	}

	block, err := s.authorizeBlock(ctx, blockID, coachID)
	if err != nil {
		return nil, err
	}

	block.Name = input.Name
	block.Format = input.Format
	block.TargetValue = input.TargetValue
	block.Description = input.Description
	block.LeaderboardEnabled = input.LeaderboardEnabled

	if err := s.blockRepo.Update(ctx, block); err != nil {
		return nil, err
	}
	return block, nil
}

// DeleteRoutineBlock removes a block, ensuring ownership. The repository
// filter pins the coach, so a foreign block reads as not found.
func (s *routineService) DeleteRoutineBlock(ctx context.Context, coachID, blockID primitive.ObjectID) error {
	err := s.blockRepo.Delete(ctx, blockID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRoutineBlockNotFound
	}
	return err
}

// AddRoutineItem appends an exercise entry to the block. The
// recommendation is validated against the block format's template
// (required keys only) after empty fields are stripped.
func (s *routineService) AddRoutineItem(ctx context.Context, coachID, blockID, exerciseID primitive.ObjectID, recommendation map[string]any) (*domain.RoutineItem, error) {
	block, err := s.authorizeBlock(ctx, blockID, coachID)
	if err != nil {
		return nil, err
	}
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	cleaned := domain.StripEmptyRecommendation(recommendation)
	if err := domain.ValidateRecommendation(block.Format, cleaned); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecommendation, err)
	}

	item := domain.RoutineItem{
		ID:             primitive.NewObjectID(),
		ExerciseID:     exerciseID,
		Recommendation: cleaned,
	}
	if err := s.blockRepo.AppendItem(ctx, blockID, item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteRoutineItem removes one item from the block.
func (s *routineService) DeleteRoutineItem(ctx context.Context, coachID, blockID, itemID primitive.ObjectID) error {
	block, err := s.authorizeBlock(ctx, blockID, coachID)
	if err != nil {
		return err
	}

	found := false
	for _, item := range block.Items {
		if item.ID == itemID {
			found = true
			break
		}
	}
	if !found {
		return ErrRoutineItemNotFound
	}

	return s.blockRepo.RemoveItem(ctx, blockID, itemID)
}

// ReorderRoutineItems rewrites the block's whole item order. The given
// list must be a permutation of the existing item IDs.
func (s *routineService) ReorderRoutineItems(ctx context.Context, coachID, blockID primitive.ObjectID, orderedItemIDs []primitive.ObjectID) error {
	block, err := s.authorizeBlock(ctx, blockID, coachID)
	if err != nil {
		return err
	}

	existingIDs := make([]primitive.ObjectID, len(block.Items))
	byID := make(map[primitive.ObjectID]domain.RoutineItem, len(block.Items))
	for i, item := range block.Items {
		existingIDs[i] = item.ID
		byID[item.ID] = item
	}
	if !isPermutation(existingIDs, orderedItemIDs) {
		return ErrInvalidOrder
	}

	reordered := make([]domain.RoutineItem, len(orderedItemIDs))
	for i, id := range orderedItemIDs {
		reordered[i] = byID[id]
	}
	return s.blockRepo.SetItems(ctx, blockID, reordered)
}

// authorizeBlock loads the block and verifies the coach owns it.
func (s *routineService) authorizeBlock(ctx context.Context, blockID, coachID primitive.ObjectID) (*domain.RoutineBlock, error) {
	block, err := s.blockRepo.GetByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineBlockNotFound
		}
		return nil, err
	}
	if block.CoachID != coachID {
		return nil, ErrNoPermission
	}
	return block, nil
}
