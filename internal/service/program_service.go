package service

import (
	"context"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProgramInput carries the coach-editable program attributes.
type ProgramInput struct {
	Title             string
	Description       string
	CurriculumSummary string
	Price             int64
	ProgramType       string
	Difficulty        string
	DurationWeeks     int
	DaysPerWeek       int
	AccessPeriodDays  int
	IsPublic          bool
	IsForSale         bool
}

// --- Service Interface ---
type ProgramService interface {
	CreateProgram(ctx context.Context, coachID primitive.ObjectID, input ProgramInput) (*domain.Program, error)
	GetProgram(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	GetCoachPrograms(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error)
	// ListOnSale is the member-facing catalog: public, purchasable programs.
	ListOnSale(ctx context.Context) ([]domain.Program, error)
	UpdateProgram(ctx context.Context, coachID, programID primitive.ObjectID, input ProgramInput) (*domain.Program, error)
}

// --- Service Implementation ---

type programService struct {
	programRepo repository.ProgramRepository
	logger      *zap.Logger
}

// NewProgramService creates a new instance of programService.
func NewProgramService(programRepo repository.ProgramRepository, logger *zap.Logger) ProgramService {
	return &programService{
		programRepo: programRepo,
		logger:      logger,
	}
}

// CreateProgram handles the creation of a new program by a coach.
func (s *programService) CreateProgram(ctx context.Context, coachID primitive.ObjectID, input ProgramInput) (*domain.Program, error) {
	if input.Title == "" || coachID == primitive.NilObjectID {
		return nil, ErrValidationFailed
	}
	if input.DurationWeeks < 0 || input.DaysPerWeek < 0 || input.DaysPerWeek > 7 {
		return nil, ErrValidationFailed
	}

	program := &domain.Program{
		CoachID:           coachID,
		Title:             input.Title,
		Description:       input.Description,
		CurriculumSummary: input.CurriculumSummary,
		Price:             input.Price,
		ProgramType:       input.ProgramType,
		Difficulty:        input.Difficulty,
		DurationWeeks:     input.DurationWeeks,
		DaysPerWeek:       input.DaysPerWeek,
		AccessPeriodDays:  input.AccessPeriodDays,
		IsPublic:          input.IsPublic,
		IsForSale:         input.IsForSale,
	}

	programID, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}

	s.logger.Info("program created",
		zap.String("programId", programID.Hex()),
		zap.String("coachId", coachID.Hex()))

	return s.programRepo.GetByID(ctx, programID)
}

// GetProgram retrieves a single program.
func (s *programService) GetProgram(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

// GetCoachPrograms retrieves all programs owned by the coach.
func (s *programService) GetCoachPrograms(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error) {
	return s.programRepo.GetByCoachID(ctx, coachID)
}

// ListOnSale retrieves the public catalog.
func (s *programService) ListOnSale(ctx context.Context) ([]domain.Program, error) {
	return s.programRepo.ListOnSale(ctx)
}

// UpdateProgram rewrites program attributes after an ownership check.
func (s *programService) UpdateProgram(ctx context.Context, coachID, programID primitive.ObjectID, input ProgramInput) (*domain.Program, error) {
	if input.Title == "" {
		return nil, ErrValidationFailed
	}

	program, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID)
	if err != nil {
		return nil, err
	}

	program.Title = input.Title
	program.Description = input.Description
	program.CurriculumSummary = input.CurriculumSummary
	program.Price = input.Price
	program.ProgramType = input.ProgramType
	program.Difficulty = input.Difficulty
	program.DurationWeeks = input.DurationWeeks
	program.DaysPerWeek = input.DaysPerWeek
	program.AccessPeriodDays = input.AccessPeriodDays
	program.IsPublic = input.IsPublic
	program.IsForSale = input.IsForSale

	if err := s.programRepo.Update(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}
