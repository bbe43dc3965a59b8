package service

import (
	"context"
	"errors"

	"mkhwan/coach-app/internal/domain"
	"mkhwan/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors shared across services. Every coach-facing action resolves
// ownership through the same check, so "forbidden" is one error value
// everywhere instead of a per-action copy.
var (
	ErrNoPermission     = errors.New("no permission to access this resource")
	ErrProgramNotFound  = errors.New("program not found")
	ErrValidationFailed = errors.New("validation failed")
)

// authorizeProgramCoach loads the program and verifies that coachID owns
// it. Every coach-facing program/member/homework action funnels through
// this single check.
func authorizeProgramCoach(
	ctx context.Context,
	programRepo repository.ProgramRepository,
	programID, coachID primitive.ObjectID,
) (*domain.Program, error) {
	program, err := programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.CoachID != coachID {
		return nil, ErrNoPermission
	}
	return program, nil
}
