package repository

import (
	"context"
	"time"

	"mkhwan/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate entry")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProgramRepository defines the interface for interacting with program data.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error)
	// ListOnSale returns programs that are both public and for sale,
	// for the member-facing catalog.
	ListOnSale(ctx context.Context) ([]domain.Program, error)
	Update(ctx context.Context, program *domain.Program) error
}

// BlueprintRepository defines the interface for interacting with the
// per-program (phase, day) planning cells. Block and section order lives
// inside the blueprint document, so every reorder is a single-document
// atomic rewrite.
type BlueprintRepository interface {
	InsertMany(ctx context.Context, blueprints []domain.Blueprint) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Blueprint, error)
	// GetByProgramID returns all cells of a program sorted by
	// (phaseNumber, dayNumber).
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Blueprint, error)
	GetByProgramPhaseDay(ctx context.Context, programID primitive.ObjectID, phase, day int) (*domain.Blueprint, error)
	PhaseExists(ctx context.Context, programID primitive.ObjectID, phase int) (bool, error)
	// MaxDayInPhase returns the highest dayNumber in the phase and the
	// number of cells it holds. Both are 0 when the phase has no cells.
	MaxDayInPhase(ctx context.Context, programID primitive.ObjectID, phase int) (maxDay, count int, err error)
	DeleteByPhase(ctx context.Context, programID primitive.ObjectID, phase int) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// UpdateMeta partially updates dayTitle and notes; nil leaves the
	// field untouched, a pointer to "" clears it.
	UpdateMeta(ctx context.Context, id primitive.ObjectID, dayTitle, notes *string) error

	// AppendRoutineBlock appends blockID to the order; rejects duplicates
	// with ErrDuplicate.
	AppendRoutineBlock(ctx context.Context, id, blockID primitive.ObjectID) error
	RemoveRoutineBlock(ctx context.Context, id, blockID primitive.ObjectID) error
	SetRoutineBlockOrder(ctx context.Context, id primitive.ObjectID, blockIDs []primitive.ObjectID) error
	ClearRoutineBlocks(ctx context.Context, id primitive.ObjectID) error

	AppendSection(ctx context.Context, id primitive.ObjectID, section domain.Section) error
	UpdateSection(ctx context.Context, id primitive.ObjectID, section domain.Section) error
	RemoveSection(ctx context.Context, id, sectionID primitive.ObjectID) error
	SetSections(ctx context.Context, id primitive.ObjectID, sections []domain.Section) error
}

// RoutineBlockRepository defines the interface for interacting with
// reusable routine blocks and their embedded items.
type RoutineBlockRepository interface {
	Create(ctx context.Context, block *domain.RoutineBlock) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RoutineBlock, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.RoutineBlock, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.RoutineBlock, error)
	Update(ctx context.Context, block *domain.RoutineBlock) error
	Delete(ctx context.Context, id, coachID primitive.ObjectID) error

	AppendItem(ctx context.Context, id primitive.ObjectID, item domain.RoutineItem) error
	RemoveItem(ctx context.Context, id, itemID primitive.ObjectID) error
	SetItems(ctx context.Context, id primitive.ObjectID, items []domain.RoutineItem) error
}

// ExerciseSearchFilter narrows a library search. Filter groups are ANDed
// together; values within a group are ORed.
type ExerciseSearchFilter struct {
	CoachID    primitive.ObjectID
	Search     string
	Categories []string
	ValueTypes []domain.WorkoutValueType
	Page       int
	PageSize   int
}

// ExerciseRepository defines the interface for the exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	Search(ctx context.Context, filter ExerciseSearchFilter) ([]domain.Exercise, int64, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id, coachID primitive.ObjectID) error
	SetMediaKey(ctx context.Context, id primitive.ObjectID, mediaKey string) error
}

// EnrollmentRepository defines the interface for member subscriptions.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Enrollment, error)
	GetByUserAndProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.Enrollment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.EnrollmentStatus) error
	// SetStartDate / SetEndDate set the date or clear it (nil).
	SetStartDate(ctx context.Context, id primitive.ObjectID, date *time.Time) error
	SetEndDate(ctx context.Context, id primitive.ObjectID, date *time.Time) error
	CountByStatus(ctx context.Context, programID primitive.ObjectID) (map[domain.EnrollmentStatus]int64, error)
	// GetExpiring returns enrollments whose endDate falls within [from, to].
	GetExpiring(ctx context.Context, programID primitive.ObjectID, from, to time.Time) ([]domain.Enrollment, error)
	// ExpireOverdue flips every ACTIVE enrollment whose endDate has passed
	// to EXPIRED and returns how many were updated.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// WorkoutLogRepository defines the interface for member workout logs.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error)
	// GetByUserID returns the user's logs in chronological (logDate asc)
	// order, optionally filtered to one exercise.
	GetByUserID(ctx context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error)
	// GetByBlueprintID returns homework submissions for a planning day,
	// newest first.
	GetByBlueprintID(ctx context.Context, blueprintID primitive.ObjectID) ([]domain.WorkoutLog, error)
	// CountByBlueprintIDs returns total and coach-checked submission
	// counts across the given planning days.
	CountByBlueprintIDs(ctx context.Context, blueprintIDs []primitive.ObjectID) (total, checked int64, err error)
	Update(ctx context.Context, log *domain.WorkoutLog) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	SetCoachComment(ctx context.Context, id primitive.ObjectID, comment string) error
	SetCheckFlag(ctx context.Context, id primitive.ObjectID, checked bool) error
}
