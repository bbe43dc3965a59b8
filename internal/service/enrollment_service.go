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
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("member is already enrolled in this program")
	ErrInvalidStatus      = errors.New("invalid enrollment status")
	ErrInvalidExtension   = errors.New("extension days must be positive")
	ErrProgramNotForSale  = errors.New("program is not available for purchase")
)

// MemberStats summarizes a program's enrollments by status.
type MemberStats struct {
	Active  int64 `json:"active"`
	Expired int64 `json:"expired"`
	Paused  int64 `json:"paused"`
	Total   int64 `json:"total"`
}

// --- Service Interface ---
type EnrollmentService interface {
	// Enroll records a member's purchase of a program. The payment
	// itself is handled elsewhere; this only creates the subscription.
	Enroll(ctx context.Context, userID, programID primitive.ObjectID) (*domain.Enrollment, error)

	GetProgramEnrollments(ctx context.Context, coachID, programID primitive.ObjectID) ([]domain.Enrollment, error)
	UpdateStatus(ctx context.Context, coachID, enrollmentID primitive.ObjectID, status domain.EnrollmentStatus) error
	UpdateStartDate(ctx context.Context, coachID, enrollmentID primitive.ObjectID, date *time.Time) error
	UpdateEndDate(ctx context.Context, coachID, enrollmentID primitive.ObjectID, date *time.Time) error
	// Extend pushes the end date out by the given number of days:
	// newEnd = (existingEnd ?? now) + days. Always additive.
	Extend(ctx context.Context, coachID, enrollmentID primitive.ObjectID, days int) (*domain.Enrollment, error)

	GetMemberStats(ctx context.Context, coachID, programID primitive.ObjectID) (*MemberStats, error)
	GetExpiringEnrollments(ctx context.Context, coachID, programID primitive.ObjectID, daysUntilExpiry int) ([]domain.Enrollment, error)
}

// --- Service Implementation ---

type enrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	programRepo    repository.ProgramRepository
	logger         *zap.Logger
}

// NewEnrollmentService creates a new instance of enrollmentService.
func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	programRepo repository.ProgramRepository,
	logger *zap.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollmentRepo: enrollmentRepo,
		programRepo:    programRepo,
		logger:         logger,
	}
}

// Enroll creates an ACTIVE enrollment for the member. The start date
// stays unset until the coach schedules it; a program access period
// seeds the end date.
func (s *enrollmentService) Enroll(ctx context.Context, userID, programID primitive.ObjectID) (*domain.Enrollment, error) {
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if !program.IsPublic || !program.IsForSale {
		return nil, ErrProgramNotForSale
	}

	enrollment := &domain.Enrollment{
		UserID:    userID,
		ProgramID: programID,
		Status:    domain.EnrollmentActive,
	}
	if program.AccessPeriodDays > 0 {
		end := time.Now().UTC().AddDate(0, 0, program.AccessPeriodDays)
		enrollment.EndDate = &end
	}

	enrollmentID, err := s.enrollmentRepo.Create(ctx, enrollment)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}
	enrollment.ID = enrollmentID

	s.logger.Info("member enrolled",
		zap.String("enrollmentId", enrollmentID.Hex()),
		zap.String("programId", programID.Hex()))

	return enrollment, nil
}

// GetProgramEnrollments lists all enrollments of a coach's program.
func (s *enrollmentService) GetProgramEnrollments(ctx context.Context, coachID, programID primitive.ObjectID) ([]domain.Enrollment, error) {
	if _, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.GetByProgramID(ctx, programID)
}

// UpdateStatus sets the status unconditionally; ACTIVE, EXPIRED and
// PAUSED are freely interchangeable.
func (s *enrollmentService) UpdateStatus(ctx context.Context, coachID, enrollmentID primitive.ObjectID, status domain.EnrollmentStatus) error {
	if !domain.ValidEnrollmentStatus(status) {
		return ErrInvalidStatus
	}
	if _, err := s.authorizeEnrollment(ctx, enrollmentID, coachID); err != nil {
		return err
	}
	return s.enrollmentRepo.UpdateStatus(ctx, enrollmentID, status)
}

// UpdateStartDate sets or clears the start date. The client keeps
// start ≤ end before calling; the service stores what it is given.
func (s *enrollmentService) UpdateStartDate(ctx context.Context, coachID, enrollmentID primitive.ObjectID, date *time.Time) error {
	if _, err := s.authorizeEnrollment(ctx, enrollmentID, coachID); err != nil {
		return err
	}
	return s.enrollmentRepo.SetStartDate(ctx, enrollmentID, date)
}

// UpdateEndDate sets or clears the end date. Nil means unlimited access.
func (s *enrollmentService) UpdateEndDate(ctx context.Context, coachID, enrollmentID primitive.ObjectID, date *time.Time) error {
	if _, err := s.authorizeEnrollment(ctx, enrollmentID, coachID); err != nil {
		return err
	}
	return s.enrollmentRepo.SetEndDate(ctx, enrollmentID, date)
}

// Extend pushes the end date out by days from the existing end date, or
// from now when the enrollment had unlimited access.
func (s *enrollmentService) Extend(ctx context.Context, coachID, enrollmentID primitive.ObjectID, days int) (*domain.Enrollment, error) {
	if days <= 0 {
		return nil, ErrInvalidExtension
	}
	enrollment, err := s.authorizeEnrollment(ctx, enrollmentID, coachID)
	if err != nil {
		return nil, err
	}

	base := time.Now().UTC()
	if enrollment.EndDate != nil {
		base = *enrollment.EndDate
	}
	newEnd := base.AddDate(0, 0, days)

	if err := s.enrollmentRepo.SetEndDate(ctx, enrollmentID, &newEnd); err != nil {
		return nil, err
	}
	enrollment.EndDate = &newEnd
	return enrollment, nil
}

// GetMemberStats returns enrollment counts by status for the program.
func (s *enrollmentService) GetMemberStats(ctx context.Context, coachID, programID primitive.ObjectID) (*MemberStats, error) {
	if _, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID); err != nil {
		return nil, err
	}

	counts, err := s.enrollmentRepo.CountByStatus(ctx, programID)
	if err != nil {
		return nil, err
	}

	stats := &MemberStats{
		Active:  counts[domain.EnrollmentActive],
		Expired: counts[domain.EnrollmentExpired],
		Paused:  counts[domain.EnrollmentPaused],
	}
	stats.Total = stats.Active + stats.Expired + stats.Paused
	return stats, nil
}

// GetExpiringEnrollments returns enrollments whose end date falls within
// [now, now + daysUntilExpiry]. Unlimited enrollments never show up.
func (s *enrollmentService) GetExpiringEnrollments(ctx context.Context, coachID, programID primitive.ObjectID, daysUntilExpiry int) ([]domain.Enrollment, error) {
	if daysUntilExpiry < 0 {
		return nil, ErrValidationFailed
	}
	if _, err := authorizeProgramCoach(ctx, s.programRepo, programID, coachID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.enrollmentRepo.GetExpiring(ctx, programID, now, now.AddDate(0, 0, daysUntilExpiry))
}

// authorizeEnrollment resolves enrollment → program → coach and verifies
// ownership.
func (s *enrollmentService) authorizeEnrollment(ctx context.Context, enrollmentID, coachID primitive.ObjectID) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if _, err := authorizeProgramCoach(ctx, s.programRepo, enrollment.ProgramID, coachID); err != nil {
		return nil, err
	}
	return enrollment, nil
}
