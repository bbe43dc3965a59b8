package jobs

import (
	"context"
	"time"

	"mkhwan/coach-app/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

// Scheduler runs the background jobs on cron schedules.
type Scheduler struct {
	cron           *cron.Cron
	enrollmentRepo repository.EnrollmentRepository
	logger         *zap.Logger
}

// NewScheduler wires the job definitions without starting them.
func NewScheduler(enrollmentRepo repository.EnrollmentRepository, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

// Start registers the enrollment expiry sweep on the given cron schedule
// and starts the scheduler.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.sweepExpiredEnrollments); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("job scheduler started", zap.String("enrollmentExpirySchedule", schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// sweepExpiredEnrollments flips ACTIVE enrollments whose end date has
// passed to EXPIRED.
func (s *Scheduler) sweepExpiredEnrollments() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	expired, err := s.enrollmentRepo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("enrollment expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("enrollments expired", zap.Int64("count", expired))
	}
}
