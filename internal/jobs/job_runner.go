package jobs

import (
	"context"
	"time"

	"rentalmarket/internal/domain/booking"
	"rentalmarket/internal/logger"
)

// BookingEscalator advances bookings along their time-driven states.
type BookingEscalator interface {
	EscalateStatuses(ctx context.Context, expiringWindow time.Duration) (booking.EscalationResult, error)
}

type NotificationPurger interface {
	PurgeRead(ctx context.Context, retention time.Duration) (int64, error)
}

// Options configures the periodic jobs.
type Options struct {
	ExpiringSoonWindow    time.Duration
	NotificationRetention time.Duration
	Timeout               time.Duration
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookings      BookingEscalator
	notifications NotificationPurger
	opts          Options
}

func NewJobRunner(bookings BookingEscalator, notifications NotificationPurger, opts Options) *JobRunner {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	return &JobRunner{bookings: bookings, notifications: notifications, opts: opts}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.opts.Timeout)
	defer cancel()

	logger.Debug("Starting job", "job", jobName)
	jobFunc(ctx)
	logger.Debug("Job completed", "job", jobName)
}

// EscalateBookings moves confirmed bookings to active, then expiring soon,
// then overdue as their dates pass.
func (jr *JobRunner) EscalateBookings() {
	jr.runWithRecovery("EscalateBookings", func(ctx context.Context) {
		res, err := jr.bookings.EscalateStatuses(ctx, jr.opts.ExpiringSoonWindow)
		if err != nil {
			logger.Error("Failed to escalate bookings", "error", err)
			return
		}
		if res.Activated+res.ExpiringSoon+res.Overdue > 0 {
			logger.Info("Escalated bookings",
				"activated", res.Activated, "expiring_soon", res.ExpiringSoon, "overdue", res.Overdue)
		}
	})
}

func (jr *JobRunner) PurgeNotifications() {
	if jr.notifications == nil {
		return
	}
	jr.runWithRecovery("PurgeNotifications", func(ctx context.Context) {
		if _, err := jr.notifications.PurgeRead(ctx, jr.opts.NotificationRetention); err != nil {
			logger.Error("Failed to purge notifications", "error", err)
		}
	})
}

// RunAll runs every job once (for manual execution).
func (jr *JobRunner) RunAll() {
	jr.EscalateBookings()
	jr.PurgeNotifications()
}
