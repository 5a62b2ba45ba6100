package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"rentalmarket/internal/bootstrap"
	"rentalmarket/internal/domain/asset"
	"rentalmarket/internal/domain/booking"
	"rentalmarket/internal/domain/notification"
	"rentalmarket/internal/domain/settings"
	"rentalmarket/internal/domain/user"
	"rentalmarket/internal/jobs"
	"rentalmarket/internal/logger"
	"rentalmarket/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "run every job once and exit")
	flag.Parse()

	cfg, err := bootstrap.Config()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := bootstrap.Database(cfg)
	if err != nil {
		logger.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	notifications := notification.NewService(notification.NewRepository(db))
	bookings := booking.NewService(
		booking.NewBookingRepository(db),
		asset.NewRepository(db),
		user.NewRepository(db),
		settings.NewRepository(db, settings.Settings{MaxRequestsPerUser: cfg.Booking.DefaultMaxRequestsPerUser}),
		notifications,
		nil,
	)

	runner := jobs.NewJobRunner(bookings, notifications, jobs.Options{
		ExpiringSoonWindow:    cfg.Booking.ExpiringSoonWindow,
		NotificationRetention: cfg.Scheduler.NotificationRetention,
	})
	if *once {
		runner.RunAll()
		return
	}

	s, err := scheduler.New(runner, scheduler.Specs{
		Escalation:          cfg.Scheduler.EscalationSpec,
		NotificationCleanup: cfg.Scheduler.NotificationCleanup,
	})
	if err != nil {
		logger.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.Start()
	<-ctx.Done()
	s.Stop()
}
