package notification

import (
	"context"
	"time"

	"rentalmarket/internal/logger"
)

const DefaultRetention = 90 * 24 * time.Hour

// PurgeRead removes read notifications older than retention.
func (s *Service) PurgeRead(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	start := time.Now()

	deleted, err := s.repo.DeleteReadBefore(ctx, s.now().Add(-retention))
	if err != nil {
		logger.ErrorContext(ctx, "notification cleanup failed", "error", err)
		return 0, err
	}

	logger.InfoContext(ctx, "notification cleanup completed", "deleted", deleted, "duration", time.Since(start))
	return deleted, nil
}
