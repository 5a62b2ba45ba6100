package dispute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, d *Dispute) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("create dispute: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Dispute, error) {
	var d Dispute
	err := r.db.WithContext(ctx).First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dispute: %w", err)
	}
	return &d, nil
}

func (r *Repository) ListByBooking(ctx context.Context, bookingID int64) ([]Dispute, error) {
	var out []Dispute
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list booking disputes: %w", err)
	}
	return out, nil
}

// List pages disputes for moderation, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status Status, limit, offset int) ([]Dispute, int64, error) {
	q := r.db.WithContext(ctx).Model(&Dispute{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count disputes: %w", err)
	}
	var out []Dispute
	if err := q.Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list disputes: %w", err)
	}
	return out, total, nil
}

// Decide closes an OPEN dispute. It reports false when the dispute is
// missing or already decided.
func (r *Repository) Decide(ctx context.Context, id int64, decision Status, adminID int64, comments string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Dispute{}).
		Where("id = ? AND status = ?", id, StatusOpen).
		Updates(map[string]any{
			"status":         decision,
			"admin_comments": comments,
			"resolved_by":    adminID,
			"resolved_at":    now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("decide dispute: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
