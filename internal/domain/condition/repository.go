package condition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentalmarket/internal/database"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns nil when the booking has no evidence yet.
func (r *Repository) Get(ctx context.Context, bookingID int64) (*AssetCondition, error) {
	var c AssetCondition
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset condition: %w", err)
	}
	return &c, nil
}

// Append adds images to one side under a row lock, creating the record on
// first upload. A concurrent first upload is retried once against the row
// the other request created.
func (r *Repository) Append(ctx context.Context, bookingID int64, side Side, uploaderID int64, images []Image, now time.Time) (*AssetCondition, error) {
	c, err := r.appendOnce(ctx, bookingID, side, uploaderID, images, now)
	if err != nil && database.IsUniqueViolation(err) {
		c, err = r.appendOnce(ctx, bookingID, side, uploaderID, images, now)
	}
	if err != nil {
		return nil, fmt.Errorf("append %s images: %w", side, err)
	}
	return c, nil
}

func (r *Repository) appendOnce(ctx context.Context, bookingID int64, side Side, uploaderID int64, images []Image, now time.Time) (*AssetCondition, error) {
	var out *AssetCondition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c AssetCondition
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_id = ?", bookingID).
			First(&c).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c = *Empty(bookingID)
			c.CreatedAt = now
			c.append(side, uploaderID, images)
			c.UpdatedAt = now
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			c.append(side, uploaderID, images)
			c.UpdatedAt = now
			if err := tx.Save(&c).Error; err != nil {
				return err
			}
		}
		out = &c
		return nil
	})
	return out, err
}
