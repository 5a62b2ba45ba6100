package review

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Review struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	AssetID   int64     `json:"asset_id"`
	RenterID  int64     `json:"renter_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type reviewModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	BookingID int64     `gorm:"column:booking_id;not null;uniqueIndex"`
	AssetID   int64     `gorm:"column:asset_id;not null;index"`
	RenterID  int64     `gorm:"column:renter_id;not null"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (reviewModel) TableName() string { return "reviews" }

func Models() []any { return []any{&reviewModel{}} }

func toDomainReview(m reviewModel) Review {
	comment := ""
	if m.Comment != nil {
		comment = *m.Comment
	}
	return Review{
		ID:        m.ID,
		BookingID: m.BookingID,
		AssetID:   m.AssetID,
		RenterID:  m.RenterID,
		Rating:    m.Rating,
		Comment:   comment,
		CreatedAt: m.CreatedAt,
	}
}

func toReviewModel(r *Review) reviewModel {
	var comment *string
	if r.Comment != "" {
		v := r.Comment
		comment = &v
	}
	return reviewModel{
		ID:        r.ID,
		BookingID: r.BookingID,
		AssetID:   r.AssetID,
		RenterID:  r.RenterID,
		Rating:    r.Rating,
		Comment:   comment,
		CreatedAt: r.CreatedAt,
	}
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes r through db, which may be a transaction owned by the caller.
func Insert(ctx context.Context, db *gorm.DB, r *Review) error {
	m := toReviewModel(r)
	if err := db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	r.ID = m.ID
	r.CreatedAt = m.CreatedAt
	return nil
}

func (r *Repository) ListByAsset(ctx context.Context, assetID int64, limit, offset int) ([]Review, error) {
	var rows []reviewModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	out := make([]Review, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainReview(m))
	}
	return out, nil
}

// AverageRating returns the mean rating and count for an asset.
func (r *Repository) AverageRating(ctx context.Context, assetID int64) (float64, int64, error) {
	var row struct {
		Avg   *float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&reviewModel{}).
		Select("AVG(rating) AS avg, COUNT(*) AS count").
		Where("asset_id = ?", assetID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("average rating: %w", err)
	}
	if row.Avg == nil {
		return 0, row.Count, nil
	}
	return *row.Avg, row.Count, nil
}
