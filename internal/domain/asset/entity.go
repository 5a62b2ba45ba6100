package asset

import (
	"time"

	"gorm.io/datatypes"

	"rentalmarket/internal/domain"
)

type Asset struct {
	ID          int64                       `gorm:"primaryKey" json:"id"`
	OwnerID     int64                       `gorm:"not null;index" json:"owner_id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	PriceCents  int64                       `gorm:"not null" json:"price_cents"`
	Address     string                      `json:"address"`
	Category    string                      `gorm:"size:100;index" json:"category"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	IsActive    bool                        `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (Asset) TableName() string { return "assets" }

// PrimaryImage is the first listed image, or empty.
func (a *Asset) PrimaryImage() string {
	if len(a.Images) == 0 {
		return ""
	}
	return a.Images[0]
}

func (a *Asset) Summary() domain.AssetSummary {
	return domain.AssetSummary{
		ID:         a.ID,
		Name:       a.Name,
		PriceCents: a.PriceCents,
		Image:      a.PrimaryImage(),
		OwnerID:    a.OwnerID,
	}
}

func Models() []any { return []any{&Asset{}} }
