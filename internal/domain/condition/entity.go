package condition

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending        Status = "PENDING"
	StatusBeforeUploaded Status = "BEFORE_UPLOADED"
	StatusCompleted      Status = "COMPLETED"
)

// Side names which half of the handover evidence an upload belongs to.
type Side string

const (
	SideBefore Side = "before"
	SideAfter  Side = "after"
)

type Image struct {
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// AssetCondition holds the before/after photos of one booking.
type AssetCondition struct {
	ID               int64                      `gorm:"column:id;primaryKey" json:"id,omitempty"`
	BookingID        int64                      `gorm:"column:booking_id;not null;uniqueIndex" json:"booking_id"`
	BeforeImages     datatypes.JSONSlice[Image] `gorm:"column:before_images" json:"before_images"`
	AfterImages      datatypes.JSONSlice[Image] `gorm:"column:after_images" json:"after_images"`
	BeforeUploadedBy *int64                     `gorm:"column:before_uploaded_by" json:"before_uploaded_by,omitempty"`
	AfterUploadedBy  *int64                     `gorm:"column:after_uploaded_by" json:"after_uploaded_by,omitempty"`
	Status           Status                     `gorm:"column:status;size:20;not null" json:"status"`
	CreatedAt        time.Time                  `gorm:"column:created_at" json:"created_at,omitempty"`
	UpdatedAt        time.Time                  `gorm:"column:updated_at" json:"updated_at,omitempty"`
}

func (AssetCondition) TableName() string { return "asset_conditions" }

// Models lists the tables owned by this package.
func Models() []any { return []any{&AssetCondition{}} }

// Empty is what a booking with no evidence yet reports.
func Empty(bookingID int64) *AssetCondition {
	return &AssetCondition{
		BookingID:    bookingID,
		BeforeImages: datatypes.JSONSlice[Image]{},
		AfterImages:  datatypes.JSONSlice[Image]{},
		Status:       StatusPending,
	}
}

// DeriveStatus computes the status from the stored images. After-photos win
// so a late before-upload never moves a completed record backwards.
func DeriveStatus(before, after int) Status {
	switch {
	case after > 0:
		return StatusCompleted
	case before > 0:
		return StatusBeforeUploaded
	default:
		return StatusPending
	}
}

func (c *AssetCondition) append(side Side, uploaderID int64, images []Image) {
	switch side {
	case SideBefore:
		c.BeforeImages = append(c.BeforeImages, images...)
		c.BeforeUploadedBy = &uploaderID
	case SideAfter:
		c.AfterImages = append(c.AfterImages, images...)
		c.AfterUploadedBy = &uploaderID
	}
	c.Status = DeriveStatus(len(c.BeforeImages), len(c.AfterImages))
}
