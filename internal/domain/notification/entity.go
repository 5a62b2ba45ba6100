package notification

import (
	"time"

	"gorm.io/datatypes"
)

type Type string

const (
	TypeBookingCreated       Type = "booking_created"
	TypeBookingStatusChanged Type = "booking_status_changed"
	TypePaymentReceived      Type = "payment_received"
	TypeDisputeOpened        Type = "dispute_opened"
	TypeDisputeDecided       Type = "dispute_decided"
)

// Data links a notification to the records it is about.
type Data struct {
	BookingID   int64      `json:"booking_id,omitempty"`
	DisputeID   int64      `json:"dispute_id,omitempty"`
	AssetName   string     `json:"asset_name,omitempty"`
	Status      string     `json:"status,omitempty"`
	AmountCents int64      `json:"amount_cents,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
}

// Notification is an in-app message for one user.
type Notification struct {
	ID        int64                    `gorm:"column:id;primaryKey" json:"id"`
	UserID    int64                    `gorm:"column:user_id;not null;index:idx_notifications_user_unread,priority:1" json:"user_id"`
	Type      Type                     `gorm:"column:type;size:40;not null" json:"type"`
	Title     string                   `gorm:"column:title;not null" json:"title"`
	Body      string                   `gorm:"column:body;type:text" json:"body,omitempty"`
	Data      datatypes.JSONType[Data] `gorm:"column:data" json:"data"`
	IsRead    bool                     `gorm:"column:is_read;not null;default:false;index:idx_notifications_user_unread,priority:2" json:"is_read"`
	ReadAt    *time.Time               `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time                `gorm:"column:created_at;index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

func Models() []any { return []any{&Notification{}} }
