package dispute

import "time"

type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusResolved Status = "RESOLVED"
	StatusRejected Status = "REJECTED"
)

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusResolved || s == StatusRejected
}

// IsDecision reports whether s closes a dispute.
func (s Status) IsDecision() bool {
	return s == StatusResolved || s == StatusRejected
}

// Dispute is a handover complaint raised by a booking party. Either party may
// hold any number of disputes on the same booking.
type Dispute struct {
	ID            int64      `gorm:"column:id;primaryKey" json:"id"`
	BookingID     int64      `gorm:"column:booking_id;not null;index" json:"booking_id"`
	RaisedBy      int64      `gorm:"column:raised_by;not null" json:"raised_by"`
	Reason        string     `gorm:"column:reason;type:text;not null" json:"reason"`
	Status        Status     `gorm:"column:status;size:20;not null;index" json:"status"`
	AdminComments string     `gorm:"column:admin_comments;type:text" json:"admin_comments,omitempty"`
	ResolvedBy    *int64     `gorm:"column:resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Dispute) TableName() string { return "disputes" }

// Models lists the tables owned by this package.
func Models() []any { return []any{&Dispute{}} }
