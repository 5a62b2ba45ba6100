package booking

import (
	"time"

	"rentalmarket/internal/domain"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusConfirmed    Status = "confirmed"
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring soon"
	StatusOverdue      Status = "overdue"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// transitions is the full lifecycle graph. Owner completion may short-cut the
// time-driven states.
var transitions = map[Status][]Status{
	StatusPending:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed:    {StatusActive},
	StatusActive:       {StatusExpiringSoon, StatusOverdue, StatusCompleted},
	StatusExpiringSoon: {StatusOverdue, StatusCompleted},
	StatusOverdue:      {StatusCompleted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusExpiringSoon,
		StatusOverdue, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsCurrent reports whether the booking is confirmed and not yet ended.
func (s Status) IsCurrent() bool {
	switch s {
	case StatusConfirmed, StatusActive, StatusExpiringSoon, StatusOverdue:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition exists.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is a reservation of one asset by one renter. The asset fields are a
// snapshot taken at creation time.
type Booking struct {
	ID       int64 `json:"id"`
	RenterID int64 `json:"renter_id"`
	OwnerID  int64 `json:"owner_id"`
	AssetID  int64 `json:"asset_id"`

	AssetName        string `json:"asset_name"`
	AssetDescription string `json:"asset_description,omitempty"`
	PriceCents       int64  `json:"price_cents"`
	Address          string `json:"address,omitempty"`
	Category         string `json:"category,omitempty"`
	Image            string `json:"image,omitempty"`

	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Status         Status     `json:"status"`
	TotalPaidCents int64      `json:"total_paid_cents"`
	ReviewID       *int64     `json:"review_id,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
}

func (b *Booking) IsParticipant(userID int64) bool {
	return userID == b.RenterID || userID == b.OwnerID
}

// Details is a booking with both parties resolved for display.
type Details struct {
	*Booking
	Renter domain.UserRef `json:"renter"`
	Owner  domain.UserRef `json:"owner"`
}

// EscalationResult counts the rows moved by one escalation pass.
type EscalationResult struct {
	Activated    int64 `json:"activated"`
	ExpiringSoon int64 `json:"expiring_soon"`
	Overdue      int64 `json:"overdue"`
}
