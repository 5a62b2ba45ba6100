package notification

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) create(ctx context.Context, userID int64, t Type, title, body string, data Data) error {
	n := &Notification{
		UserID:    userID,
		Type:      t,
		Title:     title,
		Body:      body,
		Data:      datatypes.NewJSONType(data),
		CreatedAt: s.now(),
	}
	return s.repo.Create(ctx, n)
}

func (s *Service) NotifyBookingCreated(ctx context.Context, ownerID, bookingID int64, assetName string, start time.Time) error {
	start = start.UTC()
	return s.create(ctx, ownerID, TypeBookingCreated,
		"New booking request",
		fmt.Sprintf("%s was requested from %s", assetName, start.Format("2006-01-02")),
		Data{BookingID: bookingID, AssetName: assetName, StartDate: &start})
}

func (s *Service) NotifyBookingStatusChanged(ctx context.Context, recipientID, bookingID int64, assetName, status string) error {
	return s.create(ctx, recipientID, TypeBookingStatusChanged,
		"Booking updated",
		fmt.Sprintf("Booking for %s is now %s", assetName, status),
		Data{BookingID: bookingID, AssetName: assetName, Status: status})
}

func (s *Service) NotifyPaymentReceived(ctx context.Context, ownerID, bookingID int64, amountCents int64) error {
	return s.create(ctx, ownerID, TypePaymentReceived,
		"Payment received",
		fmt.Sprintf("Received %d.%02d for booking #%d", amountCents/100, amountCents%100, bookingID),
		Data{BookingID: bookingID, AmountCents: amountCents})
}

func (s *Service) NotifyDisputeOpened(ctx context.Context, recipientID, bookingID, disputeID int64) error {
	return s.create(ctx, recipientID, TypeDisputeOpened,
		"Dispute opened",
		fmt.Sprintf("A dispute was opened on booking #%d", bookingID),
		Data{BookingID: bookingID, DisputeID: disputeID})
}

func (s *Service) NotifyDisputeDecided(ctx context.Context, recipientID, bookingID, disputeID int64, decision string) error {
	return s.create(ctx, recipientID, TypeDisputeDecided,
		"Dispute decided",
		fmt.Sprintf("Your dispute on booking #%d was %s", bookingID, decision),
		Data{BookingID: bookingID, DisputeID: disputeID, Status: decision})
}

// List pages the user's notifications and reports how many are unread.
func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]Notification, int64, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.repo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, unread, total, nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now())
}
