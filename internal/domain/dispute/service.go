package dispute

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/booking"
	"rentalmarket/internal/logger"
)

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*booking.Booking, error)
}

// Notifier tells the other booking party about a dispute.
type Notifier interface {
	NotifyDisputeOpened(ctx context.Context, recipientID, bookingID, disputeID int64) error
	NotifyDisputeDecided(ctx context.Context, recipientID, bookingID, disputeID int64, decision string) error
}

type Service struct {
	repo     *Repository
	bookings BookingReader
	notifs   Notifier
	now      func() time.Time
}

func NewService(repo *Repository, bookings BookingReader, notifs Notifier) *Service {
	return &Service{
		repo:     repo,
		bookings: bookings,
		notifs:   notifs,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) loadBooking(ctx context.Context, bookingID int64) (*booking.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// Create opens a dispute on behalf of the booking's owner or renter.
func (s *Service) Create(ctx context.Context, bookingID, raiserID int64, reason string) (*Dispute, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(raiserID) {
		return nil, ErrBookingNotFound
	}

	now := s.now()
	d := &Dispute{
		BookingID: bookingID,
		RaisedBy:  raiserID,
		Reason:    reason,
		Status:    StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.notify(ctx, d, func() error {
		return s.notifs.NotifyDisputeOpened(ctx, counterpartOf(b, raiserID), bookingID, d.ID)
	})
	return d, nil
}

// ListForBooking shows a booking's disputes to its parties and admins.
func (s *Service) ListForBooking(ctx context.Context, bookingID, actorID int64, actorRole domain.UserRole) ([]Dispute, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actorID) && actorRole != domain.RoleAdmin {
		return nil, ErrBookingNotFound
	}
	return s.repo.ListByBooking(ctx, bookingID)
}

// List is the moderation queue. An empty status lists everything.
func (s *Service) List(ctx context.Context, status Status, page, pageSize int) ([]Dispute, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.List(ctx, status, pageSize, (page-1)*pageSize)
}

// Resolve records an admin decision. Decisions are final.
func (s *Service) Resolve(ctx context.Context, disputeID, adminID int64, adminRole domain.UserRole, decision Status, comments string) (*Dispute, error) {
	if adminRole != domain.RoleAdmin {
		return nil, ErrAdminOnly
	}
	if !decision.IsDecision() {
		return nil, ErrInvalidDecision
	}

	ok, err := s.repo.Decide(ctx, disputeID, decision, adminID, strings.TrimSpace(comments), s.now())
	if err != nil {
		return nil, err
	}
	d, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyClosed
	}

	recipients := []int64{d.RaisedBy}
	if b, err := s.loadBooking(ctx, d.BookingID); err != nil {
		logger.WarnContext(ctx, "dispute booking lookup failed", "dispute_id", d.ID, "error", err)
	} else {
		recipients = append(recipients, counterpartOf(b, d.RaisedBy))
	}
	for _, recipientID := range recipients {
		s.notify(ctx, d, func() error {
			return s.notifs.NotifyDisputeDecided(ctx, recipientID, d.BookingID, d.ID, string(decision))
		})
	}
	return d, nil
}

func counterpartOf(b *booking.Booking, userID int64) int64 {
	if userID == b.OwnerID {
		return b.RenterID
	}
	return b.OwnerID
}

func (s *Service) notify(ctx context.Context, d *Dispute, send func() error) {
	if s.notifs == nil {
		return
	}
	if err := send(); err != nil {
		logger.WarnContext(ctx, "dispute notification failed", "dispute_id", d.ID, "error", err)
	}
}
