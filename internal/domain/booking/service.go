package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/asset"
	"rentalmarket/internal/domain/review"
	"rentalmarket/internal/domain/settings"
	"rentalmarket/internal/domain/user"
	"rentalmarket/internal/logger"
	"rentalmarket/internal/pkg/lock"
)

type Service struct {
	bookings Repository
	assets   AssetReader
	users    UserReader
	settings settings.Provider
	notifs   NotificationSender
	locker   lock.Locker
	now      func() time.Time
}

func NewService(
	bookings Repository,
	assets AssetReader,
	users UserReader,
	settingsProvider settings.Provider,
	notifs NotificationSender,
	locker lock.Locker,
) *Service {
	if locker == nil {
		locker = lock.NopLocker{}
	}
	return &Service{
		bookings: bookings,
		assets:   assets,
		users:    users,
		settings: settingsProvider,
		notifs:   notifs,
		locker:   locker,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type CreateBookingRequest struct {
	AssetID   int64
	StartDate time.Time
	EndDate   time.Time
	Notes     string
}

var openStatuses = []Status{StatusPending, StatusConfirmed}

// CreateBooking places a pending booking for renterID, snapshotting the asset.
func (s *Service) CreateBooking(ctx context.Context, renterID int64, req CreateBookingRequest) (*Booking, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() || !req.EndDate.After(req.StartDate) {
		return nil, ErrInvalidDates
	}

	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.MaintenanceMode {
		return nil, ErrMaintenance
	}

	release, err := s.acquire(ctx, fmt.Sprintf("booking:create:%d", renterID))
	if err != nil {
		return nil, err
	}
	defer release()

	if cfg.MaxRequestsPerUser > 0 {
		open, err := s.bookings.CountByRenter(ctx, renterID, openStatuses)
		if err != nil {
			return nil, err
		}
		if open >= int64(cfg.MaxRequestsPerUser) {
			return nil, ErrRequestLimitExceeded
		}
	}

	a, err := s.assets.GetByID(ctx, req.AssetID)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	if !a.IsActive {
		return nil, ErrAssetUnavailable
	}
	if a.OwnerID == renterID {
		return nil, ErrOwnAsset
	}
	if _, err := s.users.GetByID(ctx, a.OwnerID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidOwner
		}
		return nil, err
	}

	b := &Booking{
		RenterID:         renterID,
		OwnerID:          a.OwnerID,
		AssetID:          a.ID,
		AssetName:        a.Name,
		AssetDescription: a.Description,
		PriceCents:       a.PriceCents,
		Address:          a.Address,
		Category:         a.Category,
		Image:            a.PrimaryImage(),
		StartDate:        req.StartDate.UTC(),
		EndDate:          req.EndDate.UTC(),
		Status:           StatusPending,
		Notes:            strings.TrimSpace(req.Notes),
	}
	if err := s.bookings.CreateWithinLimit(ctx, b, openStatuses, cfg.MaxRequestsPerUser); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyBookingCreated(ctx, b.OwnerID, b.ID, b.AssetName, b.StartDate); err != nil {
			logger.WarnContext(ctx, "booking created notification failed", "booking_id", b.ID, "error", err)
		}
	}
	return b, nil
}

// UpdateStatus lets the owner accept or reject a pending booking.
func (s *Service) UpdateStatus(ctx context.Context, bookingID, actorID int64, newStatus Status) (*Booking, error) {
	if newStatus != StatusConfirmed && newStatus != StatusCancelled {
		return nil, ErrInvalidStatus
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != actorID {
		return nil, ErrBookingNotFound
	}

	ok, err := s.bookings.Transition(ctx, bookingID, []Status{StatusPending}, newStatus, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	return s.reloadAndNotify(ctx, bookingID, b.RenterID)
}

// CancelBooking withdraws a pending request on behalf of its renter.
func (s *Service) CancelBooking(ctx context.Context, bookingID, renterID int64) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != renterID {
		return nil, ErrNotCancellable
	}

	ok, err := s.bookings.Transition(ctx, bookingID, []Status{StatusPending}, StatusCancelled, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotCancellable
	}

	return s.reloadAndNotify(ctx, bookingID, b.OwnerID)
}

// CompleteBooking records the asset's return by the owner.
func (s *Service) CompleteBooking(ctx context.Context, bookingID, ownerID int64) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, ErrBookingNotFound
	}

	from := []Status{StatusActive, StatusExpiringSoon, StatusOverdue}
	ok, err := s.bookings.Transition(ctx, bookingID, from, StatusCompleted, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	return s.reloadAndNotify(ctx, bookingID, b.RenterID)
}

// ConfirmPayment applies a successful payment. Repeating a paymentRef leaves
// the booking untouched and reports applied=false.
func (s *Service) ConfirmPayment(ctx context.Context, bookingID, amountCents int64, paymentRef string) (*Booking, bool, error) {
	if amountCents <= 0 {
		return nil, false, ErrInvalidAmount
	}
	paymentRef = strings.TrimSpace(paymentRef)
	if paymentRef == "" {
		return nil, false, ErrMissingPaymentRef
	}

	applied, err := s.bookings.ApplyPayment(ctx, bookingID, amountCents, paymentRef, s.now())
	if err != nil {
		return nil, false, err
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}

	if applied && s.notifs != nil {
		if err := s.notifs.NotifyPaymentReceived(ctx, b.OwnerID, b.ID, amountCents); err != nil {
			logger.WarnContext(ctx, "payment notification failed", "booking_id", b.ID, "error", err)
		}
	}
	return b, applied, nil
}

// AddReview attaches the renter's review. A booking is reviewable once it is
// completed or its end date is not in the future, unless it was cancelled.
func (s *Service) AddReview(ctx context.Context, bookingID, renterID int64, rating int, comment string) (*review.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != renterID {
		return nil, ErrNotRenter
	}
	if b.ReviewID != nil {
		return nil, ErrAlreadyReviewed
	}
	if !s.reviewable(b) {
		return nil, ErrNotYetReviewable
	}

	rv := &review.Review{
		BookingID: b.ID,
		AssetID:   b.AssetID,
		RenterID:  renterID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.bookings.AttachReview(ctx, b.ID, rv, s.now()); err != nil {
		return nil, err
	}
	return rv, nil
}

// reviewable excludes cancelled bookings: the rental never took place.
func (s *Service) reviewable(b *Booking) bool {
	switch b.Status {
	case StatusCompleted:
		return true
	case StatusCancelled:
		return false
	}
	return !b.EndDate.After(s.now())
}

// GetBookingByID returns the booking to its renter, its owner or an admin.
func (s *Service) GetBookingByID(ctx context.Context, bookingID, actorID int64, actorRole domain.UserRole) (*Details, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actorID) && actorRole != domain.RoleAdmin {
		return nil, ErrAccessDenied
	}

	renter, err := s.users.Ref(ctx, b.RenterID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.Ref(ctx, b.OwnerID)
	if err != nil {
		return nil, err
	}
	return &Details{Booking: b, Renter: renter, Owner: owner}, nil
}

// ListMine pages the bookings where userID acts in role (renter by default).
func (s *Service) ListMine(ctx context.Context, userID int64, role domain.UserRole, page, pageSize int) ([]Booking, int64, error) {
	if role != domain.RoleOwner {
		role = domain.RoleRenter
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.bookings.ListByParty(ctx, userID, role, pageSize, (page-1)*pageSize)
}

// EscalateStatuses advances bookings along the time-driven part of the lifecycle.
func (s *Service) EscalateStatuses(ctx context.Context, expiringWindow time.Duration) (EscalationResult, error) {
	return s.bookings.Escalate(ctx, s.now(), expiringWindow)
}

func (s *Service) reloadAndNotify(ctx context.Context, bookingID, recipientID int64) (*Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if s.notifs != nil {
		if err := s.notifs.NotifyBookingStatusChanged(ctx, recipientID, b.ID, b.AssetName, string(b.Status)); err != nil {
			logger.WarnContext(ctx, "booking status notification failed", "booking_id", b.ID, "error", err)
		}
	}
	return b, nil
}

// acquire takes the per-key lock. Contention is reported as ErrBookingBusy.
// Any other locker failure is logged and the caller continues, since the
// repository re-checks under a row lock.
func (s *Service) acquire(ctx context.Context, key string) (func(), error) {
	release, err := s.locker.Acquire(ctx, key)
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		return nil, ErrBookingBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case err != nil:
		logger.WarnContext(ctx, "lock unavailable", "key", key, "error", err)
		return func() {}, nil
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "lock release failed", "key", key, "error", err)
		}
	}, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
