package booking

import (
	"context"
	"time"

	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/asset"
	"rentalmarket/internal/domain/review"
	"rentalmarket/internal/domain/user"
)

// Repository persists bookings. Every status change is conditional on the
// current status and reports whether a row was updated.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	CreateWithinLimit(ctx context.Context, b *Booking, statuses []Status, limit int) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	CountByRenter(ctx context.Context, renterID int64, statuses []Status) (int64, error)
	ListByParty(ctx context.Context, userID int64, role domain.UserRole, limit, offset int) ([]Booking, int64, error)
	Transition(ctx context.Context, id int64, from []Status, to Status, now time.Time) (bool, error)
	ApplyPayment(ctx context.Context, id int64, amountCents int64, paymentRef string, now time.Time) (bool, error)
	AttachReview(ctx context.Context, bookingID int64, r *review.Review, now time.Time) error
	Escalate(ctx context.Context, now time.Time, window time.Duration) (EscalationResult, error)
}

// AssetReader is the catalog lookup used once at booking creation.
type AssetReader interface {
	GetByID(ctx context.Context, id int64) (*asset.Asset, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	Ref(ctx context.Context, id int64) (domain.UserRef, error)
}

type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, ownerID, bookingID int64, assetName string, start time.Time) error
	NotifyBookingStatusChanged(ctx context.Context, recipientID, bookingID int64, assetName, status string) error
	NotifyPaymentReceived(ctx context.Context, ownerID, bookingID int64, amountCents int64) error
}
