package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rentalmarket/internal/database"
	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/review"
)

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) Repository {
	return &bookingRepository{db: db}
}

type bookingModel struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	RenterID         int64      `gorm:"column:renter_id;not null;index:idx_bookings_renter_status,priority:1"`
	OwnerID          int64      `gorm:"column:owner_id;not null;index"`
	AssetID          int64      `gorm:"column:asset_id;not null;index"`
	AssetName        string     `gorm:"column:asset_name;not null"`
	AssetDescription *string    `gorm:"column:asset_description;type:text"`
	PriceCents       int64      `gorm:"column:price_cents;not null"`
	Address          *string    `gorm:"column:address"`
	Category         *string    `gorm:"column:category"`
	Image            *string    `gorm:"column:image"`
	StartDate        time.Time  `gorm:"column:start_date;not null"`
	EndDate          time.Time  `gorm:"column:end_date;not null;index"`
	Status           string     `gorm:"column:status;size:20;not null;index:idx_bookings_renter_status,priority:2"`
	TotalPaidCents   int64      `gorm:"column:total_paid_cents;not null;default:0"`
	ReviewID         *int64     `gorm:"column:review_id"`
	Notes            *string    `gorm:"column:notes;type:text"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
	CancelledAt      *time.Time `gorm:"column:cancelled_at"`
}

func (bookingModel) TableName() string { return "bookings" }

// paymentEventModel records every payment reference already applied so a
// redelivered confirmation is a no-op.
type paymentEventModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	PaymentRef  string    `gorm:"column:payment_ref;size:255;not null;uniqueIndex"`
	BookingID   int64     `gorm:"column:booking_id;not null;index"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (paymentEventModel) TableName() string { return "payment_events" }

// Models lists the tables owned by this package.
func Models() []any { return []any{&bookingModel{}, &paymentEventModel{}} }

var errDuplicatePayment = errors.New("payment already applied")

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDomainBooking(m bookingModel) *Booking {
	return &Booking{
		ID:               m.ID,
		RenterID:         m.RenterID,
		OwnerID:          m.OwnerID,
		AssetID:          m.AssetID,
		AssetName:        m.AssetName,
		AssetDescription: deref(m.AssetDescription),
		PriceCents:       m.PriceCents,
		Address:          deref(m.Address),
		Category:         deref(m.Category),
		Image:            deref(m.Image),
		StartDate:        m.StartDate.UTC(),
		EndDate:          m.EndDate.UTC(),
		Status:           Status(m.Status),
		TotalPaidCents:   m.TotalPaidCents,
		ReviewID:         m.ReviewID,
		Notes:            deref(m.Notes),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		CancelledAt:      m.CancelledAt,
	}
}

func toBookingModel(b *Booking) bookingModel {
	return bookingModel{
		ID:               b.ID,
		RenterID:         b.RenterID,
		OwnerID:          b.OwnerID,
		AssetID:          b.AssetID,
		AssetName:        b.AssetName,
		AssetDescription: optional(b.AssetDescription),
		PriceCents:       b.PriceCents,
		Address:          optional(b.Address),
		Category:         optional(b.Category),
		Image:            optional(b.Image),
		StartDate:        b.StartDate.UTC(),
		EndDate:          b.EndDate.UTC(),
		Status:           string(b.Status),
		TotalPaidCents:   b.TotalPaidCents,
		ReviewID:         b.ReviewID,
		Notes:            optional(b.Notes),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
		CancelledAt:      b.CancelledAt,
	}
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *bookingRepository) Create(ctx context.Context, b *Booking) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

// CreateWithinLimit inserts b unless its renter already holds limit bookings
// in one of statuses. The renter's user row stays locked from the count to the
// insert, so concurrent requests for one renter serialize in the database. A
// non-positive limit skips the count.
func (r *bookingRepository) CreateWithinLimit(ctx context.Context, b *Booking, statuses []Status, limit int) error {
	m := toBookingModel(b)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var renter struct{ ID int64 }
		err := tx.Table("users").
			Select("id").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND deleted_at IS NULL", b.RenterID).
			Take(&renter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRenterNotFound
		}
		if err != nil {
			return err
		}

		if limit > 0 {
			var open int64
			err := tx.Model(&bookingModel{}).
				Where("renter_id = ? AND status IN ?", b.RenterID, statusStrings(statuses)).
				Count(&open).Error
			if err != nil {
				return err
			}
			if open >= int64(limit) {
				return ErrRequestLimitExceeded
			}
		}
		return tx.Create(&m).Error
	})

	switch {
	case errors.Is(err, ErrRenterNotFound), errors.Is(err, ErrRequestLimitExceeded):
		return err
	case err != nil:
		return fmt.Errorf("create booking: %w", err)
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return toDomainBooking(m), nil
}

func (r *bookingRepository) CountByRenter(ctx context.Context, renterID int64, statuses []Status) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("renter_id = ? AND status IN ?", renterID, statusStrings(statuses)).
		Count(&cnt).Error
	if err != nil {
		return 0, fmt.Errorf("count renter bookings: %w", err)
	}
	return cnt, nil
}

func (r *bookingRepository) ListByParty(ctx context.Context, userID int64, role domain.UserRole, limit, offset int) ([]Booking, int64, error) {
	column := "renter_id"
	if role == domain.RoleOwner {
		column = "owner_id"
	}

	q := r.db.WithContext(ctx).Model(&bookingModel{}).Where(column+" = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	var rows []bookingModel
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	out := make([]Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, total, nil
}

// Transition moves the booking to `to` only while its status is one of from.
func (r *bookingRepository) Transition(ctx context.Context, id int64, from []Status, to Status, now time.Time) (bool, error) {
	updates := map[string]any{
		"status":     string(to),
		"updated_at": now,
	}
	if to == StatusCancelled {
		updates["cancelled_at"] = now
	}

	res := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("transition booking %d to %s: %w", id, to, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ApplyPayment adds amountCents to the booking once per paymentRef and moves a
// pending booking to confirmed. It reports false for a reference seen before.
func (r *bookingRepository) ApplyPayment(ctx context.Context, id int64, amountCents int64, paymentRef string, now time.Time) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&paymentEventModel{}).Where("payment_ref = ?", paymentRef).Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			return errDuplicatePayment
		}

		event := paymentEventModel{PaymentRef: paymentRef, BookingID: id, AmountCents: amountCents, CreatedAt: now}
		if err := tx.Create(&event).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return errDuplicatePayment
			}
			return err
		}

		res := tx.Model(&bookingModel{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"total_paid_cents": gorm.Expr("total_paid_cents + ?", amountCents),
				"status":           gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", string(StatusPending), string(StatusConfirmed)),
				"updated_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookingNotFound
		}
		return nil
	})

	switch {
	case errors.Is(err, errDuplicatePayment):
		return false, nil
	case errors.Is(err, ErrBookingNotFound):
		return false, ErrBookingNotFound
	case err != nil:
		return false, fmt.Errorf("apply payment to booking %d: %w", id, err)
	}
	return true, nil
}

// AttachReview inserts the review and links it in one transaction. A booking
// that already has a review fails with ErrAlreadyReviewed.
func (r *bookingRepository) AttachReview(ctx context.Context, bookingID int64, rv *review.Review, now time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := review.Insert(ctx, tx, rv); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrAlreadyReviewed
			}
			return err
		}

		res := tx.Model(&bookingModel{}).
			Where("id = ? AND review_id IS NULL", bookingID).
			Updates(map[string]any{"review_id": rv.ID, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrAlreadyReviewed) {
		return fmt.Errorf("attach review to booking %d: %w", bookingID, err)
	}
	return err
}

// Escalate applies the time-driven transitions in lifecycle order, so a
// booking whose whole window passed unnoticed still ends up overdue.
func (r *bookingRepository) Escalate(ctx context.Context, now time.Time, window time.Duration) (EscalationResult, error) {
	var out EscalationResult

	res := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("status = ? AND start_date <= ?", string(StatusConfirmed), now).
		Updates(map[string]any{"status": string(StatusActive), "updated_at": now})
	if res.Error != nil {
		return out, fmt.Errorf("activate bookings: %w", res.Error)
	}
	out.Activated = res.RowsAffected

	res = r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("status = ? AND end_date > ? AND end_date <= ?", string(StatusActive), now, now.Add(window)).
		Updates(map[string]any{"status": string(StatusExpiringSoon), "updated_at": now})
	if res.Error != nil {
		return out, fmt.Errorf("mark expiring bookings: %w", res.Error)
	}
	out.ExpiringSoon = res.RowsAffected

	res = r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("status IN ? AND end_date < ?", []string{string(StatusActive), string(StatusExpiringSoon)}, now).
		Updates(map[string]any{"status": string(StatusOverdue), "updated_at": now})
	if res.Error != nil {
		return out, fmt.Errorf("mark overdue bookings: %w", res.Error)
	}
	out.Overdue = res.RowsAffected

	return out, nil
}
