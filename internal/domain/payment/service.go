package payment

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"rentalmarket/internal/domain/booking"
	"rentalmarket/internal/logger"
	"rentalmarket/internal/pkg/apperr"
)

const EventCheckoutCompleted = "checkout.session.completed"

// BookingPayments is implemented by the booking service.
type BookingPayments interface {
	ConfirmPayment(ctx context.Context, bookingID, amountCents int64, paymentRef string) (*booking.Booking, bool, error)
}

type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object checkoutSession `json:"object"`
	} `json:"data"`
}

type checkoutSession struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
}

// Result describes what a webhook delivery did.
type Result struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Handled   bool   `json:"handled"`
	Applied   bool   `json:"applied"`
	BookingID int64  `json:"booking_id,omitempty"`
}

type Service struct {
	bookings  BookingPayments
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewService(bookings BookingPayments, secret string, tolerance time.Duration) *Service {
	return &Service{
		bookings:  bookings,
		secret:    secret,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// HandleWebhook verifies and applies one delivery. Redelivered events are
// acknowledged without touching the booking again.
func (s *Service) HandleWebhook(ctx context.Context, signature string, body []byte) (*Result, error) {
	if err := VerifySignature(signature, body, s.secret, s.tolerance, s.now()); err != nil {
		logger.WarnContext(ctx, "payment webhook rejected", "error", err)
		return nil, err
	}

	var ev event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, apperr.Wrap(ErrMalformedEvent, err)
	}
	res := &Result{EventID: ev.ID, EventType: ev.Type}

	if ev.Type != EventCheckoutCompleted {
		logger.Debug("payment webhook ignored", "event_type", ev.Type, "event_id", ev.ID)
		return res, nil
	}
	session := ev.Data.Object
	if session.PaymentStatus != "paid" {
		logger.InfoContext(ctx, "checkout completed without payment", "event_id", ev.ID, "payment_status", session.PaymentStatus)
		return res, nil
	}

	bookingID, err := strconv.ParseInt(strings.TrimSpace(session.Metadata["booking_id"]), 10, 64)
	if err != nil || bookingID <= 0 {
		return nil, ErrMalformedEvent
	}
	ref := session.ID
	if ref == "" {
		ref = ev.ID
	}

	_, applied, err := s.bookings.ConfirmPayment(ctx, bookingID, session.AmountTotal, ref)
	if err != nil {
		return nil, err
	}
	res.Handled = true
	res.Applied = applied
	res.BookingID = bookingID

	logger.InfoContext(ctx, "payment webhook processed",
		"event_id", ev.ID, "booking_id", bookingID, "amount_cents", session.AmountTotal, "applied", applied)
	return res, nil
}
