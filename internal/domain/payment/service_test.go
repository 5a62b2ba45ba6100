package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalmarket/internal/domain/booking"
)

const testSecret = "whsec_test"

var signedAt = time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)

type confirmCall struct {
	bookingID int64
	amount    int64
	ref       string
}

// fakeBookings applies each reference once, like the real repository.
type fakeBookings struct {
	calls []confirmCall
	seen  map[string]bool
	err   error
}

func (f *fakeBookings) ConfirmPayment(ctx context.Context, bookingID, amountCents int64, paymentRef string) (*booking.Booking, bool, error) {
	f.calls = append(f.calls, confirmCall{bookingID, amountCents, paymentRef})
	if f.err != nil {
		return nil, false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	applied := !f.seen[paymentRef]
	f.seen[paymentRef] = true
	return &booking.Booking{ID: bookingID, Status: booking.StatusConfirmed}, applied, nil
}

func newTestService(b BookingPayments) *Service {
	svc := NewService(b, testSecret, 5*time.Minute)
	svc.now = func() time.Time { return signedAt.Add(30 * time.Second) }
	return svc
}

func checkoutBody(t *testing.T, eventType, paymentStatus, bookingID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":   "evt_1",
		"type": eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":             "cs_42",
				"payment_status": paymentStatus,
				"amount_total":   12500,
				"metadata":       map[string]string{"booking_id": bookingID},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)
	now := signedAt.Add(time.Minute)
	valid := SignHeader(testSecret, signedAt, body)

	tests := []struct {
		name   string
		header string
		body   []byte
		want   error
	}{
		{"valid", valid, body, nil},
		{"missing", "", body, ErrMissingSignature},
		{"tampered body", valid, []byte(`{"id":"evt_2"}`), ErrInvalidSignature},
		{"wrong secret", SignHeader("other", signedAt, body), body, ErrInvalidSignature},
		{"no timestamp", "v1=abc", body, ErrInvalidSignature},
		{"garbage timestamp", "t=abc,v1=abc", body, ErrInvalidSignature},
		{"stale", SignHeader(testSecret, signedAt.Add(-time.Hour), body), body, ErrStaleSignature},
		{"second signature matches", "t=" + valid[2:12] + ",v1=deadbeef," + valid[13:], body, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(tt.header, tt.body, testSecret, 5*time.Minute, now)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHandleWebhook_AppliesPaidCheckoutOnce(t *testing.T) {
	fake := &fakeBookings{}
	svc := newTestService(fake)
	body := checkoutBody(t, EventCheckoutCompleted, "paid", "7")
	sig := SignHeader(testSecret, signedAt, body)

	first, err := svc.HandleWebhook(context.Background(), sig, body)
	require.NoError(t, err)
	assert.True(t, first.Handled)
	assert.True(t, first.Applied)
	assert.Equal(t, int64(7), first.BookingID)

	second, err := svc.HandleWebhook(context.Background(), sig, body)
	require.NoError(t, err)
	assert.True(t, second.Handled)
	assert.False(t, second.Applied)

	require.Len(t, fake.calls, 2)
	assert.Equal(t, confirmCall{bookingID: 7, amount: 12500, ref: "cs_42"}, fake.calls[0])
}

func TestHandleWebhook_IgnoresOtherEvents(t *testing.T) {
	fake := &fakeBookings{}
	svc := newTestService(fake)

	for _, body := range [][]byte{
		checkoutBody(t, "invoice.created", "paid", "7"),
		checkoutBody(t, EventCheckoutCompleted, "unpaid", "7"),
	} {
		res, err := svc.HandleWebhook(context.Background(), SignHeader(testSecret, signedAt, body), body)
		require.NoError(t, err)
		assert.False(t, res.Handled)
	}
	assert.Empty(t, fake.calls)
}

func TestHandleWebhook_Rejections(t *testing.T) {
	svc := newTestService(&fakeBookings{})

	body := checkoutBody(t, EventCheckoutCompleted, "paid", "not-a-number")
	_, err := svc.HandleWebhook(context.Background(), SignHeader(testSecret, signedAt, body), body)
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = svc.HandleWebhook(context.Background(), SignHeader(testSecret, signedAt, []byte("{")), []byte("{"))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	body = checkoutBody(t, EventCheckoutCompleted, "paid", "7")
	_, err = svc.HandleWebhook(context.Background(), SignHeader("wrong", signedAt, body), body)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleWebhook_PropagatesBookingErrors(t *testing.T) {
	svc := newTestService(&fakeBookings{err: booking.ErrBookingNotFound})
	body := checkoutBody(t, EventCheckoutCompleted, "paid", "404")

	_, err := svc.HandleWebhook(context.Background(), SignHeader(testSecret, signedAt, body), body)
	assert.True(t, errors.Is(err, booking.ErrBookingNotFound))
}

func TestWebhookHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(newTestService(&fakeBookings{})).RegisterPublicRoutes(r.Group("/api/v1"))

	body := checkoutBody(t, EventCheckoutCompleted, "paid", "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, SignHeader(testSecret, signedAt, body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Data    Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Applied)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
