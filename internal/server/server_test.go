package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalmarket/internal/config"
	"rentalmarket/internal/database/dbtest"
	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/payment"
	"rentalmarket/internal/domain/user"
	"rentalmarket/internal/pkg/jwt"
	"rentalmarket/internal/storage"
)

const webhookSecret = "whsec_e2e"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	users  *user.Repository
	tokens *jwt.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t, Models()...)
	blobs, err := storage.NewLocalStorage(t.TempDir(), "/static/uploads")
	require.NoError(t, err)

	cfg := &config.Config{
		App:     config.AppConfig{Env: "test"},
		Storage: config.StorageConfig{PublicBaseURL: "/static/uploads"},
		Payment: config.PaymentConfig{WebhookSecret: webhookSecret, SignatureTolerance: 5 * time.Minute},
		Booking: config.BookingConfig{DefaultMaxRequestsPerUser: 5, ExpiringSoonWindow: 48 * time.Hour},
	}
	tokens := jwt.New("e2e-secret", time.Hour)
	app := New(Deps{Config: cfg, DB: db, JWT: tokens, Storage: blobs})

	return &testServer{t: t, router: app.Router, users: user.NewRepository(db), tokens: tokens}
}

func (s *testServer) send(req *http.Request, token string) (int, envelope) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, r)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req, token)
}

func (s *testServer) upload(path, token string, count int) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i < count; i++ {
		fw, err := mw.CreateFormFile("images", fmt.Sprintf("photo%d.png", i))
		require.NoError(s.t, err)
		_, err = fw.Write(pngBytes)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.send(req, token)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

type account struct {
	ID    int64
	Token string
}

func (s *testServer) register(email, role string) account {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "password1", "name": email, "role": role,
	})
	require.Equal(s.t, http.StatusCreated, code, env.Error.Code)
	res := decode[struct {
		User        struct{ ID int64 } `json:"user"`
		AccessToken string             `json:"access_token"`
	}](s.t, env)
	return account{ID: res.User.ID, Token: res.AccessToken}
}

func (s *testServer) admin() account {
	s.t.Helper()
	u := &user.User{Email: "admin@example.com", PasswordHash: "x", Name: "Admin", Role: domain.RoleAdmin}
	require.NoError(s.t, s.users.Create(context.Background(), u))
	token, err := s.tokens.GenerateToken(u.ID, string(domain.RoleAdmin))
	require.NoError(s.t, err)
	return account{ID: u.ID, Token: token}
}

type bookingView struct {
	ID             int64  `json:"id"`
	Status         string `json:"status"`
	TotalPaidCents int64  `json:"total_paid_cents"`
}

type marketplace struct {
	*testServer
	owner   account
	renter  account
	assetID int64
}

func newMarketplace(t *testing.T) *marketplace {
	s := newTestServer(t)
	m := &marketplace{
		testServer: s,
		owner:      s.register("owner@example.com", "owner"),
		renter:     s.register("renter@example.com", "renter"),
	}
	code, env := s.do(http.MethodPost, "/assets", m.owner.Token, map[string]any{
		"name": "Camera kit", "price_cents": 10000, "category": "photo",
	})
	require.Equal(t, http.StatusCreated, code, env.Error.Code)
	m.assetID = decode[struct{ ID int64 }](t, env).ID
	return m
}

func (m *marketplace) book() bookingView {
	m.t.Helper()
	code, env := m.do(http.MethodPost, "/bookings", m.renter.Token, map[string]any{
		"asset_id":   m.assetID,
		"start_date": "2026-01-01T00:00:00Z",
		"end_date":   "2026-01-05T00:00:00Z",
	})
	require.Equal(m.t, http.StatusCreated, code, env.Error.Code)
	return decode[bookingView](m.t, env)
}

func (m *marketplace) confirm(id int64) bookingView {
	m.t.Helper()
	code, env := m.do(http.MethodPatch, fmt.Sprintf("/bookings/%d/status", id), m.owner.Token, map[string]string{"status": "confirmed"})
	require.Equal(m.t, http.StatusOK, code, env.Error.Code)
	return decode[bookingView](m.t, env)
}

func (m *marketplace) webhook(bookingID, amount int64, sessionID string) (int, envelope) {
	m.t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":   "evt_" + sessionID,
		"type": payment.EventCheckoutCompleted,
		"data": map[string]any{"object": map[string]any{
			"id":             sessionID,
			"payment_status": "paid",
			"amount_total":   amount,
			"metadata":       map[string]string{"booking_id": strconv.FormatInt(bookingID, 10)},
		}},
	})
	require.NoError(m.t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set(payment.SignatureHeader, payment.SignHeader(webhookSecret, time.Now(), body))
	return m.send(req, "")
}

func TestScenario_BookConfirmAndPay(t *testing.T) {
	m := newMarketplace(t)

	b := m.book()
	assert.Equal(t, "pending", b.Status)

	assert.Equal(t, "confirmed", m.confirm(b.ID).Status)

	code, env := m.webhook(b.ID, 10000, "cs_a")
	require.Equal(t, http.StatusOK, code, env.Error.Code)
	assert.True(t, decode[payment.Result](t, env).Applied)

	code, env = m.webhook(b.ID, 10000, "cs_a")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, decode[payment.Result](t, env).Applied)

	code, env = m.do(http.MethodGet, fmt.Sprintf("/bookings/%d", b.ID), m.renter.Token, nil)
	require.Equal(t, http.StatusOK, code)
	got := decode[bookingView](t, env)
	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, int64(10000), got.TotalPaidCents)

	code, env = m.do(http.MethodGet, "/notifications", m.owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	notes := decode[struct {
		Total int64 `json:"total"`
	}](t, env)
	assert.Equal(t, int64(2), notes.Total)
}

func TestScenario_CancelTwice(t *testing.T) {
	m := newMarketplace(t)
	b := m.book()

	code, env := m.do(http.MethodPost, fmt.Sprintf("/bookings/%d/cancel", b.ID), m.renter.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Error.Code)
	assert.Equal(t, "cancelled", decode[bookingView](t, env).Status)

	code, env = m.do(http.MethodPost, fmt.Sprintf("/bookings/%d/cancel", b.ID), m.renter.Token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NOT_CANCELLABLE", env.Error.Code)
}

func TestScenario_SharedConversation(t *testing.T) {
	m := newMarketplace(t)

	code, env := m.do(http.MethodPost, "/conversations", m.owner.Token, map[string]int64{"asset_id": m.assetID, "participant_id": m.renter.ID})
	require.Equal(t, http.StatusCreated, code, env.Error.Code)
	first := decode[struct {
		Conversation struct{ ID string } `json:"conversation"`
	}](t, env)

	code, env = m.do(http.MethodPost, "/conversations", m.renter.Token, map[string]int64{"asset_id": m.assetID, "participant_id": m.owner.ID})
	require.Equal(t, http.StatusOK, code, env.Error.Code)
	second := decode[struct {
		Conversation struct{ ID string } `json:"conversation"`
	}](t, env)
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)

	convPath := "/conversations/" + first.Conversation.ID
	code, env = m.do(http.MethodPost, convPath+"/messages", m.renter.Token, map[string]string{"content": "Is it available?"})
	require.Equal(t, http.StatusCreated, code, env.Error.Code)

	code, env = m.do(http.MethodGet, "/conversations/unread-count", m.owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), decode[struct {
		UnreadCount int64 `json:"unread_count"`
	}](t, env).UnreadCount)

	code, env = m.do(http.MethodGet, "/conversations", m.owner.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 1)

	outsider := m.register("stranger@example.com", "renter")
	code, _ = m.do(http.MethodGet, convPath+"/messages", outsider.Token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestScenario_ConditionPhotos(t *testing.T) {
	m := newMarketplace(t)
	b := m.book()
	m.confirm(b.ID)
	base := fmt.Sprintf("/bookings/%d/condition", b.ID)

	code, env := m.upload(base+"/before", m.owner.Token, 2)
	require.Equal(t, http.StatusCreated, code, env.Error.Code)
	assert.Equal(t, "BEFORE_UPLOADED", decode[struct{ Status string }](t, env).Status)

	code, env = m.upload(base+"/after", m.renter.Token, 1)
	require.Equal(t, http.StatusCreated, code, env.Error.Code)
	assert.Equal(t, "COMPLETED", decode[struct{ Status string }](t, env).Status)

	code, _ = m.upload(base+"/after", m.owner.Token, 1)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = m.do(http.MethodGet, base, m.renter.Token, nil)
	require.Equal(t, http.StatusOK, code)
	cond := decode[struct {
		Status       string            `json:"status"`
		BeforeImages []json.RawMessage `json:"before_images"`
		AfterImages  []json.RawMessage `json:"after_images"`
	}](t, env)
	assert.Equal(t, "COMPLETED", cond.Status)
	assert.Len(t, cond.BeforeImages, 2)
	assert.Len(t, cond.AfterImages, 1)
}

func TestScenario_DisputeResolution(t *testing.T) {
	m := newMarketplace(t)
	admin := m.admin()
	b := m.book()
	m.confirm(b.ID)
	path := fmt.Sprintf("/bookings/%d/disputes", b.ID)

	code, env := m.do(http.MethodPost, path, m.renter.Token, map[string]string{"reason": "Lens was scratched"})
	require.Equal(t, http.StatusCreated, code, env.Error.Code)
	disputeID := decode[struct{ ID int64 }](t, env).ID

	code, _ = m.do(http.MethodPost, path, m.owner.Token, map[string]string{"reason": "Late return"})
	assert.Equal(t, http.StatusCreated, code)

	code, env = m.do(http.MethodGet, "/admin/disputes?status=open", admin.Token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(2), decode[struct{ Total int64 }](t, env).Total)

	resolvePath := fmt.Sprintf("/admin/disputes/%d", disputeID)
	code, _ = m.do(http.MethodPatch, resolvePath, m.owner.Token, map[string]string{"status": "RESOLVED"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = m.do(http.MethodPatch, resolvePath, admin.Token, map[string]string{"status": "RESOLVED", "admin_comments": "Deposit withheld"})
	require.Equal(t, http.StatusOK, code, env.Error.Code)
	assert.Equal(t, "RESOLVED", decode[struct{ Status string }](t, env).Status)

	code, _ = m.do(http.MethodPatch, resolvePath, admin.Token, map[string]string{"status": "REJECTED"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/bookings/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_HEADER_MISSING", env.Error.Code)
}
