package settings

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalmarket/internal/database/dbtest"
)

func TestRepository_DefaultsThenSave(t *testing.T) {
	repo := NewRepository(dbtest.Open(t, Models()...), Settings{MaxRequestsPerUser: 5})
	ctx := context.Background()

	s, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.False(t, s.MaintenanceMode)
	assert.Equal(t, 5, s.MaxRequestsPerUser)
	assert.Equal(t, "USD", s.Currency)

	_, err = repo.Save(ctx, Settings{MaintenanceMode: true, MaxRequestsPerUser: 2, Currency: "EUR"})
	require.NoError(t, err)
	_, err = repo.Save(ctx, Settings{MaintenanceMode: false, MaxRequestsPerUser: 3, Currency: "EUR"})
	require.NoError(t, err)

	s, err = repo.Current(ctx)
	require.NoError(t, err)
	assert.False(t, s.MaintenanceMode)
	assert.Equal(t, 3, s.MaxRequestsPerUser)
}

func TestHandler_UpdateValidates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewRepository(dbtest.Open(t, Models()...), Settings{MaxRequestsPerUser: 5}))
	r := gin.New()
	h.RegisterAdminRoutes(r.Group("/admin"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/admin/settings",
		bytes.NewBufferString(`{"maintenance_mode":true,"max_requests_per_user":0,"currency":"usd"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/admin/settings",
		bytes.NewBufferString(`{"maintenance_mode":true,"max_requests_per_user":4,"currency":"usd"}`)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"currency":"USD"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/settings", nil))
	assert.Contains(t, w.Body.String(), `"maintenance_mode":true`)
}
