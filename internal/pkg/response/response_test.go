package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalmarket/internal/pkg/apperr"
)

type envelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func failWith(t *testing.T, err error) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) { Fail(c, err) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestFail_MapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.New(apperr.KindNotFound, "NF", "nf"), http.StatusNotFound},
		{apperr.New(apperr.KindUnauthorized, "UA", "ua"), http.StatusForbidden},
		{apperr.New(apperr.KindInvalidState, "IS", "is"), http.StatusConflict},
		{apperr.New(apperr.KindValidation, "VE", "ve"), http.StatusBadRequest},
		{apperr.New(apperr.KindResourceExhausted, "LIMIT", "limit"), http.StatusTooManyRequests},
		{apperr.New(apperr.KindResourceExhausted, apperr.CodeMaintenance, "down"), http.StatusServiceUnavailable},
		{apperr.Wrap(apperr.New(apperr.KindDependencyFailure, "DEP", "dep"), errors.New("io")), http.StatusBadGateway},
	}

	for _, tc := range cases {
		w, body := failWith(t, fmt.Errorf("ctx: %w", tc.err))
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.False(t, body.Success)
		e, _ := apperr.As(tc.err)
		assert.Equal(t, e.Code, body.Error.Code)
		assert.Equal(t, e.Message, body.Error.Message)
	}
}

func TestFail_HidesUnclassifiedErrors(t *testing.T) {
	w, body := failWith(t, errors.New("pq: password authentication failed for user bob"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, w.Body.String(), "bob")
}

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, gin.H{"id": 1}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":1}}`, w.Body.String())
}
