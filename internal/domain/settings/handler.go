package settings

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rentalmarket/internal/pkg/response"
	"rentalmarket/internal/pkg/validator"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type updateSettingsRequest struct {
	MaintenanceMode    bool   `json:"maintenance_mode"`
	MaxRequestsPerUser int    `json:"max_requests_per_user" validate:"min=1,max=1000"`
	Currency           string `json:"currency" validate:"len=3"`
}

func (h *Handler) Get(c *gin.Context) {
	s, err := h.repo.Current(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, s)
}

func (h *Handler) Update(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid settings", errs)
		return
	}

	s, err := h.repo.Save(c.Request.Context(), Settings{
		MaintenanceMode:    req.MaintenanceMode,
		MaxRequestsPerUser: req.MaxRequestsPerUser,
		Currency:           strings.ToUpper(req.Currency),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, s)
}

// RegisterAdminRoutes expects r to be guarded by admin middleware.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/settings", h.Get)
	r.PUT("/settings", h.Update)
}
