package dispute

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rentalmarket/internal/domain"
	"rentalmarket/internal/pkg/response"
	"rentalmarket/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createDisputeRequest struct {
	Reason string `json:"reason" validate:"notblank,max=2000"`
}

type resolveDisputeRequest struct {
	Status        string `json:"status" validate:"required,oneof=RESOLVED REJECTED"`
	AdminComments string `json:"admin_comments" validate:"max=2000"`
}

func pathID(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+what+" ID")
		return 0, false
	}
	return id, true
}

// Create godoc
// @Summary Raise a dispute about a booking
// @Tags Disputes
// @Security BearerAuth
// @Router /bookings/{id}/disputes [post]
func (h *Handler) Create(c *gin.Context) {
	bookingID, ok := pathID(c, "booking")
	if !ok {
		return
	}
	var req createDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "REASON_REQUIRED", "A reason is required", errs)
		return
	}

	d, err := h.service.Create(c.Request.Context(), bookingID, c.GetInt64("user_id"), req.Reason)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, d)
}

// ListForBooking godoc
// @Summary List disputes of a booking
// @Tags Disputes
// @Security BearerAuth
// @Router /bookings/{id}/disputes [get]
func (h *Handler) ListForBooking(c *gin.Context) {
	bookingID, ok := pathID(c, "booking")
	if !ok {
		return
	}
	items, err := h.service.ListForBooking(c.Request.Context(), bookingID, c.GetInt64("user_id"), domain.UserRole(c.GetString("role")))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// AdminList godoc
// @Summary Moderation queue
// @Tags Admin
// @Security BearerAuth
// @Param status query string false "OPEN, RESOLVED or REJECTED"
// @Router /admin/disputes [get]
func (h *Handler) AdminList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := Status(strings.ToUpper(c.Query("status")))

	items, total, err := h.service.List(c.Request.Context(), status, page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"disputes": items, "total": total})
}

// Resolve godoc
// @Summary Decide a dispute
// @Tags Admin
// @Security BearerAuth
// @Router /admin/disputes/{id} [patch]
func (h *Handler) Resolve(c *gin.Context) {
	id, ok := pathID(c, "dispute")
	if !ok {
		return
	}
	var req resolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_DECISION", "Decision must be RESOLVED or REJECTED", errs)
		return
	}

	d, err := h.service.Resolve(c.Request.Context(), id, c.GetInt64("user_id"), domain.UserRole(c.GetString("role")), Status(req.Status), req.AdminComments)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/disputes", h.Create)
	rg.GET("/bookings/:id/disputes", h.ListForBooking)
}

// RegisterAdminRoutes expects r to be guarded by admin middleware.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/disputes", h.AdminList)
	r.PATCH("/disputes/:id", h.Resolve)
}
