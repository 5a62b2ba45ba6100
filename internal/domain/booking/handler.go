package booking

import (
	"net/http"
	"strconv"

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

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

// CreateBooking godoc
// @Summary Request a booking for an asset
// @Tags Bookings
// @Security BearerAuth
// @Router /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking", errs)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), c.GetInt64("user_id"), CreateBookingRequest{
		AssetID:   req.AssetID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Notes:     req.Notes,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

// GetMyBookings godoc
// @Summary List bookings of the current user
// @Tags Bookings
// @Security BearerAuth
// @Param role query string false "renter or owner"
// @Router /bookings/me [get]
func (h *Handler) GetMyBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePage(page, pageSize)

	role := domain.UserRole(c.DefaultQuery("role", string(domain.RoleRenter)))
	items, total, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"), role, page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, listBookingsResponse{
		Bookings: items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetBooking godoc
// @Summary Get booking details
// @Tags Bookings
// @Security BearerAuth
// @Router /bookings/{id} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	d, err := h.service.GetBookingByID(c.Request.Context(), id, c.GetInt64("user_id"), domain.UserRole(c.GetString("role")))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

// UpdateBookingStatus godoc
// @Summary Accept or reject a pending booking
// @Tags Bookings
// @Security BearerAuth
// @Router /bookings/{id}/status [patch]
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_STATUS", "Status must be confirmed or cancelled", errs)
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), id, c.GetInt64("user_id"), Status(req.Status))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// CancelBooking godoc
// @Summary Cancel a pending booking as its renter
// @Tags Bookings
// @Security BearerAuth
// @Router /bookings/{id}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// CompleteBooking godoc
// @Summary Mark the asset as returned
// @Tags Bookings
// @Security BearerAuth
// @Router /bookings/{id}/complete [post]
func (h *Handler) CompleteBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.service.CompleteBooking(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// AddReview godoc
// @Summary Review a finished booking
// @Tags Bookings
// @Security BearerAuth
// @Router /bookings/{id}/review [post]
func (h *Handler) AddReview(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_RATING", "Rating must be between 1 and 5", errs)
		return
	}

	rv, err := h.service.AddReview(c.Request.Context(), id, c.GetInt64("user_id"), req.Rating, req.Comment)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, rv)
}
