package booking

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the booking endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/me", h.GetMyBookings)
	rg.GET("/bookings/:id", h.GetBooking)

	// Lifecycle
	rg.PATCH("/bookings/:id/status", h.UpdateBookingStatus)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
	rg.POST("/bookings/:id/complete", h.CompleteBooking)
	rg.POST("/bookings/:id/review", h.AddReview)
}
