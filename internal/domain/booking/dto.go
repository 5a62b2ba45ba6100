package booking

import "time"

type createBookingRequest struct {
	AssetID   int64     `json:"asset_id" validate:"required,gt=0"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Notes     string    `json:"notes" validate:"max=2000"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed cancelled"`
}

type addReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type listBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
