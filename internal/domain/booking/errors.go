package booking

import "rentalmarket/internal/pkg/apperr"

var (
	ErrBookingNotFound      = apperr.New(apperr.KindNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	ErrAssetNotFound        = apperr.New(apperr.KindNotFound, "ASSET_NOT_FOUND", "Asset not found")
	ErrAssetUnavailable     = apperr.New(apperr.KindInvalidState, "ASSET_UNAVAILABLE", "Asset is not available for booking")
	ErrInvalidOwner         = apperr.New(apperr.KindInvalidState, "INVALID_OWNER", "Asset has no valid owner")
	ErrOwnAsset             = apperr.New(apperr.KindValidation, "CANNOT_BOOK_OWN_ASSET", "You cannot book your own asset")
	ErrInvalidDates         = apperr.New(apperr.KindValidation, "INVALID_DATES", "End date must be after start date")
	ErrMaintenance          = apperr.New(apperr.KindResourceExhausted, apperr.CodeMaintenance, "Booking is unavailable during maintenance")
	ErrBookingBusy          = apperr.New(apperr.KindResourceExhausted, "BOOKING_BUSY", "Another booking request is being processed, please retry")
	ErrRenterNotFound       = apperr.New(apperr.KindNotFound, "RENTER_NOT_FOUND", "Renter account not found")
	ErrRequestLimitExceeded = apperr.New(apperr.KindResourceExhausted, "REQUEST_LIMIT_EXCEEDED", "You have reached the maximum number of open booking requests")
	ErrInvalidStatus        = apperr.New(apperr.KindValidation, "INVALID_STATUS", "Status must be confirmed or cancelled")
	ErrInvalidTransition    = apperr.New(apperr.KindInvalidState, "INVALID_STATUS_TRANSITION", "Booking cannot move to that status from its current status")
	ErrNotCancellable       = apperr.New(apperr.KindInvalidState, "NOT_CANCELLABLE", "Only pending bookings can be cancelled by their renter")
	ErrAccessDenied         = apperr.New(apperr.KindUnauthorized, "BOOKING_ACCESS_DENIED", "You are not a party to this booking")
	ErrNotRenter            = apperr.New(apperr.KindUnauthorized, "NOT_BOOKING_RENTER", "Only the renter can review this booking")
	ErrAlreadyReviewed      = apperr.New(apperr.KindInvalidState, "ALREADY_REVIEWED", "Booking already has a review")
	ErrNotYetReviewable     = apperr.New(apperr.KindInvalidState, "NOT_YET_REVIEWABLE", "Booking can be reviewed once it is completed or has ended, unless it was cancelled")
	ErrInvalidRating        = apperr.New(apperr.KindValidation, "INVALID_RATING", "Rating must be between 1 and 5")
	ErrInvalidAmount        = apperr.New(apperr.KindValidation, "INVALID_AMOUNT", "Payment amount must be positive")
	ErrMissingPaymentRef    = apperr.New(apperr.KindValidation, "MISSING_PAYMENT_REFERENCE", "Payment reference is required")
)
