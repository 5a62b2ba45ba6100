package dispute

import "rentalmarket/internal/pkg/apperr"

var (
	ErrDisputeNotFound = apperr.New(apperr.KindNotFound, "DISPUTE_NOT_FOUND", "Dispute not found")
	ErrBookingNotFound = apperr.New(apperr.KindNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	ErrAlreadyClosed   = apperr.New(apperr.KindInvalidState, "DISPUTE_ALREADY_CLOSED", "Dispute has already been decided")
	ErrReasonRequired  = apperr.New(apperr.KindValidation, "REASON_REQUIRED", "A reason is required")
	ErrInvalidDecision = apperr.New(apperr.KindValidation, "INVALID_DECISION", "Decision must be RESOLVED or REJECTED")
	ErrInvalidStatus   = apperr.New(apperr.KindValidation, "INVALID_STATUS", "Unknown dispute status")
	ErrAdminOnly       = apperr.New(apperr.KindUnauthorized, "ADMIN_ONLY", "Only administrators can decide disputes")
)
