package payment

import "rentalmarket/internal/pkg/apperr"

var (
	ErrMissingSignature = apperr.New(apperr.KindValidation, "MISSING_SIGNATURE", "Payment-Signature header is required")
	ErrInvalidSignature = apperr.New(apperr.KindValidation, "INVALID_SIGNATURE", "Webhook signature does not match")
	ErrStaleSignature   = apperr.New(apperr.KindValidation, "STALE_SIGNATURE", "Webhook timestamp is outside the tolerance window")
	ErrMalformedEvent   = apperr.New(apperr.KindValidation, "MALFORMED_EVENT", "Webhook payload could not be parsed")
)
