package auth

import "rentalmarket/internal/pkg/apperr"

var (
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountLocked      = apperr.New(apperr.KindResourceExhausted, "ACCOUNT_LOCKED", "Too many failed attempts, try again later")
	ErrRoleNotAllowed     = apperr.New(apperr.KindValidation, "INVALID_ROLE", "Role must be owner or renter")
)
