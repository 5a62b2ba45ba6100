package condition

import "rentalmarket/internal/pkg/apperr"

var (
	ErrBookingNotFound  = apperr.New(apperr.KindNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	ErrWrongParty       = apperr.New(apperr.KindUnauthorized, "CONDITION_WRONG_PARTY", "Only the owner uploads before photos and only the renter uploads after photos")
	ErrBookingNotActive = apperr.New(apperr.KindInvalidState, "BOOKING_NOT_ACTIVE", "Condition photos can only be added to confirmed, ongoing or completed bookings")
	ErrNoImages         = apperr.New(apperr.KindValidation, "NO_IMAGES", "At least one image is required")
	ErrTooManyImages    = apperr.New(apperr.KindValidation, "TOO_MANY_IMAGES", "Too many images in one upload")
	ErrImageTooLarge    = apperr.New(apperr.KindValidation, "IMAGE_TOO_LARGE", "Image exceeds the size limit")
	ErrUnsupportedImage = apperr.New(apperr.KindValidation, "UNSUPPORTED_IMAGE_TYPE", "Only JPEG, PNG, GIF and WebP images are accepted")
	ErrStorageFailed    = apperr.New(apperr.KindDependencyFailure, "STORAGE_UNAVAILABLE", "Could not store the images, nothing was saved")
)
