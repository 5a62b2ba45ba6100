package condition

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/booking"
	"rentalmarket/internal/logger"
	"rentalmarket/internal/pkg/apperr"
	"rentalmarket/internal/storage"
)

const (
	MaxImagesPerUpload = 10
	MaxImageBytes      = 10 << 20
)

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*booking.Booking, error)
}

// Upload is one image as received from the client.
type Upload struct {
	Filename string
	Data     []byte
}

type Service struct {
	repo     *Repository
	bookings BookingReader
	blobs    storage.Storage
	now      func() time.Time
}

func NewService(repo *Repository, bookings BookingReader, blobs storage.Storage) *Service {
	return &Service{
		repo:     repo,
		bookings: bookings,
		blobs:    blobs,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UploadBefore appends the owner's handover photos.
func (s *Service) UploadBefore(ctx context.Context, bookingID, ownerID int64, files []Upload) (*AssetCondition, error) {
	return s.upload(ctx, bookingID, ownerID, SideBefore, files)
}

// UploadAfter appends the renter's return photos.
func (s *Service) UploadAfter(ctx context.Context, bookingID, renterID int64, files []Upload) (*AssetCondition, error) {
	return s.upload(ctx, bookingID, renterID, SideAfter, files)
}

// GetCondition returns the evidence for a booking, or an empty PENDING record
// when nothing was uploaded yet.
func (s *Service) GetCondition(ctx context.Context, bookingID, actorID int64, actorRole domain.UserRole) (*AssetCondition, error) {
	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actorID) && actorRole != domain.RoleAdmin {
		return nil, ErrBookingNotFound
	}

	c, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return Empty(bookingID), nil
	}
	return c, nil
}

func (s *Service) upload(ctx context.Context, bookingID, actorID int64, side Side, files []Upload) (*AssetCondition, error) {
	types, err := validateUploads(files)
	if err != nil {
		return nil, err
	}

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(actorID) {
		return nil, ErrBookingNotFound
	}
	if (side == SideBefore && actorID != b.OwnerID) || (side == SideAfter && actorID != b.RenterID) {
		return nil, ErrWrongParty
	}
	if !b.Status.IsCurrent() && b.Status != booking.StatusCompleted {
		return nil, ErrBookingNotActive
	}

	now := s.now()
	images, keys, err := s.store(ctx, bookingID, side, files, types, now)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.Append(ctx, bookingID, side, actorID, images, now)
	if err != nil {
		s.cleanup(ctx, keys)
		return nil, err
	}
	return c, nil
}

func (s *Service) loadBooking(ctx context.Context, bookingID int64) (*booking.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func validateUploads(files []Upload) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	if len(files) > MaxImagesPerUpload {
		return nil, ErrTooManyImages
	}
	types := make([]string, len(files))
	for i, f := range files {
		if len(f.Data) == 0 {
			return nil, ErrNoImages
		}
		if len(f.Data) > MaxImageBytes {
			return nil, ErrImageTooLarge
		}
		ct := storage.DetectContentType(f.Data)
		if _, ok := storage.AllowedImageTypes[ct]; !ok {
			return nil, ErrUnsupportedImage
		}
		types[i] = ct
	}
	return types, nil
}

// store pushes every file to blob storage. On failure it removes what was
// already written so the booking keeps no partial evidence.
func (s *Service) store(ctx context.Context, bookingID int64, side Side, files []Upload, types []string, now time.Time) ([]Image, []string, error) {
	images := make([]Image, 0, len(files))
	keys := make([]string, 0, len(files))
	for i, f := range files {
		key := fmt.Sprintf("conditions/%d/%s/%s%s", bookingID, side, uuid.NewString(), storage.ExtensionFor(types[i]))
		url, err := s.blobs.Put(ctx, key, types[i], bytes.NewReader(f.Data))
		if err != nil {
			s.cleanup(ctx, keys)
			logger.ErrorContext(ctx, "condition image upload failed", "booking_id", bookingID, "side", side, "error", err)
			return nil, nil, apperr.Wrap(ErrStorageFailed, err)
		}
		keys = append(keys, key)
		images = append(images, Image{URL: url, UploadedAt: now})
	}
	return images, keys, nil
}

func (s *Service) cleanup(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			logger.WarnContext(ctx, "failed to remove orphaned condition image", "key", key, "error", err)
		}
	}
}
