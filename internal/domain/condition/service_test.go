package condition

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalmarket/internal/database/dbtest"
	"rentalmarket/internal/domain"
	"rentalmarket/internal/domain/booking"
	"rentalmarket/internal/pkg/apperr"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failAt  int
	puts    int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failAt > 0 && m.puts == m.failAt {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type bookingTable map[int64]*booking.Booking

func (t bookingTable) GetByID(_ context.Context, id int64) (*booking.Booking, error) {
	b, ok := t[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

const (
	ownerID  int64 = 1
	renterID int64 = 2
	outsider int64 = 3
)

func newConditionService(t *testing.T, status booking.Status) (*Service, *memoryStorage) {
	t.Helper()
	blobs := newMemoryStorage()
	bookings := bookingTable{
		7: {ID: 7, OwnerID: ownerID, RenterID: renterID, Status: status},
	}
	svc := NewService(NewRepository(dbtest.Open(t, Models()...)), bookings, blobs)
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC) }
	return svc, blobs
}

func TestService_BeforeThenAfter(t *testing.T) {
	svc, blobs := newConditionService(t, booking.StatusConfirmed)
	ctx := context.Background()

	c, err := svc.UploadBefore(ctx, 7, ownerID, []Upload{{Data: pngBytes}, {Data: jpegBytes}})
	require.NoError(t, err)
	assert.Equal(t, StatusBeforeUploaded, c.Status)
	assert.Len(t, c.BeforeImages, 2)
	require.NotNil(t, c.BeforeUploadedBy)
	assert.Equal(t, ownerID, *c.BeforeUploadedBy)

	c, err = svc.UploadAfter(ctx, 7, renterID, []Upload{{Data: pngBytes}})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, c.Status)
	assert.Len(t, c.AfterImages, 1)
	assert.Len(t, c.BeforeImages, 2)
	assert.Equal(t, 3, blobs.count())

	_, err = svc.UploadAfter(ctx, 7, ownerID, []Upload{{Data: pngBytes}})
	assert.ErrorIs(t, err, ErrWrongParty)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestService_LateBeforeUploadKeepsCompleted(t *testing.T) {
	svc, _ := newConditionService(t, booking.StatusActive)
	ctx := context.Background()

	_, err := svc.UploadAfter(ctx, 7, renterID, []Upload{{Data: pngBytes}})
	require.NoError(t, err)

	c, err := svc.UploadBefore(ctx, 7, ownerID, []Upload{{Data: pngBytes}})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, c.Status)
}

func TestService_GetCondition_DefaultsToPending(t *testing.T) {
	svc, _ := newConditionService(t, booking.StatusActive)
	ctx := context.Background()

	c, err := svc.GetCondition(ctx, 7, renterID, domain.RoleRenter)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, c.Status)
	assert.Empty(t, c.BeforeImages)
	assert.NotNil(t, c.BeforeImages)

	_, err = svc.GetCondition(ctx, 7, outsider, domain.RoleRenter)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = svc.GetCondition(ctx, 7, outsider, domain.RoleAdmin)
	assert.NoError(t, err)

	_, err = svc.GetCondition(ctx, 404, renterID, domain.RoleRenter)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_UploadGuards(t *testing.T) {
	tooMany := make([]Upload, MaxImagesPerUpload+1)
	for i := range tooMany {
		tooMany[i] = Upload{Data: pngBytes}
	}

	tests := []struct {
		name    string
		status  booking.Status
		actor   int64
		files   []Upload
		wantErr error
	}{
		{"no files", booking.StatusActive, ownerID, nil, ErrNoImages},
		{"too many", booking.StatusActive, ownerID, tooMany, ErrTooManyImages},
		{"not an image", booking.StatusActive, ownerID, []Upload{{Data: []byte("plain text")}}, ErrUnsupportedImage},
		{"outsider", booking.StatusActive, outsider, []Upload{{Data: pngBytes}}, ErrBookingNotFound},
		{"renter on before side", booking.StatusActive, renterID, []Upload{{Data: pngBytes}}, ErrWrongParty},
		{"pending booking", booking.StatusPending, ownerID, []Upload{{Data: pngBytes}}, ErrBookingNotActive},
		{"cancelled booking", booking.StatusCancelled, ownerID, []Upload{{Data: pngBytes}}, ErrBookingNotActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, blobs := newConditionService(t, tt.status)
			_, err := svc.UploadBefore(context.Background(), 7, tt.actor, tt.files)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, blobs.count())
		})
	}
}

func TestService_StorageFailureLeavesNothing(t *testing.T) {
	svc, blobs := newConditionService(t, booking.StatusActive)
	blobs.failAt = 2
	ctx := context.Background()

	_, err := svc.UploadBefore(ctx, 7, ownerID, []Upload{{Data: pngBytes}, {Data: pngBytes}})
	assert.ErrorIs(t, err, ErrStorageFailed)
	assert.Equal(t, apperr.KindDependencyFailure, apperr.KindOf(err))
	assert.Zero(t, blobs.count())

	c, err := svc.GetCondition(ctx, 7, ownerID, domain.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, c.Status)
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusPending, DeriveStatus(0, 0))
	assert.Equal(t, StatusBeforeUploaded, DeriveStatus(2, 0))
	assert.Equal(t, StatusCompleted, DeriveStatus(0, 1))
	assert.Equal(t, StatusCompleted, DeriveStatus(3, 1))
}
