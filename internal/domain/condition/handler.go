package condition

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentalmarket/internal/domain"
	"rentalmarket/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetCondition godoc
// @Summary Get before/after condition photos of a booking
// @Tags Condition
// @Security BearerAuth
// @Router /bookings/{id}/condition [get]
func (h *Handler) GetCondition(c *gin.Context) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	cond, err := h.service.GetCondition(c.Request.Context(), id, c.GetInt64("user_id"), domain.UserRole(c.GetString("role")))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, cond)
}

// UploadBefore godoc
// @Summary Upload handover photos (owner)
// @Tags Condition
// @Security BearerAuth
// @Accept multipart/form-data
// @Param images formData file true "Up to 10 images"
// @Router /bookings/{id}/condition/before [post]
func (h *Handler) UploadBefore(c *gin.Context) {
	h.upload(c, SideBefore)
}

// UploadAfter godoc
// @Summary Upload return photos (renter)
// @Tags Condition
// @Security BearerAuth
// @Accept multipart/form-data
// @Param images formData file true "Up to 10 images"
// @Router /bookings/{id}/condition/after [post]
func (h *Handler) UploadAfter(c *gin.Context) {
	h.upload(c, SideAfter)
}

func (h *Handler) upload(c *gin.Context, side Side) {
	id, ok := parseBookingID(c)
	if !ok {
		return
	}
	files, ok := readImages(c)
	if !ok {
		return
	}

	userID := c.GetInt64("user_id")
	var (
		cond *AssetCondition
		err  error
	)
	if side == SideBefore {
		cond, err = h.service.UploadBefore(c.Request.Context(), id, userID, files)
	} else {
		cond, err = h.service.UploadAfter(c.Request.Context(), id, userID, files)
	}
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, cond)
}

func readImages(c *gin.Context) ([]Upload, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Expected multipart form with images")
		return nil, false
	}
	headers := form.File["images"]
	if len(headers) > MaxImagesPerUpload {
		response.Fail(c, ErrTooManyImages)
		return nil, false
	}

	files := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > MaxImageBytes {
			response.Fail(c, ErrImageTooLarge)
			return nil, false
		}
		f, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to read uploaded file")
			return nil, false
		}
		data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
		_ = f.Close()
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to read uploaded file")
			return nil, false
		}
		files = append(files, Upload{Filename: fh.Filename, Data: data})
	}
	return files, true
}

func parseBookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

// RegisterRoutes mounts the condition endpoints under an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/:id/condition", h.GetCondition)
	rg.POST("/bookings/:id/condition/before", h.UploadBefore)
	rg.POST("/bookings/:id/condition/after", h.UploadAfter)
}
