package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentalmarket/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetNotifications godoc
// @Summary      List my notifications
// @Description  Newest first, with the unread count. Supports limit and offset.
// @Tags         Notifications
// @Security     BearerAuth
// @Param        limit   query  int  false  "Page size (default 20, max 100)"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {object}  NotificationListResponse
// @Router       /notifications [get]
func (h *Handler) GetNotifications(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, unread, total, err := h.service.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, NotificationListResponse{
		Notifications: items,
		UnreadCount:   unread,
		Total:         total,
	})
}

// MarkAllAsRead godoc
// @Summary      Mark all notifications as read
// @Tags         Notifications
// @Security     BearerAuth
// @Success      200  {object}  MarkAllReadResponse
// @Router       /notifications/read-all [post]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	updated, err := h.service.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, MarkAllReadResponse{Updated: updated})
}
