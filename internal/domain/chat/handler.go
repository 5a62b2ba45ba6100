package chat

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentalmarket/internal/pkg/response"
	"rentalmarket/internal/pkg/validator"
)

// Handler handles HTTP requests for the chat domain
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ---- Conversation endpoints ----

// StartConversation godoc
// @Summary Start or get the conversation about an asset
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Router /conversations [post]
func (h *Handler) StartConversation(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid conversation request", errs)
		return
	}

	conv, created, err := h.service.GetOrCreate(c.Request.Context(), req.AssetID, userID, req.ParticipantID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, conversationResponse{Conversation: conv, Created: created})
}

// ListConversations godoc
// @Summary List my conversations
// @Tags Chat
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20)"
// @Router /conversations [get]
func (h *Handler) ListConversations(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	page, pageSize := pageParams(c)
	items, err := h.service.ListForUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// GetUnreadCount godoc
// @Summary Total unread messages
// @Tags Chat
// @Security BearerAuth
// @Router /conversations/unread-count [get]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	n, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread_count": n})
}

// ---- Message endpoints ----

// GetMessages godoc
// @Summary Get a page of messages and mark it read
// @Tags Chat
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param page query int false "Page counted from the newest (default 1)"
// @Param page_size query int false "Page size (default 50)"
// @Router /conversations/{id}/messages [get]
func (h *Handler) GetMessages(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	page, pageSize := pageParams(c)
	msgs, err := h.service.ListMessages(c.Request.Context(), c.Param("id"), userID, page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, msgs)
}

// SendMessage godoc
// @Summary Send a message
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Param id path string true "Conversation ID"
// @Router /conversations/{id}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid message", errs)
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), c.Param("id"), userID, SendMessageInput{
		Content:     req.Content,
		MessageType: MessageType(req.MessageType),
		MediaURL:    req.MediaURL,
		ReplyToID:   req.ReplyToID,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

// MarkAsRead godoc
// @Summary Mark a conversation as read
// @Tags Chat
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Router /conversations/{id}/read [post]
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	n, err := h.service.MarkAsRead(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"marked": n})
}

// DeleteMessage godoc
// @Summary Delete my message
// @Tags Chat
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Router /messages/{id} [delete]
func (h *Handler) DeleteMessage(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}
	msg, err := h.service.DeleteMessage(c.Request.Context(), id, userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, msg)
}

// ---- helpers ----

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return page, pageSize
}

func mustUserID(c *gin.Context) int64 {
	id := c.GetInt64("user_id")
	if id == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return id
}
