package chat

import "github.com/gin-gonic/gin"

// RegisterRoutes registers all chat routes under the protected group
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	conversations := r.Group("/conversations")
	{
		conversations.POST("", h.StartConversation)
		conversations.GET("", h.ListConversations)
		conversations.GET("/unread-count", h.GetUnreadCount)

		conversations.GET("/:id/messages", h.GetMessages)
		conversations.POST("/:id/messages", h.SendMessage)
		conversations.POST("/:id/read", h.MarkAsRead)
	}

	r.DELETE("/messages/:id", h.DeleteMessage)
}
