package payment

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"rentalmarket/internal/pkg/response"
)

const maxWebhookBody = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Webhook godoc
// @Summary      Payment provider webhook
// @Description  Verifies the signature and applies successful checkouts (idempotent)
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        Payment-Signature header string true "t=<unix>,v1=<hmac>"
// @Router       /payments/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to read body")
		return
	}

	res, err := h.service.HandleWebhook(c.Request.Context(), c.GetHeader(SignatureHeader), body)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/payments/webhook", h.Webhook)
}
