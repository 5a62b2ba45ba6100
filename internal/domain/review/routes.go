package review

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rentalmarket/internal/pkg/response"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListForAsset godoc
// @Summary Reviews of an asset
// @Tags Reviews
// @Param id path int true "Asset ID"
// @Router /assets/{id}/reviews [get]
func (h *Handler) ListForAsset(c *gin.Context) {
	assetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid asset ID")
		return
	}
	limit := 20
	offset := 0
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(c.Query("offset")); err == nil && o >= 0 {
		offset = o
	}

	ctx := c.Request.Context()
	items, err := h.repo.ListByAsset(ctx, assetID, limit, offset)
	if err != nil {
		response.Fail(c, err)
		return
	}
	avg, count, err := h.repo.AverageRating(ctx, assetID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"items":          items,
		"average_rating": avg,
		"total":          count,
	})
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/assets/:id/reviews", h.ListForAsset)
}
