package asset

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rentalmarket/internal/pkg/response"
	"rentalmarket/internal/pkg/validator"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type createAssetRequest struct {
	Name        string   `json:"name" validate:"notblank,max=255"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents" validate:"min=0"`
	Address     string   `json:"address"`
	Category    string   `json:"category" validate:"max=100"`
	Images      []string `json:"images" validate:"max=20,dive,url"`
}

// Create godoc
// @Summary List a new asset
// @Tags Assets
// @Security BearerAuth
// @Router /assets [post]
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid asset", errs)
		return
	}

	a := &Asset{
		OwnerID:     userID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Address:     req.Address,
		Category:    req.Category,
		Images:      req.Images,
		IsActive:    true,
	}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

// Get godoc
// @Summary Get asset by id
// @Tags Assets
// @Router /assets/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid asset ID")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/assets/:id", h.Get)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/assets", h.Create)
}
