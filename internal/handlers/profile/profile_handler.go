// internal/handlers/profile/profile_handler.go
package profile

import (
	"errors"
	"net/http"

	"tishe-service/internal/pkg/response"
	profilesvc "tishe-service/internal/service/profile"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profile *profilesvc.Service
	logger  *zap.Logger
}

func NewProfileHandler(profile *profilesvc.Service, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profile: profile, logger: logger}
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type wishlistRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// Cart returns the signed-in user's cart.
func (h *ProfileHandler) Cart(c *gin.Context) {
	items, err := h.profile.Cart(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to load cart", err)
		return
	}
	response.Success(c, http.StatusOK, "cart", items)
}

// AddToCart merges an item into the cart.
func (h *ProfileHandler) AddToCart(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.profile.AddToCart(c.Request.Context(), req.ProductID, req.Quantity); err != nil {
		h.fail(c, "failed to update cart", err)
		return
	}
	response.Success(c, http.StatusOK, "cart updated", nil)
}

// RemoveFromCart drops one product from the cart.
func (h *ProfileHandler) RemoveFromCart(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		response.ValidationError(c, "missing product_id", xerrors.ErrInvalidInput)
		return
	}

	if err := h.profile.RemoveFromCart(c.Request.Context(), productID); err != nil {
		h.fail(c, "failed to update cart", err)
		return
	}
	response.Success(c, http.StatusOK, "cart updated", nil)
}

// Wishlist returns the signed-in user's wishlist.
func (h *ProfileHandler) Wishlist(c *gin.Context) {
	items, err := h.profile.Wishlist(c.Request.Context())
	if err != nil {
		h.fail(c, "failed to load wishlist", err)
		return
	}
	response.Success(c, http.StatusOK, "wishlist", items)
}

// AddToWishlist adds a product, deduplicated.
func (h *ProfileHandler) AddToWishlist(c *gin.Context) {
	var req wishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.profile.AddToWishlist(c.Request.Context(), req.ProductID); err != nil {
		h.fail(c, "failed to update wishlist", err)
		return
	}
	response.Success(c, http.StatusOK, "wishlist updated", nil)
}

// RemoveFromWishlist drops one product from the wishlist.
func (h *ProfileHandler) RemoveFromWishlist(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		response.ValidationError(c, "missing product_id", xerrors.ErrInvalidInput)
		return
	}

	if err := h.profile.RemoveFromWishlist(c.Request.Context(), productID); err != nil {
		h.fail(c, "failed to update wishlist", err)
		return
	}
	response.Success(c, http.StatusOK, "wishlist updated", nil)
}

func (h *ProfileHandler) fail(c *gin.Context, msg string, err error) {
	if errors.Is(err, xerrors.ErrUnauthorized) {
		response.Unauthorized(c, "sign in required")
		return
	}
	h.logger.Error(msg, zap.Error(err))
	response.Error(c, http.StatusInternalServerError, msg, err)
}
