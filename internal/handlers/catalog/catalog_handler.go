// internal/handlers/catalog/catalog_handler.go
package catalog

import (
	"errors"
	"net/http"

	"tishe-service/internal/pkg/response"
	catalogsvc "tishe-service/internal/service/catalog"

	xerrors "tishe-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog *catalogsvc.Service
	logger  *zap.Logger
}

func NewCatalogHandler(catalog *catalogsvc.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ListCategories returns the visible categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.VisibleCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load categories", zap.Error(err))
		response.Error(c, http.StatusBadGateway, "failed to load categories", err)
		return
	}
	response.Success(c, http.StatusOK, "categories", categories)
}

// GetCategory returns one visible category by slug.
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	slug := c.Param("slug")

	category, err := h.catalog.CategoryBySlug(c.Request.Context(), slug)
	if errors.Is(err, xerrors.ErrNotFound) {
		response.NotFound(c, "category not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load category", zap.String("slug", slug), zap.Error(err))
		response.Error(c, http.StatusBadGateway, "failed to load category", err)
		return
	}
	response.Success(c, http.StatusOK, "category", category)
}

// ListProducts returns every product.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.AllProducts(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load products", zap.Error(err))
		response.Error(c, http.StatusBadGateway, "failed to load products", err)
		return
	}
	response.Success(c, http.StatusOK, "products", products)
}

// GetProduct returns one product by ID.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.catalog.ProductByID(c.Request.Context(), id)
	if errors.Is(err, xerrors.ErrNotFound) {
		response.NotFound(c, "product not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load product", zap.String("product_id", id), zap.Error(err))
		response.Error(c, http.StatusBadGateway, "failed to load product", err)
		return
	}
	response.Success(c, http.StatusOK, "product", product)
}

// ListCategoryProducts returns the products filed under a category slug. The
// "all" slug is the storefront's everything view.
func (h *CatalogHandler) ListCategoryProducts(c *gin.Context) {
	slug := c.Param("slug")

	products, err := h.catalog.ProductsInCategory(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("failed to load category products", zap.String("slug", slug), zap.Error(err))
		response.Error(c, http.StatusBadGateway, "failed to load products", err)
		return
	}
	response.Success(c, http.StatusOK, "products", products)
}
