// internal/handlers/admin/admin_handler.go
package admin

import (
	"net/http"

	"tishe-service/internal/domain/catalog"
	"tishe-service/internal/pkg/response"
	catalogsvc "tishe-service/internal/service/catalog"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type AdminHandler struct {
	catalog *catalogsvc.Service
	logger  *zap.Logger
}

func NewAdminHandler(catalog *catalogsvc.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, logger: logger}
}

// CreateCategory writes a new category document. The cached collection is
// not refreshed; readers keep the snapshot they loaded.
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req catalog.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	id := ulid.Make().String()
	if err := h.catalog.CreateCategory(c.Request.Context(), id, &req); err != nil {
		h.logger.Error("failed to create category",
			zap.String("slug", req.Slug),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "failed to create category", err)
		return
	}

	response.Success(c, http.StatusCreated, "category created", gin.H{"id": id})
}

// CreateProduct writes a new product document.
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	id := ulid.Make().String()
	if err := h.catalog.CreateProduct(c.Request.Context(), id, &req); err != nil {
		h.logger.Error("failed to create product",
			zap.String("name", req.Name),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "failed to create product", err)
		return
	}

	response.Success(c, http.StatusCreated, "product created", gin.H{"id": id})
}
