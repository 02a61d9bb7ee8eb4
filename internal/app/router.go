// internal/app/router.go
package app

import (
	adminHandler "tishe-service/internal/handlers/admin"
	authHandler "tishe-service/internal/handlers/auth"
	catalogHandler "tishe-service/internal/handlers/catalog"
	profileHandler "tishe-service/internal/handlers/profile"
	wsHandler "tishe-service/internal/handlers/ws"
	"tishe-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	CatalogHandler *catalogHandler.CatalogHandler
	AdminHandler   *adminHandler.AdminHandler
	ProfileHandler *profileHandler.ProfileHandler
	WSHandler      *wsHandler.WSHandler
	Guard          *middleware.Guard
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.Stream)

	// ==================== Auth ====================
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.AuthHandler.Login)
		auth.POST("/signup", h.AuthHandler.Signup)
		auth.POST("/logout", h.AuthHandler.Logout)
		auth.GET("/session", h.AuthHandler.Session)
		auth.GET("/oauth/:provider/start", h.AuthHandler.OAuthStart)
		auth.GET("/oauth/callback", h.AuthHandler.OAuthCallback)
	}

	// ==================== Catalog (public) ====================
	api.GET("/categories", h.CatalogHandler.ListCategories)
	api.GET("/categories/:slug", h.CatalogHandler.GetCategory)
	api.GET("/categories/:slug/products", h.CatalogHandler.ListCategoryProducts)
	api.GET("/products", h.CatalogHandler.ListProducts)
	api.GET("/products/:id", h.CatalogHandler.GetProduct)

	// ==================== Profile (requires auth) ====================
	profile := api.Group("/profile")
	profile.Use(h.Guard.RequireAuth())
	{
		profile.GET("/cart", h.ProfileHandler.Cart)
		profile.POST("/cart", h.ProfileHandler.AddToCart)
		profile.DELETE("/cart", h.ProfileHandler.RemoveFromCart)
		profile.GET("/wishlist", h.ProfileHandler.Wishlist)
		profile.POST("/wishlist", h.ProfileHandler.AddToWishlist)
		profile.DELETE("/wishlist", h.ProfileHandler.RemoveFromWishlist)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.Guard.RequireAdmin())
	{
		admin.POST("/categories", h.AdminHandler.CreateCategory)
		admin.POST("/products", h.AdminHandler.CreateProduct)
	}
}
