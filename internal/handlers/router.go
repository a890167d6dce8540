package handlers

import (
	"github.com/gin-gonic/gin"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/middleware"
	"woodlinks-backend/internal/services"
)

// Services bundles what the router needs. Auth may be nil, in which case the
// /api/auth routes are not mounted.
type Services struct {
	Orders    *services.OrderService
	Cards     *services.CardService
	Inventory *services.InventoryService
	Admin     *services.AdminService
	Auth      *services.AuthService
}

func NewRouter(cfg *config.Config, svc Services, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	ordersHandler := NewOrdersHandler(svc.Orders)
	webhookHandler := NewWebhookHandler(svc.Orders, log)
	cardsHandler := NewCardsHandler(svc.Cards)
	publicHandler := NewPublicHandler(svc.Cards, svc.Inventory, cfg)
	adminHandler := NewAdminHandler(svc.Orders, svc.Cards, svc.Admin, svc.Inventory)

	router.GET("/health", HealthHandler)

	// Public pages, reachable from the NFC chip and shared links
	router.GET("/p/:slug", middleware.OptionalAuth(cfg), publicHandler.PublicCard)
	router.GET("/c/:id", publicHandler.CardTap)

	api := router.Group("/api")

	// Webhook (no auth, verified by signature)
	api.POST("/webhooks/stripe", webhookHandler.HandleStripeWebhook)

	api.GET("/vcard/:slug", publicHandler.VCardBySlug)
	api.GET("/cards/:id/vcard", publicHandler.VCardByID)
	api.GET("/wood", publicHandler.ListWood)
	api.GET("/wood/:slug", publicHandler.GetWood)

	if svc.Auth != nil {
		authHandler := NewAuthHandler(svc.Auth)
		api.POST("/auth/signup", authHandler.SignUp)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)
		api.POST("/auth/magic-link", authHandler.MagicLink)

		profile := api.Group("/profile", middleware.AuthMiddleware(cfg))
		profile.GET("", authHandler.GetProfile)
		profile.PUT("", authHandler.UpdateProfile)
	}

	authed := api.Group("", middleware.AuthMiddleware(cfg))

	authed.POST("/orders", ordersHandler.CreateOrder)
	authed.GET("/orders", ordersHandler.ListOrders)
	authed.GET("/orders/:id", ordersHandler.GetOrder)
	authed.DELETE("/orders/:id", ordersHandler.DeleteOrder)
	authed.POST("/orders/:id/checkout", ordersHandler.StartCheckout)

	authed.POST("/cards", cardsHandler.CreateCard)
	authed.GET("/cards", cardsHandler.ListCards)
	authed.GET("/cards/:id", cardsHandler.GetCard)
	authed.PUT("/cards/:id", cardsHandler.UpdateCard)
	authed.DELETE("/cards/:id", cardsHandler.DeleteCard)
	authed.PUT("/cards/:id/contents", cardsHandler.ReplaceContents)
	authed.POST("/cards/:id/avatar", cardsHandler.UploadAvatar)
	authed.POST("/cards/:id/claim", cardsHandler.ClaimCard)
	authed.GET("/cards/:id/orders", cardsHandler.CardOrders)
	authed.GET("/cards/:id/analytics", cardsHandler.CardAnalytics)

	admin := authed.Group("/admin", middleware.RequireAdmin(cfg))
	admin.GET("/orders", adminHandler.ListOrders)
	admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/cards", adminHandler.ListCards)
	admin.POST("/cards", adminHandler.IssueCards)
	admin.PATCH("/cards/:id/status", adminHandler.UpdateCardStatus)
	admin.GET("/inventory", adminHandler.ListInventory)
	admin.POST("/inventory", adminHandler.CreateInventory)
	admin.PUT("/inventory/:id", adminHandler.UpdateInventory)
	admin.DELETE("/inventory/:id", adminHandler.DeleteInventory)

	return router
}
