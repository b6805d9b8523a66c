package routes

import (
	"time"

	"casaora/handlers"
	"casaora/middleware"
	"casaora/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes registers endpoints that need no session.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.Health)

	api := r.Group("/api")
	{
		api.GET("/directory", hb.Directory.Search)
		api.GET("/directory/chips", hb.Directory.Chips)
		api.GET("/directory/map", hb.Directory.Map)
		api.GET("/directory/map-config", hb.Directory.MapConfig)

		api.GET("/professionals/:id", hb.Professional.GetPublic)
		api.GET("/professionals/:id/quote", hb.Professional.Quote)

		api.GET("/help/categories", hb.Help.Categories)
		api.GET("/help/categories/:slug/articles", hb.Help.Articles)
		api.GET("/help/articles/:slug", hb.Help.Article)
		api.POST("/help/articles/:slug/feedback", hb.Help.Feedback)
		api.GET("/help/search", hb.Help.Search)

		// Stripe signs the raw body; no auth middleware here.
		api.POST("/webhooks/stripe", hb.Booking.StripeWebhook)
	}
}

// RegisterAccountRoutes registers endpoints for any signed-in profile.
func RegisterAccountRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(hb.JWTSecret, hb.ProfileRepo))

	bookings := api.Group("/bookings")
	{
		bookings.POST("", hb.Booking.Create)
		bookings.GET("", hb.Booking.List)
		bookings.GET("/:id", hb.Booking.Get)
		bookings.POST("/:id/accept", hb.Booking.Accept)
		bookings.POST("/:id/start", hb.Booking.Start)
		bookings.POST("/:id/complete", hb.Booking.Complete)
		bookings.POST("/:id/cancel", hb.Booking.Cancel)
		bookings.POST("/:id/review", hb.Booking.Review)
		bookings.POST("/:id/dispute", hb.Booking.OpenDispute)
	}

	conversations := api.Group("/conversations")
	{
		conversations.POST("", hb.Messaging.Start)
		conversations.GET("", hb.Messaging.List)
		conversations.GET("/:id/messages", hb.Messaging.Messages)
		conversations.POST("/:id/messages", hb.Messaging.Send)
		conversations.POST("/:id/read", hb.Messaging.MarkRead)
	}

	referrals := api.Group("/referrals")
	{
		referrals.GET("/code", hb.Referral.Code)
		referrals.POST("/redeem", hb.Referral.Redeem)
		referrals.GET("", hb.Referral.ListMine)
	}

	assistant := api.Group("/assistant")
	{
		assistant.POST("/chat", hb.Assistant.Chat)
		assistant.POST("/voice", hb.Assistant.Voice)
		assistant.DELETE("/context", hb.Assistant.Reset)
	}

	me := api.Group("/me", middleware.RequireRole(models.RoleProfessional))
	{
		me.GET("/professional", hb.Professional.GetMine)
		me.PUT("/professional", hb.Professional.UpsertMine)
		me.POST("/professional/avatar", hb.Professional.UploadAvatar)
		me.PUT("/professional/availability", hb.Professional.SetAvailability)
		me.GET("/payouts", hb.Payout.ListMine)
		me.GET("/payouts/summary", hb.Payout.Summary)
	}

	admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/payouts/run", hb.Admin.RunPayouts)
		admin.POST("/disputes/:id/resolve", hb.Admin.ResolveDispute)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, allowedOrigins []string) {
	r.Use(cors.New(corsConfig(allowedOrigins)))

	RegisterPublicRoutes(r, hb)
	RegisterAccountRoutes(r, hb)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "Accept-Language"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
