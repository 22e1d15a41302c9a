package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	auctioneer "github.com/layer-3/auctioneer"
)

// SetupRouter sets up the Gin router. metricsHandler is mounted at /metrics when not nil.
func SetupRouter(svc auctioneer.Auction, log *slog.Logger, metricsHandler http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), LoggingMiddleware(log))

	// Create handlers
	handlers := NewAuctionHandlers(svc, log)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/authenticate", handlers.Authenticate)
	}

	// Token-gated API routes
	api := router.Group("/api")
	api.Use(CredentialsMiddleware())
	{
		api.GET("/items", handlers.ListItems)
		api.POST("/items", handlers.NewAuction)
		api.GET("/items/:item", handlers.GetItem)
		api.POST("/items/:item/bids", handlers.Bid)
		api.POST("/items/:item/close", handlers.CloseAuction)
	}

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	return router
}
