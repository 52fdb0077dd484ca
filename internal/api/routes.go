package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/giftpool/backend/internal/api/handlers"
	"github.com/giftpool/backend/internal/config"
	"github.com/giftpool/backend/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	// No-cache middleware for development
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] Aggressive no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", handlers.HealthCheck(db, rdb))

		// Gift endpoints
		gifts := v1.Group("/gifts")
		{
			gifts.POST("", handlers.CreateGift(db, cfg))
			gifts.GET("/:token", handlers.GetGiftProgress(db))
			gifts.POST("/:token/stages/:stageID/answer", handlers.SubmitStageAnswer(db))
			gifts.POST("/:token/stages/:stageID/session", handlers.StartStageSession(db, cfg))
		}

		// Table session endpoints
		sessions := v1.Group("/sessions")
		sessions.Use(middleware.WebSocketCORSCheck(cfg))
		{
			sessions.GET("/:token", handlers.GetSessionState(rdb))
			sessions.GET("/:token/ws", handlers.HandleSessionWebSocket(db, rdb, cfg))
		}

		// Admin endpoints
		adminGroup := v1.Group("/admin")
		{
			adminGroup.POST("/login", handlers.AdminLogin(db, cfg))

			authed := adminGroup.Group("")
			authed.Use(handlers.AdminAuthMiddleware(cfg))
			{
				authed.GET("/me", handlers.AdminMe())
				authed.GET("/stats", handlers.AdminStats(db))
				authed.GET("/gifts", handlers.AdminListGifts(db))
				authed.GET("/gifts/:token", handlers.AdminGetGift(db))
				authed.GET("/sessions", handlers.AdminListSessions(db))
				authed.DELETE("/sessions/:token", handlers.AdminEndSession(db))
				authed.GET("/config", handlers.AdminGetConfig(db, cfg))
				authed.PUT("/config/:key", handlers.AdminUpdateConfig(db, cfg))
				authed.DELETE("/config/:key", handlers.AdminDeleteConfig(db, cfg))
				authed.GET("/audit", handlers.AdminGetAuditLogs(db))
			}
		}
	}
}
