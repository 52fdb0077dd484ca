package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/giftpool/backend/internal/admin"
	"github.com/giftpool/backend/internal/api"
	"github.com/giftpool/backend/internal/config"
	"github.com/giftpool/backend/internal/database"
	"github.com/giftpool/backend/internal/game"
	"github.com/giftpool/backend/internal/migrations"
	"github.com/giftpool/backend/internal/redis"
	"github.com/giftpool/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Apply persisted runtime tuning before any table is created
	if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
		log.Printf("[CONFIG] Warning: failed to load runtime config: %v", err)
	}

	// Initialize Session Manager with Redis and config
	game.InitializeManager(db, rdb, cfg)

	// Wire the WS hub as the frame broadcaster and start the event relay
	ws.SetRedisClient(rdb, cfg)
	game.SetBroadcaster(ws.SessionHub)
	ws.StartSessionEventSubscriber(context.Background())

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, db, rdb, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting GiftPool server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
