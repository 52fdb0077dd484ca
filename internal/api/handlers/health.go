package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/giftpool/backend/internal/game"
)

var startTime = time.Now()

const version = "0.3.0"

// HealthCheck reports liveness plus the state of both backing stores, so a
// degraded dependency shows up before players do.
func HealthCheck(db *sqlx.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		if err := db.Ping(); err != nil {
			dbStatus = "down"
		}

		redisStatus := "ok"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
		}

		overall := "ok"
		status := http.StatusOK
		if dbStatus != "ok" || redisStatus != "ok" {
			overall = "degraded"
			status = http.StatusServiceUnavailable
		}

		sessions := 0
		if game.Manager != nil {
			sessions = game.Manager.ActiveSessionCount()
		}

		c.JSON(status, gin.H{
			"status":          overall,
			"service":         "giftpool-api",
			"version":         version,
			"uptime":          time.Since(startTime).String(),
			"database":        dbStatus,
			"redis":           redisStatus,
			"active_sessions": sessions,
		})
	}
}
