package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"

	"github.com/giftpool/backend/internal/admin"
	"github.com/giftpool/backend/internal/config"
	"github.com/giftpool/backend/internal/game"
)

// AdminLogin validates username/password and issues a bearer JWT.
func AdminLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		username := strings.TrimSpace(req.Username)
		password := strings.TrimSpace(req.Password)

		acc, err := admin.ValidateAdminLogin(db, username, password)
		if err != nil {
			log.Printf("[ADMIN] Login failed for username %s: %v", username, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		// Issue JWT
		exp := time.Now().Add(time.Duration(cfg.SessionTimeoutMin) * time.Minute)
		claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
		custom := jwt.MapClaims{"admin_id": acc.ID, "username": acc.Username, "role": acc.Role, "exp": claims.ExpiresAt.Unix()}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, custom)
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("Failed to sign token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		admin.LogAdminAction(db, acc.ID, "login", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"token": signed, "admin": gin.H{"id": acc.ID, "username": acc.Username, "role": acc.Role}})
	}
}

// AdminAuthMiddleware validates bearer JWT and sets admin identity in context
func AdminAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		adminIDf, ok := claims["admin_id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("admin_id", int64(adminIDf))
		if username, ok := claims["username"].(string); ok {
			c.Set("admin_username", username)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set("admin_role", role)
		}
		c.Next()
	}
}

// AdminMe returns the authenticated admin's identity
func AdminMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":       c.GetInt64("admin_id"),
			"username": c.GetString("admin_username"),
			"role":     c.GetString("admin_role"),
		})
	}
}

// AdminStats returns platform-wide statistics
func AdminStats(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := gin.H{}

		var giftStats struct {
			TotalGifts     int `db:"total_gifts"`
			CompletedGifts int `db:"completed_gifts"`
		}
		err := db.Get(&giftStats, `
			SELECT
				COUNT(*) as total_gifts,
				SUM(CASE WHEN completed_at IS NOT NULL THEN 1 ELSE 0 END) as completed_gifts
			FROM gifts
		`)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch gift stats: %v", err)
		} else {
			stats["total_gifts"] = giftStats.TotalGifts
			stats["completed_gifts"] = giftStats.CompletedGifts
		}

		var sessionStats struct {
			TotalSessions  int `db:"total_sessions"`
			SolvedSessions int `db:"solved_sessions"`
		}
		err = db.Get(&sessionStats, `
			SELECT
				COUNT(*) as total_sessions,
				SUM(CASE WHEN solved_at IS NOT NULL THEN 1 ELSE 0 END) as solved_sessions
			FROM puzzle_sessions
		`)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch session stats: %v", err)
		} else {
			stats["total_sessions"] = sessionStats.TotalSessions
			stats["solved_sessions"] = sessionStats.SolvedSessions
		}

		var shotCount int
		err = db.Get(&shotCount, `SELECT COUNT(*) FROM session_shots`)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch shot count: %v", err)
		} else {
			stats["total_shots"] = shotCount
		}

		stats["live_sessions"] = game.Manager.ActiveSessionCount()

		c.JSON(http.StatusOK, stats)
	}
}
