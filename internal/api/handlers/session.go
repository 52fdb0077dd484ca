package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/giftpool/backend/internal/game"
)

// GetSessionState returns the current table snapshot for a session. Live
// sessions answer from memory; ended ones fall back to the Redis copy so a
// reconnecting client can still render the final table.
func GetSessionState(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		if sess, err := game.Manager.GetSession(token); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"live":  true,
				"state": sess.Snapshot(),
			})
			return
		}

		if rdb != nil {
			blob, err := rdb.Get(context.Background(), "session:"+token+":state").Result()
			if err == nil {
				c.Data(http.StatusOK, "application/json", []byte(blob))
				return
			}
		}

		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	}
}
