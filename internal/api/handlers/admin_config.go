package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/giftpool/backend/internal/admin"
	"github.com/giftpool/backend/internal/config"
)

// AdminGetConfig returns the tunable keys with their current values
func AdminGetConfig(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := admin.GetAllRuntimeConfig(db)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch runtime config: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch config"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"keys":      config.TunableKeys,
			"overrides": cfg.Overrides(),
			"configs":   rows,
		})
	}
}

// AdminUpdateConfig updates a single runtime config value
func AdminUpdateConfig(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetInt64("admin_id")
		key := c.Param("key")

		var req struct {
			Value string `json:"value" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value is required"})
			return
		}

		if err := admin.UpdateRuntimeConfigValue(db, cfg, key, req.Value, adminID); err != nil {
			log.Printf("[ADMIN] Failed to update config %s: %v", key, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		admin.LogAdminAction(db, adminID, "update_config", key+"="+req.Value)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// AdminDeleteConfig removes a runtime override, reverting to the default
func AdminDeleteConfig(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := c.GetInt64("admin_id")
		key := c.Param("key")

		if err := admin.DeleteRuntimeConfigValue(db, cfg, key, adminID); err != nil {
			log.Printf("[ADMIN] Failed to delete config %s: %v", key, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		admin.LogAdminAction(db, adminID, "delete_config", key)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
