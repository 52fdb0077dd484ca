package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/giftpool/backend/internal/admin"
	"github.com/giftpool/backend/internal/game"
)

// AdminListSessions returns paginated table sessions, flagging the live ones
func AdminListSessions(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := paginationParams(c)
		status := c.DefaultQuery("status", "all")

		type sessionRow struct {
			ID           int64   `db:"id" json:"id"`
			SessionToken string  `db:"session_token" json:"session_token"`
			GiftToken    string  `db:"gift_token" json:"gift_token"`
			StageID      int64   `db:"stage_id" json:"stage_id"`
			TargetSum    int     `db:"target_sum" json:"target_sum"`
			Status       string  `db:"status" json:"status"`
			Shots        int     `db:"shots" json:"shots"`
			Resets       int     `db:"resets" json:"resets"`
			CreatedAt    string  `db:"created_at" json:"created_at"`
			LastActivity string  `db:"last_activity" json:"last_activity"`
			SolvedAt     *string `db:"solved_at" json:"solved_at"`
			TotalCount   int     `db:"total_count" json:"-"`
			Live         bool    `db:"-" json:"live"`
		}

		var rows []sessionRow
		err := db.Select(&rows, `
			SELECT id, session_token, gift_token, stage_id, target_sum, status, shots, resets,
				to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as created_at,
				to_char(last_activity, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as last_activity,
				to_char(solved_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as solved_at,
				COUNT(*) OVER() as total_count
			FROM puzzle_sessions
			WHERE ($1 = 'all' OR status = $1)
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, status, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch sessions: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
			return
		}

		live := make(map[string]bool)
		for _, t := range game.Manager.ActiveTokens() {
			live[t] = true
		}
		for i := range rows {
			rows[i].Live = live[rows[i].SessionToken]
		}

		total := 0
		if len(rows) > 0 {
			total = rows[0].TotalCount
		}

		c.JSON(http.StatusOK, gin.H{"sessions": rows, "total": total, "limit": limit, "offset": offset})
	}
}

// AdminEndSession force-closes a live table session
func AdminEndSession(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		if _, err := game.Manager.GetSession(token); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not live"})
			return
		}

		game.Manager.EndSession(token, "admin_closed")
		admin.LogAdminAction(db, c.GetInt64("admin_id"), "end_session", token)
		log.Printf("[ADMIN] Session %s closed by %s", token, c.GetString("admin_username"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
