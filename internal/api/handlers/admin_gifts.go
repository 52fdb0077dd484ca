package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/giftpool/backend/internal/models"
)

// AdminListGifts returns paginated gifts with stage progress counts
func AdminListGifts(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := paginationParams(c)

		type giftRow struct {
			ID            int64   `db:"id" json:"id"`
			Token         string  `db:"token" json:"token"`
			SenderName    string  `db:"sender_name" json:"sender_name"`
			RecipientName string  `db:"recipient_name" json:"recipient_name"`
			StageCount    int     `db:"stage_count" json:"stage_count"`
			SolvedCount   int     `db:"solved_count" json:"solved_count"`
			CreatedAt     string  `db:"created_at" json:"created_at"`
			CompletedAt   *string `db:"completed_at" json:"completed_at"`
			TotalCount    int     `db:"total_count" json:"-"`
		}

		var rows []giftRow
		err := db.Select(&rows, `
			SELECT g.id, g.token, g.sender_name, g.recipient_name,
				COUNT(s.id) as stage_count,
				SUM(CASE WHEN s.solved_at IS NOT NULL THEN 1 ELSE 0 END) as solved_count,
				to_char(g.created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as created_at,
				to_char(g.completed_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') as completed_at,
				COUNT(*) OVER() as total_count
			FROM gifts g
			LEFT JOIN gift_stages s ON s.gift_token = g.token
			GROUP BY g.id
			ORDER BY g.created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch gifts: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch gifts"})
			return
		}

		total := 0
		if len(rows) > 0 {
			total = rows[0].TotalCount
		}

		c.JSON(http.StatusOK, gin.H{"gifts": rows, "total": total, "limit": limit, "offset": offset})
	}
}

// AdminGetGift returns one gift with its stages and table sessions
func AdminGetGift(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		var g models.Gift
		err := db.Get(&g, `
			SELECT id, token, sender_name, recipient_name, message, created_at, completed_at
			FROM gifts WHERE token = $1
		`, token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "gift not found"})
			return
		}

		var stages []models.GiftStage
		err = db.Select(&stages, `
			SELECT id, gift_token, stage_no, kind, title, payload, solution_hash, solved_at, created_at
			FROM gift_stages WHERE gift_token = $1 ORDER BY stage_no
		`, token)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch stages for gift %s: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stages"})
			return
		}

		var sessions []models.PuzzleSession
		err = db.Select(&sessions, `
			SELECT id, session_token, gift_token, stage_id, target_sum, status, shots, resets,
				created_at, last_activity, solved_at, ended_at
			FROM puzzle_sessions WHERE gift_token = $1 ORDER BY created_at DESC
		`, token)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch sessions for gift %s: %v", token, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
			return
		}

		// Admin view includes the hidden message on purpose.
		c.JSON(http.StatusOK, gin.H{
			"gift":     g,
			"message":  g.Message,
			"stages":   stages,
			"sessions": sessions,
		})
	}
}
