package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/giftpool/backend/internal/config"
	"github.com/giftpool/backend/internal/game"
	"github.com/giftpool/backend/internal/gift"
)

// CreateGift creates a gift with its stage chain and returns the share link.
func CreateGift(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req gift.CreateRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if len(req.Stages) > cfg.MaxStagesPerGift {
			c.JSON(http.StatusBadRequest, gin.H{"error": "too many stages", "max_stages": cfg.MaxStagesPerGift})
			return
		}

		g, err := gift.CreateGift(db, req)
		if err != nil {
			log.Printf("[GIFT] Create failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"token":     g.Token,
			"share_url": cfg.FrontendURL + "/g/" + g.Token,
		})
	}
}

// GetGiftProgress returns the recipient view of a gift: solved stages, the
// current stage payload, and the message once everything is solved.
func GetGiftProgress(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		view, err := gift.Progress(db, token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "gift not found"})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// SubmitStageAnswer checks an answer for a client-side puzzle stage.
func SubmitStageAnswer(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		stageID, ok := stageIDParam(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage id"})
			return
		}

		var req struct {
			Answer string `json:"answer" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "answer required"})
			return
		}

		solved, err := gift.CheckAnswer(db, token, stageID, req.Answer)
		if err != nil {
			if err == gift.ErrStageLocked {
				c.JSON(http.StatusConflict, gin.H{"error": "previous stages not solved yet"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !solved {
			c.JSON(http.StatusOK, gin.H{"correct": false})
			return
		}

		view, err := gift.Progress(db, token)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"correct": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"correct": true, "progress": view})
	}
}

// StartStageSession opens a billiards table for the gift's current stage
// and returns the session token the client connects its websocket with.
func StartStageSession(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		stageID, ok := stageIDParam(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage id"})
			return
		}

		_, stages, err := gift.GetGift(db, token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "gift not found"})
			return
		}

		var found bool
		for _, st := range stages {
			if st.ID != stageID {
				continue
			}
			found = true
			if st.Kind != gift.KindBilliards {
				c.JSON(http.StatusBadRequest, gin.H{"error": "stage is not a billiards puzzle"})
				return
			}
			if st.SolvedAt.Valid {
				c.JSON(http.StatusConflict, gin.H{"error": "stage already solved"})
				return
			}
			for _, prev := range stages {
				if prev.StageNo < st.StageNo && !prev.SolvedAt.Valid {
					c.JSON(http.StatusConflict, gin.H{"error": "previous stages not solved yet"})
					return
				}
			}
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "stage not found"})
			return
		}

		if game.Manager.ActiveSessionCount() >= cfg.MaxActiveSessions {
			log.Printf("[SESSION] Capacity reached (%d), refusing session for gift %s", cfg.MaxActiveSessions, token)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many active tables, try again shortly"})
			return
		}

		sess, err := game.Manager.CreateSession(token, stageID)
		if err != nil {
			log.Printf("[SESSION] Create failed for gift %s stage %d: %v", token, stageID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start table"})
			return
		}

		snapshot := sess.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"session_token": sess.Token,
			"ws_path":       "/api/v1/sessions/" + sess.Token + "/ws",
			"target_sum":    snapshot.TargetSum,
			"state":         snapshot,
		})
	}
}
