package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/giftpool/backend/internal/config"
	"github.com/giftpool/backend/internal/gift"
)

// SessionManager owns every live table session: creation, lookup, teardown,
// persistence and the idle sweep. Sessions run their own loops; the manager
// only touches them through their exported surface.
type SessionManager struct {
	sessions     map[string]*Session // keyed by session token
	stageToToken map[int64]string    // gift stage id -> session token
	db           *sqlx.DB
	rdb          *redis.Client
	config       *config.Config
	baseRules    Rules
	mu           sync.RWMutex
}

// Manager is the global session manager instance.
var Manager *SessionManager

// InitializeManager builds the global manager and starts its background
// sweeps.
func InitializeManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewSessionManager(db, rdb, cfg)
	go Manager.StartIdleChecker()
}

// NewSessionManager creates a session manager. Table rules come from the
// YAML file named by GAME_CONFIG_FILE when set, otherwise the built-in
// defaults.
func NewSessionManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	base := DefaultRules()
	if cfg != nil && cfg.GameConfigFile != "" {
		loaded, err := LoadRules(cfg.GameConfigFile)
		if err != nil {
			log.Printf("[SESSION] Failed to load rules from %s: %v (using defaults)", cfg.GameConfigFile, err)
		} else {
			base = loaded
		}
	}
	return &SessionManager{
		sessions:     make(map[string]*Session),
		stageToToken: make(map[int64]string),
		db:           db,
		rdb:          rdb,
		config:       cfg,
		baseRules:    base,
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// rules returns the effective table rules: the manager's base rules overlaid
// with any runtime tuning stored by the admin API.
func (sm *SessionManager) rules() Rules {
	rules := sm.baseRules
	if sm.config != nil {
		sm.config.ApplyTableOverrides(&rules.FrictionBase, &rules.MaxShotSpeed, &rules.MinPocketCount, &rules.SolveDelayMillis)
	}
	if err := rules.Validate(); err != nil {
		log.Printf("[SESSION] Invalid tuned rules (%v), falling back to base rules", err)
		return sm.baseRules
	}
	return rules
}

// CreateSession starts a table for a gift stage. One live session per stage:
// opening the same stage twice returns the existing table so two tabs share
// one authoritative simulation.
func (sm *SessionManager) CreateSession(giftToken string, stageID int64) (*Session, error) {
	sm.mu.Lock()
	if token, exists := sm.stageToToken[stageID]; exists {
		if sess, ok := sm.sessions[token]; ok {
			sm.mu.Unlock()
			return sess, nil
		}
	}
	if sm.config != nil && sm.config.MaxActiveSessions > 0 && len(sm.sessions) >= sm.config.MaxActiveSessions {
		sm.mu.Unlock()
		return nil, errors.New("too many active sessions, try again shortly")
	}
	sm.mu.Unlock()

	sess := NewSession(generateToken(16), giftToken, stageID, sm.rules(), time.Now().UnixNano())
	sess.OnShot = sm.handleShot
	sess.OnReset = sm.handleReset
	sess.OnSolved = sm.handleSolved

	if sm.db != nil {
		var dbID int64
		err := sm.db.QueryRowx(`INSERT INTO puzzle_sessions (session_token, gift_token, stage_id, target_sum, status, created_at, last_activity) VALUES ($1, $2, $3, $4, 'active', NOW(), NOW()) RETURNING id`,
			sess.Token, giftToken, stageID, sess.Snapshot().TargetSum).Scan(&dbID)
		if err != nil {
			log.Printf("[DB] Failed to create puzzle_session: %v", err)
		} else {
			sess.DBID = dbID
		}
	}

	sm.mu.Lock()
	sm.sessions[sess.Token] = sess
	sm.stageToToken[stageID] = sess.Token
	sm.mu.Unlock()

	sess.Start()
	sm.saveSessionToRedis(sess)
	sm.TouchSession(sess.Token)
	log.Printf("[SESSION] Created session %s for gift %s stage %d", sess.Token, giftToken, stageID)
	return sess, nil
}

// GetSession retrieves a live session by token.
func (sm *SessionManager) GetSession(token string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sess, exists := sm.sessions[token]
	if !exists {
		return nil, errors.New("session not found")
	}
	return sess, nil
}

// EndSession tears a session down: the loop stops, any pending solved
// signal dies with it, and the database row records why.
func (sm *SessionManager) EndSession(token, reason string) error {
	sm.mu.Lock()
	sess, exists := sm.sessions[token]
	if !exists {
		sm.mu.Unlock()
		return errors.New("session not found")
	}
	delete(sm.sessions, token)
	delete(sm.stageToToken, sess.StageID)
	sm.mu.Unlock()

	sess.Close()

	if sm.db != nil && sess.DBID > 0 {
		if _, err := sm.db.Exec(`UPDATE puzzle_sessions SET status=$1, ended_at=NOW() WHERE id=$2 AND status='active'`, reason, sess.DBID); err != nil {
			log.Printf("[DB] Failed to close puzzle_session %d: %v", sess.DBID, err)
		}
	}
	if sm.rdb != nil {
		// Drop the session from the idle schedule; the cached snapshot is
		// left to age out so late reloads still see the final frame.
		ctx := context.Background()
		sm.rdb.ZRem(ctx, "session:idle", token)
	}
	log.Printf("[SESSION] Ended session %s (%s)", token, reason)
	return nil
}

// TouchSession marks player activity for the idle sweep.
func (sm *SessionManager) TouchSession(token string) {
	if sm.rdb == nil {
		return
	}
	ctx := context.Background()
	if err := sm.rdb.ZAdd(ctx, "session:idle", redis.Z{Score: float64(time.Now().Unix()), Member: token}).Err(); err != nil {
		log.Printf("[SESSION] Failed to touch session %s: %v", token, err)
	}
	sm.rdb.Del(ctx, "session:"+token+":idle_warned")
	if sm.db != nil {
		if sess, err := sm.GetSession(token); err == nil && sess.DBID > 0 {
			if _, err := sm.db.Exec(`UPDATE puzzle_sessions SET last_activity=NOW() WHERE id=$1`, sess.DBID); err != nil {
				log.Printf("[DB] Failed to update last_activity for session %d: %v", sess.DBID, err)
			}
		}
	}
}

// ActiveSessionCount returns the number of live sessions.
func (sm *SessionManager) ActiveSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ActiveTokens returns the tokens of all live sessions, for the admin view.
func (sm *SessionManager) ActiveTokens() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	tokens := make([]string, 0, len(sm.sessions))
	for token := range sm.sessions {
		tokens = append(tokens, token)
	}
	return tokens
}

// handleShot persists a released shot and refreshes the Redis snapshot.
func (sm *SessionManager) handleShot(sess *Session, shot Shot, state TableState) {
	if sm.db != nil && sess.DBID > 0 {
		_, err := sm.db.Exec(`INSERT INTO session_shots (session_id, shot_number, power, dir_x, dir_y, pocketed_sum, pocketed_count, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`,
			sess.DBID, sess.ShotCount(), shot.Power, shot.Velocity.Normalize().X, shot.Velocity.Normalize().Y, state.PocketedSum, state.PocketedCount)
		if err != nil {
			log.Printf("[DB] Failed to record shot for session %d: %v", sess.DBID, err)
		}
	}
	sm.saveSessionToRedis(sess)
	sm.TouchSession(sess.Token)
}

// handleReset counts overshoot resets against the session row.
func (sm *SessionManager) handleReset(sess *Session, state TableState) {
	if sm.db != nil && sess.DBID > 0 {
		if _, err := sm.db.Exec(`UPDATE puzzle_sessions SET resets = resets + 1, target_sum=$1 WHERE id=$2`, state.TargetSum, sess.DBID); err != nil {
			log.Printf("[DB] Failed to record reset for session %d: %v", sess.DBID, err)
		}
	}
	sm.saveSessionToRedis(sess)
}

// handleSolved runs once per session, after the solve delay: mark the
// session row solved, advance the gift stage, publish the event and retire
// the session. The gift advance is the one write that must not be lost, so
// its failure is loud.
func (sm *SessionManager) handleSolved(sess *Session, state TableState) {
	log.Printf("[SESSION] Session %s solved: target=%d shots=%d", sess.Token, state.TargetSum, sess.ShotCount())

	if sm.db != nil {
		if sess.DBID > 0 {
			if _, err := sm.db.Exec(`UPDATE puzzle_sessions SET status='solved', solved_at=NOW(), shots=$1 WHERE id=$2`, sess.ShotCount(), sess.DBID); err != nil {
				log.Printf("[DB] Failed to mark puzzle_session %d solved: %v", sess.DBID, err)
			}
		}
		if err := gift.MarkStageSolved(sm.db, sess.GiftToken, sess.StageID); err != nil {
			log.Printf("[GIFT] Failed to advance gift %s after stage %d solve: %v", sess.GiftToken, sess.StageID, err)
		}
	}

	if sm.rdb != nil {
		payload, err := json.Marshal(map[string]interface{}{
			"type":          "stage_solved",
			"session_token": sess.Token,
			"gift_token":    sess.GiftToken,
			"stage_id":      sess.StageID,
			"target_sum":    state.TargetSum,
			"shots":         sess.ShotCount(),
		})
		if err != nil {
			log.Printf("[SESSION] Failed to marshal stage_solved event: %v", err)
		} else if err := sm.rdb.Publish(context.Background(), "session_events", payload).Err(); err != nil {
			log.Printf("[SESSION] Failed to publish stage_solved: %v", err)
		}
	}

	// The table stays up briefly so late frames still render, then retires.
	// The snapshot is refreshed first so reloads land on the solved frame.
	sm.saveSessionToRedis(sess)
	go func() {
		time.Sleep(5 * time.Second)
		sm.EndSession(sess.Token, "solved")
	}()
}

// saveSessionToRedis snapshots the session for observability and reconnect
// after a restart. Best-effort with a 1 hour TTL.
func (sm *SessionManager) saveSessionToRedis(sess *Session) {
	if sm.rdb == nil {
		return
	}
	data, err := json.Marshal(map[string]interface{}{
		"token":      sess.Token,
		"gift_token": sess.GiftToken,
		"stage_id":   sess.StageID,
		"db_id":      sess.DBID,
		"created_at": sess.CreatedAt,
		"state":      sess.Snapshot(),
	})
	if err != nil {
		log.Printf("[SESSION] Failed to marshal session %s: %v", sess.Token, err)
		return
	}
	ctx := context.Background()
	if err := sm.rdb.SetEx(ctx, "session:"+sess.Token+":state", data, time.Hour).Err(); err != nil {
		log.Printf("[SESSION] Failed to save session %s to Redis: %v", sess.Token, err)
	}
}
