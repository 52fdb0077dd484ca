package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartIdleChecker sweeps the session:idle sorted set (member = session
// token, score = last activity unix time). Sessions idle past the warning
// threshold get one warning event; past the expiry threshold they are torn
// down. Both notifications go through the session_events channel so every
// server instance can relay them to its own websocket clients.
func (sm *SessionManager) StartIdleChecker() {
	if sm.rdb == nil || sm.config == nil {
		log.Println("[IDLE] Redis or config missing; idle checker not started")
		return
	}

	log.Println("[IDLE] Idle checker started")
	ctx := context.Background()
	ticker := time.NewTicker(time.Duration(sm.config.IdleWorkerPollInterval) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		sm.sweepIdleSessions(ctx)
	}
}

// sweepIdleSessions runs one pass of the idle sweep.
func (sm *SessionManager) sweepIdleSessions(ctx context.Context) {
	now := time.Now().Unix()

	warnBefore := fmt.Sprintf("%d", now-int64(sm.config.IdleWarningSeconds))
	members, err := sm.rdb.ZRangeByScore(ctx, "session:idle", &redis.ZRangeBy{Min: "-inf", Max: warnBefore}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
		return
	}

	for _, token := range members {
		score, err := sm.rdb.ZScore(ctx, "session:idle", token).Result()
		if err != nil {
			continue
		}
		idleFor := now - int64(score)

		if idleFor >= int64(sm.config.IdleExpireSeconds) {
			// Race-safe: only the instance that removes the member expires it.
			if removed, _ := sm.rdb.ZRem(ctx, "session:idle", token).Result(); removed == 0 {
				continue
			}
			log.Printf("[IDLE] Expiring session %s after %ds idle", token, idleFor)
			if err := sm.EndSession(token, "expired"); err != nil {
				log.Printf("[IDLE] Expire of %s: %v", token, err)
			}
			sm.publishSessionEvent(ctx, map[string]interface{}{
				"type":          "session_expired",
				"session_token": token,
				"message":       "Table closed after inactivity.",
			})
			continue
		}

		// Warn once per idle spell. TouchSession clears the flag on fresh
		// activity, so the next spell warns again.
		warnedKey := "session:" + token + ":idle_warned"
		ok, err := sm.rdb.SetNX(ctx, warnedKey, "1", time.Duration(sm.config.IdleExpireSeconds)*time.Second).Result()
		if err != nil || !ok {
			continue
		}
		remaining := int64(sm.config.IdleExpireSeconds) - idleFor
		sm.publishSessionEvent(ctx, map[string]interface{}{
			"type":              "idle_warning",
			"session_token":     token,
			"remaining_seconds": remaining,
			"message":           "Still there? The table closes soon without activity.",
		})
		log.Printf("[IDLE] Warned session %s (%ds until expiry)", token, remaining)
	}
}

func (sm *SessionManager) publishSessionEvent(ctx context.Context, payload map[string]interface{}) {
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[IDLE] Failed to marshal session event: %v", err)
		return
	}
	if n, err := sm.rdb.Publish(ctx, "session_events", b).Result(); err != nil {
		log.Printf("[IDLE] Publish failed: %v", err)
	} else {
		log.Printf("[IDLE] Published %v to %d subscribers", payload["type"], n)
	}
}
