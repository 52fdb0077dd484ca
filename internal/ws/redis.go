package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/giftpool/backend/internal/config"
)

var rdbClient *redis.Client
var wsConfig *config.Config

func SetRedisClient(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartSessionEventSubscriber subscribes to the session_events channel and
// relays events to the session rooms of this instance. Events come from the
// idle sweep and the solve path, which may run on a different instance than
// the one holding the websocket.
func StartSessionEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; session event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, "session_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] session_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}

			typeStr, _ := payload["type"].(string)
			sessionToken, _ := payload["session_token"].(string)
			if sessionToken == "" {
				log.Printf("[WS] event %s missing session_token", typeStr)
				continue
			}

			switch typeStr {
			case "idle_warning", "session_expired", "stage_solved":
				if size := SessionHub.RoomSize(sessionToken); size == 0 {
					log.Printf("[WS] no room for session %s; %s not relayed", sessionToken, typeStr)
					continue
				}
				data, err := json.Marshal(payload)
				if err != nil {
					log.Printf("[WS] failed to re-marshal %s event: %v", typeStr, err)
					continue
				}
				SessionHub.BroadcastToSession(sessionToken, data)
				log.Printf("[WS] relayed %s to session %s", typeStr, sessionToken)

			default:
				log.Printf("[WS] unknown event type: %s", typeStr)
			}
		}
	}()
}
