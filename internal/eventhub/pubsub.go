package eventhub

import (
	"civicdesk/backend/internal/models"
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// StartPubSubListener feeds events published by any instance into the local
// broadcast channel. It closes pubsub when ctx is cancelled.
func (m *ManagerService) StartPubSubListener(ctx context.Context, pubsub *redis.PubSub) {
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.ComplaintEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("WARNING: Error unmarshalling Redis event: %v", err)
					continue
				}
				select {
				case m.BroadcastCh <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}
