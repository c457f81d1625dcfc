package storage

import (
	"civicdesk/backend/internal/config"
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "lock:complaint:"

var errLockHeld = errors.New("complaint is locked by another request")

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serializes mutations on the same complaint across instances.
type RedisLocker struct {
	Redis *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{Redis: rdb}
}

// Acquire takes the lock with SET NX PX. The returned release func is safe to
// call after the TTL expired.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	ok, err := l.Redis.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, apperrors.NewConflictError(key, errLockHeld)
	}

	return func() {
		err := releaseScript.Run(context.Background(), l.Redis, []string{redisKey}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("WARNING: Failed to release lock %s: %v", redisKey, err)
		}
	}, nil
}

// RedisPublisher fans complaint events out over Redis Pub/Sub so every API
// instance can push them to its websocket clients.
type RedisPublisher struct {
	Redis   *redis.Client
	Channel string
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{Redis: rdb, Channel: config.EventsChannel}
}

// Notify publishes the event as JSON.
func (p *RedisPublisher) Notify(ctx context.Context, ev models.ComplaintEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Redis.Publish(ctx, p.Channel, payload).Err()
}

// Subscribe opens a subscription on the events channel.
func (p *RedisPublisher) Subscribe(ctx context.Context) *redis.PubSub {
	return p.Redis.Subscribe(ctx, p.Channel)
}
