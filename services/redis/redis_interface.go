package redis

import (
	"context"
	"fmt"
	"log"

	redis_utils "Cineverse/services/redis/utils"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// PublishChange fans a serialized change event out to every subscriber of a
// (table, meeting) feed channel. Pub/sub is fire-and-forget: a subscriber
// that is not listening simply misses the event.
func (rc *RedisClient) PublishChange(table string, meetingID string, payload []byte) error {
	channel := redis_utils.FormatFeedChannel(table, meetingID)
	if err := rc.client.Publish(rc.ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("error publishing change event to %s: %v", channel, err)
	}
	return nil
}

// SubscribeChanges opens a pub/sub subscription for one (table, meeting)
// feed channel. The caller owns the returned PubSub and must Close it.
func (rc *RedisClient) SubscribeChanges(table string, meetingID string) *redis.PubSub {
	channel := redis_utils.FormatFeedChannel(table, meetingID)
	return rc.client.Subscribe(rc.ctx, channel)
}
