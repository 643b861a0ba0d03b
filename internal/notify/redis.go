package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes intake events on redis pub/sub channels named
// "<prefix>.<event type>". Subscribers fan the events out to dashboards.
type RedisNotifier struct {
	client        *redis.Client
	channelPrefix string
}

func NewRedisNotifier(client *redis.Client, channelPrefix string) *RedisNotifier {
	return &RedisNotifier{
		client:        client,
		channelPrefix: channelPrefix,
	}
}

func (n *RedisNotifier) Publish(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	channel := fmt.Sprintf("%s.%s", n.channelPrefix, event.Type)
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}

	return nil
}
