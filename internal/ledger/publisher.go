// Landgrid | 2026
// publisher.go

package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans committed events out on a pub/sub channel so
// external consumers can follow the journal without polling.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %d: %w", ev.Seq, err)
	}

	if err := p.client.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish event %d: %w", ev.Seq, err)
	}

	return nil
}

// NopPublisher discards events. Used when pub/sub is disabled and in
// tests that only care about the journal rows.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
