package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "intelliapply:changes"

// RedisBroker relays changes through Redis pub/sub so that every API instance
// delivers every write to its own subscribers.
type RedisBroker struct {
	client  *redis.Client
	hub     *Hub
	channel string
}

func NewRedisBroker(client *redis.Client, hub *Hub) *RedisBroker {
	return &RedisBroker{
		client:  client,
		hub:     hub,
		channel: DefaultChannel,
	}
}

func (b *RedisBroker) Publish(ctx context.Context, c Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Start subscribes to the channel and forwards messages to the hub until ctx
// is cancelled. It returns once the subscription is confirmed.
func (b *RedisBroker) Start(ctx context.Context) error {
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	go func() {
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var c Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					log.Printf("⚠️  Dropping malformed change: %v\n", err)
					continue
				}
				b.hub.Broadcast(c)
			}
		}
	}()

	log.Printf("✅ Change feed relay subscribed to %s\n", b.channel)
	return nil
}
