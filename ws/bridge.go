package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"portal_backend/internal/logger"
)

const DefaultBridgeChannel = "portal:relay"

type bridgeMessage struct {
	Origin  string          `json:"origin"`
	OrgID   string          `json:"org_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Bridge carries broadcasts between relay instances.
type Bridge interface {
	Publish(ctx context.Context, msg bridgeMessage) error
	// Subscribe blocks until ctx is cancelled.
	Subscribe(ctx context.Context, fn func(bridgeMessage)) error
}

type RedisBridge struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisBridge(client redis.UniversalClient, channel string) *RedisBridge {
	if channel == "" {
		channel = DefaultBridgeChannel
	}
	return &RedisBridge{client: client, channel: channel}
}

func (b *RedisBridge) Publish(ctx context.Context, msg bridgeMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal relay message: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish relay message: %w", err)
	}
	return nil
}

func (b *RedisBridge) Subscribe(ctx context.Context, fn func(bridgeMessage)) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	logger.Info("Subscribed to relay channel", "channel", b.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg bridgeMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				logger.Warn("Dropping malformed relay message", "error", err)
				continue
			}
			fn(msg)
		}
	}
}

// MemoryBridge connects managers living in one process.
type MemoryBridge struct {
	mu   sync.RWMutex
	subs map[int]chan bridgeMessage
	next int
}

func NewMemoryBridge() *MemoryBridge {
	return &MemoryBridge{subs: make(map[int]chan bridgeMessage)}
}

func (b *MemoryBridge) Publish(ctx context.Context, msg bridgeMessage) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (b *MemoryBridge) Subscribe(ctx context.Context, fn func(bridgeMessage)) error {
	ch := make(chan bridgeMessage, 64)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-ch:
			fn(msg)
		}
	}
}
