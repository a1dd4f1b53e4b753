// Package relay bridges broadcast payloads across processes through Redis
// pub/sub. Mutating API handlers publish here; the realtime server
// subscribes and feeds its local registry. Swapping the backend means
// reimplementing this package only; the registry and lifecycle handler
// contracts are untouched.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"

	"github.com/jscottym/rsvp/internal/models"
	"github.com/jscottym/rsvp/internal/ws"
)

// channelPrefix namespaces relay traffic away from other Redis users.
const channelPrefix = "broadcast:"

type Publisher struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewPublisher(redisURL string, logger *slog.Logger) (*Publisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("[RELAY] Connected to Redis")

	return &Publisher{rdb: rdb, logger: logger}, nil
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}

// PublishRsvpUpdate fans an RSVP change out to the event's topic.
func (p *Publisher) PublishRsvpUpdate(ctx context.Context, payload models.RsvpUpdatePayload) error {
	payload.Type = models.TypeRsvpUpdate
	return p.publish(ctx, ws.EventTopic(payload.EventSlug), payload)
}

// PublishEventUpdate fans an event-detail change out to the event's topic.
func (p *Publisher) PublishEventUpdate(ctx context.Context, payload models.EventUpdatePayload) error {
	payload.Type = models.TypeEventUpdate
	return p.publish(ctx, ws.EventTopic(payload.EventSlug), payload)
}

// PublishInviteAccepted notifies the invite owner on their user topic.
func (p *Publisher) PublishInviteAccepted(ctx context.Context, userID string, payload models.InviteAcceptedPayload) error {
	payload.Type = models.TypeInviteAccepted
	return p.publish(ctx, ws.UserTopic(userID), payload)
}

func (p *Publisher) publish(ctx context.Context, topic string, payload any) error {
	message, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("[RELAY] Failed to marshal payload", "topic", topic, "error", err)
		return err
	}

	if err := p.rdb.Publish(ctx, channelPrefix+topic, message).Err(); err != nil {
		p.logger.Error("[RELAY] Failed to publish", "topic", topic, "error", err)
		return err
	}
	return nil
}

// Subscribe pattern-subscribes to all relay channels and forwards every
// message into the registry. Blocks until the context is cancelled or the
// subscription drops.
func Subscribe(ctx context.Context, p *Publisher, registry *ws.Registry) {
	pubsub := p.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		p.logger.Error("[RELAY] Failed to receive subscription confirmation", "error", err)
		return
	}

	p.logger.Info("[RELAY] Subscribed to broadcast channels", "pattern", channelPrefix+"*")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				p.logger.Info("[RELAY] Pub/sub channel closed")
				return
			}
			topic := strings.TrimPrefix(msg.Channel, channelPrefix)
			registry.PublishRaw(topic, []byte(msg.Payload))
		}
	}
}
