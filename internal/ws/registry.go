package ws

import (
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
)

// Topic keys. Event topics carry rsvp_update/event_update broadcasts, user
// topics carry user-scoped messages like invite_accepted.

func EventTopic(slug string) string {
	return "event:" + slug
}

func UserTopic(userID string) string {
	return "user:" + userID
}

// Conn is the write side of one live connection as the registry sees it.
// The transport owns the connection lifecycle; the registry only reacts.
type Conn interface {
	Send(payload []byte) error
}

// Registry maps topic keys to the set of live connections subscribed to
// them. Topics are created lazily on first subscription and removed as soon
// as their connection set becomes empty. Process-local only; multi-instance
// deployments relay through the relay package instead of sharing this map.
type Registry struct {
	mu     sync.Mutex
	topics map[string]map[Conn]bool
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		topics: make(map[string]map[Conn]bool),
		logger: logger,
	}
}

// Subscribe adds a connection to a topic. Idempotent.
func (r *Registry) Subscribe(topic string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.topics[topic] == nil {
		r.logger.Debug("[HUB] Creating topic", "topic", topic)
		r.topics[topic] = make(map[Conn]bool)
	}
	r.topics[topic][c] = true
}

// Unsubscribe removes a connection from a topic, deleting the topic when
// its set becomes empty.
func (r *Registry) Unsubscribe(topic string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(topic, c)
}

// UnsubscribeAll removes a connection from every topic it belongs to.
// Called on disconnect.
func (r *Registry) UnsubscribeAll(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for topic := range r.topics {
		r.removeLocked(topic, c)
	}
}

func (r *Registry) removeLocked(topic string, c Conn) {
	conns, ok := r.topics[topic]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		r.logger.Debug("[HUB] Topic empty, removing", "topic", topic)
		delete(r.topics, topic)
	}
}

// Publish serializes the payload once and delivers it to every connection
// on the topic, best effort. A connection whose send fails is logged and
// eagerly removed from the topic; the remaining connections still receive
// the message. Publishing to a topic with no subscribers is a no-op.
func (r *Registry) Publish(topic string, payload any) {
	message, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("[HUB] Failed to marshal payload", "topic", topic, "error", err)
		return
	}
	r.PublishRaw(topic, message)
}

// PublishRaw delivers an already-serialized message, used by the relay
// which receives payloads as bytes.
func (r *Registry) PublishRaw(topic string, message []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.topics[topic]
	if !ok {
		return
	}

	sent := 0
	failed := 0
	for c := range conns {
		if err := c.Send(message); err != nil {
			r.logger.Warn("[HUB] Send failed, removing connection from topic", "topic", topic, "error", err)
			r.removeLocked(topic, c)
			failed++
			continue
		}
		sent++
	}

	r.logger.Debug("[HUB] Broadcast complete", "topic", topic, "sent", sent, "failed", failed)
}

// HasTopic reports whether a topic currently has any subscribers.
func (r *Registry) HasTopic(topic string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.topics[topic]
	return ok
}

// Subscribers returns the number of connections on a topic.
func (r *Registry) Subscribers(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics[topic])
}
