package ws

import (
	"github.com/goccy/go-json"

	"github.com/jscottym/rsvp/internal/models"
)

// handleMessage dispatches one inbound message. Bad input of any shape gets
// an error reply and leaves the connection open; parse failures are never
// fatal to the connection.
func (c *Client) handleMessage(raw []byte) {
	var msg models.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Warn("[CLIENT] Unparseable message", "id", c.id, "error", err)
		c.replyError("Invalid message format")
		return
	}

	switch msg.Type {
	case models.TypeSubscribe:
		if msg.EventSlug == "" {
			c.replyError("eventSlug is required")
			return
		}
		topic := EventTopic(msg.EventSlug)
		c.registry.Subscribe(topic, c)

		// Token verification is intentionally skipped: viewing live updates
		// is open, mutations are authorized at the API that triggers the
		// broadcast. The flag only reflects token presence.
		c.reply(models.SubscribedPayload{
			Type:          models.TypeSubscribed,
			Channel:       topic,
			Authenticated: msg.Token != "",
		})
		c.logger.Debug("[CLIENT] Subscribed", "id", c.id, "topic", topic)

	case models.TypeSubscribeDashboard:
		if msg.EventSlugs == nil {
			c.replyError("eventSlugs array is required")
			return
		}
		for _, slug := range msg.EventSlugs {
			c.registry.Subscribe(EventTopic(slug), c)
		}
		c.reply(models.DashboardSubscribedPayload{
			Type:       models.TypeDashboardSubscribed,
			EventSlugs: msg.EventSlugs,
		})
		c.logger.Debug("[CLIENT] Dashboard subscribed", "id", c.id, "count", len(msg.EventSlugs))

	case models.TypeSubscribeUser:
		if msg.UserID == "" {
			c.replyError("userId is required")
			return
		}
		c.registry.Subscribe(UserTopic(msg.UserID), c)
		c.reply(models.UserSubscribedPayload{
			Type:   models.TypeUserSubscribed,
			UserID: msg.UserID,
		})
		c.logger.Debug("[CLIENT] User subscribed", "id", c.id, "userId", msg.UserID)

	case models.TypePing:
		c.reply(models.PongPayload{Type: models.TypePong})

	default:
		c.logger.Warn("[CLIENT] Unknown message type", "id", c.id, "type", msg.Type)
		c.replyError("Unknown message type")
	}
}

func (c *Client) replyError(message string) {
	c.reply(models.ErrorPayload{Type: models.TypeError, Message: message})
}
