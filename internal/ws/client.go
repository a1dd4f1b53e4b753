package ws

import (
	"errors"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message
	writeWait = 10 * time.Second

	// Time allowed to read next pong message
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Max message size
	maxMessageSize = 64 * 1024 // 64 KB

	sendBufferSize = 256
)

var ErrSendBufferFull = errors.New("connection send buffer full")

// Client is one open connection. It moves through OPEN (accepted, no
// memberships), SUBSCRIBED (one or more topic memberships held in the
// registry) and CLOSED; the registry tracks memberships, the pumps own the
// socket.
type Client struct {
	id       string
	registry *Registry
	conn     *websocket.Conn
	send     chan []byte
	logger   *slog.Logger
}

// Send queues a message for delivery. It never blocks; a full buffer is a
// delivery failure that the registry treats as a dead connection.
func (c *Client) Send(payload []byte) error {
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// reply serializes and queues a direct response to this client.
func (c *Client) reply(payload any) {
	message, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("[CLIENT] Failed to marshal reply", "id", c.id, "error", err)
		return
	}
	if err := c.Send(message); err != nil {
		c.logger.Warn("[CLIENT] Failed to queue reply", "id", c.id, "error", err)
	}
}

// ReadPump pumps messages from the socket into the lifecycle handler. On
// any read error or close it tears down all topic memberships.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.UnsubscribeAll(c)
		close(c.send)
		c.conn.Close()
		c.logger.Debug("[CLIENT] Connection closed", "id", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("[CLIENT] Unexpected close", "id", c.id, "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps queued messages to the socket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				c.logger.Error("[CLIENT] Failed to get writer", "id", c.id, "error", err)
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				c.logger.Error("[CLIENT] Failed to close writer", "id", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error("[CLIENT] Failed to send ping", "id", c.id, "error", err)
				return
			}
		}
	}
}
