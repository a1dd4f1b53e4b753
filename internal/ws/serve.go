package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Validate origin in production
		return true
	},
}

// ServeWS upgrades an HTTP request to a websocket connection and starts the
// read/write pumps. Subscribing requires no authentication.
func ServeWS(registry *Registry, logger *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("[WS] Failed to upgrade connection", "from", r.RemoteAddr, "error", err)
		return
	}

	client := &Client{
		id:       uuid.NewString(),
		registry: registry,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		logger:   logger,
	}

	logger.Debug("[WS] Connection opened", "id", client.id, "from", r.RemoteAddr)

	go client.WritePump()
	go client.ReadPump()
}
