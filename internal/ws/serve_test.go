package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jscottym/rsvp/internal/models"
)

func TestServeWS_SubscribeAndReceiveBroadcast(t *testing.T) {
	registry := NewRegistry(testLogger())
	logger := testLogger()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(registry, logger, w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "eventSlug": "pickup-game"}))

	var ack map[string]any
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "subscribed", ack["type"])
	assert.Equal(t, "event:pickup-game", ack["channel"])

	registry.Publish("event:pickup-game", models.EventUpdatePayload{
		Type:      models.TypeEventUpdate,
		EventSlug: "pickup-game",
		Event:     models.EventInfo{Location: "North Field"},
	})

	var update map[string]any
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "event_update", update["type"])
	assert.Equal(t, "pickup-game", update["eventSlug"])

	conn.Close()
	require.Eventually(t, func() bool {
		return !registry.HasTopic("event:pickup-game")
	}, 2*time.Second, 10*time.Millisecond, "close must clean up topic memberships")
}
