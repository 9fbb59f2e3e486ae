package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abacus_backend/ws"
)

func TestHubPublisherSkipsOfflineUsers(t *testing.T) {
	manager := ws.NewManager()
	publisher := NewHubPublisher(manager)

	err := publisher.Publish(context.Background(), Event{
		UserID:  "nobody-home",
		Type:    "notification",
		Payload: map[string]string{"title": "hi"},
	})
	require.NoError(t, err)
}

func TestHubPublisherDeliversToConnectedUser(t *testing.T) {
	manager := ws.NewManager()
	go manager.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(manager, w, r, "user-1")
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return manager.IsUserConnected("user-1") }, time.Second, 10*time.Millisecond)

	publisher := NewHubPublisher(manager)
	require.NoError(t, publisher.Publish(context.Background(), Event{
		UserID:  "user-1",
		Type:    "notification",
		Payload: "hello",
	}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var got Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "notification", got.Type)
	assert.Equal(t, "hello", got.Payload)
}
