package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerTracksConnections(t *testing.T) {
	m := NewManager()
	go m.Run()

	client := &Client{UserID: "user-1", Send: make(chan any, sendBuffer), Manager: m}
	m.register <- client

	require.Eventually(t, func() bool { return m.IsUserConnected("user-1") }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, m.ConnectionCount())
	assert.False(t, m.IsUserConnected("user-2"))

	m.unregister <- client
	require.Eventually(t, func() bool { return m.ConnectionCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.False(t, m.IsUserConnected("user-1"))
}

func TestBroadcastReachesEveryConnectionOfUser(t *testing.T) {
	m := NewManager()
	go m.Run()

	first := &Client{UserID: "user-1", Send: make(chan any, sendBuffer), Manager: m}
	second := &Client{UserID: "user-1", Send: make(chan any, sendBuffer), Manager: m}
	m.register <- first
	m.register <- second
	require.Eventually(t, func() bool { return m.ConnectionCount() == 2 }, time.Second, 10*time.Millisecond)

	m.BroadcastToUser("user-1", "hello")

	for _, client := range []*Client{first, second} {
		select {
		case msg := <-client.Send:
			assert.Equal(t, "hello", msg)
		case <-time.After(time.Second):
			t.Fatal("no message delivered")
		}
	}
}
