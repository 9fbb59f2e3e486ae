package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisPublisherEnvelope(t *testing.T) {
	client := newTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "events")
	defer sub.Close()
	// Wait for the subscription before publishing.
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client, "events")
	require.NoError(t, pub.Publish(ctx, Event{
		UserID:  "user-1",
		Type:    "notification",
		Payload: map[string]string{"title": "New Task"},
	}))

	select {
	case msg := <-sub.Channel():
		var env struct {
			UserID  string          `json:"user_id"`
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
		assert.Equal(t, "user-1", env.UserID)
		assert.Equal(t, "notification", env.Type)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, "New Task", payload["title"])
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestRedisPublisherUserIDNotInPayload(t *testing.T) {
	client := newTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client, "events")
	require.NoError(t, pub.Publish(ctx, Event{UserID: "user-1", Type: "ping", Payload: nil}))

	select {
	case msg := <-sub.Channel():
		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &raw))
		assert.Contains(t, raw, "user_id")
		assert.JSONEq(t, "null", string(raw["payload"]))
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}
