package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"abacus_backend/internal/logger"
	"abacus_backend/ws"
)

// envelope is the wire form of an Event on the redis channel. UserID is
// carried explicitly because Event excludes it from JSON.
type envelope struct {
	UserID  string          `json:"user_id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RedisPublisher fans events out through a redis channel so that every
// instance behind a load balancer can deliver to its own connected clients.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope{
		UserID:  event.UserID,
		Type:    event.Type,
		Payload: payload,
	})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// Subscriber feeds redis-published events into the local websocket hub.
// Run blocks until the context is cancelled.
type Subscriber struct {
	client  *redis.Client
	channel string
	manager *ws.Manager
}

func NewSubscriber(client *redis.Client, channel string, manager *ws.Manager) *Subscriber {
	return &Subscriber{client: client, channel: channel, manager: manager}
}

func (s *Subscriber) Run(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.CtxWarn(ctx, "dropping malformed event", "error", err)
				continue
			}
			s.manager.BroadcastToUser(env.UserID, Event{
				UserID:  env.UserID,
				Type:    env.Type,
				Payload: env.Payload,
			})
		}
	}
}
