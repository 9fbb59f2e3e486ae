package events

import (
	"context"

	"abacus_backend/ws"
)

// Event is one live-push payload addressed to a single user. Type matches
// the frontend event names ("notification", "new-comment", "new-attachment").
type Event struct {
	UserID  string `json:"-"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Publisher delivers events to connected clients. Implementations are
// best-effort: a publish failure never invalidates the durable write that
// preceded it.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// HubPublisher pushes events straight into the in-process websocket hub.
// This is the single-instance deployment path.
type HubPublisher struct {
	manager *ws.Manager
}

func NewHubPublisher(manager *ws.Manager) *HubPublisher {
	return &HubPublisher{manager: manager}
}

func (p *HubPublisher) Publish(_ context.Context, event Event) error {
	if !p.manager.IsUserConnected(event.UserID) {
		return nil
	}
	p.manager.BroadcastToUser(event.UserID, event)
	return nil
}
