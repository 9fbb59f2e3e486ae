package ws

import (
	"log"
	"sync"
)

// Manager tracks live websocket connections keyed by user ID. A user may
// hold several connections (multiple tabs); events are delivered to all of
// them.
type Manager struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			if m.clients[client.UserID] == nil {
				m.clients[client.UserID] = make(map[*Client]bool)
			}
			m.clients[client.UserID][client] = true
			m.mu.Unlock()
			log.Printf("ws client registered: user=%s total=%d", client.UserID, m.connectionCount())

		case client := <-m.unregister:
			m.mu.Lock()
			if conns, ok := m.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					close(client.Send)
					delete(conns, client)
					if len(conns) == 0 {
						delete(m.clients, client.UserID)
					}
					log.Printf("ws client unregistered: user=%s total=%d", client.UserID, m.connectionCount())
				}
			}
			m.mu.Unlock()
		}
	}
}

// BroadcastToUser delivers a message to every live connection of one user.
// Unknown users are a no-op. A connection with a full send buffer is dropped.
func (m *Manager) BroadcastToUser(userID string, message any) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for client := range m.clients[userID] {
		select {
		case client.Send <- message:
		default:
			go func(c *Client) {
				m.unregister <- c
			}(client)
			log.Printf("ws client dropped, send buffer full: user=%s", userID)
		}
	}
}

func (m *Manager) IsUserConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[userID]) > 0
}

func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connectionCount()
}

func (m *Manager) connectionCount() int {
	total := 0
	for _, conns := range m.clients {
		total += len(conns)
	}
	return total
}
