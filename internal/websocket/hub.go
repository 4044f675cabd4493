package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"waterlog/internal/models"
)

// Hub maintains active WebSocket connections and fans route events out to them
type Hub struct {
	// Registered clients (client ID -> Client); one user may hold several consoles open
	clients map[string]*Client

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// Message is a payload addressed to every client holding one of Roles (all clients when empty)
type Message struct {
	Roles []models.UserRole
	Data  []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop; it returns when ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Client CONNECTED user=%d role=%s (total: %d)", client.UserID, client.UserRole, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
				log.Printf("🔴 [WEBSOCKET] Client DISCONNECTED user=%d (remaining: %d)", client.UserID, len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				if !client.accepts(message.Roles) {
					continue
				}
				select {
				case client.send <- message.Data:
				default:
					// Client buffer full, disconnect
					close(client.send)
					delete(h.clients, id)
					log.Printf("⚠️ Client buffer full, disconnecting: %s", id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoles queues data for every client with one of roles (everyone when none given)
func (h *Hub) BroadcastToRoles(data interface{}, roles ...models.UserRole) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("❌ Failed to marshal broadcast message: %v", err)
		return
	}
	select {
	case h.broadcast <- &Message{Roles: roles, Data: payload}:
	default:
		log.Println("⚠️ Broadcast queue full, dropping message")
	}
}

// PublishRouteEvent notifies dashboards that a route was opened or closed
func (h *Hub) PublishRouteEvent(event models.RouteEvent) {
	h.BroadcastToRoles(event)
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
