package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types pushed to live dashboards
const (
	EventTypeIncomeRecorded  = "income_recorded"
	EventTypeRequestResolved = "change_request_resolved"
	EventTypePayoutProcessed = "payout_processed"
)

// Event represents a message sent over WebSocket
type Event struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
}

// Hub maintains the set of active clients and pushes dashboard events
type Hub struct {
	clients    map[primitive.ObjectID][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			conns := h.clients[client.UserID]
			for i, c := range conns {
				if c == client {
					h.clients[client.UserID] = append(conns[:i], conns[i+1:]...)
					break
				}
			}
			if len(h.clients[client.UserID]) == 0 {
				delete(h.clients, client.UserID)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends an event to every connection a user has open
func (h *Hub) SendToUser(userID primitive.ObjectID, event Event) error {
	h.mu.RLock()
	conns := h.clients[userID]
	h.mu.RUnlock()

	if len(conns) == 0 {
		return fmt.Errorf("user not connected")
	}

	for _, client := range conns {
		client.Conn.WriteJSON(event)
	}
	return nil
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.clients {
		for _, client := range conns {
			client.Conn.WriteJSON(event)
		}
	}
}

// NotifyIncomeRecorded pushes a ledger update to an earner's dashboard
func (h *Hub) NotifyIncomeRecorded(userID primitive.ObjectID, data interface{}) {
	// Best effort: disconnected users see the update on next load
	_ = h.SendToUser(userID, Event{
		Type:    EventTypeIncomeRecorded,
		Message: "New income has been recorded",
		Data:    data,
	})
}

// NotifyRequestResolved pushes a change request resolution to the requester
func (h *Hub) NotifyRequestResolved(userID primitive.ObjectID, data interface{}) {
	_ = h.SendToUser(userID, Event{
		Type:    EventTypeRequestResolved,
		Message: "Your change request has been resolved",
		Data:    data,
	})
}

// NotifyPayoutProcessed announces a payroll run to all connected dashboards
func (h *Hub) NotifyPayoutProcessed(data interface{}) {
	h.Broadcast(Event{
		Type:    EventTypePayoutProcessed,
		Message: "A salary payout has been processed",
		Data:    data,
	})
}
