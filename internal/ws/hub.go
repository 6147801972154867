package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEvent marshals payload into an Event.
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Payload: data}, nil
}

// memberEvent routes an event to one member's room
type memberEvent struct {
	MemberID uuid.UUID
	Event    Event
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Each member has a room; order tracking pages of that member join it.
type Hub struct {
	// Registered clients by member ID
	rooms map[uuid.UUID]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *memberEvent

	// Closed when Run returns; sends give up once it is closed
	done chan struct{}

	// Mutex for thread-safe room access
	mu sync.RWMutex

	log zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *memberEvent, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop and returns when ctx is done, closing every
// client's send channel.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for memberID, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, memberID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.memberID] == nil {
				h.rooms[client.memberID] = make(map[*Client]bool)
			}
			h.rooms[client.memberID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.memberID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.memberID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.MemberID]

			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				h.log.Error().Err(err).Str("type", event.Event.Type).Msg("marshal ws event")
				continue
			}

			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[event.MemberID], client)
					if len(h.rooms[event.MemberID]) == 0 {
						delete(h.rooms, event.MemberID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToMember sends an event to every open tracking page of a member.
// It is a no-op once the hub has stopped.
func (h *Hub) BroadcastToMember(memberID uuid.UUID, event Event) {
	select {
	case h.broadcast <- &memberEvent{MemberID: memberID, Event: event}:
	case <-h.done:
	}
}

// join registers c, reporting false when the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
