package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/skilltrack/internal/app/models"
)

// Hub maintains the set of trainers watching class rosters and fans roster events out to them
type Hub struct {
	// Registered clients organized by class ID
	clients map[int64]map[*Client]bool

	// Outbound roster messages
	broadcast chan *Message

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	allowedOrigins map[string]bool

	logger zerolog.Logger
}

// NewHub creates a new Hub. With no allowed origins every websocket origin is accepted.
func NewHub(logger zerolog.Logger, allowedOrigins ...string) *Hub {
	h := &Hub{
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
	if len(allowedOrigins) > 0 {
		h.allowedOrigins = make(map[string]bool, len(allowedOrigins))
		for _, o := range allowedOrigins {
			h.allowedOrigins[o] = true
		}
	}
	return h
}

// Run handles registrations and broadcasts until ctx is cancelled, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// PublishRoster queues a roster event for the trainers watching its class. It never blocks:
// when the queue is full the event is dropped and logged.
func (h *Hub) PublishRoster(e models.RosterEvent) {
	select {
	case h.broadcast <- newRosterMessage(e):
	default:
		h.logger.Warn().
			Int64("classID", e.ClassID).
			Str("type", string(e.Type)).
			Msg("Roster queue full, event dropped")
	}
}

// ClientCount returns the number of connected clients for a class
func (h *Hub) ClientCount(classID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients[classID])
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	classID := client.classID
	if _, ok := h.clients[classID]; !ok {
		h.clients[classID] = make(map[*Client]bool)
	}
	h.clients[classID][client] = true

	h.logger.Info().
		Int64("classID", classID).
		Int64("userID", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	classID := client.classID
	clients, ok := h.clients[classID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, classID)
	}

	h.logger.Info().
		Int64("classID", classID).
		Int64("userID", client.userID).
		Msg("Client unregistered")
}

// broadcastMessage sends a message to every client watching its class. Clients whose buffer is
// full are disconnected.
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	classID := message.ClassID
	clients, ok := h.clients[classID]
	if !ok {
		h.logger.Debug().Int64("classID", classID).Msg("No clients for roster broadcast")
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Int64("classID", classID).Msg("Failed to marshal roster message")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Int64("classID", classID).
		Str("type", message.Type).
		Int("clientCount", len(clients)).
		Msg("Roster message broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) originAllowed(origin string) bool {
	if h.allowedOrigins == nil || origin == "" {
		return true
	}
	return h.allowedOrigins[origin]
}
