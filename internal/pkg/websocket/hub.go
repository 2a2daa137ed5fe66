package websocket

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Feed channels
const (
	ChannelAdmin   = "admin"
	ChannelManager = "manager"
)

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients organized by channel name
	clients map[string]map[*Client]bool

	// Outbound messages to fan out
	broadcast chan *Message

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	done     chan struct{}
	stopOnce sync.Once

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	logger zerolog.Logger
}

// Message represents a message pushed over WebSocket
type Message struct {
	// Type of message, e.g. "activity"
	Type string `json:"type"`

	// Channel the message was delivered on
	Channel string `json:"channel"`

	Data interface{} `json:"data"`

	Timestamp time.Time `json:"timestamp"`
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub, handling client registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop disconnects every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish queues a message for every client on each of the given channels.
// Channels nobody listens on are skipped. It never blocks the caller; messages
// are dropped when the hub is saturated or stopped.
func (h *Hub) Publish(msgType string, data interface{}, channels ...string) {
	now := time.Now()
	for _, ch := range channels {
		if h.ClientCount(ch) == 0 {
			continue
		}
		msg := &Message{Type: msgType, Channel: ch, Data: data, Timestamp: now}
		select {
		case h.broadcast <- msg:
		case <-h.done:
			return
		default:
			h.logger.Warn().Str("channel", ch).Str("type", msgType).Msg("Hub broadcast queue full, dropping message")
		}
	}
}

// ClientCount returns the number of connected clients on a channel
func (h *Hub) ClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[channel])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.channel]; !ok {
		h.clients[client.channel] = make(map[*Client]bool)
	}
	h.clients[client.channel][client] = true

	h.logger.Info().
		Str("channel", client.channel).
		Int64("userID", client.userID).
		Str("clientID", client.id).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops a client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.channel]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.channel)
	}

	h.logger.Info().
		Str("channel", client.channel).
		Int64("userID", client.userID).
		Str("clientID", client.id).
		Msg("Client unregistered")
}

// broadcastMessage sends a message to all clients of its channel. Clients whose
// send buffer is full are dropped.
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[message.Channel]
	if !ok {
		h.logger.Debug().Str("channel", message.Channel).Msg("No clients on channel for broadcast")
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("channel", message.Channel).Msg("Failed to marshal message for broadcast")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn().Str("clientID", client.id).Msg("Client send buffer full, disconnecting")
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("channel", message.Channel).
		Int("clientCount", len(clients)).
		Msg("Message broadcasted to channel")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
	h.logger.Info().Msg("WebSocket hub stopped")
}
