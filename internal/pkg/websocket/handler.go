package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Handler upgrades HTTP requests into activity feed subscriptions
type Handler struct {
	hub            *Hub
	upgrader       websocket.Upgrader
	allowedOrigins map[string]bool
	logger         zerolog.Logger
}

// NewHandler creates a new WebSocket handler. Browser connections are accepted
// only from allowedOrigins; requests without an Origin header are allowed.
func NewHandler(hub *Hub, allowedOrigins []string, logger zerolog.Logger) *Handler {
	h := &Handler{
		hub:            hub,
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
		logger:         logger,
	}
	for _, o := range allowedOrigins {
		h.allowedOrigins[strings.TrimRight(strings.ToLower(o), "/")] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return h.allowedOrigins[strings.ToLower(u.Scheme+"://"+u.Host)]
}

// Subscribe returns a handler that attaches the caller to the given feed channel.
// The auth middleware must have set "userID" on the context.
func (h *Handler) Subscribe(channel string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get("userID")
		uid, isInt := userID.(int64)
		if !ok || !isInt {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			h.logger.Error().Err(err).Int64("userID", uid).Str("channel", channel).Msg("Failed to upgrade connection to WebSocket")
			return
		}

		client := &Client{
			hub:     h.hub,
			conn:    conn,
			send:    make(chan []byte, sendBufferSize),
			id:      uuid.NewString(),
			userID:  uid,
			channel: channel,
			logger:  h.logger,
		}

		select {
		case h.hub.register <- client:
		case <-h.hub.done:
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()

		h.logger.Info().
			Str("channel", channel).
			Int64("userID", uid).
			Str("remoteAddr", conn.RemoteAddr().String()).
			Msg("WebSocket connection established")
	}
}
