package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T, hub *Hub, channel string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(hub, []string{"http://localhost:3000"}, zerolog.Nop())
	r := gin.New()
	r.GET("/feed", func(c *gin.Context) { c.Set("userID", int64(1)) }, h.Subscribe(channel))
	r.GET("/anon", h.Subscribe(channel))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	defer hub.Stop()

	srv := newFeedServer(t, hub, ChannelAdmin)
	a := dial(t, srv, "/feed")
	b := dial(t, srv, "/feed")

	require.Eventually(t, func() bool { return hub.ClientCount(ChannelAdmin) == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish("activity", map[string]string{"actionType": "Login"}, ChannelAdmin, ChannelManager)

	for _, conn := range []*websocket.Conn{a, b} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Type    string            `json:"type"`
			Channel string            `json:"channel"`
			Data    map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "activity", msg.Type)
		assert.Equal(t, ChannelAdmin, msg.Channel)
		assert.Equal(t, "Login", msg.Data["actionType"])
	}
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	defer hub.Stop()

	srv := newFeedServer(t, hub, ChannelManager)
	conn := dial(t, srv, "/feed")
	require.Eventually(t, func() bool { return hub.ClientCount(ChannelManager) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount(ChannelManager) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	srv := newFeedServer(t, hub, ChannelAdmin)
	conn := dial(t, srv, "/feed")
	require.Eventually(t, func() bool { return hub.ClientCount(ChannelAdmin) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Stop()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientCount(ChannelAdmin))

	// Publishing after stop must not block
	hub.Publish("activity", "late", ChannelAdmin)
}

func TestSubscribeRequiresUser(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := newFeedServer(t, hub, ChannelAdmin)

	resp, err := http.Get(srv.URL + "/anon")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	h := NewHandler(NewHub(zerolog.Nop()), []string{"http://localhost:3000/"}, zerolog.Nop())

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{name: "no origin", origin: "", want: true},
		{name: "frontend", origin: "http://localhost:3000", want: true},
		{name: "same host", origin: "http://api.test", want: true},
		{name: "foreign", origin: "http://evil.test", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://api.test/feed", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, h.checkOrigin(req))
		})
	}
}

func TestPublishSkipsEmptyChannels(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	hub.Publish("activity", map[string]string{"action": "Login"}, ChannelAdmin, ChannelManager)
	assert.Empty(t, hub.broadcast)

	hub.registerClient(&Client{id: "c1", channel: ChannelManager, send: make(chan []byte, 1)})
	hub.Publish("activity", map[string]string{"action": "Login"}, ChannelAdmin, ChannelManager)
	require.Len(t, hub.broadcast, 1)
	assert.Equal(t, ChannelManager, (<-hub.broadcast).Channel)
}
