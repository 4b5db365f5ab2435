package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T, hub *Hub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := NewHandler(hub, func(*http.Request) bool { return true })
	router.GET("/ws", handler.Serve)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebsocketJoinReceivesRoomEvents(t *testing.T) {
	hub := NewHub(nil)
	url := newWSServer(t, hub)

	viewer := dial(t, url)
	other := dial(t, url)

	require.NoError(t, viewer.WriteJSON(map[string]any{"event": EventVideoJoin, "data": "7"}))
	ack := readEvent(t, viewer)
	assert.Equal(t, eventVideoJoined, ack.Name)
	assert.Equal(t, "video:7", ack.Room)

	require.NoError(t, other.WriteJSON(map[string]any{"event": EventVideoJoin, "data": 8}))
	assert.Equal(t, "video:8", readEvent(t, other).Room)

	delivered := hub.Broadcast(VideoRoom(7), EventLikeUpdated, map[string]int{"videoId": 7, "likesCount": 3})
	assert.Equal(t, 1, delivered)

	ev := readEvent(t, viewer)
	assert.Equal(t, EventLikeUpdated, ev.Name)
	data, ok := ev.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3.0, data["likesCount"])
}

func TestWebsocketLeave(t *testing.T) {
	hub := NewHub(nil)
	url := newWSServer(t, hub)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": EventVideoJoin, "data": "3"}))
	readEvent(t, conn)
	require.NoError(t, conn.WriteJSON(map[string]any{"event": EventVideoLeave, "data": "3"}))
	assert.Equal(t, eventVideoLeft, readEvent(t, conn).Name)

	assert.Equal(t, 0, hub.Members(VideoRoom(3)))
}

func TestWebsocketRejectsBadVideoID(t *testing.T) {
	hub := NewHub(nil)
	url := newWSServer(t, hub)
	conn := dial(t, url)

	for _, data := range []any{"abc", -1, "0", nil} {
		require.NoError(t, conn.WriteJSON(map[string]any{"event": EventVideoJoin, "data": data}))
		ev := readEvent(t, conn)
		assert.Equal(t, eventError, ev.Name, "data %v", data)
	}
}

func TestWebsocketDisconnectLeavesRooms(t *testing.T) {
	hub := NewHub(nil)
	url := newWSServer(t, hub)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": EventVideoJoin, "data": "5"}))
	readEvent(t, conn)
	require.Equal(t, 1, hub.Members(VideoRoom(5)))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool {
		return hub.Members(VideoRoom(5)) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`"42"`, 42, true},
		{`" 42 "`, 42, true},
		{`42`, 42, true},
		{`"0"`, 0, false},
		{`-3`, -3, false},
		{`"x"`, 0, false},
		{`{"id":1}`, 0, false},
		{`1.5`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseVideoID(json.RawMessage(tt.raw))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
