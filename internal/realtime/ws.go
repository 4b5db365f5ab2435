package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Acknowledgements and errors sent back to the requesting client only.
const (
	eventVideoJoined = "video:joined"
	eventVideoLeft   = "video:left"
	eventError       = "error"
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Event
}

func (c *client) ID() string { return c.id }

func (c *client) Enqueue(ev Event) bool {
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// Handler upgrades HTTP requests to websocket connections registered with a Hub.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler builds the /ws endpoint. checkOrigin decides which browser
// origins may connect.
func NewHandler(hub *Hub, checkOrigin func(r *http.Request) bool) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Handler) Serve(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("failed to upgrade the websocket", "error", err)
		return
	}

	cl := &client{
		id:   uuid.NewString(),
		conn: ws,
		send: make(chan Event, sendBuffer),
	}
	h.hub.Register(cl)
	slog.Debug("websocket client connected", "conn_id", cl.id)

	go cl.writePump()
	cl.readPump(h.hub)
}

// readPump runs until the client goes away, then removes it from the hub.
func (c *client) readPump(hub *Hub) {
	defer func() {
		hub.Unregister(c.id)
		close(c.send)
		slog.Debug("websocket client disconnected", "conn_id", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame inboundFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Info("websocket read failed", "conn_id", c.id, "error", err)
			}
			return
		}
		c.handle(hub, frame)
	}
}

func (c *client) handle(hub *Hub, frame inboundFrame) {
	switch frame.Event {
	case EventVideoJoin, EventVideoLeave:
		videoID, ok := parseVideoID(frame.Data)
		if !ok {
			c.Enqueue(Event{Name: eventError, Data: map[string]string{"message": "invalid video id"}})
			return
		}
		room := VideoRoom(videoID)
		if frame.Event == EventVideoJoin {
			hub.Join(room, c.id)
			c.Enqueue(Event{Name: eventVideoJoined, Room: room})
		} else {
			hub.Leave(room, c.id)
			c.Enqueue(Event{Name: eventVideoLeft, Room: room})
		}
	default:
		c.Enqueue(Event{Name: eventError, Data: map[string]string{"message": "unknown event " + strconv.Quote(frame.Event)}})
	}
}

// writePump owns all writes to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				slog.Warn("failed to write websocket event", "conn_id", c.id, "event", ev.Name, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// parseVideoID accepts the id as a JSON string ("42") or number (42).
func parseVideoID(raw json.RawMessage) (int, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		id, err := strconv.Atoi(strings.TrimSpace(s))
		return id, err == nil && id > 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, n > 0
	}
	return 0, false
}
