package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/alanyang/prompt-vault/internal/domain/event"
	"github.com/alanyang/prompt-vault/internal/domain/record"
	"github.com/alanyang/prompt-vault/internal/transport/httpx"
)

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	owner record.UserID
	send  chan []byte
}

// Hub fans record change events out to the WebSocket connections of the
// user who owns the record. Other users never see them.
type Hub struct {
	mu      sync.RWMutex
	clients map[record.UserID]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[record.UserID]map[*client]struct{})}
}

// Register mounts the feed on a group that is behind the auth middleware.
func (h *Hub) Register(rg *gin.RouterGroup) {
	rg.GET("", h.handleWS)
}

func (h *Hub) handleWS(c *gin.Context) {
	owner := httpx.Owner(c)
	if owner == "" {
		httpx.WriteError(c, record.ErrUnauthenticated)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{owner: owner, send: make(chan []byte, sendBuffer)}
	h.add(cl)
	go writePump(conn, cl.send)

	defer func() {
		h.remove(cl)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[cl.owner] == nil {
		h.clients[cl.owner] = make(map[*client]struct{})
	}
	h.clients[cl.owner][cl] = struct{}{}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[cl.owner]
	if _, ok := set[cl]; !ok {
		return
	}
	delete(set, cl)
	close(cl.send)
	if len(set) == 0 {
		delete(h.clients, cl.owner)
	}
}

// Broadcast delivers e to the owner's connections. A client that cannot keep
// up drops the event rather than blocking the bus.
func (h *Hub) Broadcast(e event.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("websocket broadcast marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.clients[e.UserID] {
		select {
		case cl.send <- data:
		default:
			slog.Warn("websocket client lagging, event dropped", "user_id", e.UserID, "type", e.Type)
		}
	}
}

// Connections reports the open connections of owner.
func (h *Hub) Connections(owner record.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[owner])
}

func writePump(conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil) //nolint:errcheck
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Error("websocket write failed", "error", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
