package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sproutsell/agricredit/internal/contracts"
	"github.com/sproutsell/agricredit/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	clientBuffer   = 16
	maxMessageSize = 4096
)

// Event is a realtime message pushed to connected clients.
type Event struct {
	Type   string      `json:"type"`
	UserID string      `json:"userId"`
	Data   interface{} `json:"data"`
}

// Hub fans out events to websocket clients registered per user id.
// A client that cannot keep up is dropped rather than blocking the hub.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]bool
}

type client struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the marketplace front-end.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[string]map[*client]bool),
	}
}

// ServeHTTP upgrades the connection and registers the client under the
// userId query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, clientBuffer),
	}

	h.register(c)
	h.logger.WithField("user_id", userID).Debug("WebSocket client connected")

	go c.writeLoop()
	go h.readLoop(c)
}

// AnalysisUpdated notifies a user that their credit analysis changed.
// Satisfies the pipeline's Notifier.
func (h *Hub) AnalysisUpdated(userID string, analysis *contracts.CreditAnalysis) {
	h.Publish(Event{
		Type:   "credit_analysis_updated",
		UserID: userID,
		Data:   analysis,
	})
}

// Publish delivers an event to every client of the event's user.
func (h *Hub) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal realtime event")
		return
	}

	h.mu.RLock()
	conns := make([]*client, 0, len(h.clients[event.UserID]))
	for c := range h.clients[event.UserID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		select {
		case c.send <- payload:
		default:
			// Slow client: drop it instead of blocking the publisher.
			h.unregister(c)
		}
	}
}

// ClientCount returns the number of connected clients for a user.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]bool)
	}
	h.clients[c.userID][c] = true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if clients, ok := h.clients[c.userID]; ok && clients[c] {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.clients, c.userID)
		}
		close(c.send)
	}
	h.mu.Unlock()
}

// readLoop drains inbound frames so pings and close frames are handled;
// clients do not send application messages.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.logger.WithField("user_id", c.userID).Debug("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()

	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
