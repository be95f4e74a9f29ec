package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/whalewatch/internal/contracts"
	"github.com/wonny/whalewatch/pkg/logger"
)

// Event types sent to clients
const (
	EventHistory = "history"
	EventAlert   = "alert"
)

// Timing
const (
	pingInterval = 45 * time.Second
	readTimeout  = 90 * time.Second
	writeTimeout = 10 * time.Second

	clientBuffer = 64
)

// Event is one message on the alert stream
type Event struct {
	Type   string                   `json:"type"`
	Ticker string                   `json:"ticker,omitempty"`
	Signal *contracts.VolumeSignal  `json:"signal,omitempty"`
	Alerts []contracts.PatternAlert `json:"alerts,omitempty"`
	Events []Event                  `json:"events,omitempty"` // history payload
	At     time.Time                `json:"at"`
}

type client struct {
	conn   *websocket.Conn
	out    chan Event
	done   chan struct{}
	ticker string // empty: every ticker
}

func (c *client) wants(ticker string) bool {
	return c.ticker == "" || c.ticker == ticker
}

// Hub fans alert events out to websocket clients
// ⭐ SSOT: 실시간 알림 브로드캐스트는 여기서만
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	history  []Event
	limit    int
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewHub creates a hub that replays up to limit recent events to new clients
func NewHub(limit int, log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		history: make([]Event, 0, limit),
		limit:   limit,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: log,
	}
}

// Publish records an analysis result and broadcasts it.
// Slow clients drop events rather than block the publisher.
func (h *Hub) Publish(ticker string, signal *contracts.VolumeSignal, alerts []contracts.PatternAlert) {
	ev := Event{
		Type:   EventAlert,
		Ticker: ticker,
		Signal: signal,
		Alerts: alerts,
		At:     time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, ev)
	if h.limit > 0 && len(h.history) > h.limit {
		h.history = h.history[len(h.history)-h.limit:]
	}

	for c := range h.clients {
		if !c.wants(ticker) {
			continue
		}
		select {
		case c.out <- ev:
		default:
		}
	}
}

// History returns recent events, oldest first
func (h *Hub) History() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Event, len(h.history))
	copy(out, h.history)
	return out
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams events until the client leaves.
// ?ticker=NVDA limits the stream to one symbol.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ticker := ""
	if raw := r.URL.Query().Get("ticker"); raw != "" {
		t, err := contracts.NormalizeTicker(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ticker = t
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	cl := &client{
		conn:   conn,
		out:    make(chan Event, clientBuffer),
		done:   make(chan struct{}),
		ticker: ticker,
	}

	// history goes first; registering under the same lock keeps later publishes behind it
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	cl.out <- Event{Type: EventHistory, Events: h.filteredHistory(cl), At: time.Now().UTC()}
	h.mu.Unlock()

	h.logger.WithFields(map[string]interface{}{
		"remote": r.RemoteAddr,
		"ticker": ticker,
	}).Debug("Alert stream client connected")

	go h.writeLoop(cl)
	h.readLoop(cl)

	close(cl.done)
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()

	h.logger.WithField("remote", r.RemoteAddr).Debug("Alert stream client disconnected")
}

// filteredHistory must be called with mu held
func (h *Hub) filteredHistory(cl *client) []Event {
	out := make([]Event, 0, len(h.history))
	for _, ev := range h.history {
		if cl.wants(ev.Ticker) {
			out = append(out, ev)
		}
	}
	return out
}

func (h *Hub) writeLoop(cl *client) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case ev := <-cl.out:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cl.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cl.done:
			return
		}
	}
}

// readLoop discards client frames and returns when the connection drops
func (h *Hub) readLoop(cl *client) {
	_ = cl.conn.SetReadDeadline(time.Now().Add(readTimeout))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
