// Package stream feeds per-tick reef diffs to external renderers over websockets.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/reef/game"
)

// Message types sent to clients.
const (
	TypeSnapshot = "snapshot"
	TypeTick     = "tick"
)

// Message is the JSON envelope of every frame sent to a client.
type Message struct {
	Type   string            `json:"type"`
	Tick   int               `json:"tick"`
	Voxels []game.SceneVoxel `json:"voxels,omitempty"` // snapshot only
	Diff   *game.Tick        `json:"diff,omitempty"`   // tick only
}

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub mirrors the reef from published ticks and fans them out to clients.
// It never reads the simulator, so it is safe to serve from other goroutines
// while the driver steps.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	scene   *game.Scene
	started bool
	clients map[*client]struct{}
}

// NewHub creates a hub with an empty scene. logger may be nil.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // renderers run from arbitrary local origins
			},
		},
		logger:  logger,
		scene:   game.NewScene(),
		clients: make(map[*client]struct{}),
	}
}

// Publish folds a completed tick into the mirror and sends it to every
// client. Clients whose buffers are full are dropped.
func (h *Hub) Publish(t game.Tick) error {
	data, err := json.Marshal(Message{Type: TypeTick, Tick: t.Tick, Diff: &t})
	if err != nil {
		return fmt.Errorf("encoding tick %d: %w", t.Tick, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.scene.Apply(t)
	h.started = true
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow client", "remote", c.conn.RemoteAddr().String())
			h.dropLocked(c)
		}
	}
	return nil
}

// ServeHTTP upgrades the request, sends a snapshot of the mirror, and
// streams every subsequent tick.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	// Snapshot and registration happen under one lock so no tick is missed.
	h.mu.Lock()
	snap := Message{Type: TypeSnapshot, Tick: -1, Voxels: h.scene.Voxels()}
	if h.started {
		snap.Tick = h.scene.Tick
	}
	data, err := json.Marshal(snap)
	if err != nil {
		h.mu.Unlock()
		h.logger.Error("encoding snapshot", "error", err)
		conn.Close()
		return
	}
	c.send <- data
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("client connected", "remote", conn.RemoteAddr().String(), "voxels", len(snap.Voxels))
	go h.writeLoop(c)

	// Clients are receive-only; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
	h.logger.Info("client disconnected", "remote", conn.RemoteAddr().String())
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn("websocket write", "error", err)
			h.mu.Lock()
			h.dropLocked(c)
			h.mu.Unlock()
			// Drain until the channel is closed
			for range c.send {
			}
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// dropLocked unregisters c and closes its send channel. h.mu must be held.
func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Voxels returns the mirrored scene.
func (h *Hub) Voxels() []game.SceneVoxel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scene.Voxels()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// NewServer returns an HTTP server exposing the hub at /ws.
func NewServer(addr string, h *Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
