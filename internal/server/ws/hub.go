// Package ws exposes an in-flight replay's equity curve over WebSocket so
// plotting clients can watch a run live instead of waiting for the CSVs.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/OtsoKarali/prosperity-replay/internal/domain"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize is the per-client outgoing message buffer. A client that
	// cannot keep up is dropped rather than allowed to stall the run.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Monitoring runs on a trusted network; no origin restriction.
		return true
	},
}

// equityMsg is the JSON frame broadcast per tick.
type equityMsg struct {
	Day        string           `json:"day"`
	Timestamp  int64            `json:"timestamp"`
	Realized   float64          `json:"realized_pnl"`
	Unrealized float64          `json:"unrealized_pnl"`
	Total      float64          `json:"total_pnl"`
	Positions  map[string]int64 `json:"positions"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub manages connected WebSocket clients and broadcasts equity snapshots
// pushed by the replay engine. It implements engine.SnapshotSink per day via
// Sink.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	logger  *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		logger:  logger.With(slog.String("component", "ws_hub")),
	}
}

// ServeHTTP upgrades the request and registers the client until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.logger.Debug("client connected", slog.String("remote", conn.RemoteAddr().String()))

	go h.writePump(c)
	go h.readPump(c)
}

// Broadcast sends one payload to every connected client, dropping clients
// whose buffers are full.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Sink returns a snapshot sink for one run that broadcasts every equity
// snapshot tagged with the run's day.
func (h *Hub) Sink(day string) *Sink {
	return &Sink{hub: h, day: day}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump discards inbound frames and watches for disconnect. Clients only
// listen; there is no inbound protocol.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

// Sink adapts the Hub to the engine's snapshot sink.
type Sink struct {
	hub *Hub
	day string
}

// OnSnapshot marshals and broadcasts one equity snapshot.
func (s *Sink) OnSnapshot(snap domain.EquitySnapshot) {
	payload, err := json.Marshal(equityMsg{
		Day:        s.day,
		Timestamp:  snap.Timestamp,
		Realized:   snap.Realized,
		Unrealized: snap.Unrealized,
		Total:      snap.Total,
		Positions:  snap.Positions,
	})
	if err != nil {
		return
	}
	s.hub.Broadcast(payload)
}

// Serve runs a minimal HTTP server exposing the hub at /ws until the context
// is cancelled.
func Serve(ctx context.Context, addr string, hub *Hub, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("monitor server listening", slog.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
