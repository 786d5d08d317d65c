package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/shreya-shukla01/NSUTHackathon/internal/domain"
	"github.com/shreya-shukla01/NSUTHackathon/internal/logging"
)

var ErrBacklog = errors.New("alert stream backlog full")

// Subscriber delivers alert events published by any instance.
type Subscriber interface {
	SubscribeAlertEvents(ctx context.Context, handle func(domain.AlertEvent)) error
}

// Hub fans alert events out to connected dashboard websockets.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub allows websocket origins listed in origins; "*" allows any.
func NewHub(origins []string, logger *slog.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logging.OrDefault(logger),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin(origins),
	}
	return h
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// Run owns the client set until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Debug("alert stream client registered", "remote", c.conn.RemoteAddr().String())

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("alert stream client too slow, dropping", "remote", c.conn.RemoteAddr().String())
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// PublishAlertEvent queues ev for every connected client. It never blocks.
func (h *Hub) PublishAlertEvent(_ context.Context, ev domain.AlertEvent) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}
	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrBacklog
	}
}

// Relay forwards events from sub into the hub until ctx is cancelled.
func (h *Hub) Relay(ctx context.Context, sub Subscriber) error {
	return sub.SubscribeAlertEvents(ctx, func(ev domain.AlertEvent) {
		if err := h.PublishAlertEvent(ctx, ev); err != nil {
			h.logger.Warn("alert stream relay dropped event", "alert_id", ev.AlertID, "error", err)
		}
	})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("alert stream upgrade failed", "error", err)
		return
	}

	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
