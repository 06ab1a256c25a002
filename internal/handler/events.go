package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mpetrov/crm-backend/internal/model"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// EventsHandler streams client change events to subscribed UI clients
// over WebSocket so the browser can refresh without polling.
type EventsHandler struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	mu       sync.RWMutex
	clients  map[*websocket.Conn]*subscriber
}

// subscriber is one connected WebSocket client.
type subscriber struct {
	send   chan model.ClientEvent
	cancel context.CancelFunc
}

// NewEventsHandler creates a new EventsHandler instance.
func NewEventsHandler(logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // API is CORS-open; the socket follows suit
			},
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]*subscriber),
	}
}

// RegisterRoutes registers the WebSocket routes with the router.
func (h *EventsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/events", h.HandleEvents).Methods(http.MethodGet)
}

// Publish fans a change event out to every connected subscriber. A
// subscriber whose buffer is full misses the event rather than blocking
// the mutation that produced it.
func (h *EventsHandler) Publish(event model.ClientEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, sub := range h.clients {
		select {
		case sub.send <- event:
		default:
			h.logger.Debug("event dropped for slow subscriber",
				zap.String("remote_addr", conn.RemoteAddr().String()),
				zap.String("event", event.Event),
			)
		}
	}
}

// HandleEvents handles WebSocket connection requests.
//
//nolint:contextcheck // intentional: WebSocket connections outlive the HTTP request context
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	// Use background context instead of request context because the HTTP
	// request context gets canceled when the handler returns, but the
	// subscription needs to persist beyond the initial upgrade.
	ctx, cancel := context.WithCancel(context.Background())

	sub := &subscriber{
		send:   make(chan model.ClientEvent, sendBufferSize),
		cancel: cancel,
	}

	h.mu.Lock()
	h.clients[conn] = sub
	h.mu.Unlock()

	h.logger.Info("events subscriber connected", zap.String("remote_addr", conn.RemoteAddr().String()))

	go h.writePump(ctx, conn, sub)
	go h.readPump(ctx, conn, cancel)
}

// readPump consumes incoming messages until the connection drops. The
// subscription is one-way; inbound payloads are discarded.
func (h *EventsHandler) readPump(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	defer func() {
		cancel()
		h.removeClient(conn)
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		h.logger.Error("failed to set read deadline", zap.Error(err))
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Warn("websocket read error", zap.Error(err))
				}
				return
			}
		}
	}
}

// writePump forwards change events and keepalive pings to the connection.
func (h *EventsHandler) writePump(ctx context.Context, conn *websocket.Conn, sub *subscriber) {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(conn)
			return
		case event := <-sub.send:
			if err := h.sendEvent(conn, event); err != nil {
				h.logger.Debug("failed to send event", zap.Error(err))
				return
			}
		case <-pingTicker.C:
			if err := h.sendPing(conn); err != nil {
				h.logger.Debug("failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

// sendEvent sends one change event to the connection.
func (h *EventsHandler) sendEvent(conn *websocket.Conn, event model.ClientEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}

// sendPing sends a ping message to the connection.
func (h *EventsHandler) sendPing(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.PingMessage, nil)
}

// sendCloseMessage sends a close message to the connection.
func (h *EventsHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		h.logger.Debug("failed to set write deadline for close", zap.Error(err))
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", zap.Error(err))
	}
}

// removeClient removes a subscriber from the clients map.
func (h *EventsHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, exists := h.clients[conn]; exists {
		sub.cancel()
		delete(h.clients, conn)
		h.logger.Info("events subscriber disconnected", zap.String("remote_addr", conn.RemoteAddr().String()))
	}
}

// CloseAllConnections closes all active WebSocket connections.
func (h *EventsHandler) CloseAllConnections() {
	h.mu.Lock()
	subs := make(map[*websocket.Conn]*subscriber, len(h.clients))
	for conn, sub := range h.clients {
		subs[conn] = sub
	}
	h.mu.Unlock()

	// Cancel all contexts first - this triggers writePump to send close messages
	for _, sub := range subs {
		sub.cancel()
	}

	// Give writePump goroutines time to send close messages
	time.Sleep(100 * time.Millisecond)

	h.mu.Lock()
	for conn := range h.clients {
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", zap.Error(err))
		}
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	h.logger.Info("all websocket connections closed")
}
