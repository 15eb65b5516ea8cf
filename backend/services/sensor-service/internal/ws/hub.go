package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/metrics"
	"airwatch/backend/services/sensor-service/internal/models"
)

// Hub streams announced alerts to connected WebSocket clients.
type Hub struct {
	mu           sync.RWMutex
	clients      map[string]*Client
	pingInterval time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	logger       *zap.Logger
}

// NewHub builds hub.
func NewHub(pingInterval, writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Hub{
		clients:      make(map[string]*Client),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Name identifies the sink in logs and metrics.
func (h *Hub) Name() string {
	return "websocket"
}

// Send broadcasts n to every connected client without waiting for slow readers.
func (h *Hub) Send(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.enqueue(payload)
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS is the HTTP handler for GET /ws/alerts.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(uuid.NewString(), conn, h.pingInterval, h.writeTimeout, h.logger, h.remove)
	h.add(client)
	h.logger.Info("alert stream client connected", zap.String("client_id", client.id))

	go client.run()
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(n))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(n))
	h.logger.Info("alert stream client disconnected", zap.String("client_id", id))
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.close()
	}
}
