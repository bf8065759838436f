package websocket

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/domain/repositories"
	"github.com/satriahrh/snapspeak/internal/capture"
	"github.com/satriahrh/snapspeak/internal/metrics"
	"github.com/satriahrh/snapspeak/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum control message size allowed from peer. Binary frames may be
	// larger, up to HubConfig.MaxFrameBytes.
	maxMessageSize = 512 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// HubConfig holds what every client session is built from
type HubConfig struct {
	Describer *usecase.Describer
	TTS       repositories.TextToSpeech

	// Camera is shared by all clients when set. Otherwise each client gets
	// its own PushCamera fed with the binary frames it sends.
	Camera        repositories.Camera
	MaxFrameBytes int64

	// Metrics is optional
	Metrics *metrics.Metrics
}

// Hub maintains the set of connected capture sessions.
type Hub struct {
	// Registered clients, by session id.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed once Run returns.
	done chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	config   HubConfig
	recorder usecase.Recorder
	logger   *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(config HubConfig, logger *zap.Logger) *Hub {
	if config.MaxFrameBytes <= 0 {
		config.MaxFrameBytes = capture.DefaultMaxFrameBytes
		logger.Info("Using default max frame bytes", zap.Int64("maxFrameBytes", config.MaxFrameBytes))
	}

	var recorder usecase.Recorder
	if config.Metrics != nil {
		recorder = config.Metrics
	}

	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		config:     config,
		recorder:   recorder,
		logger:     logger,
	}
}

// Run starts the hub's main loop. When ctx is done every client is asked to
// close and Run returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			h.setActive(1)
			h.logger.Info("Client registered", zap.String("sessionID", client.sessionID))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client.sessionID]
			delete(h.clients, client.sessionID)
			h.mu.Unlock()
			if ok {
				h.setActive(-1)
			}
			h.logger.Info("Client unregistered", zap.String("sessionID", client.sessionID))

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.stop()
				delete(h.clients, id)
				h.setActive(-1)
			}
			h.mu.Unlock()
			h.logger.Info("Hub stopped")
			return
		}
	}
}

// Sessions returns the views of all connected sessions without image data
func (h *Hub) Sessions() []entities.SessionView {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	views := make([]entities.SessionView, 0, len(clients))
	for _, client := range clients {
		view := client.service.View()
		view.Image = ""
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].SessionID < views[j].SessionID })
	return views
}

func (h *Hub) setActive(delta float64) {
	if h.config.Metrics != nil {
		h.config.Metrics.ActiveSessions.Add(delta)
	}
}

// HandleWebSocket upgrades the request and starts a new capture session for it.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := newClient(hub, conn, logger)

	select {
	case hub.register <- client:
	case <-hub.done:
		client.service.Close()
		conn.Close()
		return nil
	}

	client.sendState(client.service.View())

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}
