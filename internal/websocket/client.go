package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/adapters/camera"
	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/domain/repositories"
	"github.com/satriahrh/snapspeak/usecase"
)

var errClientClosed = errors.New("client closed")

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and one capture
// session.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages. Never closed; done signals
	// the end of the connection instead.
	send chan WriteData
	done chan struct{}
	once sync.Once

	sessionID string
	logger    *zap.Logger
	validator *MessageValidator

	// camera is nil when the hub shares a configured camera
	camera  *camera.PushCamera
	service *usecase.CaptureService

	// ctx is cancelled when the connection goes away
	ctx    context.Context
	cancel context.CancelFunc
}

var _ repositories.AudioSink = (*Client)(nil)

func newClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	sessionID := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan WriteData, 256),
		done:      make(chan struct{}),
		sessionID: sessionID,
		logger:    logger.With(zap.String("sessionID", sessionID)),
		validator: NewMessageValidator(),
		ctx:       ctx,
		cancel:    cancel,
	}

	cam := hub.config.Camera
	if cam == nil {
		c.camera = camera.NewPushCamera(c.logger, hub.config.MaxFrameBytes)
		cam = c.camera
	}

	narrator := usecase.NewNarrator(hub.config.TTS, c, hub.recorder, c.logger)
	c.service = usecase.NewCaptureService(sessionID, cam, hub.config.Describer, narrator, c.sendState, hub.recorder, c.logger)
	return c
}

// readPump pumps messages from the websocket connection to the session.
func (c *Client) readPump() {
	defer func() {
		c.stop()
		c.cancel()
		if err := c.service.Close(); err != nil {
			c.logger.Debug("Failed to close session", zap.Error(err))
		}
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(max(int64(maxMessageSize), c.hub.config.MaxFrameBytes))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processFrame(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the session to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) stop() {
	c.once.Do(func() { close(c.done) })
}

// processMessage dispatches a control message from the page
func (c *Client) processMessage(message []byte) {
	msg, err := c.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Invalid message", zap.Error(err))
		c.sendJSON(CreateErrorMessage("invalid_message", err.Error()))
		return
	}

	switch m := msg.(type) {
	case *ControlMessage:
		switch m.Type {
		case MessageTypeStartCamera:
			c.reportError(c.service.StartCamera(c.ctx))
		case MessageTypeAnalyze:
			go c.runAnalysis(c.service.Analyze)
		}

	case *CaptureMessage:
		if m.AnalyzeNow() {
			go c.runAnalysis(c.service.CaptureAndAnalyze)
		} else {
			c.reportError(c.service.Capture(c.ctx))
		}

	case *CameraErrorMessage:
		c.handleCameraError(m.Reason)

	case *SetAudioMessage:
		c.service.SetAudioEnabled(*m.Enabled)

	case *PingMessage:
		c.sendJSON(CreatePongMessage(m.Data))
	}
}

// processFrame hands a binary camera frame to the push camera
func (c *Client) processFrame(data []byte) {
	if c.camera == nil {
		c.logger.Debug("Ignoring pushed frame, camera is shared", zap.Int("size", len(data)))
		return
	}

	if err := c.camera.PushFrame(data); err != nil {
		if errors.Is(err, domain.ErrCameraInactive) {
			c.logger.Debug("Dropping frame, camera not started", zap.Int("size", len(data)))
			return
		}
		c.logger.Warn("Rejected camera frame", zap.Int("size", len(data)), zap.Error(err))
		c.sendJSON(CreateErrorMessage("invalid_frame", err.Error()))
	}
}

func (c *Client) handleCameraError(reason string) {
	if c.camera == nil {
		c.logger.Warn("Ignoring camera error, camera is shared", zap.String("reason", reason))
		return
	}
	c.camera.ReportFailure(reason)
	c.reportError(c.service.StartCamera(c.ctx))
}

// runAnalysis runs a capture cycle off the read goroutine so the page can
// restart the camera while a request is out.
func (c *Client) runAnalysis(fn func(context.Context) error) {
	c.reportError(fn(c.ctx))
}

// reportError alerts the page about camera and capture errors. Analysis
// failures already show in the session state and stale cycles are silent.
func (c *Client) reportError(err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, domain.ErrCycleAbandoned):
		c.logger.Debug("Capture cycle abandoned")
		return
	case errors.Is(err, domain.ErrAnalysisFailed):
		return
	}
	c.sendJSON(CreateErrorMessage(domain.ErrorCode(err), err.Error()))
}

func (c *Client) sendState(view entities.SessionView) {
	c.sendJSON(CreateSessionStateMessage(view))
}

func (c *Client) sendJSON(msg interface{}) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return err
	}
	return c.enqueue(WriteData{Type: websocket.TextMessage, Payload: payload})
}

func (c *Client) enqueue(data WriteData) error {
	select {
	case <-c.done:
		return errClientClosed
	case c.send <- data:
		return nil
	}
}

// BeginUtterance implements repositories.AudioSink
func (c *Client) BeginUtterance(utteranceID, text string) error {
	return c.sendJSON(CreateSpeakingStartMessage(utteranceID, text))
}

// WriteAudio implements repositories.AudioSink
func (c *Client) WriteAudio(utteranceID string, chunk []byte) error {
	return c.enqueue(WriteData{Type: websocket.BinaryMessage, Payload: chunk})
}

// EndUtterance implements repositories.AudioSink
func (c *Client) EndUtterance(utteranceID string, completed bool) error {
	return c.sendJSON(CreateSpeakingEndMessage(utteranceID, completed))
}
