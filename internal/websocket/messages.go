package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/satriahrh/snapspeak/adapters/camera"
	"github.com/satriahrh/snapspeak/domain/entities"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Inbound message types
const (
	MessageTypeStartCamera MessageType = "start_camera"
	MessageTypeCameraError MessageType = "camera_error"
	MessageTypeCapture     MessageType = "capture"
	MessageTypeAnalyze     MessageType = "analyze"
	MessageTypeSetAudio    MessageType = "set_audio"
	MessageTypePing        MessageType = "ping"
)

// Outbound message types
const (
	MessageTypeSessionState  MessageType = "session_state"
	MessageTypeError         MessageType = "error"
	MessageTypeSpeakingStart MessageType = "speaking_start"
	MessageTypeSpeakingEnd   MessageType = "speaking_end"
	MessageTypePong          MessageType = "pong"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp"`
	MessageID string      `json:"message_id,omitempty"`
}

// ControlMessage carries a payload-free command: start_camera or analyze
type ControlMessage struct {
	BaseMessage
}

// CaptureMessage takes a still frame. Unless Analyze is false the frame is
// analyzed right away.
type CaptureMessage struct {
	BaseMessage
	Analyze *bool `json:"analyze,omitempty"`
}

// AnalyzeNow reports whether the capture should be followed by analysis
func (m *CaptureMessage) AnalyzeNow() bool {
	return m.Analyze == nil || *m.Analyze
}

// CameraErrorMessage reports that the client could not open its camera
type CameraErrorMessage struct {
	BaseMessage
	Reason string `json:"reason"`
}

// SetAudioMessage toggles narration
type SetAudioMessage struct {
	BaseMessage
	Enabled *bool `json:"enabled"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// SessionStateMessage carries the session view after every transition
type SessionStateMessage struct {
	BaseMessage
	entities.SessionView
}

// ErrorMessage is shown to the user as an alert
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// SpeakingStartMessage precedes the binary audio of one utterance
type SpeakingStartMessage struct {
	BaseMessage
	UtteranceID string `json:"utterance_id"`
	Text        string `json:"text"`
}

// SpeakingEndMessage closes one utterance. Completed is false when it was cut off.
type SpeakingEndMessage struct {
	BaseMessage
	UtteranceID string `json:"utterance_id"`
	Completed   bool   `json:"completed"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct{}

// NewMessageValidator creates a new message validator
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{}
}

// ValidateMessage parses an inbound text message into its typed form
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	if base.Timestamp == "" {
		base.Timestamp = now()
	}

	switch base.Type {
	case MessageTypeStartCamera, MessageTypeAnalyze:
		return &ControlMessage{BaseMessage: base}, nil

	case MessageTypeCapture:
		var msg CaptureMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid capture message: %w", err)
		}
		msg.BaseMessage = base
		return &msg, nil

	case MessageTypeCameraError:
		var msg CameraErrorMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid camera error message: %w", err)
		}
		msg.BaseMessage = base
		if err := v.validateCameraError(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypeSetAudio:
		var msg SetAudioMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid set audio message: %w", err)
		}
		msg.BaseMessage = base
		if msg.Enabled == nil {
			return nil, fmt.Errorf("enabled is required")
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		msg.BaseMessage = base
		return &msg, nil

	case "":
		return nil, fmt.Errorf("message type is required")

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func (v *MessageValidator) validateCameraError(msg *CameraErrorMessage) error {
	switch msg.Reason {
	case camera.ReasonPermissionDenied, camera.ReasonDeviceUnavailable:
		return nil
	case "":
		return fmt.Errorf("reason is required")
	default:
		return fmt.Errorf("reason must be one of: %s, %s", camera.ReasonPermissionDenied, camera.ReasonDeviceUnavailable)
	}
}

// CreateSessionStateMessage wraps a session view for the client
func CreateSessionStateMessage(view entities.SessionView) *SessionStateMessage {
	return &SessionStateMessage{
		BaseMessage: newBase(MessageTypeSessionState),
		SessionView: view,
	}
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: newBase(MessageTypeError),
		Code:        code,
		Message:     message,
	}
}

// CreateSpeakingStartMessage announces a new utterance
func CreateSpeakingStartMessage(utteranceID, text string) *SpeakingStartMessage {
	return &SpeakingStartMessage{
		BaseMessage: newBase(MessageTypeSpeakingStart),
		UtteranceID: utteranceID,
		Text:        text,
	}
}

// CreateSpeakingEndMessage closes an utterance
func CreateSpeakingEndMessage(utteranceID string, completed bool) *SpeakingEndMessage {
	return &SpeakingEndMessage{
		BaseMessage: newBase(MessageTypeSpeakingEnd),
		UtteranceID: utteranceID,
		Completed:   completed,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: newBase(MessageTypePong),
		Data:        data,
	}
}

func newBase(t MessageType) BaseMessage {
	return BaseMessage{Type: t, Timestamp: now()}
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
