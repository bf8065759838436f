package entities

import (
	"errors"
	"time"

	"github.com/satriahrh/snapspeak/domain"
)

// CaptureStatus represents where a session is within its capture cycle
type CaptureStatus string

const (
	StatusIdle         CaptureStatus = "idle"
	StatusCameraActive CaptureStatus = "camera_active"
	StatusCaptured     CaptureStatus = "captured"
	StatusAnalyzing    CaptureStatus = "analyzing"
	StatusDescribed    CaptureStatus = "described"
	StatusFailed       CaptureStatus = "failed"
)

// Texts shown in place of a description.
const (
	NoDescriptionText  = "Object could not be identified clearly."
	AnalysisFailedText = "Unable to analyze the image."
)

// CaptureSession holds the UI-facing state of one page load.
type CaptureSession struct {
	ID            string        `json:"id"`
	Status        CaptureStatus `json:"status"`
	CapturedImage *EncodedImage `json:"captured_image,omitempty"`
	Description   *string       `json:"description,omitempty"`
	Confidence    *float64      `json:"confidence,omitempty"`
	AudioEnabled  bool          `json:"audio_enabled"`
	// Cycle increments on every camera start and analysis start. Results are
	// applied only when they carry the current value.
	Cycle     uint64    `json:"cycle"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCaptureSession creates an idle session with audio enabled
func NewCaptureSession(id string) *CaptureSession {
	now := time.Now()
	return &CaptureSession{
		ID:           id,
		Status:       StatusIdle,
		AudioEnabled: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ActivateCamera resets the session after a successful camera start. Any
// analysis still in flight becomes stale.
func (s *CaptureSession) ActivateCamera() {
	s.clearResult()
	s.CapturedImage = nil
	s.Cycle++
	s.Status = StatusCameraActive
	s.touch()
}

// Deactivate returns the session to Idle once its camera has been released.
// Any analysis still in flight becomes stale.
func (s *CaptureSession) Deactivate() {
	s.clearResult()
	s.CapturedImage = nil
	s.Cycle++
	s.Status = StatusIdle
	s.touch()
}

// RecordCapture stores a freshly captured frame and starts a new cycle.
func (s *CaptureSession) RecordCapture(image EncodedImage) error {
	switch s.Status {
	case StatusIdle:
		return domain.ErrCameraInactive
	case StatusAnalyzing:
		return domain.ErrAnalysisInFlight
	}
	if len(image.Bytes) == 0 {
		return domain.ErrNoFrameAvailable
	}

	s.clearResult()
	s.CapturedImage = &image
	s.Status = StatusCaptured
	s.touch()
	return nil
}

// BeginAnalysis moves a captured session to Analyzing and returns the token
// the result must present to be applied.
func (s *CaptureSession) BeginAnalysis() (uint64, error) {
	if s.Status == StatusAnalyzing {
		return 0, domain.ErrAnalysisInFlight
	}
	if s.Status != StatusCaptured || s.CapturedImage == nil {
		return 0, domain.ErrNoCapture
	}

	s.Cycle++
	s.Status = StatusAnalyzing
	s.touch()
	return s.Cycle, nil
}

// IsCurrent reports whether token belongs to the analysis in flight.
func (s *CaptureSession) IsCurrent(token uint64) bool {
	return s.Status == StatusAnalyzing && s.Cycle == token
}

// CompleteAnalysis records a description and its confidence. It returns false
// and changes nothing when the token is stale.
func (s *CaptureSession) CompleteAnalysis(token uint64, description string, confidence float64) bool {
	if !s.IsCurrent(token) {
		return false
	}
	s.Description = &description
	s.Confidence = &confidence
	s.Status = StatusDescribed
	s.touch()
	return true
}

// CompleteWithoutDescription ends the cycle as Described when the provider
// returned no usable text.
func (s *CaptureSession) CompleteWithoutDescription(token uint64) bool {
	if !s.IsCurrent(token) {
		return false
	}
	s.clearResult()
	s.Status = StatusDescribed
	s.touch()
	return true
}

// FailAnalysis ends the cycle as Failed.
func (s *CaptureSession) FailAnalysis(token uint64) bool {
	if !s.IsCurrent(token) {
		return false
	}
	s.clearResult()
	s.Status = StatusFailed
	s.touch()
	return true
}

// SetAudioEnabled toggles narration
func (s *CaptureSession) SetAudioEnabled(enabled bool) {
	s.AudioEnabled = enabled
	s.touch()
}

// DisplayText is the text the presentation layer shows for the current state.
func (s *CaptureSession) DisplayText() string {
	switch s.Status {
	case StatusDescribed:
		if s.Description != nil {
			return *s.Description
		}
		return NoDescriptionText
	case StatusFailed:
		return AnalysisFailedText
	default:
		return ""
	}
}

// Validate checks the session invariants
func (s *CaptureSession) Validate() error {
	if s.ID == "" {
		return errors.New("session id is required")
	}

	switch s.Status {
	case StatusIdle, StatusCameraActive, StatusCaptured, StatusAnalyzing, StatusDescribed, StatusFailed:
	default:
		return errors.New("invalid session status")
	}

	if (s.Description == nil) != (s.Confidence == nil) {
		return errors.New("description and confidence must be set together")
	}

	if s.Description != nil && s.Status != StatusDescribed {
		return errors.New("description is only valid in described status")
	}

	if s.Status == StatusAnalyzing && s.CapturedImage == nil {
		return errors.New("analyzing requires a captured image")
	}

	return nil
}

// View projects the session for the presentation layer.
func (s *CaptureSession) View(includeImage bool) SessionView {
	view := SessionView{
		SessionID:    s.ID,
		Status:       s.Status,
		HasImage:     s.CapturedImage != nil,
		Description:  s.DisplayText(),
		Loading:      s.Status == StatusAnalyzing,
		AudioEnabled: s.AudioEnabled,
		Cycle:        s.Cycle,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Confidence != nil {
		view.Confidence = *s.Confidence
	}
	if includeImage && s.CapturedImage != nil {
		view.Image = s.CapturedImage.DataURL()
	}
	return view
}

func (s *CaptureSession) clearResult() {
	s.Description = nil
	s.Confidence = nil
}

func (s *CaptureSession) touch() {
	s.UpdatedAt = time.Now()
}

// SessionView is the read-only state sent to clients
type SessionView struct {
	SessionID    string        `json:"session_id"`
	Status       CaptureStatus `json:"status"`
	HasImage     bool          `json:"has_image"`
	Image        string        `json:"image,omitempty"`
	Description  string        `json:"description,omitempty"`
	Confidence   float64       `json:"confidence,omitempty"`
	Loading      bool          `json:"loading"`
	AudioEnabled bool          `json:"audio_enabled"`
	Cycle        uint64        `json:"cycle"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
