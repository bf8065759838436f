package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/domain/repositories"
	"github.com/satriahrh/snapspeak/internal/capture"
)

// StateObserver is notified with the session view after every transition
type StateObserver func(view entities.SessionView)

// CaptureService drives one session through the capture, analyze and
// narrate cycle.
type CaptureService struct {
	session   *entities.CaptureSession
	camera    repositories.Camera
	describer *Describer
	narrator  *Narrator
	observer  StateObserver
	metrics   Recorder
	logger    *zap.Logger

	mu     sync.Mutex
	source repositories.FrameSource
	starts uint64
	closed bool
}

// NewCaptureService creates a service for a fresh idle session
func NewCaptureService(
	sessionID string,
	camera repositories.Camera,
	describer *Describer,
	narrator *Narrator,
	observer StateObserver,
	metrics Recorder,
	logger *zap.Logger,
) *CaptureService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if observer == nil {
		observer = func(entities.SessionView) {}
	}
	return &CaptureService{
		session:   entities.NewCaptureSession(sessionID),
		camera:    camera,
		describer: describer,
		narrator:  narrator,
		observer:  observer,
		metrics:   metrics,
		logger:    logger.With(zap.String("sessionID", sessionID)),
	}
}

// StartCamera (re)acquires the camera and resets the session. Narration is
// stopped and any analysis still in flight becomes stale. The previous source
// is released first, so a failed restart leaves the session Idle.
func (s *CaptureService) StartCamera(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrCameraInactive
	}

	s.narrator.Cancel()
	released := s.source != nil
	s.releaseSourceLocked()
	s.session.Deactivate()
	s.starts++
	attempt := s.starts
	s.mu.Unlock()

	// Open may probe the network, keep the session readable meanwhile
	source, err := s.camera.Open(ctx)
	s.metrics.CameraStarted(s.camera.Name(), err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Failed to start camera", zap.String("camera", s.camera.Name()), zap.Error(err))
		if released && attempt == s.starts {
			s.publishLocked()
		}
		return err
	}

	if s.closed || attempt != s.starts {
		if closeErr := source.Close(); closeErr != nil {
			s.logger.Warn("Failed to release superseded camera", zap.Error(closeErr))
		}
		if s.closed {
			return domain.ErrCameraInactive
		}
		return domain.ErrCycleAbandoned
	}

	s.source = source
	s.session.ActivateCamera()
	s.logger.Info("Camera started", zap.String("camera", s.camera.Name()), zap.Uint64("cycle", s.session.Cycle))
	s.publishLocked()
	return nil
}

// Capture takes a still frame from the camera
func (s *CaptureService) Capture(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.captureLocked()
	s.metrics.FrameCaptured(err)
	if err != nil {
		return err
	}
	s.publishLocked()
	return nil
}

// Analyze sends the captured frame for description and narrates the result.
// It blocks until the remote call returns.
func (s *CaptureService) Analyze(ctx context.Context) error {
	s.mu.Lock()
	token, image, err := s.beginAnalysisLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.finishAnalysis(ctx, token, image)
}

// CaptureAndAnalyze is the single user trigger: capture, then analyze the
// frame just taken.
func (s *CaptureService) CaptureAndAnalyze(ctx context.Context) error {
	s.mu.Lock()
	err := s.captureLocked()
	s.metrics.FrameCaptured(err)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	token, image, err := s.beginAnalysisLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.finishAnalysis(ctx, token, image)
}

// SetAudioEnabled toggles narration for the session
func (s *CaptureService) SetAudioEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.SetAudioEnabled(enabled)
	s.narrator.SetEnabled(enabled)
	s.publishLocked()
}

// View returns the current session state including the captured image
func (s *CaptureService) View() entities.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.View(true)
}

// Close stops narration and releases the camera
func (s *CaptureService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.narrator.Cancel()
	return s.releaseSourceLocked()
}

func (s *CaptureService) captureLocked() error {
	if s.closed || s.source == nil || s.session.Status == entities.StatusIdle {
		return domain.ErrCameraInactive
	}
	if s.session.Status == entities.StatusAnalyzing {
		return domain.ErrAnalysisInFlight
	}

	image, err := capture.Capture(s.source, s.describer.CaptureOptions())
	if err != nil {
		s.logger.Warn("Failed to capture frame", zap.Error(err))
		return err
	}
	if err := s.session.RecordCapture(image); err != nil {
		return err
	}

	s.logger.Info("Frame captured", zap.Int("bytes", len(image.Bytes)))
	return nil
}

func (s *CaptureService) beginAnalysisLocked() (uint64, entities.EncodedImage, error) {
	if s.closed {
		return 0, entities.EncodedImage{}, domain.ErrCameraInactive
	}
	token, err := s.session.BeginAnalysis()
	if err != nil {
		return 0, entities.EncodedImage{}, err
	}
	image := *s.session.CapturedImage
	s.publishLocked()
	return token, image, nil
}

func (s *CaptureService) finishAnalysis(ctx context.Context, token uint64, image entities.EncodedImage) error {
	result, err := s.describer.Describe(ctx, image)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.session.IsCurrent(token) {
		s.logger.Info("Discarding stale analysis result", zap.Uint64("cycle", token))
		s.metrics.CycleAbandoned()
		return domain.ErrCycleAbandoned
	}

	if err != nil {
		s.session.FailAnalysis(token)
		s.logger.Error("Analysis failed", zap.Uint64("cycle", token), zap.Error(err))
		s.publishLocked()
		if errors.Is(err, domain.ErrAnalysisFailed) {
			return err
		}
		return domain.NewAnalysisError("describe", 0, err)
	}

	if !result.Found {
		s.session.CompleteWithoutDescription(token)
		s.logger.Info("Analysis returned no description", zap.Uint64("cycle", token))
		s.publishLocked()
		return nil
	}

	s.session.CompleteAnalysis(token, result.Text, result.Confidence)
	s.logger.Info("Analysis completed",
		zap.Uint64("cycle", token),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("elapsed", result.Elapsed))
	s.publishLocked()

	if s.session.AudioEnabled {
		s.narrator.Speak(ctx, result.Text)
	}
	return nil
}

func (s *CaptureService) releaseSourceLocked() error {
	if s.source == nil {
		return nil
	}
	err := s.source.Close()
	s.source = nil
	if err != nil {
		s.logger.Warn("Failed to release camera", zap.Error(err))
	}
	return err
}

func (s *CaptureService) publishLocked() {
	if s.closed {
		return
	}
	s.observer(s.session.View(s.session.Status == entities.StatusCaptured))
}
