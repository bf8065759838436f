// Package app builds the configured adapters shared by the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/adapters/camera"
	"github.com/satriahrh/snapspeak/adapters/tts"
	"github.com/satriahrh/snapspeak/adapters/vision"
	"github.com/satriahrh/snapspeak/domain/repositories"
	"github.com/satriahrh/snapspeak/internal/config"
)

// Mock pacing, close enough to the real services to exercise the UI states
const (
	mockAnalysisDelay = 800 * time.Millisecond
	mockSpeechPerRune = 20 * time.Millisecond
)

// NewVisionModel returns the configured analysis backend
func NewVisionModel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.VisionModel, error) {
	switch cfg.VisionBackend {
	case config.VisionREST:
		model, err := vision.NewGeminiREST(cfg.Gemini(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini REST client: %w", err)
		}
		return model, nil
	case config.VisionSDK:
		model, err := vision.NewGeminiSDK(ctx, cfg.Gemini(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini SDK client: %w", err)
		}
		return model, nil
	case config.VisionMock:
		logger.Warn("Using mock vision backend")
		return vision.NewMockVision(logger, mockAnalysisDelay), nil
	default:
		return nil, fmt.Errorf("unknown vision backend %q", cfg.VisionBackend)
	}
}

// NewTextToSpeech returns the configured speech backend
func NewTextToSpeech(cfg *config.Config, logger *zap.Logger) (repositories.TextToSpeech, error) {
	switch cfg.TTSBackend {
	case config.TTSElevenLabs:
		speech, err := tts.NewElevenLabsTTS(cfg.ElevenLabs(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Eleven Labs client: %w", err)
		}
		return speech, nil
	case config.TTSMock:
		logger.Warn("Using mock text-to-speech backend")
		return tts.NewMockTextToSpeech(logger, mockSpeechPerRune), nil
	default:
		return nil, fmt.Errorf("unknown tts backend %q", cfg.TTSBackend)
	}
}

// NewSharedCamera returns the configured server-side camera, or nil when
// every client pushes its own frames.
func NewSharedCamera(cfg *config.Config, logger *zap.Logger) (repositories.Camera, error) {
	switch cfg.CameraBackend {
	case config.CameraPush:
		return nil, nil
	case config.CameraFile:
		return camera.NewFileCamera(cfg.CameraPath, cfg.MaxFrameBytes, logger), nil
	case config.CameraSnapshot:
		return camera.NewSnapshotCamera(cfg.CameraSnapshotURL, cfg.MaxFrameBytes, logger), nil
	default:
		return nil, fmt.Errorf("unknown camera backend %q", cfg.CameraBackend)
	}
}
