package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/snapspeak/adapters/camera"
	"github.com/satriahrh/snapspeak/adapters/tts"
	"github.com/satriahrh/snapspeak/internal/config"
)

func TestNewVisionModel(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name     string
		cfg      config.Config
		wantName string
		wantErr  bool
	}{
		{name: "rest", cfg: config.Config{VisionBackend: config.VisionREST, GeminiAPIKey: "key", GeminiModel: "gemini-2.5-flash"}, wantName: "gemini-rest:gemini-2.5-flash"},
		{name: "mock", cfg: config.Config{VisionBackend: config.VisionMock}, wantName: "mock"},
		{name: "rest without key", cfg: config.Config{VisionBackend: config.VisionREST}, wantErr: true},
		{name: "unknown", cfg: config.Config{VisionBackend: "crystal-ball"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := NewVisionModel(context.Background(), &tt.cfg, logger)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, model)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, model.Name())
		})
	}
}

func TestNewTextToSpeech(t *testing.T) {
	logger := zaptest.NewLogger(t)

	speech, err := NewTextToSpeech(&config.Config{TTSBackend: config.TTSMock}, logger)
	require.NoError(t, err)
	assert.IsType(t, &tts.MockTextToSpeech{}, speech)

	speech, err = NewTextToSpeech(&config.Config{TTSBackend: config.TTSElevenLabs, ElevenLabsAPIKey: "key", SpeechRate: 1.0}, logger)
	require.NoError(t, err)
	assert.IsType(t, &tts.ElevenLabsTTS{}, speech)

	speech, err = NewTextToSpeech(&config.Config{TTSBackend: config.TTSElevenLabs}, logger)
	assert.Error(t, err)
	assert.Nil(t, speech)
}

func TestNewSharedCamera(t *testing.T) {
	logger := zaptest.NewLogger(t)

	cam, err := NewSharedCamera(&config.Config{CameraBackend: config.CameraPush}, logger)
	require.NoError(t, err)
	assert.Nil(t, cam, "push cameras are created per client")

	cam, err = NewSharedCamera(&config.Config{CameraBackend: config.CameraFile, CameraPath: t.TempDir()}, logger)
	require.NoError(t, err)
	assert.IsType(t, &camera.FileCamera{}, cam)

	cam, err = NewSharedCamera(&config.Config{CameraBackend: config.CameraSnapshot, CameraSnapshotURL: "http://127.0.0.1:1/snap.jpg"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &camera.SnapshotCamera{}, cam)

	_, err = NewSharedCamera(&config.Config{CameraBackend: "webcam"}, logger)
	assert.Error(t, err)
}
