package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("ELEVEN_LABS_API_KEY", "test-eleven-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, VisionREST, cfg.VisionBackend)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "v1", cfg.GeminiAPIVersion)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, CameraPush, cfg.CameraBackend)

	opts := cfg.Capture()
	assert.Equal(t, 640, opts.Width)
	assert.Equal(t, 480, opts.Height)
	assert.Equal(t, 95, opts.Quality)

	gemini := cfg.Gemini()
	assert.Equal(t, "test-gemini-key", gemini.APIKey)

	assert.Equal(t, 1.0, cfg.ElevenLabs().Speed)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VISION_BACKEND", "mock")
	t.Setenv("TTS_BACKEND", "mock")
	t.Setenv("CAMERA_BACKEND", "file")
	t.Setenv("CAMERA_PATH", "/tmp/frames")
	t.Setenv("CAPTURE_WIDTH", "320")
	t.Setenv("CAPTURE_HEIGHT", "240")
	t.Setenv("CAPTURE_QUALITY", "90")
	t.Setenv("ANALYSIS_TIMEOUT", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, VisionMock, cfg.VisionBackend)
	assert.Equal(t, "/tmp/frames", cfg.CameraPath)
	assert.Equal(t, 320, cfg.Capture().Width)
	assert.Equal(t, 15*time.Second, cfg.AnalysisTimeout)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			VisionBackend:   VisionMock,
			CameraBackend:   CameraPush,
			TTSBackend:      TTSMock,
			AnalysisTimeout: time.Second,
			CaptureWidth:    640,
			CaptureHeight:   480,
			CaptureQuality:  95,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"rest without key", func(c *Config) { c.VisionBackend = VisionREST }},
		{"sdk without key", func(c *Config) { c.VisionBackend = VisionSDK }},
		{"unknown vision", func(c *Config) { c.VisionBackend = "other" }},
		{"file without path", func(c *Config) { c.CameraBackend = CameraFile }},
		{"snapshot without url", func(c *Config) { c.CameraBackend = CameraSnapshot }},
		{"unknown camera", func(c *Config) { c.CameraBackend = "usb" }},
		{"elevenlabs without key", func(c *Config) { c.TTSBackend = TTSElevenLabs }},
		{"zero timeout", func(c *Config) { c.AnalysisTimeout = 0 }},
		{"bad quality", func(c *Config) { c.CaptureQuality = 0 }},
	}

	require.NoError(t, base().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseSkipsBackendValidation(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("ELEVEN_LABS_API_KEY", "")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.NoError(t, cfg.ValidateVision())
	assert.Error(t, cfg.ValidateSpeech(), "default tts backend needs a key")
	assert.Error(t, cfg.Validate())
}
