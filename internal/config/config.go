package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/satriahrh/snapspeak/adapters/tts"
	"github.com/satriahrh/snapspeak/adapters/vision"
	"github.com/satriahrh/snapspeak/internal/capture"
)

// Backends selectable through the environment
const (
	VisionREST = "rest"
	VisionSDK  = "sdk"
	VisionMock = "mock"

	CameraPush     = "push"
	CameraFile     = "file"
	CameraSnapshot = "snapshot"

	TTSElevenLabs = "elevenlabs"
	TTSMock       = "mock"
)

type Config struct {
	Port      string `env:"PORT"       envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiModel      string        `env:"GEMINI_MODEL"       envDefault:"gemini-2.5-flash"`
	GeminiAPIVersion string        `env:"GEMINI_API_VERSION" envDefault:"v1"`
	GeminiBaseURL    string        `env:"GEMINI_BASE_URL"`
	VisionBackend    string        `env:"VISION_BACKEND"     envDefault:"rest"`
	AnalysisPrompt   string        `env:"ANALYSIS_PROMPT"    envDefault:"Identify the main object or person and describe it clearly in simple words."`
	AnalysisTimeout  time.Duration `env:"ANALYSIS_TIMEOUT"   envDefault:"60s"`

	CaptureWidth   int   `env:"CAPTURE_WIDTH"   envDefault:"640"`
	CaptureHeight  int   `env:"CAPTURE_HEIGHT"  envDefault:"480"`
	CaptureQuality int   `env:"CAPTURE_QUALITY" envDefault:"95"`
	MaxFrameBytes  int64 `env:"MAX_FRAME_BYTES" envDefault:"8388608"`

	CameraBackend     string `env:"CAMERA_BACKEND"      envDefault:"push"`
	CameraPath        string `env:"CAMERA_PATH"`
	CameraSnapshotURL string `env:"CAMERA_SNAPSHOT_URL"`

	TTSBackend             string  `env:"TTS_BACKEND"               envDefault:"elevenlabs"`
	ElevenLabsAPIKey       string  `env:"ELEVEN_LABS_API_KEY"`
	ElevenLabsAPIBaseURL   string  `env:"ELEVEN_LABS_API_BASE_URL"`
	ElevenLabsVoiceID      string  `env:"ELEVEN_LABS_VOICE_ID"`
	ElevenLabsModelID      string  `env:"ELEVEN_LABS_MODEL_ID"`
	ElevenLabsOutputFormat string  `env:"ELEVEN_LABS_OUTPUT_FORMAT"`
	ElevenLabsChunkSize    int     `env:"ELEVEN_LABS_CHUNK_SIZE"`
	ElevenLabsStability    float64 `env:"ELEVEN_LABS_STABILITY"`
	ElevenLabsClarity      float64 `env:"ELEVEN_LABS_CLARITY"`
	SpeechRate             float64 `env:"SPEECH_RATE"               envDefault:"1.0"`
}

// Load reads an optional .env file, then the environment, and validates the
// result
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads an optional .env file, then the environment, without
// validating backend settings
func Parse() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend selections and their required settings
func (c *Config) Validate() error {
	if err := c.ValidateVision(); err != nil {
		return err
	}

	switch c.CameraBackend {
	case CameraPush:
	case CameraFile:
		if c.CameraPath == "" {
			return fmt.Errorf("CAMERA_PATH is required for camera backend %q", c.CameraBackend)
		}
	case CameraSnapshot:
		if c.CameraSnapshotURL == "" {
			return fmt.Errorf("CAMERA_SNAPSHOT_URL is required for camera backend %q", c.CameraBackend)
		}
	default:
		return fmt.Errorf("unknown CAMERA_BACKEND %q", c.CameraBackend)
	}

	return c.ValidateSpeech()
}

// ValidateVision checks the analysis settings and capture geometry
func (c *Config) ValidateVision() error {
	switch c.VisionBackend {
	case VisionREST, VisionSDK:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for vision backend %q", c.VisionBackend)
		}
	case VisionMock:
	default:
		return fmt.Errorf("unknown VISION_BACKEND %q", c.VisionBackend)
	}

	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT must be positive, got %s", c.AnalysisTimeout)
	}

	return c.Capture().Validate()
}

// ValidateSpeech checks the narration settings
func (c *Config) ValidateSpeech() error {
	switch c.TTSBackend {
	case TTSElevenLabs:
		if c.ElevenLabsAPIKey == "" {
			return fmt.Errorf("ELEVEN_LABS_API_KEY is required for tts backend %q", c.TTSBackend)
		}
	case TTSMock:
	default:
		return fmt.Errorf("unknown TTS_BACKEND %q", c.TTSBackend)
	}
	return nil
}

// Capture returns the frame capture options
func (c *Config) Capture() capture.Options {
	return capture.Options{
		Width:   c.CaptureWidth,
		Height:  c.CaptureHeight,
		Quality: c.CaptureQuality,
	}
}

// Gemini returns the vision adapter configuration
func (c *Config) Gemini() vision.GeminiConfig {
	return vision.GeminiConfig{
		APIKey:     c.GeminiAPIKey,
		BaseURL:    c.GeminiBaseURL,
		APIVersion: c.GeminiAPIVersion,
		Model:      c.GeminiModel,
	}
}

// ElevenLabs returns the speech adapter configuration
func (c *Config) ElevenLabs() tts.ElevenLabsConfig {
	return tts.ElevenLabsConfig{
		APIKey:       c.ElevenLabsAPIKey,
		APIBaseURL:   c.ElevenLabsAPIBaseURL,
		VoiceID:      c.ElevenLabsVoiceID,
		ModelID:      c.ElevenLabsModelID,
		OutputFormat: c.ElevenLabsOutputFormat,
		ChunkSize:    c.ElevenLabsChunkSize,
		Stability:    c.ElevenLabsStability,
		Clarity:      c.ElevenLabsClarity,
		Speed:        c.SpeechRate,
	}
}
