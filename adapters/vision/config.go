package vision

import (
	"fmt"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultAPIVersion = "v1"
	defaultModel      = "gemini-2.5-flash"
)

// GeminiConfig holds configuration for both Gemini backends
// Required fields:
// - APIKey: Google AI API key, read from the environment by the caller
// Optional fields with defaults:
// - BaseURL: default "https://generativelanguage.googleapis.com"
// - APIVersion: default "v1"
// - Model: default "gemini-2.5-flash"
// Deadlines come from the caller's context.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
}

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}

	return nil
}
