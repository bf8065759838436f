package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/domain/repositories"
)

const mockDescription = "A coffee mug on a wooden desk next to a laptop."

// MockVision is a placeholder implementation for local development
type MockVision struct {
	logger *zap.Logger
	delay  time.Duration
}

var _ repositories.VisionModel = (*MockVision)(nil)

// NewMockVision creates a mock model that answers after delay
func NewMockVision(logger *zap.Logger, delay time.Duration) *MockVision {
	return &MockVision{logger: logger, delay: delay}
}

func (m *MockVision) Name() string { return "mock" }

// Analyze returns a canned generateContent reply
func (m *MockVision) Analyze(ctx context.Context, request entities.AnalysisRequest) (*entities.AnalysisResponse, error) {
	m.logger.Info("Processing mock analysis", zap.Int("imageBytes", request.ImageSize()))

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, domain.NewAnalysisError("mock analysis", 0, ctx.Err())
		}
	}

	return &entities.AnalysisResponse{
		Raw:        GenerateContentJSON(mockDescription),
		Model:      "mock",
		StatusCode: http.StatusOK,
		ReceivedAt: time.Now(),
	}, nil
}

// GenerateContentJSON builds a minimal generateContent reply carrying text
func GenerateContentJSON(text string) []byte {
	reply := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
					"role":  "model",
				},
				"finishReason": "STOP",
			},
		},
	}
	raw, _ := json.Marshal(reply)
	return raw
}
