package repositories

import (
	"context"

	"github.com/satriahrh/snapspeak/domain/entities"
)

// VisionModel abstracts any hosted multimodal generation provider
type VisionModel interface {
	// Analyze sends one image with its instruction and returns the full reply.
	// Transport, status and decoding failures are all reported as a
	// *domain.AnalysisError.
	Analyze(ctx context.Context, request entities.AnalysisRequest) (*entities.AnalysisResponse, error)
	Name() string
}
