package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/domain/repositories"
)

// GeminiSDK implements VisionModel using the google genai client
type GeminiSDK struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

// Ensure GeminiSDK implements the VisionModel interface
var _ repositories.VisionModel = (*GeminiSDK)(nil)

// NewGeminiSDK creates a new genai backed vision model
func NewGeminiSDK(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiSDK, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}

	httpOptions := genai.HTTPOptions{APIVersion: config.APIVersion, BaseURL: config.BaseURL}
	if httpOptions.APIVersion == "" {
		httpOptions.APIVersion = defaultAPIVersion
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      config.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiSDK{
		client: client,
		logger: logger,
		model:  model,
	}, nil
}

func (g *GeminiSDK) Name() string { return "gemini-sdk:" + g.model }

// Analyze sends the request through the SDK and re-encodes the reply as JSON
// so extraction does not depend on the backend.
func (g *GeminiSDK) Analyze(ctx context.Context, request entities.AnalysisRequest) (*entities.AnalysisResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(request.PromptText()),
			genai.NewPartFromBytes(request.ImageBytes(), request.MimeType()),
		}, genai.RoleUser),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, domain.NewAnalysisError("generate content", apiErr.Code, err)
		}
		return nil, domain.NewAnalysisError("generate content", 0, err)
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return nil, domain.NewAnalysisError("encode response", http.StatusOK, err)
	}

	g.logger.Debug("Received response from Gemini SDK",
		zap.String("model", g.model),
		zap.Int("candidates", len(response.Candidates)))

	return &entities.AnalysisResponse{
		Raw:        raw,
		Model:      g.model,
		StatusCode: http.StatusOK,
		ReceivedAt: time.Now(),
	}, nil
}
