package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/domain/repositories"
)

const (
	maxResponseBytes = 10 << 20
	maxErrorBytes    = 4 << 10
)

// GeminiREST calls the generateContent endpoint directly over HTTP
type GeminiREST struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure GeminiREST implements the VisionModel interface
var _ repositories.VisionModel = (*GeminiREST)(nil)

type generateContentRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// NewGeminiREST creates a new REST Gemini client
func NewGeminiREST(config GeminiConfig, logger *zap.Logger) (*GeminiREST, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
		logger.Info("Using default base URL", zap.String("baseURL", baseURL))
	}

	apiVersion := config.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
		logger.Info("Using default API version", zap.String("apiVersion", apiVersion))
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}

	return &GeminiREST{
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		model:      model,
		httpClient: &http.Client{},
		logger:     logger,
	}, nil
}

func (g *GeminiREST) Name() string { return "gemini-rest:" + g.model }

// Analyze sends the prompt and the inline JPEG as one user turn
func (g *GeminiREST) Analyze(ctx context.Context, request entities.AnalysisRequest) (*entities.AnalysisResponse, error) {
	body := generateContentRequest{
		Contents: []requestContent{{
			Parts: []requestPart{
				{Text: request.PromptText()},
				{InlineData: &inlineData{MimeType: request.MimeType(), Data: request.ImageBase64()}},
			},
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.NewAnalysisError("marshal request", 0, err)
	}

	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		g.baseURL, g.apiVersion, g.model, url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewAnalysisError("create request", 0, g.redact(err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	g.logger.Debug("Sending request to Gemini API",
		zap.String("model", g.model),
		zap.String("apiVersion", g.apiVersion),
		zap.Int("imageBytes", request.ImageSize()))

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewAnalysisError("send request", 0, g.redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		g.logger.Error("Gemini API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return nil, domain.NewAnalysisError("generate content", resp.StatusCode,
			fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(errorBody))))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewAnalysisError("read response", resp.StatusCode, g.redact(err))
	}
	if !json.Valid(raw) {
		return nil, domain.NewAnalysisError("decode response", resp.StatusCode, errors.New("response body is not valid JSON"))
	}

	g.logger.Debug("Received response from Gemini API",
		zap.Int("statusCode", resp.StatusCode),
		zap.Int("responseBytes", len(raw)))

	return &entities.AnalysisResponse{
		Raw:        raw,
		Model:      g.model,
		StatusCode: resp.StatusCode,
		ReceivedAt: time.Now(),
	}, nil
}

// redact strips the API key from errors that echo the request URL
func (g *GeminiREST) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(g.apiKey), "REDACTED")
		return urlErr
	}
	return err
}
