package usecase

import (
	"context"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/domain/repositories"
	"github.com/satriahrh/snapspeak/internal/capture"
	"github.com/satriahrh/snapspeak/internal/extract"
)

// DefaultPrompt is the fixed instruction sent with every image
const DefaultPrompt = "Identify the main object or person and describe it clearly in simple words."

const defaultAnalysisTimeout = 60 * time.Second

// DescriberConfig holds the fixed parameters of an analysis cycle
type DescriberConfig struct {
	Prompt  string
	Capture capture.Options
	Timeout time.Duration
}

// Description is the outcome of one analysis call
type Description struct {
	Text       string        `json:"description,omitempty"`
	Found      bool          `json:"found"`
	Confidence float64       `json:"confidence,omitempty"`
	Model      string        `json:"model"`
	Elapsed    time.Duration `json:"elapsed"`
	Raw        []byte        `json:"-"`
}

// Describer runs encode, analyze and extract for a single image
type Describer struct {
	vision  repositories.VisionModel
	config  DescriberConfig
	metrics Recorder
	logger  *zap.Logger
}

// NewDescriber creates a describer, filling unset config with defaults
func NewDescriber(vision repositories.VisionModel, config DescriberConfig, metrics Recorder, logger *zap.Logger) (*Describer, error) {
	if config.Prompt == "" {
		config.Prompt = DefaultPrompt
		logger.Info("Using default prompt", zap.String("prompt", config.Prompt))
	}
	if config.Capture == (capture.Options{}) {
		config.Capture = capture.DefaultOptions()
		logger.Info("Using default capture options",
			zap.Int("width", config.Capture.Width),
			zap.Int("height", config.Capture.Height),
			zap.Int("quality", config.Capture.Quality))
	}
	if err := config.Capture.Validate(); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = defaultAnalysisTimeout
		logger.Info("Using default analysis timeout", zap.Duration("timeout", config.Timeout))
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}

	return &Describer{
		vision:  vision,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// CaptureOptions returns the output geometry used for captures
func (d *Describer) CaptureOptions() capture.Options { return d.config.Capture }

// DescribeImage encodes img at the capture geometry and analyzes it
func (d *Describer) DescribeImage(ctx context.Context, img image.Image) (*Description, error) {
	encoded, err := capture.Encode(img, d.config.Capture)
	if err != nil {
		return nil, err
	}
	return d.Describe(ctx, encoded)
}

// Describe analyzes an already encoded image. An absent description is not
// an error; Found reports it.
func (d *Describer) Describe(ctx context.Context, img entities.EncodedImage) (*Description, error) {
	request, err := entities.NewAnalysisRequest(img, d.config.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	start := time.Now()
	response, err := d.vision.Analyze(ctx, request)
	elapsed := time.Since(start)
	if err != nil {
		d.metrics.AnalysisFinished(d.vision.Name(), OutcomeFailed, elapsed)
		return nil, err
	}

	d.logger.Debug("Analysis response",
		zap.String("model", response.Model),
		zap.ByteString("raw", response.Raw))

	result := &Description{
		Model:   response.Model,
		Elapsed: elapsed,
		Raw:     response.Raw,
	}

	text, ok := extract.Description(response)
	if !ok {
		d.metrics.AnalysisFinished(d.vision.Name(), OutcomeEmpty, elapsed)
		return result, nil
	}

	result.Text = text
	result.Found = true
	result.Confidence = extract.Confidence(text)
	d.metrics.AnalysisFinished(d.vision.Name(), OutcomeDescribed, elapsed)
	return result, nil
}
