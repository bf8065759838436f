package usecase

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/internal/capture"
)

func TestNewDescriberDefaults(t *testing.T) {
	d, err := NewDescriber(&mockVision{}, DescriberConfig{}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultPrompt, d.config.Prompt)
	assert.Equal(t, capture.DefaultOptions(), d.CaptureOptions())
	assert.Equal(t, 60*time.Second, d.config.Timeout)

	_, err = NewDescriber(&mockVision{}, DescriberConfig{Capture: capture.Options{Width: 10}}, nil, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestDescriberDescribeImage(t *testing.T) {
	vision := &mockVision{}
	vision.On("Analyze", mock.Anything, mock.MatchedBy(func(r entities.AnalysisRequest) bool {
		return r.PromptText() == "Describe it." && r.ImageSize() > 0
	})).Return(replyWith("A bicycle."), nil).Once()

	d, err := NewDescriber(vision, DescriberConfig{Prompt: "Describe it."}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	result, err := d.DescribeImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 300, 200)))
	require.NoError(t, err)

	assert.True(t, result.Found)
	assert.Equal(t, "A bicycle.", result.Text)
	assert.Equal(t, float64(50), result.Confidence)
	assert.Equal(t, "test-model", result.Model)
	assert.NotEmpty(t, result.Raw)
	vision.AssertExpectations(t)
}

func TestDescriberAppliesTimeout(t *testing.T) {
	vision := &mockVision{}
	vision.On("Analyze", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, domain.NewAnalysisError("generate content", 0, context.DeadlineExceeded)).Once()

	d, err := NewDescriber(vision, DescriberConfig{Timeout: 20 * time.Millisecond}, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = d.DescribeImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
