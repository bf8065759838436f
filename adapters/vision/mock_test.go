package vision

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/internal/extract"
)

func TestMockVision(t *testing.T) {
	mock := NewMockVision(zaptest.NewLogger(t), 0)

	resp, err := mock.Analyze(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if text, ok := extract.Description(resp); !ok || text != mockDescription {
		t.Errorf("Expected mock description, got %q (ok=%v)", text, ok)
	}
}

func TestMockVisionCancelled(t *testing.T) {
	mock := NewMockVision(zaptest.NewLogger(t), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.Analyze(ctx, testRequest(t))
	if !errors.Is(err, domain.ErrAnalysisFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancelled analysis failure, got %v", err)
	}
}
