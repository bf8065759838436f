package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/satriahrh/snapspeak/domain"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CameraStarted("push", nil)
	m.CameraStarted("push", domain.ErrPermissionDenied)
	m.FrameCaptured(domain.ErrNoFrameAvailable)
	m.AnalysisFinished("gemini-rest", "described", 2*time.Second)
	m.AnalysisFinished("gemini-rest", "failed", time.Second)
	m.CycleAbandoned()
	m.UtteranceFinished(true)
	m.UtteranceFinished(false)

	if got := testutil.ToFloat64(m.cameraStarts.WithLabelValues("push", "permission_denied")); got != 1 {
		t.Errorf("Expected 1 denied camera start, got %v", got)
	}
	if got := testutil.ToFloat64(m.framesCaptured.WithLabelValues("no_frame_available")); got != 1 {
		t.Errorf("Expected 1 failed capture, got %v", got)
	}
	if got := testutil.ToFloat64(m.analyses.WithLabelValues("gemini-rest", "described")); got != 1 {
		t.Errorf("Expected 1 described analysis, got %v", got)
	}
	if got := testutil.ToFloat64(m.abandonedCycles); got != 1 {
		t.Errorf("Expected 1 abandoned cycle, got %v", got)
	}
	if got := testutil.CollectAndCount(m.utterances); got != 2 {
		t.Errorf("Expected 2 utterance series, got %d", got)
	}
}
