package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/usecase"
)

// Metrics records pipeline measurements on a prometheus registry
type Metrics struct {
	cameraStarts     *prometheus.CounterVec
	framesCaptured   *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	abandonedCycles  prometheus.Counter
	utterances       *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	DescribeRequests *prometheus.CounterVec
}

var _ usecase.Recorder = (*Metrics)(nil)

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cameraStarts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapspeak_camera_starts_total",
			Help: "Camera start attempts, by backend and result code",
		}, []string{"backend", "code"}),

		framesCaptured: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapspeak_frames_captured_total",
			Help: "Frame capture attempts, by result code",
		}, []string{"code"}),

		analyses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapspeak_analyses_total",
			Help: "Remote analysis calls, by backend and outcome",
		}, []string{"backend", "outcome"}),

		analysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "snapspeak_analysis_duration_seconds",
			Help:    "Duration of remote analysis calls",
			Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"backend"}),

		abandonedCycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "snapspeak_abandoned_cycles_total",
			Help: "Analysis results discarded because the session moved on",
		}),

		utterances: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapspeak_utterances_total",
			Help: "Narrations, by whether they played to the end",
		}, []string{"completed"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "snapspeak_active_sessions",
			Help: "Number of connected capture sessions",
		}),

		DescribeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "snapspeak_describe_requests_total",
			Help: "One-shot describe API requests, by status code",
		}, []string{"status"}),
	}
}

func (m *Metrics) CameraStarted(backend string, err error) {
	m.cameraStarts.WithLabelValues(backend, resultCode(err)).Inc()
}

func (m *Metrics) FrameCaptured(err error) {
	m.framesCaptured.WithLabelValues(resultCode(err)).Inc()
}

func (m *Metrics) AnalysisFinished(backend, outcome string, elapsed time.Duration) {
	m.analyses.WithLabelValues(backend, outcome).Inc()
	m.analysisDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

func (m *Metrics) CycleAbandoned() {
	m.abandonedCycles.Inc()
}

func (m *Metrics) UtteranceFinished(completed bool) {
	label := "false"
	if completed {
		label = "true"
	}
	m.utterances.WithLabelValues(label).Inc()
}

func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.ErrorCode(err)
}
