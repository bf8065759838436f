package usecase

import "time"

// Outcomes of one analysis cycle
const (
	OutcomeDescribed = "described"
	OutcomeEmpty     = "empty"
	OutcomeFailed    = "failed"
)

// Recorder receives pipeline measurements
type Recorder interface {
	CameraStarted(backend string, err error)
	FrameCaptured(err error)
	AnalysisFinished(backend, outcome string, elapsed time.Duration)
	CycleAbandoned()
	UtteranceFinished(completed bool)
}

type nopRecorder struct{}

func (nopRecorder) CameraStarted(string, error)                    {}
func (nopRecorder) FrameCaptured(error)                            {}
func (nopRecorder) AnalysisFinished(string, string, time.Duration) {}
func (nopRecorder) CycleAbandoned()                                {}
func (nopRecorder) UtteranceFinished(bool)                         {}
