package domain

import (
	"errors"
	"fmt"
)

// Camera and capture errors. These surface to the user as an alert and leave
// the session state untouched.
var (
	ErrPermissionDenied  = errors.New("camera permission denied")
	ErrDeviceUnavailable = errors.New("camera device unavailable")
	ErrNoFrameAvailable  = errors.New("no frame available")
	ErrCameraInactive    = errors.New("camera is not active")
)

// Pipeline errors
var (
	ErrAnalysisFailed   = errors.New("analysis failed")
	ErrAnalysisInFlight = errors.New("analysis already in progress")
	ErrNoCapture        = errors.New("no captured image")
	ErrCycleAbandoned   = errors.New("capture cycle abandoned")
)

// AnalysisError folds network, HTTP status and body decoding failures of a
// remote analysis call into one outcome. It matches ErrAnalysisFailed with
// errors.Is and unwraps to the underlying cause.
type AnalysisError struct {
	Op         string
	StatusCode int
	Cause      error
}

func (e *AnalysisError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", ErrAnalysisFailed, e.Op, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", ErrAnalysisFailed, e.Op, e.Cause)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

func (e *AnalysisError) Is(target error) bool {
	return target == ErrAnalysisFailed
}

// NewAnalysisError wraps cause as an analysis failure for operation op.
func NewAnalysisError(op string, statusCode int, cause error) *AnalysisError {
	if cause == nil {
		cause = errors.New("unknown cause")
	}
	return &AnalysisError{Op: op, StatusCode: statusCode, Cause: cause}
}

// ErrorCode maps an error to the short code sent to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrDeviceUnavailable):
		return "device_unavailable"
	case errors.Is(err, ErrNoFrameAvailable):
		return "no_frame_available"
	case errors.Is(err, ErrCameraInactive):
		return "camera_inactive"
	case errors.Is(err, ErrAnalysisInFlight):
		return "analysis_in_flight"
	case errors.Is(err, ErrNoCapture):
		return "no_capture"
	case errors.Is(err, ErrAnalysisFailed):
		return "analysis_failed"
	case errors.Is(err, ErrCycleAbandoned):
		return "cycle_abandoned"
	default:
		return "internal_error"
	}
}
