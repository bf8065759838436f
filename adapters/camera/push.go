package camera

import (
	"context"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/repositories"
	"github.com/satriahrh/snapspeak/internal/capture"
)

// Reasons a browser client reports when getUserMedia fails
const (
	ReasonPermissionDenied  = "permission_denied"
	ReasonDeviceUnavailable = "device_unavailable"
)

// PushCamera is a camera whose frames are pushed by a remote client, one per
// connection.
type PushCamera struct {
	mu       sync.Mutex
	logger   *zap.Logger
	maxBytes int64
	active   *pushSource
	failure  error
}

var _ repositories.Camera = (*PushCamera)(nil)

// NewPushCamera creates a push camera accepting frames up to maxBytes
func NewPushCamera(logger *zap.Logger, maxBytes int64) *PushCamera {
	return &PushCamera{logger: logger, maxBytes: maxBytes}
}

func (c *PushCamera) Name() string { return "push" }

// ReportFailure records the client's camera failure; the next Open returns it.
func (c *PushCamera) ReportFailure(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch reason {
	case ReasonPermissionDenied:
		c.failure = domain.ErrPermissionDenied
	default:
		c.failure = domain.ErrDeviceUnavailable
	}
}

// Open acquires the pushed stream. Only one source may be open at a time.
func (c *PushCamera) Open(ctx context.Context) (repositories.FrameSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failure != nil {
		err := c.failure
		c.failure = nil
		return nil, err
	}
	if c.active != nil {
		return nil, domain.ErrDeviceUnavailable
	}

	c.active = &pushSource{camera: c}
	return c.active, nil
}

// PushFrame decodes an encoded frame and makes it the current frame of the
// open source.
func (c *PushCamera) PushFrame(data []byte) error {
	img, format, err := capture.DecodeFrame(data, c.maxBytes)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return domain.ErrCameraInactive
	}
	c.active.frame = img
	c.logger.Debug("Received camera frame",
		zap.String("format", format),
		zap.Int("bytes", len(data)))
	return nil
}

type pushSource struct {
	camera *PushCamera
	frame  image.Image
	closed bool
}

func (s *pushSource) Frame() (image.Image, error) {
	s.camera.mu.Lock()
	defer s.camera.mu.Unlock()

	if s.closed {
		return nil, domain.ErrCameraInactive
	}
	if s.frame == nil {
		return nil, domain.ErrNoFrameAvailable
	}
	return s.frame, nil
}

func (s *pushSource) Close() error {
	s.camera.mu.Lock()
	defer s.camera.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.frame = nil
	if s.camera.active == s {
		s.camera.active = nil
	}
	return nil
}
