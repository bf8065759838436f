package camera

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/repositories"
	"github.com/satriahrh/snapspeak/internal/capture"
)

const snapshotTimeout = 10 * time.Second

// SnapshotCamera fetches still frames from an IP camera snapshot URL
type SnapshotCamera struct {
	url        string
	maxBytes   int64
	httpClient *http.Client
	logger     *zap.Logger

	mu   sync.Mutex
	open bool
}

var _ repositories.Camera = (*SnapshotCamera)(nil)

// NewSnapshotCamera creates a camera polling url on every frame request
func NewSnapshotCamera(url string, maxBytes int64, logger *zap.Logger) *SnapshotCamera {
	return &SnapshotCamera{
		url:        url,
		maxBytes:   maxBytes,
		httpClient: &http.Client{Timeout: snapshotTimeout},
		logger:     logger,
	}
}

func (c *SnapshotCamera) Name() string { return "snapshot" }

// Open probes the snapshot URL once
func (c *SnapshotCamera) Open(ctx context.Context) (repositories.FrameSource, error) {
	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return nil, domain.ErrDeviceUnavailable
	}
	c.open = true
	c.mu.Unlock()

	if _, err := c.fetch(ctx); err != nil {
		c.release()
		return nil, err
	}

	c.logger.Info("Opened snapshot camera", zap.String("url", c.url))
	return &snapshotSource{camera: c}, nil
}

func (c *SnapshotCamera) release() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}

func (c *SnapshotCamera) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: snapshot status %d", domain.ErrPermissionDenied, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: snapshot status %d", domain.ErrDeviceUnavailable, resp.StatusCode)
	}

	limit := c.maxBytes
	if limit <= 0 {
		limit = capture.DefaultMaxFrameBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
	}
	return data, nil
}

type snapshotSource struct {
	camera *SnapshotCamera
	closed bool
}

func (s *snapshotSource) Frame() (image.Image, error) {
	if s.closed {
		return nil, domain.ErrCameraInactive
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	data, err := s.camera.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoFrameAvailable, err)
	}

	img, _, err := capture.DecodeFrame(data, s.camera.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoFrameAvailable, err)
	}
	return img, nil
}

func (s *snapshotSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.camera.release()
	return nil
}
