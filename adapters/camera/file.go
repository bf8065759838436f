package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/repositories"
	"github.com/satriahrh/snapspeak/internal/capture"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// FileCamera reads frames from an image file, or the newest image in a
// directory that a capture device keeps writing to.
type FileCamera struct {
	path     string
	maxBytes int64
	logger   *zap.Logger

	mu   sync.Mutex
	open bool
}

var _ repositories.Camera = (*FileCamera)(nil)

// NewFileCamera creates a camera reading from path
func NewFileCamera(path string, maxBytes int64, logger *zap.Logger) *FileCamera {
	return &FileCamera{path: path, maxBytes: maxBytes, logger: logger}
}

func (c *FileCamera) Name() string { return "file" }

func (c *FileCamera) Open(ctx context.Context) (repositories.FrameSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(c.path)
	if err != nil {
		return nil, classifyFSError(err)
	}
	if info.IsDir() {
		if _, err := os.ReadDir(c.path); err != nil {
			return nil, classifyFSError(err)
		}
	} else {
		f, err := os.Open(c.path)
		if err != nil {
			return nil, classifyFSError(err)
		}
		f.Close()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		return nil, domain.ErrDeviceUnavailable
	}
	c.open = true

	c.logger.Info("Opened file camera", zap.String("path", c.path), zap.Bool("directory", info.IsDir()))
	return &fileSource{camera: c}, nil
}

func classifyFSError(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrDeviceUnavailable, err)
}

type fileSource struct {
	camera *FileCamera
	closed bool
}

func (s *fileSource) Frame() (image.Image, error) {
	if s.closed {
		return nil, domain.ErrCameraInactive
	}

	path, err := s.latestPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoFrameAvailable, err)
	}

	img, _, err := capture.DecodeFrame(data, s.camera.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoFrameAvailable, err)
	}
	return img, nil
}

func (s *fileSource) latestPath() (string, error) {
	info, err := os.Stat(s.camera.path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNoFrameAvailable, err)
	}
	if !info.IsDir() {
		return s.camera.path, nil
	}

	entries, err := os.ReadDir(s.camera.path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNoFrameAvailable, err)
	}

	var newest string
	var newestInfo fs.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		entryInfo, err := entry.Info()
		if err != nil {
			continue
		}
		if newestInfo == nil || entryInfo.ModTime().After(newestInfo.ModTime()) {
			newest = filepath.Join(s.camera.path, entry.Name())
			newestInfo = entryInfo
		}
	}

	if newest == "" {
		return "", domain.ErrNoFrameAvailable
	}
	return newest, nil
}

func (s *fileSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.camera.mu.Lock()
	s.camera.open = false
	s.camera.mu.Unlock()
	return nil
}
