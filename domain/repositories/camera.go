package repositories

import (
	"context"
	"image"
)

// Camera abstracts a live video source
type Camera interface {
	// Open acquires the device. It fails with domain.ErrPermissionDenied or
	// domain.ErrDeviceUnavailable and releases anything partially acquired.
	Open(ctx context.Context) (FrameSource, error)
	Name() string
}

// FrameSource is an opened camera. Only one may be open per camera at a time.
type FrameSource interface {
	// Frame returns the most recent frame, or domain.ErrNoFrameAvailable when
	// the source has not produced one yet.
	Frame() (image.Image, error)
	Close() error
}
