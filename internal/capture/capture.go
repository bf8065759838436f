package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"golang.org/x/image/draw"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/domain/repositories"
)

const (
	DefaultWidth   = 640
	DefaultHeight  = 480
	DefaultQuality = 95
)

// Options sets the fixed output geometry and JPEG quality of a capture
type Options struct {
	Width   int
	Height  int
	Quality int
}

// DefaultOptions returns 640x480 at quality 95
func DefaultOptions() Options {
	return Options{Width: DefaultWidth, Height: DefaultHeight, Quality: DefaultQuality}
}

// Validate checks the capture options
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("capture size must be positive, got %dx%d", o.Width, o.Height)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("capture quality must be between 1 and 100, got %d", o.Quality)
	}
	return nil
}

// Capture snapshots the current frame of src, scales it to exactly
// Width x Height and encodes it as JPEG. The aspect ratio is not preserved.
func Capture(src repositories.FrameSource, opts Options) (entities.EncodedImage, error) {
	if src == nil {
		return entities.EncodedImage{}, domain.ErrCameraInactive
	}
	if err := opts.Validate(); err != nil {
		return entities.EncodedImage{}, err
	}

	frame, err := src.Frame()
	if err != nil {
		return entities.EncodedImage{}, err
	}
	if frame == nil || frame.Bounds().Empty() {
		return entities.EncodedImage{}, domain.ErrNoFrameAvailable
	}

	return Encode(frame, opts)
}

// Encode scales img onto an off-screen raster of the configured size and
// compresses it.
func Encode(img image.Image, opts Options) (entities.EncodedImage, error) {
	if img == nil || img.Bounds().Empty() {
		return entities.EncodedImage{}, domain.ErrNoFrameAvailable
	}

	dst := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return entities.EncodedImage{}, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	if buf.Len() == 0 {
		return entities.EncodedImage{}, errors.New("jpeg encoder produced no data")
	}

	return entities.EncodedImage{
		Bytes:      buf.Bytes(),
		MimeType:   entities.MimeTypeJPEG,
		Width:      opts.Width,
		Height:     opts.Height,
		CapturedAt: time.Now(),
	}, nil
}
