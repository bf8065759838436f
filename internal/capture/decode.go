package capture

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxFrameBytes = 8 << 20
	maxFrameDimension    = 8192
	maxFramePixels       = 40_000_000
)

var blockedSignatures = [][]byte{
	{0x4D, 0x5A},             // executable
	{0x25, 0x50, 0x44, 0x46}, // pdf
	{0x50, 0x4B, 0x03, 0x04}, // zip
	{0x1F, 0x8B, 0x08},       // gzip
}

// DecodeFrame decodes a pushed or uploaded frame. The payload is size checked
// and its header inspected before the full decode.
func DecodeFrame(data []byte, maxBytes int64) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image payload")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFrameBytes
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("frame size exceeds limit: %d bytes (max %d bytes)", len(data), maxBytes)
	}
	for _, signature := range blockedSignatures {
		if bytes.HasPrefix(data, signature) {
			return nil, "", fmt.Errorf("payload is not an image: header %x", signature)
		}
	}

	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image config: %w", err)
	}
	if config.Width > maxFrameDimension || config.Height > maxFrameDimension {
		return nil, "", fmt.Errorf("dimensions exceed limit: %dx%d (max %dx%d)",
			config.Width, config.Height, maxFrameDimension, maxFrameDimension)
	}
	if int64(config.Width)*int64(config.Height) > maxFramePixels {
		return nil, "", fmt.Errorf("pixel count exceeds limit: %d", int64(config.Width)*int64(config.Height))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s image: %w", format, err)
	}
	return img, format, nil
}
