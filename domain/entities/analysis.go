package entities

import (
	"encoding/base64"
	"errors"
	"time"
)

// MimeTypeJPEG is the only image type sent for analysis.
const MimeTypeJPEG = "image/jpeg"

// EncodedImage is one captured still frame, compressed as JPEG.
type EncodedImage struct {
	Bytes      []byte    `json:"-"`
	MimeType   string    `json:"mime_type"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CapturedAt time.Time `json:"captured_at"`
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i EncodedImage) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Bytes)
}

// DataURL returns the image as a data: URL suitable for an <img> preview.
func (i EncodedImage) DataURL() string {
	return "data:" + i.MimeType + ";base64," + i.Base64()
}

// AnalysisRequest is the immutable input of one remote analysis call.
type AnalysisRequest struct {
	imageBytes []byte
	mimeType   string
	promptText string
}

// NewAnalysisRequest builds a request from a captured image and the
// instruction prompt. The image bytes are copied.
func NewAnalysisRequest(image EncodedImage, prompt string) (AnalysisRequest, error) {
	if len(image.Bytes) == 0 {
		return AnalysisRequest{}, errors.New("image bytes are required")
	}
	if prompt == "" {
		return AnalysisRequest{}, errors.New("prompt text is required")
	}
	data := make([]byte, len(image.Bytes))
	copy(data, image.Bytes)
	return AnalysisRequest{
		imageBytes: data,
		mimeType:   MimeTypeJPEG,
		promptText: prompt,
	}, nil
}

// ImageBytes returns a copy of the encoded image.
func (r AnalysisRequest) ImageBytes() []byte {
	data := make([]byte, len(r.imageBytes))
	copy(data, r.imageBytes)
	return data
}

// ImageBase64 returns the image encoded for inline transport.
func (r AnalysisRequest) ImageBase64() string {
	return base64.StdEncoding.EncodeToString(r.imageBytes)
}

func (r AnalysisRequest) MimeType() string   { return r.mimeType }
func (r AnalysisRequest) PromptText() string { return r.promptText }
func (r AnalysisRequest) ImageSize() int     { return len(r.imageBytes) }

// AnalysisResponse is the provider's reply. Only the description text path is
// contractual; Raw is kept as-is for diagnostics.
type AnalysisResponse struct {
	Raw        []byte
	Model      string
	StatusCode int
	ReceivedAt time.Time
}
