package tts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain/repositories"
)

// MockTextToSpeech is a placeholder implementation for text-to-speech. It
// emits silent PCM paced roughly like real speech.
type MockTextToSpeech struct {
	logger       *zap.Logger
	chunkSize    int
	chunkPerRune time.Duration
}

var _ repositories.TextToSpeech = (*MockTextToSpeech)(nil)

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech(logger *zap.Logger, chunkPerRune time.Duration) *MockTextToSpeech {
	return &MockTextToSpeech{
		logger:       logger,
		chunkSize:    480,
		chunkPerRune: chunkPerRune,
	}
}

// ConvertTextToSpeech implements repositories.TextToSpeech
func (m *MockTextToSpeech) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	m.logger.Info("Processing text-to-speech", zap.Int("textLength", len(text)))

	audioChan := make(chan []byte)
	go func() {
		defer close(audioChan)
		for range []rune(text) {
			if m.chunkPerRune > 0 {
				select {
				case <-time.After(m.chunkPerRune):
				case <-ctx.Done():
					return
				}
			}
			select {
			case audioChan <- make([]byte, m.chunkSize):
			case <-ctx.Done():
				return
			}
		}
	}()
	return audioChan, nil
}
