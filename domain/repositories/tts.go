package repositories

import "context"

type TextToSpeech interface {
	ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error)
}

// AudioSink receives narration audio. Every BeginUtterance is matched by
// exactly one EndUtterance.
type AudioSink interface {
	BeginUtterance(utteranceID, text string) error
	WriteAudio(utteranceID string, chunk []byte) error
	EndUtterance(utteranceID string, completed bool) error
}
