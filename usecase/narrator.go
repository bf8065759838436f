package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain/repositories"
)

// Narrator speaks descriptions one at a time. A new Speak interrupts the
// utterance in progress and waits for it to stop before starting.
type Narrator struct {
	tts     repositories.TextToSpeech
	sink    repositories.AudioSink
	metrics Recorder
	logger  *zap.Logger

	mu      sync.Mutex
	enabled bool
	current *utterance
}

type utterance struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewNarrator creates an enabled narrator
func NewNarrator(tts repositories.TextToSpeech, sink repositories.AudioSink, metrics Recorder, logger *zap.Logger) *Narrator {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Narrator{
		tts:     tts,
		sink:    sink,
		metrics: metrics,
		logger:  logger,
		enabled: true,
	}
}

// Speak replaces whatever is playing with text. It returns the utterance id,
// or an empty string when narration is disabled or text is blank.
func (n *Narrator) Speak(ctx context.Context, text string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled || strings.TrimSpace(text) == "" {
		return ""
	}

	n.stopLocked()

	uctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	u := &utterance{
		id:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	n.current = u

	go n.play(uctx, u, text)
	return u.id
}

// Cancel stops the current utterance and returns once it has stopped
func (n *Narrator) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
}

// Wait blocks until nothing is playing
func (n *Narrator) Wait() {
	n.mu.Lock()
	u := n.current
	n.mu.Unlock()

	if u != nil {
		<-u.done
	}
}

// SetEnabled toggles narration. Disabling stops the current utterance.
func (n *Narrator) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.enabled = enabled
	if !enabled {
		n.stopLocked()
	}
}

func (n *Narrator) stopLocked() {
	if n.current == nil {
		return
	}
	n.current.cancel()
	<-n.current.done
	n.current = nil
}

func (n *Narrator) play(ctx context.Context, u *utterance, text string) {
	defer close(u.done)
	defer u.cancel()

	if err := n.sink.BeginUtterance(u.id, text); err != nil {
		n.logger.Warn("Failed to start utterance", zap.String("utteranceID", u.id), zap.Error(err))
		return
	}

	completed := false
	defer func() {
		if err := n.sink.EndUtterance(u.id, completed); err != nil {
			n.logger.Debug("Failed to end utterance", zap.String("utteranceID", u.id), zap.Error(err))
		}
		n.metrics.UtteranceFinished(completed)
	}()

	audio, err := n.tts.ConvertTextToSpeech(ctx, text)
	if err != nil {
		n.logger.Error("Text-to-speech failed", zap.String("utteranceID", u.id), zap.Error(err))
		return
	}

	chunks := 0
	for chunk := range audio {
		if ctx.Err() != nil {
			continue
		}
		if err := n.sink.WriteAudio(u.id, chunk); err != nil {
			n.logger.Warn("Failed to deliver audio", zap.String("utteranceID", u.id), zap.Error(err))
			u.cancel()
			continue
		}
		chunks++
	}

	completed = ctx.Err() == nil
	n.logger.Debug("Utterance finished",
		zap.String("utteranceID", u.id),
		zap.Int("chunks", chunks),
		zap.Bool("completed", completed))
}
