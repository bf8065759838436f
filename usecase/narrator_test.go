package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNarratorSpeaksToCompletion(t *testing.T) {
	tts := &fakeTTS{chunks: 3, delay: time.Millisecond}
	sink := &recordingSink{}
	narrator := NewNarrator(tts, sink, nil, zaptest.NewLogger(t))

	id := narrator.Speak(context.Background(), "A red apple.")
	require.NotEmpty(t, id)
	narrator.Wait()

	events, _ := sink.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, sinkEvent{kind: "begin", utteranceID: id}, events[0])
	assert.Equal(t, sinkEvent{kind: "end", utteranceID: id, completed: true}, events[1])
	assert.Equal(t, 3, sink.bytes)
}

func TestNarratorLastCallWins(t *testing.T) {
	tts := &fakeTTS{chunks: 50, delay: 2 * time.Millisecond}
	sink := &recordingSink{}
	narrator := NewNarrator(tts, sink, nil, zaptest.NewLogger(t))

	first := narrator.Speak(context.Background(), "first description")
	second := narrator.Speak(context.Background(), "second description")
	narrator.Wait()

	events, maxActive := sink.snapshot()
	assert.Equal(t, 1, maxActive, "utterances must never overlap")
	assert.Equal(t, 1, sink.completedCount(), "exactly one utterance completes")

	require.Len(t, events, 4)
	assert.Equal(t, sinkEvent{kind: "begin", utteranceID: first}, events[0])
	assert.Equal(t, sinkEvent{kind: "end", utteranceID: first, completed: false}, events[1])
	assert.Equal(t, sinkEvent{kind: "begin", utteranceID: second}, events[2])
	assert.Equal(t, sinkEvent{kind: "end", utteranceID: second, completed: true}, events[3])
}

func TestNarratorDisabledAndBlank(t *testing.T) {
	tts := &fakeTTS{chunks: 1}
	sink := &recordingSink{}
	narrator := NewNarrator(tts, sink, nil, zaptest.NewLogger(t))

	assert.Empty(t, narrator.Speak(context.Background(), "   "))

	narrator.SetEnabled(false)
	assert.Empty(t, narrator.Speak(context.Background(), "A mug."))
	narrator.Wait()

	assert.Empty(t, tts.calls())
	events, _ := sink.snapshot()
	assert.Empty(t, events)
}

func TestNarratorCancel(t *testing.T) {
	tts := &fakeTTS{chunks: 1000, delay: time.Millisecond}
	sink := &recordingSink{}
	narrator := NewNarrator(tts, sink, nil, zaptest.NewLogger(t))

	narrator.Speak(context.Background(), "a long description")
	narrator.Cancel()

	events, _ := sink.snapshot()
	require.Len(t, events, 2, "cancel returns only after the utterance has ended")
	assert.False(t, events[1].completed)
}

func TestNarratorDisablingStopsPlayback(t *testing.T) {
	tts := &fakeTTS{chunks: 1000, delay: time.Millisecond}
	sink := &recordingSink{}
	narrator := NewNarrator(tts, sink, nil, zaptest.NewLogger(t))

	narrator.Speak(context.Background(), "a long description")
	narrator.SetEnabled(false)

	assert.Equal(t, 0, sink.completedCount())
	_, maxActive := sink.snapshot()
	assert.Equal(t, 1, maxActive)
}
