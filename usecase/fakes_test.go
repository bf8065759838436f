package usecase

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/satriahrh/snapspeak/adapters/vision"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/domain/repositories"
)

type mockVision struct {
	mock.Mock
}

func (m *mockVision) Analyze(ctx context.Context, request entities.AnalysisRequest) (*entities.AnalysisResponse, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*entities.AnalysisResponse)
	return resp, args.Error(1)
}

func (m *mockVision) Name() string { return "mock" }

func replyWith(text string) *entities.AnalysisResponse {
	return &entities.AnalysisResponse{
		Raw:        vision.GenerateContentJSON(text),
		Model:      "test-model",
		StatusCode: http.StatusOK,
		ReceivedAt: time.Now(),
	}
}

type fakeCamera struct {
	mu      sync.Mutex
	openErr error
	gate    chan struct{}
	waiting int
	opens   int
	closes  int
}

func (c *fakeCamera) Name() string { return "fake" }

// failWith makes every following Open fail with err
func (c *fakeCamera) failWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// holdOpen makes the next Opens block until the returned gate is closed
func (c *fakeCamera) holdOpen() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = make(chan struct{})
	return c.gate
}

func (c *fakeCamera) Open(ctx context.Context) (repositories.FrameSource, error) {
	c.mu.Lock()
	gate := c.gate
	if gate != nil {
		c.waiting++
	}
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return nil, c.openErr
	}
	c.opens++
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	img.Set(1, 1, color.White)
	return &fakeSource{camera: c, frame: img}, nil
}

func (c *fakeCamera) blocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiting > 0
}

func (c *fakeCamera) counts() (opens, closes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens, c.closes
}

type fakeSource struct {
	camera *fakeCamera
	frame  image.Image
}

func (s *fakeSource) Frame() (image.Image, error) { return s.frame, nil }

func (s *fakeSource) Close() error {
	s.camera.mu.Lock()
	s.camera.closes++
	s.camera.mu.Unlock()
	return nil
}

// fakeTTS emits chunks slowly until its context is cancelled
type fakeTTS struct {
	mu     sync.Mutex
	texts  []string
	chunks int
	delay  time.Duration
}

func (f *fakeTTS) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	out := make(chan []byte)
	go func() {
		defer close(out)
		for i := 0; i < f.chunks; i++ {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return
			}
			select {
			case out <- []byte{byte(i)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (f *fakeTTS) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type sinkEvent struct {
	kind        string
	utteranceID string
	completed   bool
}

// recordingSink records utterance framing and tracks overlap
type recordingSink struct {
	mu        sync.Mutex
	events    []sinkEvent
	active    int
	maxActive int
	bytes     int
}

func (s *recordingSink) BeginUtterance(utteranceID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active++
	if s.active > s.maxActive {
		s.maxActive = s.active
	}
	s.events = append(s.events, sinkEvent{kind: "begin", utteranceID: utteranceID})
	return nil
}

func (s *recordingSink) WriteAudio(utteranceID string, chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bytes += len(chunk)
	return nil
}

func (s *recordingSink) EndUtterance(utteranceID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active--
	s.events = append(s.events, sinkEvent{kind: "end", utteranceID: utteranceID, completed: completed})
	return nil
}

func (s *recordingSink) snapshot() ([]sinkEvent, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkEvent(nil), s.events...), s.maxActive
}

func (s *recordingSink) completedCount() int {
	events, _ := s.snapshot()
	n := 0
	for _, e := range events {
		if e.kind == "end" && e.completed {
			n++
		}
	}
	return n
}
