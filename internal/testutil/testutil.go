package testutil

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprsubs/internal/config"
	"github.com/leonardotrapani/hyprsubs/internal/recognizer"
	"github.com/leonardotrapani/hyprsubs/internal/recording"
	"github.com/leonardotrapani/hyprsubs/internal/translator"
)

// TestConfig returns a valid configuration with short session timings.
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Session.Timeout = 200 * time.Millisecond
	cfg.Session.TickInterval = 10 * time.Millisecond
	cfg.Session.PollTimeout = 10 * time.Millisecond
	cfg.Display.Terminal = false
	cfg.Notifications = config.NotificationsConfig{Enabled: true, Type: "log"}
	return cfg
}

// TestConfigWithInvalidValues returns a config that fails validation.
func TestConfigWithInvalidValues() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Recognizer.Port = 0
	cfg.Recording.SampleRate = 0
	cfg.Translation.Backend = "carrier-pigeon"
	cfg.Session.Timeout = 0
	cfg.Notifications.Type = "invalid"
	return cfg
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return configPath
}

// MockAudioFrame creates a test audio frame
func MockAudioFrame(data []byte) recording.AudioFrame {
	if data == nil {
		data = make([]byte, 1024)
		for i := range data {
			data[i] = byte(i % 256)
		}
	}
	return recording.AudioFrame{Data: data, Timestamp: time.Now()}
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within %v", timeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// CaptureOutput captures stdout for testing
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	return string(out)
}

// ScriptedTranslator translates deterministically: a fixed mapping first,
// then "EN(" + text + ")". It records every call.
type ScriptedTranslator struct {
	Mapping map[string]string
	Delay   func(text string) time.Duration

	mu    sync.Mutex
	calls []string
}

func NewScriptedTranslator() *ScriptedTranslator {
	return &ScriptedTranslator{Mapping: map[string]string{}}
}

// Wrap is the default rendering of an unmapped text.
func Wrap(text string) string {
	return "EN(" + text + ")"
}

func (s *ScriptedTranslator) Translate(ctx context.Context, text string) translator.Result {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	out, ok := s.Mapping[text]
	delay := s.Delay
	s.mu.Unlock()

	if delay != nil {
		if d := delay(text); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return translator.Result{Text: text, Fallback: true}
			}
		}
	}
	if !ok {
		out = Wrap(text)
	}
	return translator.Result{Text: out}
}

// Calls returns the texts translated so far.
func (s *ScriptedTranslator) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// RecordingNotifier keeps every notification.
type RecordingNotifier struct {
	mu       sync.Mutex
	Sessions []bool
	Statuses []string
	Errors   []string
}

func (n *RecordingNotifier) SessionChanged(on bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sessions = append(n.Sessions, on)
}

func (n *RecordingNotifier) Status(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Statuses = append(n.Statuses, msg)
}

func (n *RecordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, msg)
}

// StatusMessages returns a copy of the status messages.
func (n *RecordingNotifier) StatusMessages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Statuses...)
}

// MockRecorder plays back a fixed list of frames, then stays open until
// stopped.
type MockRecorder struct {
	Frames     []recording.AudioFrame
	StartError error

	mu        sync.Mutex
	recording atomic.Bool
	stopCh    chan struct{}
}

func NewMockRecorder() *MockRecorder {
	return &MockRecorder{
		Frames: []recording.AudioFrame{MockAudioFrame(nil)},
	}
}

func (m *MockRecorder) Start(ctx context.Context) (<-chan recording.AudioFrame, <-chan error, error) {
	if m.StartError != nil {
		return nil, nil, m.StartError
	}

	stopCh := make(chan struct{})
	m.mu.Lock()
	m.stopCh = stopCh
	m.mu.Unlock()
	m.recording.Store(true)

	frameCh := make(chan recording.AudioFrame, len(m.Frames)+1)
	errCh := make(chan error, 1)

	go func() {
		defer close(frameCh)
		defer close(errCh)

		for _, frame := range m.Frames {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case frameCh <- frame:
			}
		}

		select {
		case <-ctx.Done():
		case <-stopCh:
		}
	}()

	return frameCh, errCh, nil
}

func (m *MockRecorder) Stop() {
	if !m.recording.CompareAndSwap(true, false) {
		return
	}
	m.mu.Lock()
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
	m.mu.Unlock()
}

func (m *MockRecorder) IsRecording() bool {
	return m.recording.Load()
}

// MockRecognizer stands in for a streaming recognizer. Tests push results
// with Emit; audio sent to it is recorded.
type MockRecognizer struct {
	StartError error

	mu      sync.Mutex
	chunks  [][]byte
	events  chan recognizer.Event
	closed  bool
	started bool
}

func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{events: make(chan recognizer.Event, 100)}
}

func (m *MockRecognizer) Start(ctx context.Context) error {
	if m.StartError != nil {
		return m.StartError
	}
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	return nil
}

func (m *MockRecognizer) SendChunk(pcm []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, pcm)
	return nil
}

func (m *MockRecognizer) Events() <-chan recognizer.Event {
	return m.events
}

// Emit delivers a recognizer result.
func (m *MockRecognizer) Emit(mode recognizer.Mode, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.events <- recognizer.Event{Mode: mode, Text: text, WavName: "test", Received: time.Now()}
}

func (m *MockRecognizer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Chunks returns how many audio chunks were received.
func (m *MockRecognizer) Chunks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks)
}

// Started reports whether Start succeeded.
func (m *MockRecognizer) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}
