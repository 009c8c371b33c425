package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/chat"
	"github.com/leonardotrapani/scribebot/internal/config"
)

const SampleRate = 16000

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Bot.Token = "123456:test-token"
	cfg.Providers = map[string]config.ProviderConfig{
		"openai": {APIKey: "test-api-key"},
	}
	cfg.Storage.Enabled = false
	cfg.Transcription.Threads = 1
	return cfg
}

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// Tone returns a 440Hz sine of the given length at SampleRate.
func Tone(d time.Duration) audio.Buffer {
	n := int(d.Seconds() * SampleRate)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}
	return audio.Buffer{Samples: samples, SampleRate: SampleRate}
}

// Silence returns d of digital silence at SampleRate.
func Silence(d time.Duration) audio.Buffer {
	return audio.Buffer{Samples: make([]float32, int(d.Seconds()*SampleRate)), SampleRate: SampleRate}
}

// Concat joins buffers recorded at SampleRate.
func Concat(parts ...audio.Buffer) audio.Buffer {
	var samples []float32
	for _, p := range parts {
		samples = append(samples, p.Samples...)
	}
	return audio.Buffer{Samples: samples, SampleRate: SampleRate}
}

// FakeMessenger implements chat.Messenger in memory.
type FakeMessenger struct {
	Files       map[string][]byte
	DownloadErr error
	SendErr     error
	EditErr     error
	DeleteErr   error

	mu      sync.Mutex
	nextID  int
	Sent    []SentMessage
	Edits   []SentMessage
	Deleted []chat.MessageRef
}

type SentMessage struct {
	Ref     chat.MessageRef
	ReplyTo int
	Text    string
}

func NewFakeMessenger() *FakeMessenger {
	return &FakeMessenger{Files: map[string][]byte{}, nextID: 100}
}

func (m *FakeMessenger) Download(_ context.Context, fileID string) ([]byte, error) {
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %q not found", fileID)
	}
	return data, nil
}

func (m *FakeMessenger) Send(_ context.Context, chatID int64, replyTo int, text string) (chat.MessageRef, error) {
	if m.SendErr != nil {
		return chat.MessageRef{}, m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ref := chat.MessageRef{ChatID: chatID, MessageID: m.nextID}
	m.Sent = append(m.Sent, SentMessage{Ref: ref, ReplyTo: replyTo, Text: text})
	return ref, nil
}

func (m *FakeMessenger) Edit(_ context.Context, ref chat.MessageRef, text string) error {
	if m.EditErr != nil {
		return m.EditErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edits = append(m.Edits, SentMessage{Ref: ref, Text: text})
	return nil
}

func (m *FakeMessenger) Delete(_ context.Context, ref chat.MessageRef) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, ref)
	return nil
}

// Texts returns the text of every sent message, in order.
func (m *FakeMessenger) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Sent))
	for i, s := range m.Sent {
		out[i] = s.Text
	}
	return out
}

// FakeModel returns scripted text per chunk index.
type FakeModel struct {
	Texts  []string
	FailAt int // chunk index that fails, -1 for none
	Err    error

	mu    sync.Mutex
	Calls []audio.Chunk
}

func NewFakeModel(texts ...string) *FakeModel {
	return &FakeModel{Texts: texts, FailAt: -1}
}

func (m *FakeModel) Transcribe(ctx context.Context, chunk audio.Chunk) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.Calls = append(m.Calls, chunk)
	m.mu.Unlock()
	if chunk.Index == m.FailAt {
		if m.Err != nil {
			return "", m.Err
		}
		return "", errors.New("model failure")
	}
	if chunk.Index < len(m.Texts) {
		return m.Texts[chunk.Index], nil
	}
	return "", nil
}

func (m *FakeModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// RecordingSink keeps every progress report it receives.
type RecordingSink struct {
	UpdateErr error

	mu        sync.Mutex
	Updates   []int
	Completed int
	Failed    []error
}

func (s *RecordingSink) Update(_ context.Context, percent int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Updates = append(s.Updates, percent)
	return s.UpdateErr
}

func (s *RecordingSink) Complete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Completed++
	return nil
}

func (s *RecordingSink) Fail(_ context.Context, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed = append(s.Failed, err)
	return nil
}

// BytesSource serves fixed bytes.
type BytesSource struct {
	Data []byte
	Err  error
}

func (s BytesSource) Fetch(context.Context) ([]byte, error) {
	return s.Data, s.Err
}

// StaticDecoder ignores its input and returns Buffer.
type StaticDecoder struct {
	Buffer audio.Buffer
	Err    error
}

func (d StaticDecoder) Decode(_ context.Context, _ []byte, _ int) (audio.Buffer, error) {
	return d.Buffer, d.Err
}

// CollectOutput gathers delivered text.
type CollectOutput struct {
	Err error

	mu    sync.Mutex
	Texts []string
}

func (o *CollectOutput) Deliver(_ context.Context, text string) error {
	if o.Err != nil {
		return o.Err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Texts = append(o.Texts, text)
	return nil
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
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
