package transcriber

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leonardotrapani/scribebot/internal/apperr"
	"github.com/leonardotrapani/scribebot/internal/audio"
)

type countingAdapter struct {
	inside  atomic.Int32
	maxSeen atomic.Int32
	calls   atomic.Int32
	delay   time.Duration
	err     error
	text    string
}

func (a *countingAdapter) Transcribe(ctx context.Context, clip audio.Buffer) (string, error) {
	a.calls.Add(1)
	n := a.inside.Add(1)
	defer a.inside.Add(-1)
	for {
		old := a.maxSeen.Load()
		if n <= old || a.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return a.text, a.err
}

func testChunk(index int) audio.Chunk {
	return audio.Chunk{Index: index, Buffer: audio.Buffer{Samples: make([]float32, 160), SampleRate: 16000}}
}

func TestGateSerializesModelAccess(t *testing.T) {
	adapter := &countingAdapter{delay: 5 * time.Millisecond, text: "  hi  "}
	gate := NewGate(adapter, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text, err := gate.Transcribe(context.Background(), testChunk(i))
			if err != nil {
				t.Errorf("chunk %d: %v", i, err)
			}
			if text != "hi" {
				t.Errorf("chunk %d: text %q not trimmed", i, text)
			}
		}(i)
	}
	wg.Wait()

	if got := adapter.maxSeen.Load(); got != 1 {
		t.Errorf("max concurrent adapter calls = %d, want 1", got)
	}
	if got := adapter.calls.Load(); got != 8 {
		t.Errorf("calls = %d, want 8", got)
	}
}

func TestGateWaitHonoursContext(t *testing.T) {
	adapter := &countingAdapter{delay: 200 * time.Millisecond}
	gate := NewGate(adapter, 0)

	started := make(chan struct{})
	go func() {
		close(started)
		gate.Transcribe(context.Background(), testChunk(0))
	}()
	<-started
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := gate.Transcribe(ctx, testChunk(1))
	if !apperr.IsKind(err, apperr.Model) {
		t.Errorf("expected model error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestGateWrapsAdapterErrors(t *testing.T) {
	cause := errors.New("out of memory")
	gate := NewGate(&countingAdapter{err: cause}, 0)

	_, err := gate.Transcribe(context.Background(), testChunk(2))
	if !apperr.IsKind(err, apperr.Model) || !errors.Is(err, cause) {
		t.Fatalf("unexpected error %v", err)
	}
	if err.Error() != "transcribe chunk 3: out of memory" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestGateTimeout(t *testing.T) {
	gate := NewGate(&countingAdapter{delay: time.Second}, 10*time.Millisecond)
	_, err := gate.Transcribe(context.Background(), testChunk(0))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestGateCheckAndClose(t *testing.T) {
	gate := NewGate(&countingAdapter{}, 0)
	if err := gate.Check(context.Background()); err != nil {
		t.Errorf("adapter without Check should pass: %v", err)
	}
	if err := gate.Close(); err != nil {
		t.Errorf("adapter without Close should pass: %v", err)
	}

	missing := NewGate(NewWhisperCppAdapter("/nonexistent/model.bin", "", 0), 0)
	if err := missing.Check(context.Background()); !IsFatalTranscriptionError(err) {
		t.Errorf("expected fatal error, got %v", err)
	}
}

func TestFatalTranscriptionError(t *testing.T) {
	if NewFatalTranscriptionError("x", nil) != nil {
		t.Error("nil error should stay nil")
	}

	cause := errors.New("model file not found: /m.bin")
	err := NewFatalTranscriptionError("whisper-cpp", cause)
	if err.Error() != "whisper-cpp: model file not found: /m.bin" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("cause should unwrap")
	}

	wrapped := apperr.New(apperr.Model, "transcribe chunk 1", err)
	if !IsFatalTranscriptionError(wrapped) || !apperr.IsKind(wrapped, apperr.Model) {
		t.Errorf("wrapped = %v", wrapped)
	}
}
