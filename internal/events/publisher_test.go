package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"

	"github.com/leonardotrapani/scribebot/internal/apperr"
	"github.com/leonardotrapani/scribebot/internal/chat"
	"github.com/leonardotrapani/scribebot/internal/metrics"
	"github.com/leonardotrapani/scribebot/internal/pipeline"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleOutcome() pipeline.Outcome {
	return pipeline.Outcome{
		RequestID:     "req-9",
		ChatID:        -100123,
		Sender:        "bob",
		Kind:          chat.KindVideoNote,
		Status:        pipeline.Delivered,
		Text:          "ciao a tutti",
		Chunks:        1,
		AudioDuration: 12500 * time.Millisecond,
		Elapsed:       800 * time.Millisecond,
		FinishedAt:    time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg, nil)
			if p.Enabled() {
				t.Error("expected publisher to be disabled")
			}
			if p.writer != nil {
				t.Error("expected nil writer when disabled")
			}
			if err := p.Record(context.Background(), sampleOutcome()); err != nil {
				t.Errorf("Record() error = %v, want nil in log-only mode", err)
			}
			if err := p.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
	}
}

func TestNew_Enabled(t *testing.T) {
	p := New(&Config{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "t"}, nil)
	if !p.Enabled() || p.writer == nil || p.topic != "t" {
		t.Errorf("publisher = %+v", p)
	}
}

func TestRecordWritesEvent(t *testing.T) {
	w := &fakeWriter{}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	p := &Publisher{writer: w, topic: "scribebot.transcripts", enabled: true, metrics: m}

	if err := p.Record(context.Background(), sampleOutcome()); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "-100123" {
		t.Errorf("key = %q", msg.Key)
	}
	if len(msg.Headers) == 0 || string(msg.Headers[0].Value) != "transcript.delivered" {
		t.Errorf("headers = %+v", msg.Headers)
	}

	var ev TranscriptEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if ev.RequestID != "req-9" || ev.Kind != "video_note" || ev.Text != "ciao a tutti" || ev.AudioSeconds != 12.5 || ev.ElapsedMs != 800 {
		t.Errorf("event = %+v", ev)
	}
	if got := testutil.ToFloat64(m.EventsPublished.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok events = %v, want 1", got)
	}
}

func TestRecordWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	p := &Publisher{writer: w, topic: "t", enabled: true, metrics: m}

	o := sampleOutcome()
	o.Status = pipeline.Failed
	o.ErrorKind = apperr.Model
	if err := p.Record(context.Background(), o); err == nil {
		t.Fatal("expected write error")
	}
	if got := testutil.ToFloat64(m.EventsPublished.WithLabelValues("error")); got != 1 {
		t.Errorf("error events = %v, want 1", got)
	}
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w, enabled: true}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !w.closed {
		t.Error("writer not closed")
	}
}
