// Package events publishes finished transcriptions to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/leonardotrapani/scribebot/internal/logging"
	"github.com/leonardotrapani/scribebot/internal/metrics"
	"github.com/leonardotrapani/scribebot/internal/pipeline"
)

// TranscriptEvent is the JSON payload written for every finished request.
type TranscriptEvent struct {
	RequestID    string    `json:"requestId"`
	ChatID       int64     `json:"chatId"`
	Sender       string    `json:"sender,omitempty"`
	Kind         string    `json:"kind,omitempty"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"errorKind,omitempty"`
	Error        string    `json:"error,omitempty"`
	Text         string    `json:"text,omitempty"`
	Chunks       int       `json:"chunks"`
	AudioSeconds float64   `json:"audioSeconds"`
	ElapsedMs    int64     `json:"elapsedMs"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewTranscriptEvent(o pipeline.Outcome) TranscriptEvent {
	return TranscriptEvent{
		RequestID:    o.RequestID,
		ChatID:       o.ChatID,
		Sender:       o.Sender,
		Kind:         string(o.Kind),
		Status:       string(o.Status),
		ErrorKind:    string(o.ErrorKind),
		Error:        o.Error,
		Text:         o.Text,
		Chunks:       o.Chunks,
		AudioSeconds: o.AudioDuration.Seconds(),
		ElapsedMs:    o.Elapsed.Milliseconds(),
		Timestamp:    o.FinishedAt,
	}
}

type Config struct {
	Brokers []string
	Topic   string
	Enabled bool
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes TranscriptEvents keyed by chat, so one chat's events stay
// ordered within a partition. Without brokers it only logs.
type Publisher struct {
	writer  messageWriter
	topic   string
	enabled bool
	metrics *metrics.Metrics
}

func New(cfg *Config, m *metrics.Metrics) *Publisher {
	logger := logging.WithComponent("events")

	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka disabled, using log-only mode")
		p := &Publisher{metrics: m}
		if cfg != nil {
			p.topic = cfg.Topic
		}
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka publisher initialized")

	return &Publisher{writer: writer, topic: cfg.Topic, enabled: true, metrics: m}
}

func (p *Publisher) Enabled() bool { return p.enabled }

// Record satisfies pipeline.Recorder.
func (p *Publisher) Record(ctx context.Context, o pipeline.Outcome) error {
	return p.Publish(ctx, NewTranscriptEvent(o))
}

func (p *Publisher) Publish(ctx context.Context, ev TranscriptEvent) error {
	logger := logging.WithComponent("events")

	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal event")
		p.metrics.RecordEvent(false)
		return err
	}

	logger.Debug().
		Str("topic", p.topic).
		Str("requestId", ev.RequestID).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || p.writer == nil {
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ChatID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("transcript." + ev.Status)},
			{Key: "requestId", Value: []byte(ev.RequestID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Str("topic", p.topic).Str("requestId", ev.RequestID).Msg("Failed to write to Kafka")
		p.metrics.RecordEvent(false)
		return err
	}
	p.metrics.RecordEvent(true)
	return nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		logger := logging.WithComponent("events")
		logger.Error().Err(err).Msg("Error closing Kafka writer")
		return err
	}
	return nil
}
