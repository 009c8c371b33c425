// Package metrics exposes Prometheus metrics for the bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scribebot"

// Metrics methods are safe on a nil receiver, which records nothing.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsActive   prometheus.Gauge
	RequestDuration  prometheus.Histogram
	AudioSeconds     prometheus.Histogram
	ChunksPerRequest prometheus.Histogram
	ChunkLatency     prometheus.Histogram
	ProgressErrors   prometheus.Counter
	MessagesSent     prometheus.Counter
	EventsPublished  *prometheus.CounterVec
	ConfigReloads    prometheus.Counter
}

// NewMetrics registers every metric with reg; pass prometheus.NewRegistry()
// in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Transcription requests by final status and error kind",
		}, []string{"status", "kind"}),
		RequestsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_active",
			Help:      "Requests currently being processed",
		}),
		RequestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Wall time from receipt to delivery",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),
		AudioSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audio_duration_seconds",
			Help:      "Length of decoded audio",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}),
		ChunksPerRequest: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_per_request",
			Help:      "Number of chunks a request was split into",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		ChunkLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_transcription_seconds",
			Help:      "Model time per chunk, including wait for the model",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		ProgressErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_errors_total",
			Help:      "Progress updates that failed to reach the user",
		}),
		MessagesSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_messages_total",
			Help:      "Transcript messages delivered",
		}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Transcript events published, by result",
		}, []string{"result"}),
		ConfigReloads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Successful configuration reloads",
		}),
	}
}

func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.RequestsActive.Inc()
}

// RequestFinished records the outcome; kind is empty on success.
func (m *Metrics) RequestFinished(status, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsActive.Dec()
	m.RequestsTotal.WithLabelValues(status, kind).Inc()
	m.RequestDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordAudio(d time.Duration, chunks int) {
	if m == nil {
		return
	}
	m.AudioSeconds.Observe(d.Seconds())
	m.ChunksPerRequest.Observe(float64(chunks))
}

func (m *Metrics) RecordChunk(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ChunkLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) RecordProgressError() {
	if m == nil {
		return
	}
	m.ProgressErrors.Inc()
}

func (m *Metrics) RecordMessageSent() {
	if m == nil {
		return
	}
	m.MessagesSent.Inc()
}

func (m *Metrics) RecordEvent(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordConfigReload() {
	if m == nil {
		return
	}
	m.ConfigReloads.Inc()
}
