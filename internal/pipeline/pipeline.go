// Package pipeline turns one audio message into delivered transcript text.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leonardotrapani/scribebot/internal/apperr"
	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/chat"
	"github.com/leonardotrapani/scribebot/internal/config"
	"github.com/leonardotrapani/scribebot/internal/logging"
	"github.com/leonardotrapani/scribebot/internal/metrics"
	"github.com/leonardotrapani/scribebot/internal/notify"
	"github.com/leonardotrapani/scribebot/internal/textsplit"
)

type Status string

const (
	Received     Status = "received"
	Downloading  Status = "downloading"
	Chunking     Status = "chunking"
	Transcribing Status = "transcribing"
	Finalizing   Status = "finalizing"
	Delivered    Status = "delivered"
	Failed       Status = "failed"
)

// Source yields the encoded audio of a request.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Output receives the transcript, one message-sized piece at a time.
type Output interface {
	Deliver(ctx context.Context, text string) error
}

// Model transcribes one chunk. transcriber.Gate is the production one.
type Model interface {
	Transcribe(ctx context.Context, chunk audio.Chunk) (string, error)
}

// Recorder is told about every finished request, successful or not.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

type ConfigSource interface {
	GetConfig() *config.Config
}

type Request struct {
	ID       string
	ChatID   int64
	Sender   string
	Kind     chat.Kind
	Source   Source
	Output   Output
	Progress notify.Sink
}

type Transcript struct {
	RequestID     string
	Text          string
	Pieces        []string
	Chunks        int
	AudioDuration time.Duration
	Elapsed       time.Duration
	NoSpeech      bool
}

// Outcome summarises a finished request for recorders.
type Outcome struct {
	RequestID     string
	ChatID        int64
	Sender        string
	Kind          chat.Kind
	Status        Status
	ErrorKind     apperr.Kind
	Error         string
	Text          string
	Chunks        int
	AudioDuration time.Duration
	Elapsed       time.Duration
	FinishedAt    time.Time
}

// JobInfo is a snapshot of a running request.
type JobInfo struct {
	ID      string    `json:"id"`
	ChatID  int64     `json:"chatId"`
	Sender  string    `json:"sender,omitempty"`
	Status  Status    `json:"status"`
	Percent int       `json:"percent"`
	Chunks  int       `json:"chunks"`
	Started time.Time `json:"started"`
}

type Pipeline struct {
	configs   ConfigSource
	decoder   audio.Decoder
	model     Model
	recorders []Recorder
	metrics   *metrics.Metrics

	mu   sync.Mutex
	jobs map[string]*JobInfo
}

type Option func(*Pipeline)

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorders = append(p.recorders, r)
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func New(configs ConfigSource, decoder audio.Decoder, model Model, opts ...Option) *Pipeline {
	p := &Pipeline{
		configs: configs,
		decoder: decoder,
		model:   model,
		jobs:    make(map[string]*JobInfo),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewRequestID() string {
	return uuid.NewString()
}

// Jobs lists running requests, oldest first.
func (p *Pipeline) Jobs() []JobInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]JobInfo, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Started.Before(out[k].Started) })
	return out
}

// Run processes req to completion. On failure nothing is delivered, the
// progress sink is told and the error is returned for the caller to report.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Transcript, error) {
	if req.ID == "" {
		req.ID = NewRequestID()
	}
	if req.Progress == nil {
		req.Progress = notify.Nop{}
	}
	if req.Source == nil || req.Output == nil {
		return nil, apperr.Errorf(apperr.InvalidInput, "start request", "request needs a source and an output")
	}

	cfg := p.configs.GetConfig()
	logger := logging.WithRequest(req.ID, req.ChatID)
	started := time.Now()

	p.track(req, started)
	defer p.untrack(req.ID)
	p.metrics.RequestStarted()
	logger.Info().Str("sender", req.Sender).Str("kind", string(req.Kind)).Msg("request received")

	tr, err := p.run(ctx, cfg, req, &logger)
	elapsed := time.Since(started)

	outcome := Outcome{
		RequestID:  req.ID,
		ChatID:     req.ChatID,
		Sender:     req.Sender,
		Kind:       req.Kind,
		Elapsed:    elapsed,
		FinishedAt: time.Now(),
	}
	if tr != nil {
		outcome.Text = tr.Text
		outcome.Chunks = tr.Chunks
		outcome.AudioDuration = tr.AudioDuration
	}

	if err != nil {
		kind := apperr.KindOf(err)
		p.setStatus(req.ID, Failed)
		logger.Error().Err(err).Str("kind", string(kind)).Dur("elapsed", elapsed).Msg("request failed")
		if ferr := req.Progress.Fail(ctx, err); ferr != nil {
			p.progressError(&logger, ferr)
		}
		p.metrics.RequestFinished(string(Failed), string(kind), elapsed)
		outcome.Status = Failed
		outcome.ErrorKind = kind
		outcome.Error = err.Error()
		outcome.Text = ""
		p.record(ctx, &logger, outcome)
		return nil, err
	}

	tr.Elapsed = elapsed
	p.setStatus(req.ID, Delivered)
	logger.Info().
		Int("chunks", tr.Chunks).
		Int("pieces", len(tr.Pieces)).
		Str("audio", audio.FormatDuration(tr.AudioDuration)).
		Dur("elapsed", elapsed).
		Msg("transcript delivered")
	p.metrics.RequestFinished(string(Delivered), "", elapsed)
	outcome.Status = Delivered
	p.record(ctx, &logger, outcome)
	return tr, nil
}

func (p *Pipeline) run(ctx context.Context, cfg *config.Config, req Request, logger *zerolog.Logger) (*Transcript, error) {
	p.setStatus(req.ID, Downloading)
	data, err := req.Source.Fetch(ctx)
	if err != nil {
		return nil, wrap(apperr.Download, "download audio", err)
	}
	if len(data) == 0 {
		return nil, apperr.Errorf(apperr.Download, "download audio", "empty file")
	}
	logger.Debug().Int("bytes", len(data)).Msg("audio downloaded")

	buf, err := p.decoder.Decode(ctx, data, cfg.Audio.SampleRate)
	if err != nil {
		return nil, wrap(apperr.Decode, "decode audio", err)
	}
	tr := &Transcript{RequestID: req.ID, AudioDuration: buf.Duration()}
	if limit := cfg.Audio.MaxDuration; limit > 0 && buf.Duration() > limit {
		return tr, apperr.Errorf(apperr.InvalidInput, "check duration",
			"audio is %s long, the limit is %s",
			audio.FormatDuration(buf.Duration().Round(time.Second)), audio.FormatDuration(limit))
	}

	p.setStatus(req.ID, Chunking)
	chunks, err := cfg.ToChunker().Split(buf)
	if err != nil {
		return tr, wrap(apperr.InvalidInput, "split audio", err)
	}
	tr.Chunks = len(chunks)
	p.setChunks(req.ID, len(chunks))
	p.metrics.RecordAudio(buf.Duration(), len(chunks))
	logger.Debug().Int("chunks", len(chunks)).Str("audio", audio.FormatDuration(buf.Duration().Round(time.Second))).Msg("audio split")

	p.setStatus(req.ID, Transcribing)
	p.progress(ctx, req, logger, 0)

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		chunkStart := time.Now()
		text, err := p.model.Transcribe(ctx, chunk)
		if err != nil {
			return tr, wrap(apperr.Model, fmt.Sprintf("transcribe chunk %d", i+1), err)
		}
		p.metrics.RecordChunk(time.Since(chunkStart))
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
		p.progress(ctx, req, logger, percent(i+1, len(chunks)))
	}

	p.setStatus(req.ID, Finalizing)
	tr.Text = strings.Join(parts, " ")
	body := tr.Text
	if body == "" {
		tr.NoSpeech = true
		body = cfg.Messages.NoSpeech
		logger.Info().Msg("no speech detected")
	}

	// the progress message goes away before the transcript arrives
	if err := req.Progress.Complete(ctx); err != nil {
		p.progressError(logger, err)
	}

	tr.Pieces = textsplit.Collect(body, textsplit.TelegramLimit)
	for i, piece := range tr.Pieces {
		if err := req.Output.Deliver(ctx, piece); err != nil {
			return tr, wrap(apperr.Delivery, fmt.Sprintf("deliver piece %d/%d", i+1, len(tr.Pieces)), err)
		}
		p.metrics.RecordMessageSent()
	}
	return tr, nil
}

func (p *Pipeline) progress(ctx context.Context, req Request, logger *zerolog.Logger, pct int) {
	p.mu.Lock()
	if j, ok := p.jobs[req.ID]; ok {
		j.Percent = pct
	}
	p.mu.Unlock()

	if err := req.Progress.Update(ctx, pct); err != nil {
		p.progressError(logger, err)
	}
}

func (p *Pipeline) progressError(logger *zerolog.Logger, err error) {
	p.metrics.RecordProgressError()
	logger.Warn().Err(err).Msg("progress report failed")
}

func (p *Pipeline) record(ctx context.Context, logger *zerolog.Logger, o Outcome) {
	for _, r := range p.recorders {
		if err := r.Record(ctx, o); err != nil {
			logger.Warn().Err(err).Msg("failed to record outcome")
		}
	}
}

func (p *Pipeline) track(req Request, started time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs[req.ID] = &JobInfo{
		ID:      req.ID,
		ChatID:  req.ChatID,
		Sender:  req.Sender,
		Status:  Received,
		Started: started,
	}
}

func (p *Pipeline) untrack(id string) {
	p.mu.Lock()
	delete(p.jobs, id)
	p.mu.Unlock()
}

func (p *Pipeline) setStatus(id string, s Status) {
	p.mu.Lock()
	if j, ok := p.jobs[id]; ok {
		j.Status = s
	}
	p.mu.Unlock()
}

func (p *Pipeline) setChunks(id string, n int) {
	p.mu.Lock()
	if j, ok := p.jobs[id]; ok {
		j.Chunks = n
	}
	p.mu.Unlock()
}

func percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// wrap keeps the kind of an error that already carries one.
func wrap(kind apperr.Kind, op string, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.New(kind, op, err)
}
