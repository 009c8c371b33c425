package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/leonardotrapani/scribebot/internal/apperr"
	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/config"
	"github.com/leonardotrapani/scribebot/internal/metrics"
	"github.com/leonardotrapani/scribebot/internal/testutil"
	"github.com/leonardotrapani/scribebot/internal/textsplit"
)

type fixture struct {
	cfg     *config.Config
	model   *testutil.FakeModel
	sink    *testutil.RecordingSink
	out     *testutil.CollectOutput
	decoder testutil.StaticDecoder
	source  testutil.BytesSource
}

func newFixture(d time.Duration, texts ...string) *fixture {
	return &fixture{
		cfg:     testutil.TestConfig(),
		model:   testutil.NewFakeModel(texts...),
		sink:    &testutil.RecordingSink{},
		out:     &testutil.CollectOutput{},
		decoder: testutil.StaticDecoder{Buffer: testutil.Tone(d)},
		source:  testutil.BytesSource{Data: []byte("OggS fake")},
	}
}

func (f *fixture) pipeline(opts ...Option) *Pipeline {
	return New(config.NewStaticManager(f.cfg), f.decoder, f.model, opts...)
}

func (f *fixture) request() Request {
	return Request{ID: "req-1", ChatID: 42, Sender: "alice", Source: f.source, Output: f.out, Progress: f.sink}
}

type recorderFunc func(Outcome)

func (r recorderFunc) Record(_ context.Context, o Outcome) error {
	r(o)
	return nil
}

func TestRunProgressIsMonotonicAndEndsAt100(t *testing.T) {
	f := newFixture(45*time.Second, "hello", " world ", "again")

	tr, err := f.pipeline().Run(context.Background(), f.request())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []int{0, 33, 67, 100}
	if len(f.sink.Updates) != len(want) {
		t.Fatalf("updates = %v, want %v", f.sink.Updates, want)
	}
	for i := range want {
		if f.sink.Updates[i] != want[i] {
			t.Errorf("updates = %v, want %v", f.sink.Updates, want)
			break
		}
	}
	if f.sink.Completed != 1 || len(f.sink.Failed) != 0 {
		t.Errorf("completed = %d failed = %v", f.sink.Completed, f.sink.Failed)
	}
	if tr.Chunks != 3 {
		t.Errorf("chunks = %d, want 3", tr.Chunks)
	}
	if tr.Text != "hello world again" {
		t.Errorf("text = %q", tr.Text)
	}
	if len(f.out.Texts) != 1 || f.out.Texts[0] != "hello world again" {
		t.Errorf("delivered = %v", f.out.Texts)
	}
	if tr.AudioDuration != 45*time.Second {
		t.Errorf("audio duration = %v", tr.AudioDuration)
	}
}

func TestRunChunksInOrder(t *testing.T) {
	f := newFixture(65*time.Second, "a", "b", "c", "d")
	if _, err := f.pipeline().Run(context.Background(), f.request()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, c := range f.model.Calls {
		if c.Index != i {
			t.Errorf("call %d got chunk %d", i, c.Index)
		}
	}
	if got := f.out.Texts[0]; got != "a b c d" {
		t.Errorf("delivered %q", got)
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *fixture)
		wantKind  apperr.Kind
		wantInErr string
		wantCalls int
	}{
		{
			name:      "download error",
			setup:     func(f *fixture) { f.source.Err = errors.New("connection reset") },
			wantKind:  apperr.Download,
			wantInErr: "download audio: connection reset",
		},
		{
			name:      "empty download",
			setup:     func(f *fixture) { f.source.Data = nil },
			wantKind:  apperr.Download,
			wantInErr: "empty file",
		},
		{
			name: "decode error keeps kind",
			setup: func(f *fixture) {
				f.decoder.Err = apperr.New(apperr.Decode, "ffmpeg", errors.New("invalid data"))
			},
			wantKind:  apperr.Decode,
			wantInErr: "invalid data",
		},
		{
			name:      "too long",
			setup:     func(f *fixture) { f.cfg.Audio.MaxDuration = 10 * time.Second },
			wantKind:  apperr.InvalidInput,
			wantInErr: "the limit is 10 seconds",
		},
		{
			name:      "empty audio",
			setup:     func(f *fixture) { f.decoder.Buffer = audio.Buffer{SampleRate: 16000} },
			wantKind:  apperr.InvalidInput,
			wantInErr: "split audio",
		},
		{
			name:      "model error",
			setup:     func(f *fixture) { f.model.FailAt = 1; f.model.Err = errors.New("out of memory") },
			wantKind:  apperr.Model,
			wantInErr: "transcribe chunk 2: out of memory",
			wantCalls: 2,
		},
		{
			name:      "delivery error",
			setup:     func(f *fixture) { f.out.Err = errors.New("chat not found") },
			wantKind:  apperr.Delivery,
			wantInErr: "chat not found",
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(45*time.Second, "x", "y", "z")
			tt.setup(f)

			var outcomes []Outcome
			rec := recorderFunc(func(o Outcome) { outcomes = append(outcomes, o) })

			tr, err := f.pipeline(WithRecorder(rec)).Run(context.Background(), f.request())
			if err == nil {
				t.Fatal("Run() succeeded, want error")
			}
			if tr != nil {
				t.Errorf("transcript = %+v, want nil", tr)
			}
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %q, want %q (err %v)", got, tt.wantKind, err)
			}
			if !strings.Contains(err.Error(), tt.wantInErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantInErr)
			}
			if got := f.model.CallCount(); got != tt.wantCalls {
				t.Errorf("model calls = %d, want %d", got, tt.wantCalls)
			}
			if len(f.out.Texts) != 0 {
				t.Errorf("partial transcript delivered: %v", f.out.Texts)
			}
			if len(f.sink.Failed) != 1 {
				t.Errorf("sink failed %d times, want 1", len(f.sink.Failed))
			}
			if len(outcomes) != 1 || outcomes[0].Status != Failed || outcomes[0].ErrorKind != tt.wantKind {
				t.Errorf("outcomes = %+v", outcomes)
			}
		})
	}
}

func TestRunDownloadFailureSendsNoProgress(t *testing.T) {
	f := newFixture(45*time.Second)
	f.source.Err = errors.New("404")
	_, _ = f.pipeline().Run(context.Background(), f.request())
	if len(f.sink.Updates) != 0 {
		t.Errorf("progress updates = %v, want none", f.sink.Updates)
	}
}

func TestRunNoSpeech(t *testing.T) {
	f := newFixture(5*time.Second, "   ")
	tr, err := f.pipeline().Run(context.Background(), f.request())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !tr.NoSpeech || tr.Text != "" {
		t.Errorf("NoSpeech = %v text = %q", tr.NoSpeech, tr.Text)
	}
	if len(f.out.Texts) != 1 || f.out.Texts[0] != f.cfg.Messages.NoSpeech {
		t.Errorf("delivered = %v, want no-speech message", f.out.Texts)
	}
}

func TestRunSplitsLongTranscript(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("lorem ipsum ", 800))
	f := newFixture(5*time.Second, long)

	tr, err := f.pipeline().Run(context.Background(), f.request())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(f.out.Texts) < 3 {
		t.Fatalf("delivered %d pieces, want at least 3", len(f.out.Texts))
	}
	if len(tr.Pieces) != len(f.out.Texts) {
		t.Errorf("pieces = %d, delivered = %d", len(tr.Pieces), len(f.out.Texts))
	}
	if got := strings.Join(f.out.Texts, " "); got != long {
		t.Error("rejoined pieces differ from transcript")
	}
	for i, p := range f.out.Texts {
		if n := len([]rune(p)); n >= textsplit.TelegramLimit {
			t.Errorf("piece %d has %d runes", i, n)
		}
	}
}

func TestRunProgressErrorsDoNotAbort(t *testing.T) {
	f := newFixture(45*time.Second, "a", "b", "c")
	f.sink.UpdateErr = errors.New("message to edit not found")
	m := metrics.NewMetrics(prometheus.NewRegistry())

	if _, err := f.pipeline(WithMetrics(m)).Run(context.Background(), f.request()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := promtest.ToFloat64(m.ProgressErrors); got != 4 {
		t.Errorf("progress errors = %v, want 4", got)
	}
	if got := promtest.ToFloat64(m.RequestsTotal.WithLabelValues("delivered", "")); got != 1 {
		t.Errorf("delivered requests = %v, want 1", got)
	}
	if got := promtest.ToFloat64(m.RequestsActive); got != 0 {
		t.Errorf("active requests = %v, want 0", got)
	}
}

func TestRunRecordsSuccess(t *testing.T) {
	f := newFixture(5*time.Second, "ciao")
	var got Outcome
	p := f.pipeline(WithRecorder(recorderFunc(func(o Outcome) { got = o })))

	if _, err := p.Run(context.Background(), f.request()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got.Status != Delivered || got.Text != "ciao" || got.ChatID != 42 || got.Chunks != 1 {
		t.Errorf("outcome = %+v", got)
	}
}

func TestRunRequiresSourceAndOutput(t *testing.T) {
	f := newFixture(5 * time.Second)
	_, err := f.pipeline().Run(context.Background(), Request{ChatID: 1})
	if !apperr.IsKind(err, apperr.InvalidInput) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

type blockingModel struct {
	entered chan struct{}
	release chan struct{}
}

func (m *blockingModel) Transcribe(ctx context.Context, _ audio.Chunk) (string, error) {
	m.entered <- struct{}{}
	select {
	case <-m.release:
		return "done", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestJobsTracksRunningRequests(t *testing.T) {
	f := newFixture(5 * time.Second)
	model := &blockingModel{entered: make(chan struct{}), release: make(chan struct{})}
	p := New(config.NewStaticManager(f.cfg), f.decoder, model)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = p.Run(context.Background(), f.request())
	}()

	<-model.entered
	jobs := p.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("jobs = %v, want 1", jobs)
	}
	if jobs[0].ID != "req-1" || jobs[0].Status != Transcribing || jobs[0].Chunks != 1 {
		t.Errorf("job = %+v", jobs[0])
	}

	close(model.release)
	wg.Wait()
	if n := len(p.Jobs()); n != 0 {
		t.Errorf("jobs after completion = %d, want 0", n)
	}
}

func TestRunAssignsRequestID(t *testing.T) {
	f := newFixture(5*time.Second, "x")
	req := f.request()
	req.ID = ""
	tr, err := f.pipeline().Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(tr.RequestID) != 36 {
		t.Errorf("request id = %q, want a uuid", tr.RequestID)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct{ done, total, want int }{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 8, 13},
		{0, 0, 100},
	}
	for _, tt := range tests {
		if got := percent(tt.done, tt.total); got != tt.want {
			t.Errorf("percent(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}
