package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/scribebot/internal/apperr"
	"github.com/leonardotrapani/scribebot/internal/bus"
	"github.com/leonardotrapani/scribebot/internal/chat"
	"github.com/leonardotrapani/scribebot/internal/config"
	"github.com/leonardotrapani/scribebot/internal/pipeline"
	"github.com/leonardotrapani/scribebot/internal/testutil"
)

type harness struct {
	cfg       *config.Config
	messenger *testutil.FakeMessenger
	model     *testutil.FakeModel
	daemon    *Daemon
	pipeline  *pipeline.Pipeline
}

func newHarness(t *testing.T, d time.Duration, texts ...string) *harness {
	t.Helper()
	cfg := testutil.TestConfig()
	m := testutil.NewFakeMessenger()
	m.Files["voice-1"] = []byte("OggS fake")
	model := testutil.NewFakeModel(texts...)
	mgr := config.NewStaticManager(cfg)
	p := pipeline.New(mgr, testutil.StaticDecoder{Buffer: testutil.Tone(d)}, model)
	return &harness{
		cfg:       cfg,
		messenger: m,
		model:     model,
		pipeline:  p,
		daemon:    New(Options{Manager: mgr, Pipeline: p, Messenger: m, Version: "1.2.3"}),
	}
}

func voice(fileID string) chat.VoiceEvent {
	return chat.VoiceEvent{
		ChatID:    42,
		MessageID: 7,
		From:      chat.User{ID: 1, FirstName: "Alice"},
		Kind:      chat.KindVoice,
		FileID:    fileID,
		Duration:  45 * time.Second,
		FileSize:  9,
	}
}

func TestProcessDeliversTranscript(t *testing.T) {
	h := newHarness(t, 45*time.Second, "one", "two", "three")

	if err := h.daemon.Process(context.Background(), voice("voice-1")); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	texts := h.messenger.Texts()
	// progress message first, transcript last
	if len(texts) != 2 {
		t.Fatalf("sent = %q, want progress + transcript", texts)
	}
	if texts[0] != "Processing data: 0%" {
		t.Errorf("progress message = %q", texts[0])
	}
	if texts[1] != "one two three" {
		t.Errorf("transcript = %q", texts[1])
	}
	if h.messenger.Sent[1].ReplyTo != 7 {
		t.Errorf("transcript replies to %d, want 7", h.messenger.Sent[1].ReplyTo)
	}

	var edits []string
	for _, e := range h.messenger.Edits {
		edits = append(edits, e.Text)
	}
	want := []string{"Processing data: 33%", "Processing data: 67%", "Processing data: 100%"}
	if strings.Join(edits, "|") != strings.Join(want, "|") {
		t.Errorf("edits = %q, want %q", edits, want)
	}
	if len(h.messenger.Deleted) != 1 || h.messenger.Deleted[0] != h.messenger.Sent[0].Ref {
		t.Errorf("deleted = %+v, want the progress message", h.messenger.Deleted)
	}
}

func TestProcessDownloadFailure(t *testing.T) {
	h := newHarness(t, 45*time.Second, "x")
	h.messenger.DownloadErr = errors.New("file is temporarily unavailable")

	err := h.daemon.Process(context.Background(), voice("voice-1"))
	if !apperr.IsKind(err, apperr.Download) {
		t.Fatalf("error = %v, want download error", err)
	}

	texts := h.messenger.Texts()
	if len(texts) != 1 {
		t.Fatalf("sent = %q, want exactly one error message", texts)
	}
	if !strings.Contains(texts[0], "file is temporarily unavailable") {
		t.Errorf("error message = %q", texts[0])
	}
	if len(h.messenger.Edits) != 0 || len(h.messenger.Deleted) != 0 {
		t.Error("no progress message should exist")
	}
	if h.model.CallCount() != 0 {
		t.Error("model must not run")
	}
}

func TestProcessFileTooLarge(t *testing.T) {
	h := newHarness(t, 5*time.Second, "x")
	ev := voice("voice-1")
	ev.FileSize = h.cfg.Bot.MaxFileSize + 1

	err := h.daemon.Process(context.Background(), ev)
	if !apperr.IsKind(err, apperr.Download) {
		t.Fatalf("error = %v, want download error", err)
	}
	if texts := h.messenger.Texts(); len(texts) != 1 || !strings.Contains(texts[0], "the limit is 20.0 MB") {
		t.Errorf("sent = %q", texts)
	}
}

func TestProcessModelFailureCleansUpProgress(t *testing.T) {
	h := newHarness(t, 45*time.Second, "a", "b", "c")
	h.model.FailAt = 2
	h.cfg.Messages.Error = "Sorry {user}: {error}"

	if err := h.daemon.Process(context.Background(), voice("voice-1")); !apperr.IsKind(err, apperr.Model) {
		t.Fatalf("error = %v, want model error", err)
	}

	texts := h.messenger.Texts()
	if len(texts) != 2 {
		t.Fatalf("sent = %q, want progress + error", texts)
	}
	if texts[1] != "Sorry Alice: transcribe chunk 3: model failure" {
		t.Errorf("error message = %q", texts[1])
	}
	if len(h.messenger.Deleted) != 1 {
		t.Errorf("progress message should be deleted on failure")
	}
}

func TestHandleCommand(t *testing.T) {
	h := newHarness(t, time.Second)
	h.cfg.Messages.Start = "Hi {user}!"
	ctx := context.Background()

	h.daemon.HandleCommand(ctx, chat.CommandEvent{ChatID: 5, Command: "start", From: chat.User{Username: "bob"}})
	h.daemon.HandleCommand(ctx, chat.CommandEvent{ChatID: 5, Command: "help"})
	h.daemon.HandleCommand(ctx, chat.CommandEvent{ChatID: 5, Command: "weather"})

	texts := h.messenger.Texts()
	if len(texts) != 2 {
		t.Fatalf("sent = %q, want start and help replies", texts)
	}
	if texts[0] != "Hi @bob!" {
		t.Errorf("start reply = %q", texts[0])
	}
	if texts[1] != h.cfg.Messages.Help {
		t.Errorf("help reply = %q", texts[1])
	}
}

func TestAllowedChats(t *testing.T) {
	h := newHarness(t, time.Second, "x")
	h.cfg.Bot.AllowedChats = []int64{1000}
	ctx := context.Background()

	h.daemon.HandleCommand(ctx, chat.CommandEvent{ChatID: 42, Command: "start"})
	h.daemon.HandleVoice(ctx, voice("voice-1"))
	h.daemon.wg.Wait()

	if texts := h.messenger.Texts(); len(texts) != 0 {
		t.Errorf("sent = %q, want nothing for a chat outside allowed_chats", texts)
	}
}

func TestHandleVoiceRunsInBackground(t *testing.T) {
	h := newHarness(t, 5*time.Second, "hello")
	h.daemon.HandleVoice(context.Background(), voice("voice-1"))
	h.daemon.wg.Wait()

	texts := h.messenger.Texts()
	if len(texts) == 0 || texts[len(texts)-1] != "hello" {
		t.Errorf("sent = %q", texts)
	}
}

type idleSource struct{}

func (idleSource) Run(ctx context.Context, _ chat.Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

// lateSource hands over one more voice message after shutdown has begun.
type lateSource struct {
	ev       chat.VoiceEvent
	returned chan struct{}
}

func (s lateSource) Run(ctx context.Context, h chat.Handler) error {
	defer close(s.returned)
	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)
	h.HandleVoice(ctx, s.ev)
	return ctx.Err()
}

func TestServeDrainsSourceOnShutdown(t *testing.T) {
	t.Setenv(bus.EnvRuntimeDir, t.TempDir())

	for i := 0; i < 10; i++ {
		h := newHarness(t, 5*time.Second, "hello")
		ln, err := bus.Listen()
		if err != nil {
			t.Fatalf("Listen() error = %v", err)
		}
		src := lateSource{ev: voice("voice-1"), returned: make(chan struct{})}

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- h.daemon.Serve(ctx, src, ln) }()
		cancel()

		select {
		case err := <-errCh:
			if err != nil {
				t.Fatalf("Serve() error = %v", err)
			}
		case <-time.After(3 * time.Second):
			t.Fatal("Serve did not return")
		}

		select {
		case <-src.returned:
		default:
			t.Fatal("Serve returned while the update source was still running")
		}

		time.Sleep(30 * time.Millisecond)
		if texts := h.messenger.Texts(); len(texts) != 0 {
			t.Fatalf("run %d: messages sent after shutdown: %q", i, texts)
		}
		if h.model.CallCount() != 0 {
			t.Fatalf("run %d: model ran after shutdown", i)
		}
	}
}

func TestHandleVoiceAfterCancel(t *testing.T) {
	h := newHarness(t, 5*time.Second, "hello")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h.daemon.HandleVoice(ctx, voice("voice-1"))
	h.daemon.wg.Wait()
	if texts := h.messenger.Texts(); len(texts) != 0 {
		t.Errorf("cancelled request sent %q", texts)
	}
}

func TestControlSocket(t *testing.T) {
	t.Setenv(bus.EnvRuntimeDir, t.TempDir())
	h := newHarness(t, time.Second)

	ln, err := bus.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- h.daemon.Serve(context.Background(), idleSource{}, ln) }()

	var resp string
	testutil.WaitForCondition(t, func() bool {
		resp, err = bus.SendCommand(bus.CmdStatus)
		return err == nil
	}, 2*time.Second)

	kind, kv := bus.ParseReply(resp)
	if kind != "STATUS" || kv["status"] != "running" || kv["jobs"] != "0" || kv["provider"] != "openai" {
		t.Errorf("status reply = %q", resp)
	}

	resp, err = bus.SendCommand(bus.CmdVersion)
	if err != nil {
		t.Fatal(err)
	}
	if _, kv := bus.ParseReply(resp); kv["version"] != "1.2.3" || kv["proto"] != bus.ProtoVer {
		t.Errorf("version reply = %q", resp)
	}

	resp, err = bus.SendCommand(bus.CmdJobs)
	if err != nil {
		t.Fatal(err)
	}
	var jobs []pipeline.JobInfo
	if !strings.HasPrefix(resp, "JOBS ") || json.Unmarshal([]byte(strings.TrimPrefix(resp, "JOBS ")), &jobs) != nil {
		t.Errorf("jobs reply = %q", resp)
	}

	// a static manager has no file to reload
	if resp, _ := bus.SendCommand(bus.CmdReload); resp != "ERR reload_failed\n" {
		t.Errorf("reload reply = %q", resp)
	}
	if resp, _ := bus.SendCommand('x'); !strings.HasPrefix(resp, "ERR unknown=") {
		t.Errorf("unknown reply = %q", resp)
	}

	if resp, err := bus.SendCommand(bus.CmdQuit); err != nil || resp != "OK quitting\n" {
		t.Fatalf("quit reply = %q, %v", resp, err)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not exit after quit")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SCRIBEBOT_TEST_VALUE=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCRIBEBOT_TEST_VALUE", "")
	os.Unsetenv("SCRIBEBOT_TEST_VALUE")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("SCRIBEBOT_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("env = %q", got)
	}
	if err := LoadEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should be ignored, got %v", err)
	}
}
