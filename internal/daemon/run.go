package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/bus"
	"github.com/leonardotrapani/scribebot/internal/config"
	"github.com/leonardotrapani/scribebot/internal/deps"
	"github.com/leonardotrapani/scribebot/internal/events"
	"github.com/leonardotrapani/scribebot/internal/logging"
	"github.com/leonardotrapani/scribebot/internal/metrics"
	"github.com/leonardotrapani/scribebot/internal/models/whisper"
	"github.com/leonardotrapani/scribebot/internal/observability"
	"github.com/leonardotrapani/scribebot/internal/pipeline"
	"github.com/leonardotrapani/scribebot/internal/store"
	"github.com/leonardotrapani/scribebot/internal/telegram"
	"github.com/leonardotrapani/scribebot/internal/transcriber"
)

type RunOptions struct {
	ConfigPath string
	EnvFile    string
	Version    string
}

// LoadEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// NewGate builds the configured speech model and wraps it in a Gate.
func NewGate(ctx context.Context, cfg *config.Config) (*transcriber.Gate, error) {
	models, err := whisper.NewStore("")
	if err != nil {
		return nil, err
	}
	adapter, err := transcriber.NewAdapter(ctx, cfg.ToTranscriberConfig(), models)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}
	return transcriber.NewGate(adapter, cfg.Transcription.Timeout), nil
}

// Run starts the bot and blocks until it is stopped by a signal or a quit
// command on the control socket.
func Run(ctx context.Context, opts RunOptions) error {
	if err := LoadEnv(opts.EnvFile); err != nil {
		return err
	}
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	mgr, err := config.NewManager(opts.ConfigPath)
	if err != nil {
		return err
	}
	cfg := mgr.GetConfig()
	logging.Init(cfg.ToLoggingConfig())
	l := logging.WithComponent("daemon")

	if err := deps.Verify(deps.Required(cfg.Transcription.Provider, cfg.Audio.FFmpegPath)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	mgr.OnReload(func(c *config.Config) {
		logging.SetLevel(c.Logging.Level)
		m.RecordConfigReload()
	})
	if err := mgr.StartWatching(ctx); err != nil {
		l.Warn().Err(err).Msg("config hot-reload disabled")
	}
	defer mgr.Stop()

	gate, err := NewGate(ctx, cfg)
	if err != nil {
		return err
	}
	defer gate.Close()
	if err := gate.Check(ctx); err != nil {
		return err
	}

	popts := []pipeline.Option{pipeline.WithMetrics(m)}
	var history observability.History
	if cfg.Storage.Enabled {
		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		popts = append(popts, pipeline.WithRecorder(st))
		history = st
	}
	publisher := events.New(&events.Config{
		Brokers: cfg.Events.Brokers,
		Topic:   cfg.Events.Topic,
		Enabled: cfg.Events.Enabled,
	}, m)
	defer publisher.Close()
	if publisher.Enabled() {
		popts = append(popts, pipeline.WithRecorder(publisher))
	}

	p := pipeline.New(mgr, audio.NewFFmpegDecoder(cfg.Audio.FFmpegPath), gate, popts...)

	token, err := cfg.ResolveBotToken()
	if err != nil {
		return err
	}
	bot, err := telegram.New(telegram.Options{
		Token:         token,
		APIEndpoint:   cfg.Bot.APIEndpoint,
		MaxFileSize:   cfg.Bot.MaxFileSize,
		UpdateTimeout: cfg.Bot.UpdateTimeout,
	})
	if err != nil {
		return err
	}

	if cfg.Observability.Enabled {
		srv := observability.NewServer(cfg.Observability.Address, observability.Deps{
			Gatherer: reg,
			Jobs:     p,
			History:  history,
			Ready:    func() error { return ctx.Err() },
		})
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()
	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	d := New(Options{
		Manager:   mgr,
		Pipeline:  p,
		Messenger: bot,
		Metrics:   m,
		Version:   opts.Version,
	})
	return d.Serve(ctx, bot, ln)
}
