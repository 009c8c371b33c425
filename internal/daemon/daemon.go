package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/leonardotrapani/scribebot/internal/apperr"
	"github.com/leonardotrapani/scribebot/internal/bus"
	"github.com/leonardotrapani/scribebot/internal/chat"
	"github.com/leonardotrapani/scribebot/internal/config"
	"github.com/leonardotrapani/scribebot/internal/logging"
	"github.com/leonardotrapani/scribebot/internal/metrics"
	"github.com/leonardotrapani/scribebot/internal/notify"
	"github.com/leonardotrapani/scribebot/internal/pipeline"
)

// replyTimeout bounds the error reply sent after a request was cancelled.
const replyTimeout = 10 * time.Second

// UpdateSource delivers platform events to a handler until ctx is done.
type UpdateSource interface {
	Run(ctx context.Context, h chat.Handler) error
}

type Options struct {
	Manager   *config.Manager
	Pipeline  *pipeline.Pipeline
	Messenger chat.Messenger
	Metrics   *metrics.Metrics
	Version   string
}

// Daemon answers chat events and control-socket commands.
type Daemon struct {
	manager   *config.Manager
	pipeline  *pipeline.Pipeline
	messenger chat.Messenger
	metrics   *metrics.Metrics
	version   string
	started   time.Time

	slots chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(opts Options) *Daemon {
	limit := opts.Manager.GetConfig().Bot.MaxConcurrentRequests
	if limit < 1 {
		limit = 1
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	return &Daemon{
		manager:   opts.Manager,
		pipeline:  opts.Pipeline,
		messenger: opts.Messenger,
		metrics:   opts.Metrics,
		version:   version,
		started:   time.Now(),
		slots:     make(chan struct{}, limit),
	}
}

// HandleVoice starts a request in the background. At most
// bot.max_concurrent_requests run at once; the rest wait for a slot.
func (d *Daemon) HandleVoice(ctx context.Context, ev chat.VoiceEvent) {
	cfg := d.manager.GetConfig()
	if !cfg.ChatAllowed(ev.ChatID) {
		l := logging.WithComponent("daemon")
		l.Info().Int64("chatId", ev.ChatID).Msg("ignoring audio from chat not in bot.allowed_chats")
		return
	}

	// Serve stops waiting once ctx is done and the source has returned
	if ctx.Err() != nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		select {
		case d.slots <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-d.slots }()
		if ctx.Err() != nil {
			return
		}
		_ = d.Process(ctx, ev)
	}()
}

// Process runs one request to completion. A failure is answered with exactly
// one message rendered from messages.error and is also returned.
func (d *Daemon) Process(ctx context.Context, ev chat.VoiceEvent) error {
	cfg := d.manager.GetConfig()
	id := pipeline.NewRequestID()

	req := pipeline.Request{
		ID:     id,
		ChatID: ev.ChatID,
		Sender: ev.From.DisplayName(),
		Kind:   ev.Kind,
		Source: &messageSource{messenger: d.messenger, event: ev, maxSize: cfg.Bot.MaxFileSize},
		Output: &replyOutput{messenger: d.messenger, chatID: ev.ChatID, replyTo: ev.MessageID},
		Progress: notify.Multi{
			notify.NewMessageSink(d.messenger, ev.ChatID, ev.MessageID, cfg.Messages.Progress),
			notify.Log{RequestID: id, ChatID: ev.ChatID},
		},
	}

	_, err := d.pipeline.Run(ctx, req)
	if err == nil {
		return nil
	}

	replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyTimeout)
	defer cancel()
	text := render(cfg.Messages.Error, map[string]string{"{error}": err.Error(), "{user}": ev.From.DisplayName()})
	if _, serr := d.messenger.Send(replyCtx, ev.ChatID, ev.MessageID, text); serr != nil {
		logger := logging.WithRequest(id, ev.ChatID)
		logger.Error().Err(serr).Msg("failed to send error reply")
	} else {
		d.metrics.RecordMessageSent()
	}
	return err
}

func (d *Daemon) HandleCommand(ctx context.Context, ev chat.CommandEvent) {
	cfg := d.manager.GetConfig()
	if !cfg.ChatAllowed(ev.ChatID) {
		return
	}

	var template string
	switch ev.Command {
	case "start":
		template = cfg.Messages.Start
	case "help":
		template = cfg.Messages.Help
	default:
		// groups carry commands meant for other bots
		return
	}

	text := render(template, map[string]string{"{user}": ev.From.DisplayName()})
	if _, err := d.messenger.Send(ctx, ev.ChatID, 0, text); err != nil {
		l := logging.WithComponent("daemon")
		l.Error().Err(err).Str("command", ev.Command).Int64("chatId", ev.ChatID).Msg("failed to answer command")
		return
	}
	d.metrics.RecordMessageSent()
}

func render(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Serve runs the update source and the control socket until ctx is done, a
// quit command arrives or the source fails. The source is always drained
// before in-flight requests are waited for, so no request starts after Serve
// returns.
func (d *Daemon) Serve(ctx context.Context, src UpdateSource, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	l := logging.WithComponent("daemon")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	go d.acceptLoop(ctx, ln)

	srcErr := make(chan error, 1)
	go func() { srcErr <- src.Run(ctx, d) }()

	l.Info().Str("version", d.version).Msg("scribebot started")

	var err error
	select {
	case <-ctx.Done():
		<-srcErr
	case err = <-srcErr:
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		cancel()
	}

	l.Info().Int("inFlight", len(d.pipeline.Jobs())).Msg("shutting down, waiting for running requests")
	d.wg.Wait()
	return err
}

func (d *Daemon) acceptLoop(ctx context.Context, ln net.Listener) {
	l := logging.WithComponent("daemon")
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				l.Error().Err(err).Msg("control socket accept failed")
			}
			return
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()
	l := logging.WithComponent("daemon")

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		l.Warn().Err(err).Msg("control client read error")
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}
	cmd := line[0]

	switch cmd {
	case bus.CmdStatus:
		cfg := d.manager.GetConfig()
		fmt.Fprintf(c, "STATUS status=running jobs=%d uptime=%s provider=%s model=%s\n",
			len(d.pipeline.Jobs()), time.Since(d.started).Round(time.Second),
			cfg.Transcription.Provider, cfg.Transcription.Model)
	case bus.CmdJobs:
		data, err := json.Marshal(d.pipeline.Jobs())
		if err != nil {
			fmt.Fprintf(c, "ERR %v\n", err)
			return
		}
		fmt.Fprintf(c, "JOBS %s\n", data)
	case bus.CmdReload:
		if d.manager.Path() == "" || !d.manager.Reload() {
			fmt.Fprint(c, "ERR reload_failed\n")
			return
		}
		fmt.Fprint(c, "OK reloaded\n")
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s version=%s\n", bus.ProtoVer, d.version)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.mu.Lock()
		if d.cancel != nil {
			d.cancel()
		}
		d.mu.Unlock()
	default:
		l.Warn().Str("command", string(cmd)).Msg("unknown control command")
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

// messageSource downloads the audio attached to a chat message.
type messageSource struct {
	messenger chat.Messenger
	event     chat.VoiceEvent
	maxSize   int64
}

func (s *messageSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.maxSize > 0 && s.event.FileSize > s.maxSize {
		return nil, apperr.Errorf(apperr.Download, "download audio", "file is %.1f MB, the limit is %.1f MB",
			float64(s.event.FileSize)/(1<<20), float64(s.maxSize)/(1<<20))
	}
	return s.messenger.Download(ctx, s.event.FileID)
}

// replyOutput answers the original message, one piece per message.
type replyOutput struct {
	messenger chat.Messenger
	chatID    int64
	replyTo   int
}

func (o *replyOutput) Deliver(ctx context.Context, text string) error {
	_, err := o.messenger.Send(ctx, o.chatID, o.replyTo, text)
	return err
}
