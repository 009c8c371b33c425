// Package telegram connects the bot to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/leonardotrapani/scribebot/internal/apperr"
	"github.com/leonardotrapani/scribebot/internal/chat"
	"github.com/leonardotrapani/scribebot/internal/logging"
)

const DefaultMaxFileSize = 20 << 20

type Options struct {
	Token string
	// APIEndpoint and FileEndpoint take the token and method (or file path)
	// as %s verbs; empty means the public Bot API.
	APIEndpoint   string
	FileEndpoint  string
	MaxFileSize   int64
	UpdateTimeout int
	HTTPClient    *http.Client
}

// Bot implements chat.Messenger and runs the update loop.
type Bot struct {
	api           *tgbotapi.BotAPI
	token         string
	fileEndpoint  string
	client        *http.Client
	maxFileSize   int64
	updateTimeout int
	logger        zerolog.Logger
}

func New(opts Options) (*Bot, error) {
	if opts.Token == "" {
		return nil, errors.New("telegram: empty bot token")
	}
	if opts.APIEndpoint == "" {
		opts.APIEndpoint = tgbotapi.APIEndpoint
	}
	if opts.FileEndpoint == "" {
		opts.FileEndpoint = tgbotapi.FileEndpoint
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.UpdateTimeout <= 0 {
		opts.UpdateTimeout = 60
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}

	logger := logging.WithComponent("telegram")
	_ = tgbotapi.SetLogger(botLogger{logger: logger})

	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, opts.APIEndpoint, opts.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	logger.Info().Str("username", api.Self.UserName).Msg("authorized on Telegram")

	return &Bot{
		api:           api,
		token:         opts.Token,
		fileEndpoint:  opts.FileEndpoint,
		client:        opts.HTTPClient,
		maxFileSize:   opts.MaxFileSize,
		updateTimeout: opts.UpdateTimeout,
		logger:        logger,
	}, nil
}

func (b *Bot) Username() string { return b.api.Self.UserName }

// Download fetches a file by id, refusing files over the size limit before
// transferring them.
func (b *Bot) Download(ctx context.Context, fileID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if int64(file.FileSize) > b.maxFileSize {
		return nil, tooLarge(int64(file.FileSize), b.maxFileSize)
	}
	if file.FilePath == "" {
		return nil, errors.New("get file: no file path returned")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(b.fileEndpoint, b.token, file.FilePath), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		// the URL carries the token
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > b.maxFileSize {
		return nil, tooLarge(int64(len(data)), b.maxFileSize)
	}
	return data, nil
}

func tooLarge(size, limit int64) error {
	return apperr.Errorf(apperr.Download, "download audio", "file is %.1f MB, the limit is %.1f MB",
		float64(size)/(1<<20), float64(limit)/(1<<20))
}

func (b *Bot) Send(ctx context.Context, chatID int64, replyTo int, text string) (chat.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return chat.MessageRef{}, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo
		msg.AllowSendingWithoutReply = true
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return chat.MessageRef{}, fmt.Errorf("send message: %w", err)
	}
	return chat.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

func (b *Bot) Edit(ctx context.Context, ref chat.MessageRef, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Request, not Send: the result may be a bare true
	if _, err := b.api.Request(tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

func (b *Bot) Delete(ctx context.Context, ref chat.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// Run long-polls for updates and dispatches them to h until ctx is done.
func (b *Bot) Run(ctx context.Context, h chat.Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout
	u.AllowedUpdates = []string{"message"}

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.logger.Info().Int("timeout", b.updateTimeout).Msg("polling for updates")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("update loop stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram: update channel closed")
			}
			Dispatch(ctx, update, h)
		}
	}
}

// Dispatch routes one update to h. It reports whether the update was used.
func Dispatch(ctx context.Context, update tgbotapi.Update, h chat.Handler) bool {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return false
	}
	if msg.IsCommand() {
		h.HandleCommand(ctx, chat.CommandEvent{
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			From:      sender(msg.From),
			Command:   msg.Command(),
			Args:      msg.CommandArguments(),
		})
		return true
	}
	if ev, ok := VoiceEventFrom(msg); ok {
		h.HandleVoice(ctx, ev)
		return true
	}
	return false
}

// VoiceEventFrom extracts the audio a message carries: a voice note, a video
// note or an audio file, in that order.
func VoiceEventFrom(msg *tgbotapi.Message) (chat.VoiceEvent, bool) {
	ev := chat.VoiceEvent{
		MessageID: msg.MessageID,
		From:      sender(msg.From),
	}
	if msg.Chat != nil {
		ev.ChatID = msg.Chat.ID
	}

	switch {
	case msg.Voice != nil:
		ev.Kind = chat.KindVoice
		ev.FileID = msg.Voice.FileID
		ev.Duration = time.Duration(msg.Voice.Duration) * time.Second
		ev.FileSize = int64(msg.Voice.FileSize)
	case msg.VideoNote != nil:
		ev.Kind = chat.KindVideoNote
		ev.FileID = msg.VideoNote.FileID
		ev.Duration = time.Duration(msg.VideoNote.Duration) * time.Second
		ev.FileSize = int64(msg.VideoNote.FileSize)
	case msg.Audio != nil:
		ev.Kind = chat.KindAudio
		ev.FileID = msg.Audio.FileID
		ev.Duration = time.Duration(msg.Audio.Duration) * time.Second
		ev.FileSize = int64(msg.Audio.FileSize)
	default:
		return chat.VoiceEvent{}, false
	}
	return ev, true
}

func sender(u *tgbotapi.User) chat.User {
	if u == nil {
		return chat.User{}
	}
	return chat.User{ID: u.ID, Username: u.UserName, FirstName: u.FirstName}
}

// botLogger routes the library's own logging into zerolog.
type botLogger struct {
	logger zerolog.Logger
}

func (l botLogger) Println(v ...interface{}) {
	l.logger.Debug().Msg(fmt.Sprint(v...))
}

func (l botLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
