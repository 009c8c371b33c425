// Package chat holds the platform-neutral messaging types the bot is built on.
package chat

import (
	"context"
	"strings"
	"time"
)

// MessageRef identifies a sent message so it can be edited or deleted.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

type Kind string

const (
	KindVoice     Kind = "voice"
	KindVideoNote Kind = "video_note"
	KindAudio     Kind = "audio"
)

type User struct {
	ID        int64
	Username  string
	FirstName string
}

// DisplayName prefers the first name, then @username.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "there"
}

// VoiceEvent is an incoming message carrying audio.
type VoiceEvent struct {
	ChatID    int64
	MessageID int
	From      User
	Kind      Kind
	FileID    string
	Duration  time.Duration
	FileSize  int64
}

// CommandEvent is an incoming /command.
type CommandEvent struct {
	ChatID    int64
	MessageID int
	From      User
	Command   string
	Args      string
}

// Messenger is what the bot needs from a messaging platform.
type Messenger interface {
	Download(ctx context.Context, fileID string) ([]byte, error)
	Send(ctx context.Context, chatID int64, replyTo int, text string) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, text string) error
	Delete(ctx context.Context, ref MessageRef) error
}

// Handler receives dispatched platform events.
type Handler interface {
	HandleVoice(ctx context.Context, ev VoiceEvent)
	HandleCommand(ctx context.Context, ev CommandEvent)
}
