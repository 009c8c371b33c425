package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/leonardotrapani/scribebot/internal/chat"
)

// MessageSink shows progress as a chat message that is sent on the first
// update, edited in place afterwards and deleted when the request ends.
type MessageSink struct {
	messenger chat.Messenger
	chatID    int64
	replyTo   int
	template  string

	ref  *chat.MessageRef
	last int
}

// NewMessageSink renders template with {percent} replaced.
func NewMessageSink(m chat.Messenger, chatID int64, replyTo int, template string) *MessageSink {
	return &MessageSink{messenger: m, chatID: chatID, replyTo: replyTo, template: template, last: -1}
}

func (s *MessageSink) render(percent int) string {
	return strings.ReplaceAll(s.template, "{percent}", strconv.Itoa(percent))
}

func (s *MessageSink) Update(ctx context.Context, percent int) error {
	if s.ref == nil {
		ref, err := s.messenger.Send(ctx, s.chatID, s.replyTo, s.render(percent))
		if err != nil {
			return fmt.Errorf("send progress: %w", err)
		}
		s.ref = &ref
		s.last = percent
		return nil
	}
	// editing to identical text is rejected by Telegram
	if percent == s.last {
		return nil
	}
	if err := s.messenger.Edit(ctx, *s.ref, s.render(percent)); err != nil {
		return fmt.Errorf("edit progress: %w", err)
	}
	s.last = percent
	return nil
}

func (s *MessageSink) Complete(ctx context.Context) error {
	return s.remove(ctx)
}

// Fail removes the progress message; the error itself is reported separately.
func (s *MessageSink) Fail(ctx context.Context, _ error) error {
	return s.remove(ctx)
}

func (s *MessageSink) remove(ctx context.Context) error {
	if s.ref == nil {
		return nil
	}
	ref := *s.ref
	s.ref = nil
	if err := s.messenger.Delete(ctx, ref); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
