package notify

import (
	"context"

	"github.com/leonardotrapani/scribebot/internal/logging"
)

// Log writes progress to the structured log.
type Log struct {
	RequestID string
	ChatID    int64
}

func (l Log) Update(_ context.Context, percent int) error {
	logger := logging.WithRequest(l.RequestID, l.ChatID)
	logger.Debug().Int("percent", percent).Msg("progress")
	return nil
}

func (l Log) Complete(context.Context) error {
	logger := logging.WithRequest(l.RequestID, l.ChatID)
	logger.Debug().Msg("progress complete")
	return nil
}

func (l Log) Fail(_ context.Context, err error) error {
	logger := logging.WithRequest(l.RequestID, l.ChatID)
	logger.Debug().Err(err).Msg("progress aborted")
	return nil
}
