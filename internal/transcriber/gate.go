package transcriber

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/leonardotrapani/scribebot/internal/apperr"
	"github.com/leonardotrapani/scribebot/internal/audio"
)

// Gate is the single shared entry point to the model. At most one chunk is
// inside the adapter at any time, whichever request it belongs to.
type Gate struct {
	adapter BatchAdapter
	slot    chan struct{}
	timeout time.Duration
}

// NewGate wraps adapter. A positive timeout bounds each chunk.
func NewGate(adapter BatchAdapter, timeout time.Duration) *Gate {
	return &Gate{adapter: adapter, slot: make(chan struct{}, 1), timeout: timeout}
}

// Transcribe waits for the model, then transcribes one chunk. Waiting honours
// ctx; every failure is reported as a model error.
func (g *Gate) Transcribe(ctx context.Context, chunk audio.Chunk) (string, error) {
	op := fmt.Sprintf("transcribe chunk %d", chunk.Index+1)

	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return "", apperr.New(apperr.Model, op, ctx.Err())
	}
	defer func() { <-g.slot }()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.adapter.Transcribe(ctx, chunk.Buffer)
	if err != nil {
		return "", apperr.New(apperr.Model, op, err)
	}
	return strings.TrimSpace(text), nil
}

// Check runs the adapter's dependency check when it has one.
func (g *Gate) Check(ctx context.Context) error {
	if c, ok := g.adapter.(Checker); ok {
		return c.Check(ctx)
	}
	return nil
}

func (g *Gate) Close() error {
	if c, ok := g.adapter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
