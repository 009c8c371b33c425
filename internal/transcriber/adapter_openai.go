package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/logging"
)

const (
	groqBaseURL    = "https://api.groq.com/openai/v1"
	mistralBaseURL = "https://api.mistral.ai/v1"
)

// OpenAIAdapter talks to the OpenAI transcription endpoint or any
// OpenAI-compatible one such as Groq or Mistral.
type OpenAIAdapter struct {
	client    *openai.Client
	config    Config
	name      string
	translate bool
}

// NewOpenAIAdapter uses baseURL when non-empty, the OpenAI default otherwise.
func NewOpenAIAdapter(config Config, baseURL string) *OpenAIAdapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	name := "openai"
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
		name = config.Provider
	}
	return &OpenAIAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		name:   name,
	}
}

// NewTranslationAdapter posts to the translations endpoint instead, which
// returns English text whatever the spoken language. config.Language is only
// a hint about the source audio.
func NewTranslationAdapter(config Config, baseURL string) *OpenAIAdapter {
	a := NewOpenAIAdapter(config, baseURL)
	a.translate = true
	return a
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, clip audio.Buffer) (string, error) {
	if clip.Len() == 0 {
		return "", nil
	}

	wavData, err := audio.EncodeWAV(clip)
	if err != nil {
		return "", fmt.Errorf("convert to WAV: %w", err)
	}

	req := openai.AudioRequest{
		Model:    a.config.Model,
		Reader:   bytes.NewReader(wavData),
		FilePath: "audio.wav",
		Language: a.config.Language,
	}

	l := logging.WithComponent("transcriber")
	start := time.Now()
	call := a.client.CreateTranscription
	if a.translate {
		call = a.client.CreateTranslation
	}
	resp, err := call(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		l.Warn().Err(err).Str("adapter", a.name).Dur("elapsed", elapsed).Msg("transcription request failed")
		return "", fmt.Errorf("%s transcription: %w", a.name, err)
	}

	l.Debug().Str("adapter", a.name).Dur("audio", clip.Duration()).Dur("elapsed", elapsed).
		Int("chars", len(resp.Text)).Msg("chunk transcribed")
	return resp.Text, nil
}
