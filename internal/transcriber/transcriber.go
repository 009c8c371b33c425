// Package transcriber turns audio clips into text through a pluggable
// speech-to-text backend.
package transcriber

import (
	"context"
	"fmt"
	"time"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/models/whisper"
	"github.com/leonardotrapani/scribebot/internal/provider"
)

// BatchAdapter transcribes one complete clip per call.
type BatchAdapter interface {
	Transcribe(ctx context.Context, clip audio.Buffer) (string, error)
}

// Checker is implemented by adapters that can verify their dependencies
// before the first request.
type Checker interface {
	Check(ctx context.Context) error
}

type Config struct {
	Provider        string
	APIKey          string
	Model           string
	Language        string
	Threads         int
	Timeout         time.Duration
	CredentialsFile string
}

// NewAdapter builds the adapter for cfg.Provider. models is only consulted by
// the whisper-cpp provider.
func NewAdapter(ctx context.Context, cfg Config, models *whisper.Store) (BatchAdapter, error) {
	switch provider.BaseProviderName(cfg.Provider) {
	case provider.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAIAdapter(cfg, ""), nil

	case provider.ProviderGroq:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required")
		}
		if cfg.Provider == provider.ConfigProviderGroqTranslation {
			return NewTranslationAdapter(cfg, groqBaseURL), nil
		}
		return NewOpenAIAdapter(cfg, groqBaseURL), nil

	case provider.ProviderMistral:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("Mistral API key required")
		}
		return NewOpenAIAdapter(cfg, mistralBaseURL), nil

	case provider.ProviderElevenLabs:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("ElevenLabs API key required")
		}
		return NewElevenLabsAdapter(cfg, ""), nil

	case provider.ProviderDeepgram:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("Deepgram API key required")
		}
		return NewDeepgramAdapter(cfg, ""), nil

	case provider.ProviderGoogle:
		a, err := NewGoogleAdapter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return a, nil

	case provider.ProviderWhisperCpp:
		if models == nil {
			return nil, fmt.Errorf("whisper-cpp requires a model store")
		}
		path := models.Path(cfg.Model)
		if path == "" {
			return nil, fmt.Errorf("unknown whisper model: %s", cfg.Model)
		}
		return NewWhisperCppAdapter(path, cfg.Language, cfg.Threads), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
