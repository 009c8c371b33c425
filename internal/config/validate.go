package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/leonardotrapani/scribebot/internal/language"
	"github.com/leonardotrapani/scribebot/internal/provider"
)

func (c *Config) Validate() error {
	if err := c.validateBot(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}

	if !strings.Contains(c.Messages.Progress, "{percent}") {
		return fmt.Errorf("invalid messages.progress: must contain {percent}")
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("invalid storage.path: required when storage is enabled")
	}
	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("invalid events.brokers: at least one broker required when events are enabled")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("invalid events.topic: required when events are enabled")
		}
	}
	if c.Observability.Enabled && c.Observability.Address == "" {
		return fmt.Errorf("invalid observability.address: required when observability is enabled")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn or error)", c.Logging.Level)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging.format: %s (must be console or json)", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateBot() error {
	if c.Bot.MaxConcurrentRequests < 1 {
		return fmt.Errorf("invalid bot.max_concurrent_requests: %d", c.Bot.MaxConcurrentRequests)
	}
	if c.Bot.MaxFileSize <= 0 {
		return fmt.Errorf("invalid bot.max_file_size: %d", c.Bot.MaxFileSize)
	}
	if c.Bot.UpdateTimeout < 0 {
		return fmt.Errorf("invalid bot.update_timeout: %d", c.Bot.UpdateTimeout)
	}
	return nil
}

func (c *Config) validateAudio() error {
	a := c.Audio
	if a.SampleRate < 8000 || a.SampleRate > 48000 {
		return fmt.Errorf("invalid audio.sample_rate: %d (must be between 8000 and 48000)", a.SampleRate)
	}
	if a.SecondsPerChunk < 1 {
		return fmt.Errorf("invalid audio.seconds_per_chunk: %d", a.SecondsPerChunk)
	}
	chunk := time.Duration(a.SecondsPerChunk) * time.Second
	if a.SearchWindow < 0 || a.SearchWindow >= chunk {
		return fmt.Errorf("invalid audio.search_window: %v (must be at least 0 and shorter than a chunk)", a.SearchWindow)
	}
	if a.SilenceWindow <= 0 || a.SilenceWindow > chunk {
		return fmt.Errorf("invalid audio.silence_window: %v (must be positive and at most a chunk)", a.SilenceWindow)
	}
	if a.SilenceThreshold <= 0 {
		return fmt.Errorf("invalid audio.silence_threshold: %v", a.SilenceThreshold)
	}
	if a.MaxDuration <= 0 {
		return fmt.Errorf("invalid audio.max_duration: %v", a.MaxDuration)
	}
	if a.FFmpegPath == "" {
		return fmt.Errorf("invalid audio.ffmpeg_path: empty")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	p := provider.GetProvider(t.Provider)
	if p == nil || !slices.Contains(provider.ConfigNames(), t.Provider) {
		return fmt.Errorf("invalid transcription.provider: %s (must be one of %s)",
			t.Provider, strings.Join(provider.ConfigNames(), ", "))
	}

	model, ok := provider.FindModel(t.Provider, t.Model)
	if !ok {
		return fmt.Errorf("invalid transcription.model: %s for provider %s (available: %s)",
			t.Model, t.Provider, strings.Join(provider.ModelIDs(t.Provider), ", "))
	}
	if t.Provider == provider.ConfigProviderGroqTranslation && t.Model != "whisper-large-v3" {
		return fmt.Errorf("invalid transcription.model: %s for %s (only whisper-large-v3 translates)",
			t.Model, t.Provider)
	}
	if !language.IsValidCode(t.Language) {
		return fmt.Errorf("invalid transcription.language: %s", t.Language)
	}
	if !model.SupportsLanguage(t.Language) {
		return fmt.Errorf("invalid transcription.language: model %s does not support %s",
			t.Model, language.FromCode(t.Language).Name)
	}
	if model.MaxAudio > 0 && time.Duration(c.Audio.SecondsPerChunk)*time.Second > model.MaxAudio {
		return fmt.Errorf("invalid audio.seconds_per_chunk: %d exceeds the %v limit of %s",
			c.Audio.SecondsPerChunk, model.MaxAudio, t.Provider)
	}
	if t.Threads < 0 {
		return fmt.Errorf("invalid transcription.threads: %d", t.Threads)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("invalid transcription.timeout: %v", t.Timeout)
	}

	if p.RequiresAPIKey() {
		key := c.resolveAPIKeyForProvider(t.Provider)
		if key == "" {
			return fmt.Errorf("invalid providers.%s.api_key: required (or set %s)",
				provider.BaseProviderName(t.Provider), provider.EnvVarForProvider(t.Provider))
		}
	}
	return nil
}
