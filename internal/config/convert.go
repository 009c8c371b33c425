package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/logging"
	"github.com/leonardotrapani/scribebot/internal/provider"
	"github.com/leonardotrapani/scribebot/internal/transcriber"
)

// EnvBotToken is read when neither bot.token nor bot.token_file is set.
const EnvBotToken = "TELEGRAM_BOT_TOKEN"

func (c *Config) ToTranscriberConfig() transcriber.Config {
	credentials := c.Transcription.CredentialsFile
	if credentials == "" && provider.BaseProviderName(c.Transcription.Provider) == provider.ProviderGoogle {
		credentials = os.Getenv(provider.EnvGoogleCredentials)
	}
	return transcriber.Config{
		Provider:        c.Transcription.Provider,
		APIKey:          c.resolveAPIKeyForProvider(c.Transcription.Provider),
		Model:           c.Transcription.Model,
		Language:        c.Transcription.Language,
		Threads:         c.Transcription.Threads,
		Timeout:         c.Transcription.Timeout,
		CredentialsFile: credentials,
	}
}

// resolveAPIKeyForProvider checks providers.<base>.api_key, then the env var.
func (c *Config) resolveAPIKeyForProvider(name string) string {
	base := provider.BaseProviderName(name)
	if pc, ok := c.Providers[base]; ok && pc.APIKey != "" {
		return pc.APIKey
	}
	if env := provider.EnvVarForProvider(name); env != "" && env != provider.EnvGoogleCredentials {
		return os.Getenv(env)
	}
	return ""
}

// ResolveBotToken returns the Telegram token from bot.token, bot.token_file or
// TELEGRAM_BOT_TOKEN, in that order.
func (c *Config) ResolveBotToken() (string, error) {
	if c.Bot.Token != "" {
		return c.Bot.Token, nil
	}
	if c.Bot.TokenFile != "" {
		data, err := os.ReadFile(c.Bot.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read bot.token_file: %w", err)
		}
		if token := strings.TrimSpace(string(data)); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("bot.token_file %s is empty", c.Bot.TokenFile)
	}
	if token := os.Getenv(EnvBotToken); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("no bot token: set bot.token, bot.token_file or %s", EnvBotToken)
}

func (c *Config) ToChunker() *audio.Chunker {
	return audio.NewChunker(
		time.Duration(c.Audio.SecondsPerChunk)*time.Second,
		c.Audio.SearchWindow,
		c.ToSilenceOptions(),
	)
}

func (c *Config) ToSilenceOptions() audio.SilenceOptions {
	return audio.SilenceOptions{Window: c.Audio.SilenceWindow, Threshold: c.Audio.SilenceThreshold}
}

func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{Level: c.Logging.Level, Format: c.Logging.Format}
}

// ChatAllowed reports whether chatID may use the bot.
func (c *Config) ChatAllowed(chatID int64) bool {
	if len(c.Bot.AllowedChats) == 0 {
		return true
	}
	for _, id := range c.Bot.AllowedChats {
		if id == chatID {
			return true
		}
	}
	return false
}
