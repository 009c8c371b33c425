package config

import (
	"time"

	"github.com/leonardotrapani/scribebot/internal/audio"
	"github.com/leonardotrapani/scribebot/internal/provider"
)

const (
	DefaultStartMessage = "Hi {user}, this bot converts any voice message into text.\n\n" +
		"Send or forward any voice message here and you will receive the transcription.\n\n" +
		"You can also add the bot to a group and, by making it an administrator, it will transcribe all the audio sent in the group.\n\n" +
		"Have fun!!"
	DefaultHelpMessage = "This bot converts any voice message into a text message. " +
		"Forward any voice message, video note or audio file to the bot and you will receive the corresponding text. " +
		"Processing time is proportional to the duration of the audio.\n\n" +
		"You can also add the bot to a group and, by making it an administrator, it will transcribe all the audio sent in the group."
	DefaultProgressMessage = "Processing data: {percent}%"
	DefaultNoSpeechMessage = "No speech detected."
	DefaultErrorMessage    = "{error}"
)

func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			MaxConcurrentRequests: 4,
			MaxFileSize:           20 << 20,
			UpdateTimeout:         60,
		},
		Audio: AudioConfig{
			SampleRate:       16000,
			SecondsPerChunk:  int(audio.DefaultChunkDuration / time.Second),
			SearchWindow:     audio.DefaultSearchWindow,
			SilenceWindow:    audio.DefaultSilenceWindow,
			SilenceThreshold: audio.DefaultSilenceThreshold,
			MaxDuration:      2 * time.Hour,
			FFmpegPath:       "ffmpeg",
		},
		Transcription: TranscriptionConfig{
			Provider: provider.ConfigProviderOpenAI,
			Model:    provider.GetProvider(provider.ProviderOpenAI).DefaultModel(),
		},
		Providers: map[string]ProviderConfig{},
		Messages: MessagesConfig{
			Start:    DefaultStartMessage,
			Help:     DefaultHelpMessage,
			Progress: DefaultProgressMessage,
			NoSpeech: DefaultNoSpeechMessage,
			Error:    DefaultErrorMessage,
		},
		Storage: StorageConfig{
			Enabled: true,
		},
		Events: EventsConfig{
			Topic: "scribebot.transcripts",
		},
		Observability: ObservabilityConfig{
			Address: "127.0.0.1:9464",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
