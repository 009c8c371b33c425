package config

import "time"

type Config struct {
	Bot           BotConfig                 `toml:"bot"`
	Audio         AudioConfig               `toml:"audio"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Providers     map[string]ProviderConfig `toml:"providers"`
	Messages      MessagesConfig            `toml:"messages"`
	Storage       StorageConfig             `toml:"storage"`
	Events        EventsConfig              `toml:"events"`
	Observability ObservabilityConfig       `toml:"observability"`
	Logging       LoggingConfig             `toml:"logging"`
}

// ProviderConfig holds API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

type BotConfig struct {
	Token                 string  `toml:"token"`
	TokenFile             string  `toml:"token_file"`   // file holding the token, read when token is empty
	APIEndpoint           string  `toml:"api_endpoint"` // Bot API endpoint format, empty for the public one
	MaxConcurrentRequests int     `toml:"max_concurrent_requests"`
	MaxFileSize           int64   `toml:"max_file_size"`  // bytes; Bot API getFile refuses more than 20MB
	UpdateTimeout         int     `toml:"update_timeout"` // long polling timeout in seconds
	AllowedChats          []int64 `toml:"allowed_chats"`  // empty allows every chat
}

type AudioConfig struct {
	SampleRate       int           `toml:"sample_rate"`
	SecondsPerChunk  int           `toml:"seconds_per_chunk"`
	SearchWindow     time.Duration `toml:"search_window"`     // how far back from a nominal cut to look for silence
	SilenceWindow    time.Duration `toml:"silence_window"`    // analysis window for silence detection
	SilenceThreshold float64       `toml:"silence_threshold"` // sum of |sample| per window
	MaxDuration      time.Duration `toml:"max_duration"`
	FFmpegPath       string        `toml:"ffmpeg_path"`
}

type TranscriptionConfig struct {
	Provider        string        `toml:"provider"`
	Model           string        `toml:"model"`
	Language        string        `toml:"language"`
	Threads         int           `toml:"threads"`          // CPU threads for whisper-cpp (0 = auto: NumCPU-1)
	Timeout         time.Duration `toml:"timeout"`          // per chunk, 0 disables
	CredentialsFile string        `toml:"credentials_file"` // google service account json
}

// MessagesConfig holds user-facing texts. {user}, {percent} and {error} are
// substituted where they appear.
type MessagesConfig struct {
	Start    string `toml:"start"`
	Help     string `toml:"help"`
	Progress string `toml:"progress"`
	NoSpeech string `toml:"no_speech"`
	Error    string `toml:"error"`
}

type StorageConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type EventsConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type ObservabilityConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}
