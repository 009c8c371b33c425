package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/leonardotrapani/scribebot/internal/logging"
)

var ErrConfigNotFound = errors.New("config not found")

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	dir := filepath.Join(configDir, "scribebot")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(dir, "config.toml"), nil
}

// GetDataDir is where the history database lives by default.
func GetDataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "scribebot"), nil
}

// Load reads the config from the default location.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads path on top of DefaultConfig, so omitted keys keep their
// defaults.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s (run scribebot configure)", ErrConfigNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	l := logging.WithComponent("config")
	l.Debug().Str("path", path).Msg("loading configuration")

	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		l.Warn().Interface("keys", undecoded).Msg("unknown configuration keys ignored")
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString("# scribebot configuration\n\n"); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}

func (c *Config) applyDefaults() error {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	if c.Transcription.Threads == 0 {
		c.Transcription.Threads = max(runtime.NumCPU()-1, 1)
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		dir, err := GetDataDir()
		if err != nil {
			return err
		}
		c.Storage.Path = filepath.Join(dir, "history.db")
	}

	d := DefaultConfig().Messages
	m := &c.Messages
	for _, pair := range []struct {
		field *string
		def   string
	}{
		{&m.Start, d.Start}, {&m.Help, d.Help}, {&m.Progress, d.Progress},
		{&m.NoSpeech, d.NoSpeech}, {&m.Error, d.Error},
	} {
		if *pair.field == "" {
			*pair.field = pair.def
		}
	}
	return nil
}
