package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/leonardotrapani/scribebot/internal/logging"
)

// Manager owns the live configuration and reloads it when the file changes.
// Audio, message and logging settings apply to the next request; provider and
// bot token changes need a restart.
type Manager struct {
	mu        sync.RWMutex
	path      string
	config    *Config
	watcher   *fsnotify.Watcher
	listeners []func(*Config)
	wg        sync.WaitGroup
}

// NewManager loads path, or the default config path when path is empty.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{path: path, config: cfg}, nil
}

// NewStaticManager serves a fixed config; used by tests and one-shot commands.
func NewStaticManager(cfg *Config) *Manager {
	return &Manager{config: cfg}
}

func (m *Manager) Path() string { return m.path }

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configCopy := *m.config
	return &configCopy
}

// OnReload registers fn to run after every successful reload.
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) StartWatching(ctx context.Context) error {
	if m.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	// editors replace files on save, so watch the directory
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}

	m.wg.Add(1)
	go m.watchLoop(ctx)

	l := logging.WithComponent("config")
	l.Info().Str("path", m.path).Msg("watching configuration for changes")
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	l := logging.WithComponent("config")
	name := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				l.Info().Str("file", event.Name).Msg("configuration changed, reloading")
				m.Reload()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			l.Warn().Err(err).Msg("config watcher error")

		case <-ctx.Done():
			return
		}
	}
}

// Reload re-reads the file. An invalid file leaves the current config active.
func (m *Manager) Reload() bool {
	l := logging.WithComponent("config")
	next, err := LoadFile(m.path)
	if err != nil {
		l.Error().Err(err).Msg("failed to reload config")
		return false
	}
	if err := next.Validate(); err != nil {
		l.Error().Err(err).Msg("invalid config after reload, keeping previous")
		return false
	}

	m.mu.Lock()
	prev := m.config
	m.config = next
	listeners := append([]func(*Config){}, m.listeners...)
	m.mu.Unlock()

	if prev.Transcription != next.Transcription || prev.Bot.Token != next.Bot.Token {
		l.Warn().Msg("transcription provider or bot token changed; restart scribebot to apply")
	}
	for _, fn := range listeners {
		fn(m.GetConfig())
	}
	l.Info().Msg("configuration reloaded")
	return true
}
