package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/scribebot/internal/config"
	"github.com/leonardotrapani/scribebot/internal/language"
	"github.com/leonardotrapani/scribebot/internal/models/whisper"
	"github.com/leonardotrapani/scribebot/internal/provider"
)

// providerDisplayNames maps transcription.provider values to human-readable names.
var providerDisplayNames = map[string]string{
	provider.ConfigProviderOpenAI:               "OpenAI Whisper",
	provider.ConfigProviderGroqTranscription:    "Groq Whisper",
	provider.ConfigProviderGroqTranslation:      "Groq Whisper (translate to English)",
	provider.ConfigProviderMistralTranscription: "Mistral Voxtral",
	provider.ConfigProviderElevenLabs:           "ElevenLabs Scribe",
	provider.ConfigProviderDeepgram:             "Deepgram Nova",
	provider.ConfigProviderGoogle:               "Google Cloud Speech",
	provider.ConfigProviderWhisperCpp:           "Whisper.cpp (local)",
}

func getProviderDisplayName(name string) string {
	if n, ok := providerDisplayNames[name]; ok {
		return n
	}
	return name
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// getConfiguredProviders lists providers with an API key in the file, sorted.
func getConfiguredProviders(cfg *config.Config) []string {
	providers := make([]string, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

func isProviderConfigured(cfg *config.Config, name string) bool {
	pc, ok := cfg.Providers[provider.BaseProviderName(name)]
	return ok && pc.APIKey != ""
}

func getTranscriptionProviderOptions(cfg *config.Config) []huh.Option[string] {
	var options []huh.Option[string]
	for _, name := range provider.ConfigNames() {
		label := getProviderDisplayName(name)
		p := provider.GetProvider(name)
		if p != nil && p.RequiresAPIKey() && !isProviderConfigured(cfg, name) {
			label += " (no API key yet)"
		}
		options = append(options, huh.NewOption(label, name))
	}
	return options
}

// getTranscriptionModelOptions labels local models with their download state
// when models is non-nil.
func getTranscriptionModelOptions(providerName string, models *whisper.Store) []huh.Option[string] {
	p := provider.GetProvider(providerName)
	if p == nil {
		return nil
	}
	var options []huh.Option[string]
	for _, m := range p.Models() {
		label := m.ID
		if m.Description != "" {
			label = fmt.Sprintf("%s - %s", m.ID, m.Description)
		}
		if m.NeedsDownload() && models != nil && !models.IsInstalled(m.ID) {
			label += " [not downloaded]"
		}
		options = append(options, huh.NewOption(label, m.ID))
	}
	return options
}

// getLanguageOptions lists auto-detect first, then the languages the model accepts.
func getLanguageOptions(providerName, modelID string) []huh.Option[string] {
	options := []huh.Option[string]{huh.NewOption("Auto-detect", "")}
	model, ok := provider.FindModel(providerName, modelID)
	for _, lang := range language.List() {
		if lang.Code == "" {
			continue
		}
		if ok && !model.SupportsLanguage(lang.Code) {
			continue
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", lang.Name, lang.Code), lang.Code))
	}
	return options
}

// parseChatIDs reads a comma or whitespace separated list of chat IDs.
func parseChatIDs(s string) ([]int64, error) {
	var ids []int64
	for _, field := range splitList(s) {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatChatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return fmt.Errorf("must be a duration like 90s or 2h")
	}
	return nil
}

func validateProgressTemplate(s string) error {
	if !strings.Contains(s, "{percent}") {
		return fmt.Errorf("must contain {percent}")
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// summaryLines renders the settings shown before saving.
func summaryLines(cfg *config.Config) []string {
	var lines []string
	add := func(label, value string) {
		lines = append(lines, fmt.Sprintf("  %s %s", StyleLabel.Render(label), value))
	}

	token := "from " + cfg.Bot.TokenFile
	switch {
	case cfg.Bot.Token != "":
		token = maskAPIKey(cfg.Bot.Token)
	case cfg.Bot.TokenFile == "":
		token = "from " + config.EnvBotToken
	}
	add("Bot token:", token)
	if len(cfg.Bot.AllowedChats) > 0 {
		add("Allowed chats:", formatChatIDs(cfg.Bot.AllowedChats))
	} else {
		add("Allowed chats:", "all")
	}
	add("Concurrent requests:", strconv.Itoa(cfg.Bot.MaxConcurrentRequests))

	add("Transcription:", fmt.Sprintf("%s (%s)", getProviderDisplayName(cfg.Transcription.Provider), cfg.Transcription.Model))
	if cfg.Transcription.Language != "" {
		add("Language:", language.FromCode(cfg.Transcription.Language).Name)
	} else {
		add("Language:", "auto-detect")
	}
	add("Chunk length:", fmt.Sprintf("%ds", cfg.Audio.SecondsPerChunk))
	add("Max duration:", cfg.Audio.MaxDuration.String())

	if providers := getConfiguredProviders(cfg); len(providers) > 0 {
		add("API keys:", strings.Join(providers, ", "))
	}

	storage := onOff(cfg.Storage.Enabled)
	if cfg.Storage.Enabled && cfg.Storage.Path != "" {
		storage += " (" + cfg.Storage.Path + ")"
	}
	add("History:", storage)
	events := onOff(cfg.Events.Enabled)
	if cfg.Events.Enabled {
		events += fmt.Sprintf(" (%s on %s)", cfg.Events.Topic, strings.Join(cfg.Events.Brokers, ","))
	}
	add("Kafka events:", events)
	obs := onOff(cfg.Observability.Enabled)
	if cfg.Observability.Enabled {
		obs += " (" + cfg.Observability.Address + ")"
	}
	add("HTTP endpoint:", obs)
	add("Log level:", cfg.Logging.Level)
	return lines
}
