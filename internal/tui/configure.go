// Package tui is the interactive configure wizard.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/muesli/termenv"

	"github.com/leonardotrapani/scribebot/internal/config"
	"github.com/leonardotrapani/scribebot/internal/models/whisper"
	"github.com/leonardotrapani/scribebot/internal/provider"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionBot           ConfigSection = "bot"
	SectionTranscription ConfigSection = "transcription"
	SectionProviders     ConfigSection = "providers"
	SectionAudio         ConfigSection = "audio"
	SectionMessages      ConfigSection = "messages"
	SectionIntegrations  ConfigSection = "integrations"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the wizard. A nil or untouched config walks every section in
// order; an existing one opens the section menu.
func Run(existingConfig *config.Config) (*ConfigureResult, error) {
	cfg := existingConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if existingConfig != nil && hasUserChanges(existingConfig) {
		return runEditExisting(cfg)
	}
	return runFreshInstall(cfg)
}

// hasUserChanges detects if config has user modifications
func hasUserChanges(cfg *config.Config) bool {
	return cfg.Bot.Token != "" || cfg.Bot.TokenFile != "" || len(cfg.Providers) > 0
}

func runFreshInstall(cfg *config.Config) (*ConfigureResult, error) {
	clearScreen()
	fmt.Println(Logo())
	fmt.Println()
	fmt.Println(StyleMuted.Render("Let's set up your transcription bot."))
	fmt.Println()

	steps := []func(*config.Config) error{
		editBot,
		editTranscription,
		editProviders,
		editIntegrations,
	}
	for _, step := range steps {
		if err := step(cfg); err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}
	}

	confirmed, err := showSummary(cfg)
	if err != nil || !confirmed {
		return &ConfigureResult{Cancelled: true}, nil
	}
	return &ConfigureResult{Config: cfg}, nil
}

// runEditExisting runs the menu-based edit flow for existing configs
func runEditExisting(cfg *config.Config) (*ConfigureResult, error) {
	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection()
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			confirmed, err := showSummary(cfg)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg}, nil
			}
		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil
		default:
			// esc inside a section returns to the menu
			if edit, ok := sectionEditors[section]; ok {
				_ = edit(cfg)
			}
		}
	}
}

var sectionEditors = map[ConfigSection]func(*config.Config) error{
	SectionBot:           editBot,
	SectionTranscription: editTranscription,
	SectionProviders:     editProviders,
	SectionAudio:         editAudio,
	SectionMessages:      editMessages,
	SectionIntegrations:  editIntegrations,
}

func selectSection() (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption("Telegram Bot", SectionBot),
		huh.NewOption("Transcription", SectionTranscription),
		huh.NewOption("API Keys", SectionProviders),
		huh.NewOption("Audio Chunking", SectionAudio),
		huh.NewOption("Messages", SectionMessages),
		huh.NewOption("History, Events & Monitoring", SectionIntegrations),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func editBot(cfg *config.Config) error {
	token := cfg.Bot.Token
	tokenDesc := "From @BotFather. Leave empty to use bot.token_file or " + config.EnvBotToken
	if token != "" {
		tokenDesc = "Currently: " + maskAPIKey(token)
	}
	chats := formatChatIDs(cfg.Bot.AllowedChats)
	concurrent := strconv.Itoa(cfg.Bot.MaxConcurrentRequests)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bot Token").
				Description(tokenDesc).
				EchoMode(huh.EchoModePassword).
				Value(&token),
			huh.NewInput().
				Title("Allowed Chats").
				Description("Comma separated chat IDs, empty answers every chat").
				Placeholder("all chats").
				Validate(func(s string) error {
					_, err := parseChatIDs(s)
					return err
				}).
				Value(&chats),
			huh.NewInput().
				Title("Concurrent Requests").
				Description("How many voice messages are transcribed at once").
				Validate(validatePositiveInt).
				Value(&concurrent),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Bot.Token = strings.TrimSpace(token)
	cfg.Bot.AllowedChats, _ = parseChatIDs(chats)
	cfg.Bot.MaxConcurrentRequests, _ = strconv.Atoi(strings.TrimSpace(concurrent))
	return nil
}

func editTranscription(cfg *config.Config) error {
	selectedProvider := cfg.Transcription.Provider
	providerDesc := "Choose which service turns speech into text"
	if selectedProvider != "" {
		providerDesc = fmt.Sprintf("Currently: %s/%s", selectedProvider, cfg.Transcription.Model)
	}

	providerForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Provider").
				Description(providerDesc).
				Options(getTranscriptionProviderOptions(cfg)...).
				Value(&selectedProvider),
		),
	).WithTheme(getTheme())
	if err := providerForm.Run(); err != nil {
		return err
	}

	// the local model store only matters for whisper-cpp
	var models *whisper.Store
	if p := provider.GetProvider(selectedProvider); p != nil && p.IsLocal() {
		models, _ = whisper.NewStore("")
	}

	selectedModel := cfg.Transcription.Model
	if selectedProvider != cfg.Transcription.Provider {
		selectedModel = provider.GetProvider(selectedProvider).DefaultModel()
	}
	modelForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Transcription Model").
				Options(getTranscriptionModelOptions(selectedProvider, models)...).
				Value(&selectedModel),
		),
	).WithTheme(getTheme())
	if err := modelForm.Run(); err != nil {
		return err
	}

	selectedLanguage := cfg.Transcription.Language
	langForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Language").
				Description("Pinning the language improves accuracy for short clips").
				Options(getLanguageOptions(selectedProvider, selectedModel)...).
				Height(12).
				Value(&selectedLanguage),
		),
	).WithTheme(getTheme())
	if err := langForm.Run(); err != nil {
		return err
	}

	cfg.Transcription.Provider = selectedProvider
	cfg.Transcription.Model = selectedModel
	cfg.Transcription.Language = selectedLanguage

	if selectedProvider == provider.ConfigProviderGoogle {
		return editGoogleCredentials(cfg)
	}
	if models != nil && !models.IsInstalled(selectedModel) {
		fmt.Println(StyleWarning.Render(fmt.Sprintf(
			"Model %s is not downloaded yet, run: scribebot model download %s", selectedModel, selectedModel)))
	}
	return nil
}

func editGoogleCredentials(cfg *config.Config) error {
	path := cfg.Transcription.CredentialsFile
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Service Account File").
				Description("JSON key file, empty to use " + provider.EnvGoogleCredentials).
				Value(&path),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Transcription.CredentialsFile = strings.TrimSpace(path)
	return nil
}

// editProviders asks for the API keys of the cloud providers that need one.
func editProviders(cfg *config.Config) error {
	if cfg.Providers == nil {
		cfg.Providers = map[string]config.ProviderConfig{}
	}

	var fields []huh.Field
	keys := map[string]*string{}
	for _, name := range provider.ListProviders() {
		p := provider.GetProvider(name)
		if !p.RequiresAPIKey() {
			continue
		}
		value := cfg.Providers[name].APIKey
		keys[name] = &value

		desc := "Empty to use " + provider.EnvVarForProvider(name)
		if value != "" {
			desc = "Currently: " + maskAPIKey(value)
		}
		fields = append(fields, huh.NewInput().
			Title(fmt.Sprintf("%s API Key", getProviderDisplayName(name))).
			Description(desc).
			EchoMode(huh.EchoModePassword).
			Validate(func(s string) error {
				if s != "" && !p.ValidateAPIKey(s) {
					return fmt.Errorf("that does not look like a %s key", name)
				}
				return nil
			}).
			Value(&value))
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	for name, value := range keys {
		key := strings.TrimSpace(*value)
		if key == "" {
			delete(cfg.Providers, name)
			continue
		}
		cfg.Providers[name] = config.ProviderConfig{APIKey: key}
	}
	return nil
}

func editAudio(cfg *config.Config) error {
	seconds := strconv.Itoa(cfg.Audio.SecondsPerChunk)
	maxDuration := cfg.Audio.MaxDuration.String()
	ffmpeg := cfg.Audio.FFmpegPath

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Seconds Per Chunk").
				Description("Long audio is cut near silence into chunks of about this length").
				Validate(validatePositiveInt).
				Value(&seconds),
			huh.NewInput().
				Title("Maximum Audio Length").
				Description("Longer messages are refused").
				Validate(validateDuration).
				Value(&maxDuration),
			huh.NewInput().
				Title("ffmpeg Path").
				Value(&ffmpeg),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Audio.SecondsPerChunk, _ = strconv.Atoi(strings.TrimSpace(seconds))
	cfg.Audio.MaxDuration, _ = time.ParseDuration(strings.TrimSpace(maxDuration))
	if ffmpeg = strings.TrimSpace(ffmpeg); ffmpeg != "" {
		cfg.Audio.FFmpegPath = ffmpeg
	}
	return nil
}

func editMessages(cfg *config.Config) error {
	m := cfg.Messages
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("/start Reply").
				Description("{user} is replaced by the sender's name").
				Value(&m.Start),
			huh.NewText().
				Title("/help Reply").
				Value(&m.Help),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Progress Message").
				Description("Edited while transcribing, {percent} is required").
				Validate(validateProgressTemplate).
				Value(&m.Progress),
			huh.NewInput().
				Title("No Speech Reply").
				Value(&m.NoSpeech),
			huh.NewInput().
				Title("Error Reply").
				Description("{error} and {user} are substituted").
				Value(&m.Error),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Messages = m
	return nil
}

func editIntegrations(cfg *config.Config) error {
	storage := cfg.Storage.Enabled
	storagePath := cfg.Storage.Path
	events := cfg.Events.Enabled
	brokers := strings.Join(cfg.Events.Brokers, ", ")
	topic := cfg.Events.Topic
	obs := cfg.Observability.Enabled
	address := cfg.Observability.Address
	level := cfg.Logging.Level

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep Transcription History").
				Description("Stores every transcript in a local SQLite database").
				Value(&storage),
			huh.NewInput().
				Title("History Database").
				Description("Empty for the default location").
				Value(&storagePath),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Publish Kafka Events").
				Description("One event per finished request").
				Value(&events),
			huh.NewInput().
				Title("Kafka Brokers").
				Placeholder("localhost:9092").
				Value(&brokers),
			huh.NewInput().
				Title("Kafka Topic").
				Value(&topic),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("HTTP Monitoring Endpoint").
				Description("Prometheus metrics, health checks and the history API").
				Value(&obs),
			huh.NewInput().
				Title("Listen Address").
				Value(&address),
			huh.NewSelect[string]().
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&level),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Storage.Enabled = storage
	cfg.Storage.Path = strings.TrimSpace(storagePath)
	if storage && cfg.Storage.Path == "" {
		if dir, err := config.GetDataDir(); err == nil {
			cfg.Storage.Path = filepath.Join(dir, "history.db")
		}
	}
	cfg.Events.Enabled = events
	cfg.Events.Brokers = splitList(brokers)
	cfg.Events.Topic = strings.TrimSpace(topic)
	cfg.Observability.Enabled = obs
	cfg.Observability.Address = strings.TrimSpace(address)
	cfg.Logging.Level = level
	return nil
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	for _, line := range summaryLines(cfg) {
		fmt.Println(line)
	}
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Println(StyleError.Render("Not valid yet: " + err.Error()))
		fmt.Println()
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}
