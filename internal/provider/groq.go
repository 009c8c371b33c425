package provider

import (
	"strings"

	"github.com/leonardotrapani/scribebot/internal/language"
)

// GroqProvider serves Whisper models through Groq's OpenAI-compatible API.
type GroqProvider struct{}

func (p *GroqProvider) Name() string         { return ProviderGroq }
func (p *GroqProvider) RequiresAPIKey() bool { return true }
func (p *GroqProvider) IsLocal() bool        { return false }
func (p *GroqProvider) DefaultModel() string { return "whisper-large-v3-turbo" }

func (p *GroqProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "gsk_")
}

func (p *GroqProvider) Models() []Model {
	endpoint := &EndpointConfig{BaseURL: "https://api.groq.com/openai/v1", Path: "/audio/transcriptions"}
	return []Model{
		{ID: "whisper-large-v3", Name: "Whisper Large V3", Description: "Best multilingual accuracy",
			AdapterType: AdapterOpenAI, SupportedLanguages: language.Codes(), Endpoint: endpoint},
		{ID: "whisper-large-v3-turbo", Name: "Whisper Large V3 Turbo", Description: "Fast multilingual",
			AdapterType: AdapterOpenAI, SupportedLanguages: language.Codes(), Endpoint: endpoint},
		{ID: "distil-whisper-large-v3-en", Name: "Distil Whisper English", Description: "Fastest, English only",
			AdapterType: AdapterOpenAI, SupportedLanguages: []string{"en"}, Endpoint: endpoint},
	}
}
