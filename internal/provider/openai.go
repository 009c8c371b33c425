package provider

import (
	"strings"

	"github.com/leonardotrapani/scribebot/internal/language"
)

type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string         { return ProviderOpenAI }
func (p *OpenAIProvider) RequiresAPIKey() bool { return true }
func (p *OpenAIProvider) IsLocal() bool        { return false }
func (p *OpenAIProvider) DefaultModel() string { return "whisper-1" }

func (p *OpenAIProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "sk-")
}

func (p *OpenAIProvider) Models() []Model {
	endpoint := &EndpointConfig{BaseURL: "https://api.openai.com/v1", Path: "/audio/transcriptions"}
	langs := language.Codes()
	return []Model{
		{ID: "whisper-1", Name: "Whisper 1", Description: "OpenAI's production speech-to-text model",
			AdapterType: AdapterOpenAI, SupportedLanguages: langs, Endpoint: endpoint},
		{ID: "gpt-4o-transcribe", Name: "GPT-4o Transcribe", Description: "Higher accuracy, higher cost",
			AdapterType: AdapterOpenAI, SupportedLanguages: langs, Endpoint: endpoint},
		{ID: "gpt-4o-mini-transcribe", Name: "GPT-4o Mini Transcribe", Description: "Fast and affordable",
			AdapterType: AdapterOpenAI, SupportedLanguages: langs, Endpoint: endpoint},
	}
}
