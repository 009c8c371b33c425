package provider

import "github.com/leonardotrapani/scribebot/internal/language"

// MistralProvider serves Voxtral through an OpenAI-compatible transcription
// endpoint.
type MistralProvider struct{}

func (p *MistralProvider) Name() string                   { return ProviderMistral }
func (p *MistralProvider) RequiresAPIKey() bool           { return true }
func (p *MistralProvider) ValidateAPIKey(key string) bool { return key != "" }
func (p *MistralProvider) IsLocal() bool                  { return false }
func (p *MistralProvider) DefaultModel() string           { return "voxtral-mini-latest" }

func (p *MistralProvider) Models() []Model {
	endpoint := &EndpointConfig{BaseURL: "https://api.mistral.ai/v1", Path: "/audio/transcriptions"}
	return []Model{
		{ID: "voxtral-mini-latest", Name: "Voxtral Mini", Description: "Latest Voxtral, good default",
			AdapterType: AdapterOpenAI, SupportedLanguages: language.Codes(), Endpoint: endpoint},
		{ID: "voxtral-mini-2507", Name: "Voxtral Mini 2507", Description: "Pinned July 2025 release",
			AdapterType: AdapterOpenAI, SupportedLanguages: language.Codes(), Endpoint: endpoint},
	}
}
