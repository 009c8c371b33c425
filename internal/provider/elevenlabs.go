package provider

import "github.com/leonardotrapani/scribebot/internal/language"

// ElevenLabsProvider uses the Scribe speech-to-text API. Only the batch models
// are listed; the realtime one needs an open socket per conversation.
type ElevenLabsProvider struct{}

func (p *ElevenLabsProvider) Name() string                   { return ProviderElevenLabs }
func (p *ElevenLabsProvider) RequiresAPIKey() bool           { return true }
func (p *ElevenLabsProvider) ValidateAPIKey(key string) bool { return key != "" }
func (p *ElevenLabsProvider) IsLocal() bool                  { return false }
func (p *ElevenLabsProvider) DefaultModel() string           { return "scribe_v1" }

func (p *ElevenLabsProvider) Models() []Model {
	endpoint := &EndpointConfig{BaseURL: "https://api.elevenlabs.io", Path: "/v1/speech-to-text"}
	return []Model{
		{ID: "scribe_v1", Name: "Scribe v1", Description: "90+ languages, best accuracy",
			AdapterType: AdapterElevenLabs, SupportedLanguages: language.Codes(), Endpoint: endpoint},
		{ID: "scribe_v2", Name: "Scribe v2", Description: "Lower latency",
			AdapterType: AdapterElevenLabs, SupportedLanguages: language.Codes(), Endpoint: endpoint},
	}
}
