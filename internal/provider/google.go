package provider

import (
	"time"

	"github.com/leonardotrapani/scribebot/internal/language"
)

// GoogleProvider uses Cloud Speech-to-Text synchronous recognition.
// Credentials come from a service account file rather than an API key.
type GoogleProvider struct{}

func (p *GoogleProvider) Name() string                   { return ProviderGoogle }
func (p *GoogleProvider) RequiresAPIKey() bool           { return false }
func (p *GoogleProvider) ValidateAPIKey(key string) bool { return true }
func (p *GoogleProvider) IsLocal() bool                  { return false }
func (p *GoogleProvider) DefaultModel() string           { return "latest_long" }

// googleSyncLimit is the longest audio Recognize accepts in one call.
const googleSyncLimit = time.Minute

func (p *GoogleProvider) Models() []Model {
	endpoint := &EndpointConfig{BaseURL: "speech.googleapis.com:443"}
	var out []Model
	for _, m := range []struct{ id, name, desc string }{
		{"latest_long", "Latest Long", "Long-form content such as voice notes and media"},
		{"latest_short", "Latest Short", "Short utterances and commands"},
		{"default", "Default", "General purpose model"},
		{"phone_call", "Phone Call", "Audio recorded over a phone line"},
	} {
		out = append(out, Model{
			ID: m.id, Name: m.name, Description: m.desc,
			AdapterType:        AdapterGoogle,
			SupportedLanguages: language.Codes(),
			Endpoint:           endpoint,
			MaxAudio:           googleSyncLimit,
		})
	}
	return out
}
