package provider

// DeepgramProvider uses Deepgram's pre-recorded /v1/listen API.
type DeepgramProvider struct{}

func (p *DeepgramProvider) Name() string                   { return ProviderDeepgram }
func (p *DeepgramProvider) RequiresAPIKey() bool           { return true }
func (p *DeepgramProvider) ValidateAPIKey(key string) bool { return key != "" }
func (p *DeepgramProvider) IsLocal() bool                  { return false }
func (p *DeepgramProvider) DefaultModel() string           { return "nova-3" }

// https://developers.deepgram.com/docs/models-languages-overview
var (
	nova3Languages = []string{
		"ar", "be", "bs", "bg", "ca", "hr", "cs", "da", "nl", "en", "et", "fi",
		"fr", "de", "el", "hi", "hu", "id", "it", "ja", "kn", "ko", "lv", "lt",
		"mk", "ms", "mr", "no", "pl", "pt", "ro", "ru", "sr", "sk", "sl", "es",
		"sv", "tl", "ta", "tr", "uk", "vi",
	}
	nova2Languages = []string{
		"bg", "ca", "zh", "cs", "da", "nl", "en", "et", "fi", "fr", "de", "el",
		"hi", "hu", "id", "it", "ja", "ko", "lv", "lt", "ms", "no", "pl", "pt",
		"ro", "ru", "sk", "es", "sv", "th", "tr", "uk", "vi",
	}
)

func (p *DeepgramProvider) Models() []Model {
	endpoint := &EndpointConfig{BaseURL: "https://api.deepgram.com", Path: "/v1/listen"}
	return []Model{
		{ID: "nova-3", Name: "Nova-3", Description: "Best accuracy, 40+ languages",
			AdapterType: AdapterDeepgram, SupportedLanguages: nova3Languages, Endpoint: endpoint},
		{ID: "nova-2", Name: "Nova-2", Description: "Fast, covers Chinese and Thai",
			AdapterType: AdapterDeepgram, SupportedLanguages: nova2Languages, Endpoint: endpoint},
	}
}
