package provider

// Registry provider names
const (
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
	ProviderGoogle     = "google"
	ProviderMistral    = "mistral"
	ProviderElevenLabs = "elevenlabs"
	ProviderDeepgram   = "deepgram"
	ProviderWhisperCpp = "whisper-cpp"
)

// Config provider names (transcription.provider)
const (
	ConfigProviderOpenAI               = "openai"
	ConfigProviderGroqTranscription    = "groq-transcription"
	ConfigProviderGroqTranslation      = "groq-translation" // any language in, English out
	ConfigProviderMistralTranscription = "mistral-transcription"
	ConfigProviderElevenLabs           = "elevenlabs"
	ConfigProviderDeepgram             = "deepgram"
	ConfigProviderGoogle               = "google"
	ConfigProviderWhisperCpp           = "whisper-cpp"
)

// Environment variable names for credentials
const (
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvGroqKey           = "GROQ_API_KEY"
	EnvMistralKey        = "MISTRAL_API_KEY"
	EnvElevenLabsKey     = "ELEVENLABS_API_KEY"
	EnvDeepgramKey       = "DEEPGRAM_API_KEY"
	EnvGoogleCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Adapter types
const (
	AdapterOpenAI     = "openai"
	AdapterGoogle     = "google"
	AdapterElevenLabs = "elevenlabs"
	AdapterDeepgram   = "deepgram"
	AdapterWhisperCpp = "whisper-cpp"
)

// BaseProviderName maps config provider names to registry names,
// e.g. "groq-transcription" -> "groq".
func BaseProviderName(configProvider string) string {
	switch configProvider {
	case ConfigProviderGroqTranscription, ConfigProviderGroqTranslation:
		return ProviderGroq
	case ConfigProviderMistralTranscription:
		return ProviderMistral
	default:
		return configProvider
	}
}

// EnvVarForProvider returns the environment variable holding a provider's key.
func EnvVarForProvider(provider string) string {
	switch BaseProviderName(provider) {
	case ProviderOpenAI:
		return EnvOpenAIKey
	case ProviderGroq:
		return EnvGroqKey
	case ProviderMistral:
		return EnvMistralKey
	case ProviderElevenLabs:
		return EnvElevenLabsKey
	case ProviderDeepgram:
		return EnvDeepgramKey
	case ProviderGoogle:
		return EnvGoogleCredentials
	default:
		return ""
	}
}

// ConfigNames lists the values accepted for transcription.provider.
func ConfigNames() []string {
	return []string{
		ConfigProviderOpenAI,
		ConfigProviderGroqTranscription,
		ConfigProviderGroqTranslation,
		ConfigProviderMistralTranscription,
		ConfigProviderElevenLabs,
		ConfigProviderDeepgram,
		ConfigProviderGoogle,
		ConfigProviderWhisperCpp,
	}
}
