package provider

import (
	"github.com/leonardotrapani/scribebot/internal/language"
	"github.com/leonardotrapani/scribebot/internal/models/whisper"
)

// WhisperCppProvider runs ggml Whisper models locally through whisper-cli.
type WhisperCppProvider struct{}

func (p *WhisperCppProvider) Name() string                   { return ProviderWhisperCpp }
func (p *WhisperCppProvider) RequiresAPIKey() bool           { return false }
func (p *WhisperCppProvider) ValidateAPIKey(key string) bool { return true }
func (p *WhisperCppProvider) IsLocal() bool                  { return true }
func (p *WhisperCppProvider) DefaultModel() string           { return "base" }

func (p *WhisperCppProvider) Models() []Model {
	catalog := whisper.ListModels()
	result := make([]Model, 0, len(catalog))
	for _, wm := range catalog {
		langs := language.Codes()
		if !wm.Multilingual {
			langs = []string{"en"}
		}
		result = append(result, Model{
			ID:                 wm.ID,
			Name:               wm.Name,
			Description:        wm.Description,
			Local:              true,
			AdapterType:        AdapterWhisperCpp,
			SupportedLanguages: langs,
			LocalInfo: &LocalModelInfo{
				Filename:    wm.Filename,
				Size:        wm.Size,
				DownloadURL: whisper.DownloadURL(wm.ID),
			},
		})
	}
	return result
}
