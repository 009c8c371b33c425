package provider

import (
	"slices"
	"time"
)

type Model struct {
	ID                 string
	Name               string
	Description        string
	Local              bool
	AdapterType        string
	SupportedLanguages []string        // empty means any language
	Endpoint           *EndpointConfig // nil for local models
	LocalInfo          *LocalModelInfo // nil for cloud models
	MaxAudio           time.Duration   // longest clip one request accepts, 0 if unbounded
}

type EndpointConfig struct {
	BaseURL string
	Path    string
}

// LocalModelInfo holds metadata for downloadable local models
type LocalModelInfo struct {
	Filename    string
	Size        string
	DownloadURL string
}

func (m Model) NeedsDownload() bool {
	return m.LocalInfo != nil
}

// SupportsLanguage reports whether code can be requested. Auto-detect (empty)
// is always supported.
func (m Model) SupportsLanguage(code string) bool {
	if code == "" || len(m.SupportedLanguages) == 0 {
		return true
	}
	return slices.Contains(m.SupportedLanguages, code)
}
