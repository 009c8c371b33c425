// Package whisper manages the ggml model files used by the whisper-cpp provider.
package whisper

// ModelInfo describes a downloadable ggml model.
type ModelInfo struct {
	ID           string
	Name         string
	Description  string
	Filename     string
	Size         string // human readable
	SizeBytes    int64  // expected size, used when the server omits Content-Length
	Multilingual bool
}

// huggingface.co/ggerganov/whisper.cpp
var catalog = []ModelInfo{
	{ID: "tiny.en", Name: "Tiny English", Description: "Fastest, low accuracy, English only",
		Filename: "ggml-tiny.en.bin", Size: "75MB", SizeBytes: 75_000_000},
	{ID: "base.en", Name: "Base English", Description: "Balanced speed and accuracy, English only",
		Filename: "ggml-base.en.bin", Size: "142MB", SizeBytes: 142_000_000},
	{ID: "small.en", Name: "Small English", Description: "Better accuracy, needs a decent CPU",
		Filename: "ggml-small.en.bin", Size: "466MB", SizeBytes: 466_000_000},
	{ID: "medium.en", Name: "Medium English", Description: "Best English-only accuracy",
		Filename: "ggml-medium.en.bin", Size: "1.5GB", SizeBytes: 1_500_000_000},
	{ID: "tiny", Name: "Tiny", Description: "Fastest multilingual",
		Filename: "ggml-tiny.bin", Size: "75MB", SizeBytes: 75_000_000, Multilingual: true},
	{ID: "base", Name: "Base", Description: "Balanced multilingual, recommended start",
		Filename: "ggml-base.bin", Size: "142MB", SizeBytes: 142_000_000, Multilingual: true},
	{ID: "small", Name: "Small", Description: "Better multilingual accuracy",
		Filename: "ggml-small.bin", Size: "466MB", SizeBytes: 466_000_000, Multilingual: true},
	{ID: "medium", Name: "Medium", Description: "Great multilingual accuracy, needs good CPU/RAM",
		Filename: "ggml-medium.bin", Size: "1.5GB", SizeBytes: 1_500_000_000, Multilingual: true},
	{ID: "large-v3", Name: "Large V3", Description: "Best accuracy, needs strong hardware",
		Filename: "ggml-large-v3.bin", Size: "3GB", SizeBytes: 3_000_000_000, Multilingual: true},
	{ID: "large-v3-turbo", Name: "Large V3 Turbo", Description: "Near-best accuracy, faster",
		Filename: "ggml-large-v3-turbo.bin", Size: "1.6GB", SizeBytes: 1_600_000_000, Multilingual: true},
}

const defaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// GetModel returns the catalog entry for id, or nil.
func GetModel(id string) *ModelInfo {
	for _, m := range catalog {
		if m.ID == id {
			info := m
			return &info
		}
	}
	return nil
}

func ListModels() []ModelInfo {
	out := make([]ModelInfo, len(catalog))
	copy(out, catalog)
	return out
}

// DownloadURL is the public download location of a model, empty if unknown.
func DownloadURL(id string) string {
	info := GetModel(id)
	if info == nil {
		return ""
	}
	return defaultBaseURL + "/" + info.Filename
}
