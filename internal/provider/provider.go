// Package provider describes the speech-to-text backends scribebot can use
// and the models each one offers.
package provider

import "sort"

// Provider is a speech-to-text service.
type Provider interface {
	Name() string
	RequiresAPIKey() bool
	ValidateAPIKey(key string) bool
	IsLocal() bool
	Models() []Model
	DefaultModel() string
}

var registry = make(map[string]Provider)

func init() {
	Register(&OpenAIProvider{})
	Register(&GroqProvider{})
	Register(&MistralProvider{})
	Register(&ElevenLabsProvider{})
	Register(&DeepgramProvider{})
	Register(&GoogleProvider{})
	Register(&WhisperCppProvider{})
}

func Register(p Provider) {
	registry[p.Name()] = p
}

// GetProvider accepts registry or config names; nil if unknown.
func GetProvider(name string) Provider {
	return registry[BaseProviderName(name)]
}

// ListProviders returns registered provider names, sorted.
func ListProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindModel looks up a model of the named provider.
func FindModel(providerName, modelID string) (Model, bool) {
	p := GetProvider(providerName)
	if p == nil {
		return Model{}, false
	}
	for _, m := range p.Models() {
		if m.ID == modelID {
			return m, true
		}
	}
	return Model{}, false
}

// ModelIDs returns the model IDs of the named provider.
func ModelIDs(providerName string) []string {
	p := GetProvider(providerName)
	if p == nil {
		return nil
	}
	var ids []string
	for _, m := range p.Models() {
		ids = append(ids, m.ID)
	}
	return ids
}
