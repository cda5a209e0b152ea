// Package ai implements the structured-response pipeline: a static
// provider registry, a model resolver producing per-provider clients,
// a schema-aware prompt builder, the response generator/normalizer,
// and the API key validator.
//
// Design decisions:
//   - Provider identity is a closed enum. Each id maps to one concrete
//     client-construction strategy in resolver.go; adding a provider
//     means one registry entry plus one resolver case, no call-site
//     changes.
//   - Clients speak each provider's HTTP API directly over net/http,
//     so there are no SDK dependencies to keep in sync.
package ai

import "fmt"

// ProviderID identifies a supported AI provider.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGoogle    ProviderID = "google"
	ProviderGroq      ProviderID = "groq"
	ProviderOllama    ProviderID = "ollama"
)

// ErrUnknownProvider is returned when a provider id is not registered.
// Hitting this in normal UI flow is a defect, not a user error.
var ErrUnknownProvider = fmt.Errorf("unknown AI provider")

// ModelInfo describes one model offered by a provider.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Recommended bool   `json:"recommended,omitempty"`
}

// ProviderInfo is the static descriptor for one provider.
type ProviderInfo struct {
	ID          ProviderID  `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	KeyPrefix   string      `json:"keyPrefix,omitempty"` // "" when the provider needs no key (ollama)
	KeyURL      string      `json:"keyUrl,omitempty"`
	Models      []ModelInfo `json:"models"`
}

// providers is the ordered registry. Invariants (checked by tests):
// every provider has at least one model, and at most one model is
// marked recommended. The first model is the fallback default.
var providers = []ProviderInfo{
	{
		ID:          ProviderOpenAI,
		Name:        "OpenAI",
		Description: "GPT models via the OpenAI API",
		KeyPrefix:   "sk-",
		KeyURL:      "https://platform.openai.com/api-keys",
		Models: []ModelInfo{
			{ID: "gpt-5.1", Name: "GPT-5.1", Description: "Flagship general-purpose model", Recommended: true},
			{ID: "gpt-5.1-codex", Name: "GPT-5.1 Codex", Description: "Tuned for code and SQL generation"},
			{ID: "gpt-4o", Name: "GPT-4o"},
			{ID: "gpt-4o-mini", Name: "GPT-4o mini", Description: "Fast and inexpensive"},
		},
	},
	{
		ID:          ProviderAnthropic,
		Name:        "Anthropic",
		Description: "Claude models via the Anthropic API",
		KeyPrefix:   "sk-ant-",
		KeyURL:      "https://console.anthropic.com/settings/keys",
		Models: []ModelInfo{
			{ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5", Description: "Best balance of speed and quality", Recommended: true},
			{ID: "claude-opus-4-1", Name: "Claude Opus 4.1", Description: "Most capable"},
			{ID: "claude-haiku-4-5", Name: "Claude Haiku 4.5", Description: "Fastest"},
		},
	},
	{
		ID:          ProviderGoogle,
		Name:        "Google",
		Description: "Gemini models via the Generative Language API",
		KeyPrefix:   "AIza",
		KeyURL:      "https://aistudio.google.com/apikey",
		Models: []ModelInfo{
			{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Recommended: true},
			{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
			{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash"},
		},
	},
	{
		ID:          ProviderGroq,
		Name:        "Groq",
		Description: "Open models served on Groq hardware",
		KeyPrefix:   "gsk_",
		KeyURL:      "https://console.groq.com/keys",
		Models: []ModelInfo{
			{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B", Recommended: true},
			{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B", Description: "Fastest"},
		},
	},
	{
		ID:          ProviderOllama,
		Name:        "Ollama",
		Description: "Local models through an Ollama server",
		KeyURL:      "https://ollama.com/download",
		Models: []ModelInfo{
			{ID: "llama3.2", Name: "Llama 3.2", Recommended: true},
			{ID: "qwen2.5-coder", Name: "Qwen 2.5 Coder", Description: "Strong at SQL"},
			{ID: "mistral", Name: "Mistral 7B"},
		},
	},
}

// Providers returns the ordered list of provider descriptors.
func Providers() []ProviderInfo {
	out := make([]ProviderInfo, len(providers))
	copy(out, providers)
	return out
}

// GetProvider looks up one provider descriptor.
func GetProvider(id ProviderID) (ProviderInfo, error) {
	for _, p := range providers {
		if p.ID == id {
			return p, nil
		}
	}
	return ProviderInfo{}, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
}

// DefaultModel returns the provider's recommended model, or its first
// model when none is marked recommended.
func DefaultModel(id ProviderID) string {
	p, err := GetProvider(id)
	if err != nil {
		return ""
	}
	for _, m := range p.Models {
		if m.Recommended {
			return m.ID
		}
	}
	return p.Models[0].ID
}
