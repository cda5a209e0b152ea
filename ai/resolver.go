// resolver.go maps a provider id plus runtime settings to a concrete
// client. Construction only — no network call happens at resolve time.
package ai

import "fmt"

// Ollama speaks the OpenAI-compatible protocol and ignores the key,
// but the endpoint rejects an empty Authorization header.
const ollamaPlaceholderKey = "ollama"

const ollamaDefaultBaseURL = "http://localhost:11434/v1"

// Resolve returns a generation client bound to the provider's endpoint,
// key, and model. An empty model falls back to the provider's default.
func Resolve(provider ProviderID, s Settings) (Client, error) {
	if _, err := GetProvider(provider); err != nil {
		return nil, err
	}
	if s.Model == "" {
		s.Model = DefaultModel(provider)
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAICompatible("openai", s.APIKey, s.Model, orDefault(s.BaseURL, "https://api.openai.com/v1")), nil

	case ProviderGroq:
		return newOpenAICompatible("groq", s.APIKey, s.Model, orDefault(s.BaseURL, "https://api.groq.com/openai/v1")), nil

	case ProviderOllama:
		return newOpenAICompatible("ollama", ollamaPlaceholderKey, s.Model, orDefault(s.BaseURL, ollamaDefaultBaseURL)), nil

	case ProviderAnthropic:
		return newAnthropic(s.APIKey, s.Model, orDefault(s.BaseURL, "https://api.anthropic.com")), nil

	case ProviderGoogle:
		return newGemini(s.APIKey, s.Model, orDefault(s.BaseURL, "https://generativelanguage.googleapis.com/v1beta")), nil

	default:
		// Unreachable while the registry and this switch stay in sync.
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
