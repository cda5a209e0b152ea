package ai

import (
	"errors"
	"testing"
)

func TestResolveUnknownProvider(t *testing.T) {
	_, err := Resolve("mystery", Settings{APIKey: "x"})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Resolve(mystery) = %v, want ErrUnknownProvider", err)
	}
}

func TestResolveOllamaDefaults(t *testing.T) {
	client, err := Resolve(ProviderOllama, Settings{})
	if err != nil {
		t.Fatalf("Resolve(ollama): %v", err)
	}

	oc, ok := client.(*openAICompatible)
	if !ok {
		t.Fatalf("ollama client is %T, want OpenAI-compatible", client)
	}
	if oc.baseURL != "http://localhost:11434/v1" {
		t.Errorf("baseURL = %q, want the default local endpoint", oc.baseURL)
	}
	if oc.apiKey != ollamaPlaceholderKey {
		t.Errorf("apiKey = %q, want the fixed placeholder", oc.apiKey)
	}
	if oc.model != "llama3.2" {
		t.Errorf("model = %q, want the registry default", oc.model)
	}
}

func TestResolveOllamaBaseURLOverride(t *testing.T) {
	client, err := Resolve(ProviderOllama, Settings{BaseURL: "http://box:11434/v1", Model: "mistral"})
	if err != nil {
		t.Fatal(err)
	}
	oc := client.(*openAICompatible)
	if oc.baseURL != "http://box:11434/v1" {
		t.Errorf("baseURL = %q, caller override should win", oc.baseURL)
	}
	if oc.model != "mistral" {
		t.Errorf("model = %q, want mistral", oc.model)
	}
}

func TestResolveBindsEachProvider(t *testing.T) {
	tests := []struct {
		provider ProviderID
		wantBase string
	}{
		{ProviderOpenAI, "https://api.openai.com/v1"},
		{ProviderGroq, "https://api.groq.com/openai/v1"},
	}
	for _, tt := range tests {
		client, err := Resolve(tt.provider, Settings{APIKey: "k"})
		if err != nil {
			t.Fatalf("Resolve(%s): %v", tt.provider, err)
		}
		oc := client.(*openAICompatible)
		if oc.baseURL != tt.wantBase {
			t.Errorf("%s baseURL = %q, want %q", tt.provider, oc.baseURL, tt.wantBase)
		}
	}

	if _, err := Resolve(ProviderAnthropic, Settings{APIKey: "k"}); err != nil {
		t.Errorf("Resolve(anthropic): %v", err)
	}
	if _, err := Resolve(ProviderGoogle, Settings{APIKey: "k"}); err != nil {
		t.Errorf("Resolve(google): %v", err)
	}
}
