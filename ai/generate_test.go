package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DachengChen/pgstudio/chat"
)

// fakeOpenAIServer returns an OpenAI-compatible chat completions server
// that replies with the given structured object and records requests.
func fakeOpenAIServer(t *testing.T, object string, lastBody *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastBody != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode request: %v", err)
			}
			*lastBody = body
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": object}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
}

func userMsg(content string) chat.Message {
	return chat.Message{ID: "m1", Role: chat.RoleUser, Content: content, CreatedAt: time.Now()}
}

func TestGenerateMetricEndToEnd(t *testing.T) {
	object := `{"kind":"metric","message":"Users signed up this week.","sql":"SELECT count(*) FROM users WHERE created_at >= date_trunc('week', now())","label":"Signups this week","format":"number","explanation":null,"warning":null,"requiresConfirmation":null,"title":null,"chartType":null,"xKey":null,"yKeys":null,"description":null,"tables":null}`

	var lastBody map[string]any
	srv := fakeOpenAIServer(t, object, &lastBody)
	defer srv.Close()

	cfg := LegacyConfig{
		Provider: ProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "gpt-5.1-codex",
		BaseURL:  srv.URL,
	}
	resp, err := Generate(context.Background(), cfg,
		[]chat.Message{userMsg("how many users signed up this week?")},
		sampleSchema(), "PostgreSQL")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if resp.Kind != KindMetric {
		t.Errorf("Kind = %q, want metric", resp.Kind)
	}
	if resp.SQL == nil || !strings.Contains(*resp.SQL, "count(*)") {
		t.Errorf("SQL = %v, want a count query", resp.SQL)
	}
	if resp.Title != nil || resp.ChartType != nil || resp.XKey != nil || resp.YKeys != nil || resp.Tables != nil {
		t.Error("chart/schema fields must be null on a metric response")
	}

	// The call must be schema-constrained and low-temperature.
	if lastBody["model"] != "gpt-5.1-codex" {
		t.Errorf("model = %v, want gpt-5.1-codex", lastBody["model"])
	}
	if _, ok := lastBody["response_format"]; !ok {
		t.Error("request missing response_format schema constraint")
	}
	if temp, ok := lastBody["temperature"].(float64); !ok || temp > 0.2 {
		t.Errorf("temperature = %v, want a low value", lastBody["temperature"])
	}
}

func TestGenerateFlattensHistory(t *testing.T) {
	object := `{"kind":"message","message":"ok"}`
	var lastBody map[string]any
	srv := fakeOpenAIServer(t, object, &lastBody)
	defer srv.Close()

	cfg := LegacyConfig{Provider: ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4o", BaseURL: srv.URL}
	messages := []chat.Message{
		{ID: "m1", Role: chat.RoleUser, Content: "show orders"},
		{ID: "m2", Role: chat.RoleAssistant, Content: "here is the query"},
		{ID: "m3", Role: chat.RoleUser, Content: "only from march"},
	}
	if _, err := Generate(context.Background(), cfg, messages, sampleSchema(), "PostgreSQL"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	msgs := lastBody["messages"].([]any)
	user := msgs[len(msgs)-1].(map[string]any)["content"].(string)
	want := "user: show orders\nassistant: here is the query\nonly from march"
	if user != want {
		t.Errorf("combined prompt = %q, want %q", user, want)
	}
}

func TestGenerateInputConstraints(t *testing.T) {
	cfg := LegacyConfig{Provider: ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4o"}

	if _, err := Generate(context.Background(), cfg, nil, sampleSchema(), "PostgreSQL"); err == nil {
		t.Error("empty conversation should be rejected")
	}

	messages := []chat.Message{{ID: "m1", Role: chat.RoleAssistant, Content: "hello"}}
	if _, err := Generate(context.Background(), cfg, messages, sampleSchema(), "PostgreSQL"); err == nil {
		t.Error("conversation not ending in a user message should be rejected")
	}
}

func TestGenerateWrapsTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := LegacyConfig{Provider: ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4o", BaseURL: srv.URL}
	_, err := Generate(context.Background(), cfg, []chat.Message{userMsg("hi")}, sampleSchema(), "PostgreSQL")

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err = %v, want GenerationError", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("err = %v, want wrapped APIError 503", err)
	}
}

func TestGenerateUnknownProviderIsNotGenerationError(t *testing.T) {
	cfg := LegacyConfig{Provider: "mystery", APIKey: "x", Model: "m"}
	_, err := Generate(context.Background(), cfg, []chat.Message{userMsg("hi")}, sampleSchema(), "PostgreSQL")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("err = %v, want ErrUnknownProvider", err)
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		t.Error("a misconfigured provider is not a generation failure")
	}
}
