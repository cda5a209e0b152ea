// openai.go implements the Client interface for the OpenAI Chat
// Completions API and every endpoint that speaks its protocol:
// OpenAI itself, Groq, and local Ollama servers.
//
// Structured output uses response_format json_schema in strict mode,
// so the model cannot omit contract fields or invent new ones.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type openAICompatible struct {
	label   string // registry id, used in error messages and Name()
	apiKey  string
	model   string
	baseURL string
}

var _ Client = (*openAICompatible)(nil)

func newOpenAICompatible(label, apiKey, model, baseURL string) *openAICompatible {
	return &openAICompatible{label: label, apiKey: apiKey, model: model, baseURL: baseURL}
}

func (o *openAICompatible) Name() string {
	return fmt.Sprintf("%s (%s)", o.label, o.model)
}

func (o *openAICompatible) GenerateObject(ctx context.Context, req ObjectRequest) (json.RawMessage, error) {
	body := map[string]any{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.Prompt},
		},
		"temperature": req.Temperature,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "structured_response",
				"strict": true,
				"schema": responseJSONSchema(),
			},
		},
	}

	content, err := o.call(ctx, body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(content), nil
}

func (o *openAICompatible) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	messages := []map[string]string{}
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	body := map[string]any{
		"model":    o.model,
		"messages": messages,
	}
	if req.MaxTokens > 0 {
		body["max_completion_tokens"] = req.MaxTokens
	}
	return o.call(ctx, body)
}

func (o *openAICompatible) call(ctx context.Context, body map[string]any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", o.label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: o.label, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%s parse error: %w", o.label, err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", o.label)
	}

	return result.Choices[0].Message.Content, nil
}
