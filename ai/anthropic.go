// anthropic.go implements the Client interface for the Anthropic
// Messages API.
//
// Structured output uses forced tool use: the response contract is
// declared as the input schema of a single tool and tool_choice pins
// the model to it, so the reply arrives as a schema-checked tool call
// rather than free text.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const anthropicVersion = "2023-06-01"

const anthropicMaxTokens = 4096

type anthropic struct {
	apiKey  string
	model   string
	baseURL string
}

var _ Client = (*anthropic)(nil)

func newAnthropic(apiKey, model, baseURL string) *anthropic {
	return &anthropic{apiKey: apiKey, model: model, baseURL: baseURL}
}

func (a *anthropic) Name() string {
	return fmt.Sprintf("anthropic (%s)", a.model)
}

func (a *anthropic) GenerateObject(ctx context.Context, req ObjectRequest) (json.RawMessage, error) {
	body := map[string]any{
		"model":       a.model,
		"max_tokens":  anthropicMaxTokens,
		"temperature": req.Temperature,
		"system":      req.System,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
		"tools": []map[string]any{
			{
				"name":         "structured_response",
				"description":  "Return the structured response object.",
				"input_schema": responseJSONSchema(),
			},
		},
		"tool_choice": map[string]string{"type": "tool", "name": "structured_response"},
	}

	result, err := a.call(ctx, body)
	if err != nil {
		return nil, err
	}

	for _, block := range result.Content {
		if block.Type == "tool_use" {
			return block.Input, nil
		}
	}
	return nil, fmt.Errorf("anthropic returned no tool_use block")
}

func (a *anthropic) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}
	body := map[string]any{
		"model":      a.model,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
	}
	if req.System != "" {
		body["system"] = req.System
	}

	result, err := a.call(ctx, body)
	if err != nil {
		return "", err
	}

	var text string
	for _, block := range result.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return text, nil
}

type anthropicResult struct {
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text"`
		Input json.RawMessage `json:"input"`
	} `json:"content"`
}

func (a *anthropic) call(ctx context.Context, body map[string]any) (*anthropicResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: "anthropic", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result anthropicResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("anthropic parse error: %w", err)
	}
	return &result, nil
}
