// gemini.go implements the Client interface for Google's Generative
// Language API.
//
// Structured output uses responseMimeType application/json with a
// responseSchema. Gemini's schema dialect is an OpenAPI subset
// (uppercase type names, nullable flag), so the contract is restated
// here rather than reusing responseJSONSchema.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type gemini struct {
	apiKey  string
	model   string
	baseURL string
}

var _ Client = (*gemini)(nil)

func newGemini(apiKey, model, baseURL string) *gemini {
	return &gemini{apiKey: apiKey, model: model, baseURL: baseURL}
}

func (g *gemini) Name() string {
	return fmt.Sprintf("google (%s)", g.model)
}

func (g *gemini) GenerateObject(ctx context.Context, req ObjectRequest) (json.RawMessage, error) {
	body := map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]string{{"text": req.System}},
		},
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": req.Prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":      req.Temperature,
			"responseMimeType": "application/json",
			"responseSchema":   geminiResponseSchema(),
		},
	}

	text, err := g.call(ctx, body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(text), nil
}

func (g *gemini) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	genConfig := map[string]any{}
	if req.MaxTokens > 0 {
		genConfig["maxOutputTokens"] = req.MaxTokens
	}
	body := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": req.Prompt}}},
		},
		"generationConfig": genConfig,
	}
	if req.System != "" {
		body["system_instruction"] = map[string]any{
			"parts": []map[string]string{{"text": req.System}},
		}
	}
	return g.call(ctx, body)
}

func (g *gemini) call(ctx context.Context, body map[string]any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("google request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: "google", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("google parse error: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("google returned no candidates")
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text, nil
}

// geminiResponseSchema restates the response contract in Gemini's
// OpenAPI-subset schema dialect.
func geminiResponseSchema() map[string]any {
	str := func(nullable bool) map[string]any {
		return map[string]any{"type": "STRING", "nullable": nullable}
	}
	strArray := func() map[string]any {
		return map[string]any{
			"type":     "ARRAY",
			"nullable": true,
			"items":    map[string]any{"type": "STRING"},
		}
	}

	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"kind": map[string]any{
				"type": "STRING",
				"enum": []string{"query", "chart", "metric", "schema", "message"},
			},
			"message":     str(false),
			"sql":         str(true),
			"explanation": str(true),
			"warning":     str(true),
			"requiresConfirmation": map[string]any{
				"type":     "BOOLEAN",
				"nullable": true,
			},
			"title":       str(true),
			"chartType":   str(true),
			"xKey":        str(true),
			"yKeys":       strArray(),
			"description": str(true),
			"label":       str(true),
			"format":      str(true),
			"tables": map[string]any{
				"type":     "ARRAY",
				"nullable": true,
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"name":        str(false),
						"description": str(true),
						"columns":     strArray(),
					},
					"required": []string{"name"},
				},
			},
		},
		"required": []string{"kind", "message"},
	}
}
