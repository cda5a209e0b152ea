// generate.go orchestrates one AI turn: resolve the client, build the
// system prompt, flatten the conversation, issue the generation call,
// and normalize the result.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DachengChen/pgstudio/chat"
	"github.com/DachengChen/pgstudio/db"
)

// generateTemperature is kept low so the same question yields the same
// SQL rather than creative variation.
const generateTemperature = 0.1

// GenerationError wraps any failure of the underlying model call:
// transport, auth, rate limit, or schema refusal. Retry policy, if
// any, belongs to the caller.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Generate produces one normalized structured response for the given
// conversation. messages must be non-empty and end with a user message.
func Generate(ctx context.Context, cfg LegacyConfig, messages []chat.Message, meta *db.SchemaMetadata, dialect string) (*StructuredResponse, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("generate: conversation is empty")
	}
	last := messages[len(messages)-1]
	if last.Role != chat.RoleUser {
		return nil, fmt.Errorf("generate: conversation must end with a user message, got %q", last.Role)
	}

	client, err := Resolve(cfg.Provider, Settings{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	if err != nil {
		return nil, err
	}

	system := BuildSystemPrompt(meta, dialect)
	prompt := renderConversation(messages)

	logRequest(client.Name(), prompt)
	raw, err := client.GenerateObject(ctx, ObjectRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: generateTemperature,
	})
	logResponse(client.Name(), raw, err)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	var rawResp RawResponse
	if err := json.Unmarshal(raw, &rawResp); err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("malformed structured output: %w", err)}
	}

	resp := Normalize(rawResp)
	return &resp, nil
}

// renderConversation flattens the history into one prompt string: all
// messages except the last as "role: content" lines, then the final
// user message's content.
func renderConversation(messages []chat.Message) string {
	if len(messages) == 1 {
		return messages[0].Content
	}

	var sb strings.Builder
	for _, m := range messages[:len(messages)-1] {
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString(messages[len(messages)-1].Content)
	return sb.String()
}
