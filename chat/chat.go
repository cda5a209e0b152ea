// Package chat persists AI conversation sessions, keyed by database
// connection id.
//
// Design decisions:
//   - Sessions are owned by exactly one connection; connection ids
//     partition storage with no cross-connection sharing.
//   - The whole history lives in one KV document. Every operation is a
//     single read-modify-write with no interleaved I/O, which is safe
//     under the app's single-writer process model.
//   - Documents written before the session model existed hold a flat
//     message array; reads migrate them in place (see migrate.go).
package chat

import (
	"encoding/json"
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultTitle is the title given to sessions until the auto-title
// rule derives one from the first user message.
const DefaultTitle = "New Chat"

// ToolInvocation records one tool call made during an assistant turn.
type ToolInvocation struct {
	ID     string          `json:"id,omitempty"`
	Name   string          `json:"name"`
	Args   json.RawMessage `json:"args,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Message is a single chat message, owned by its containing session.
type Message struct {
	ID              string           `json:"id"`
	Role            string           `json:"role"`
	Content         string           `json:"content"`
	ToolInvocations []ToolInvocation `json:"toolInvocations,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Session is one conversation thread scoped to a single connection.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionUpdate carries the fields UpdateSession may replace.
// Nil pointers mean "leave unchanged".
type SessionUpdate struct {
	Messages *[]Message
	Title    *string
}
