// migrate.go upgrades chat history written before the session model
// existed: a flat message array stored where a session list now lives.
//
// Detection is shape-based: a non-empty array whose first element has a
// "role" field and no "messages" field is a legacy message list. Session
// lists never match (sessions carry "messages"), so migration is
// idempotent — once rewritten, reads never re-migrate.
package chat

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// isLegacyMessages reports whether raw holds a pre-session flat
// message array.
func isLegacyMessages(raw json.RawMessage) bool {
	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || len(probe) == 0 {
		return false
	}
	_, hasRole := probe[0]["role"]
	_, hasMessages := probe[0]["messages"]
	return hasRole && !hasMessages
}

// migrateLegacy wraps a flat message array into a single synthesized
// session. Title comes from the first user message; timestamps come
// from the first and last messages, falling back to now.
func (s *Store) migrateLegacy(raw json.RawMessage) (Session, error) {
	var messages []Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return Session{}, fmt.Errorf("parse legacy messages: %w", err)
	}

	session := Session{
		ID:       uuid.NewString(),
		Title:    DefaultTitle,
		Messages: messages,
	}
	if title, ok := titleFromMessages(messages); ok {
		session.Title = title
	}

	now := s.now()
	session.CreatedAt = now
	session.UpdatedAt = now
	if len(messages) > 0 {
		if first := messages[0].CreatedAt; !first.IsZero() {
			session.CreatedAt = first
		}
		if last := messages[len(messages)-1].CreatedAt; !last.IsZero() {
			session.UpdatedAt = last
		}
	}
	return session, nil
}
