// store.go implements the session store operations over the KV document.
package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DachengChen/pgstudio/kv"
)

// storeKey is the KV document holding all chat history, kept distinct
// from other app storage.
const storeKey = "ai-chat-history"

// maxTitleRunes is the auto-title truncation point. Longer first
// messages are cut here and suffixed with an ellipsis.
const maxTitleRunes = 35

// Store persists chat sessions in a kv.Store document.
type Store struct {
	kv  kv.Store
	now func() time.Time
}

// NewStore creates a session store over the given persistence backend.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store, now: time.Now}
}

// document is the persisted shape: connection id -> raw session list.
// Values stay raw so legacy flat-message arrays can be detected before
// they are decoded as sessions.
type document map[string]json.RawMessage

func (s *Store) load() (document, error) {
	raw, ok, err := s.kv.Get(storeKey)
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}
	doc := document{}
	if !ok {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse chat history: %w", err)
	}
	return doc, nil
}

func (s *Store) save(doc document) error {
	if err := s.kv.Set(storeKey, doc); err != nil {
		return fmt.Errorf("write chat history: %w", err)
	}
	return nil
}

// sessionsFor decodes one connection's session list, migrating the
// legacy flat-message shape in place when detected. The returned bool
// reports whether a migration happened (the caller must persist).
func (s *Store) sessionsFor(doc document, connectionID string) ([]Session, bool, error) {
	raw, ok := doc[connectionID]
	if !ok {
		return nil, false, nil
	}

	if isLegacyMessages(raw) {
		session, err := s.migrateLegacy(raw)
		if err != nil {
			return nil, false, err
		}
		sessions := []Session{session}
		if err := setSessions(doc, connectionID, sessions); err != nil {
			return nil, false, err
		}
		return sessions, true, nil
	}

	var sessions []Session
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, false, fmt.Errorf("parse sessions for %q: %w", connectionID, err)
	}
	return sessions, false, nil
}

func setSessions(doc document, connectionID string, sessions []Session) error {
	raw, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	doc[connectionID] = raw
	return nil
}

// ListSessions returns all sessions for a connection, most recently
// created first. Legacy documents are migrated and persisted before
// the result is returned.
func (s *Store) ListSessions(connectionID string) ([]Session, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	sessions, migrated, err := s.sessionsFor(doc, connectionID)
	if err != nil {
		return nil, err
	}
	if migrated {
		if err := s.save(doc); err != nil {
			return nil, err
		}
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}

// GetSession returns one session, or nil if it does not exist.
func (s *Store) GetSession(connectionID, sessionID string) (*Session, error) {
	sessions, err := s.ListSessions(connectionID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == sessionID {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// CreateSession creates an empty session at the front of the
// connection's list. An empty title defaults to DefaultTitle.
func (s *Store) CreateSession(connectionID, title string) (*Session, error) {
	if title == "" {
		title = DefaultTitle
	}
	now := s.now()
	session := Session{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	sessions, _, err := s.sessionsFor(doc, connectionID)
	if err != nil {
		return nil, err
	}
	sessions = append([]Session{session}, sessions...)
	if err := setSessions(doc, connectionID, sessions); err != nil {
		return nil, err
	}
	if err := s.save(doc); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession replaces the provided fields and bumps UpdatedAt.
// While the title is still the default, the first update that makes
// messages non-empty derives a title from the first user message; an
// explicit title in the update always wins. Returns nil (no error) if
// the session does not exist.
func (s *Store) UpdateSession(connectionID, sessionID string, upd SessionUpdate) (*Session, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	sessions, migrated, err := s.sessionsFor(doc, connectionID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range sessions {
		if sessions[i].ID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Keep the migrated shape even when there is nothing to update.
		if migrated {
			if err := s.save(doc); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	session := &sessions[idx]
	if upd.Messages != nil {
		session.Messages = *upd.Messages
		if session.Title == DefaultTitle && len(session.Messages) > 0 && upd.Title == nil {
			if title, ok := titleFromMessages(session.Messages); ok {
				session.Title = title
			}
		}
	}
	if upd.Title != nil {
		session.Title = *upd.Title
	}
	session.UpdatedAt = s.now()

	if err := setSessions(doc, connectionID, sessions); err != nil {
		return nil, err
	}
	if err := s.save(doc); err != nil {
		return nil, err
	}
	out := *session
	return &out, nil
}

// DeleteSession removes one session, reporting whether it existed.
func (s *Store) DeleteSession(connectionID, sessionID string) (bool, error) {
	doc, err := s.load()
	if err != nil {
		return false, err
	}
	sessions, migrated, err := s.sessionsFor(doc, connectionID)
	if err != nil {
		return false, err
	}

	for i := range sessions {
		if sessions[i].ID == sessionID {
			sessions = append(sessions[:i], sessions[i+1:]...)
			if err := setSessions(doc, connectionID, sessions); err != nil {
				return false, err
			}
			if err := s.save(doc); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	if migrated {
		if err := s.save(doc); err != nil {
			return false, err
		}
	}
	return false, nil
}

// ClearSessions removes all sessions for one connection.
func (s *Store) ClearSessions(connectionID string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[connectionID]; !ok {
		return nil
	}
	delete(doc, connectionID)
	return s.save(doc)
}

// ClearAll wipes the entire chat history store.
func (s *Store) ClearAll() error {
	return s.kv.Delete(storeKey)
}

// titleFromMessages derives a session title from the first user message.
func titleFromMessages(messages []Message) (string, bool) {
	for _, m := range messages {
		if m.Role == RoleUser {
			return deriveTitle(m.Content), true
		}
	}
	return "", false
}

func deriveTitle(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return DefaultTitle
	}
	runes := []rune(content)
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes]) + "..."
	}
	return content
}
