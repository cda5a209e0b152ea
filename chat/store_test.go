package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DachengChen/pgstudio/kv"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(kv.NewMemStore())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestCreateAndListSessions(t *testing.T) {
	s := testStore(t)

	first, err := s.CreateSession("conn1", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if first.Title != DefaultTitle {
		t.Errorf("Title = %q, want default", first.Title)
	}
	if first.ID == "" {
		t.Error("session must get an id")
	}
	if first.Messages == nil || len(first.Messages) != 0 {
		t.Errorf("Messages = %v, want empty non-nil slice", first.Messages)
	}

	second, err := s.CreateSession("conn1", "Revenue digging")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	sessions, err := s.ListSessions("conn1")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len = %d, want 2", len(sessions))
	}
	// Newest first.
	if sessions[0].ID != second.ID || sessions[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first", sessions[0].Title, sessions[1].Title)
	}
}

func TestListSessionsUnknownConnection(t *testing.T) {
	s := testStore(t)
	sessions, err := s.ListSessions("never-seen")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if sessions == nil || len(sessions) != 0 {
		t.Errorf("sessions = %v, want empty non-nil slice", sessions)
	}
}

func TestGetSessionMissing(t *testing.T) {
	s := testStore(t)
	got, err := s.GetSession("conn1", "nope")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil for missing session", got)
	}
}

func TestUpdateSessionAutoTitle(t *testing.T) {
	s := testStore(t)
	session, err := s.CreateSession("conn1", "")
	if err != nil {
		t.Fatal(err)
	}

	messages := []Message{
		{ID: "m1", Role: RoleUser, Content: "show me all users from last week please"},
	}
	updated, err := s.UpdateSession("conn1", session.ID, SessionUpdate{Messages: &messages})
	if err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if want := "show me all users from last week pl..."; updated.Title != want {
		t.Errorf("Title = %q, want %q", updated.Title, want)
	}

	// Once off the default, later message updates leave the title alone.
	more := append(messages, Message{ID: "m2", Role: RoleUser, Content: "and now something else entirely different"})
	updated, err = s.UpdateSession("conn1", session.ID, SessionUpdate{Messages: &more})
	if err != nil {
		t.Fatal(err)
	}
	if want := "show me all users from last week pl..."; updated.Title != want {
		t.Errorf("Title = %q, auto-title must fire only once", updated.Title)
	}
}

func TestUpdateSessionShortTitleNotTruncated(t *testing.T) {
	s := testStore(t)
	session, _ := s.CreateSession("conn1", "")
	messages := []Message{{ID: "m1", Role: RoleUser, Content: "list tables"}}
	updated, err := s.UpdateSession("conn1", session.ID, SessionUpdate{Messages: &messages})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "list tables" {
		t.Errorf("Title = %q, want the full short message", updated.Title)
	}
}

func TestUpdateSessionExplicitTitleWins(t *testing.T) {
	s := testStore(t)
	session, _ := s.CreateSession("conn1", "")

	title := "Weekly signups"
	messages := []Message{{ID: "m1", Role: RoleUser, Content: "how many users signed up this week?"}}
	updated, err := s.UpdateSession("conn1", session.ID, SessionUpdate{Messages: &messages, Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != title {
		t.Errorf("Title = %q, explicit title must win over derivation", updated.Title)
	}
}

func TestUpdateSessionBumpsUpdatedAt(t *testing.T) {
	s := testStore(t)
	session, _ := s.CreateSession("conn1", "")

	later := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return later }

	messages := []Message{{ID: "m1", Role: RoleUser, Content: "hi"}}
	updated, err := s.UpdateSession("conn1", session.ID, SessionUpdate{Messages: &messages})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, later)
	}
	if !updated.CreatedAt.Before(later) {
		t.Errorf("CreatedAt = %v, must not move on update", updated.CreatedAt)
	}
}

func TestUpdateSessionMissing(t *testing.T) {
	s := testStore(t)
	messages := []Message{{ID: "m1", Role: RoleUser, Content: "hi"}}
	got, err := s.UpdateSession("conn1", "nope", SessionUpdate{Messages: &messages})
	if err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil for missing session", got)
	}
}

func TestDeleteSession(t *testing.T) {
	s := testStore(t)
	session, _ := s.CreateSession("conn1", "doomed")

	existed, err := s.DeleteSession("conn1", session.ID)
	if err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if !existed {
		t.Error("existed = false, want true")
	}

	existed, err = s.DeleteSession("conn1", session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if existed {
		t.Error("second delete reported the session still existed")
	}
}

func TestClearSessionsIsolatedPerConnection(t *testing.T) {
	s := testStore(t)
	s.CreateSession("conn1", "a") //nolint:errcheck
	s.CreateSession("conn2", "b") //nolint:errcheck

	if err := s.ClearSessions("conn1"); err != nil {
		t.Fatalf("ClearSessions: %v", err)
	}

	one, _ := s.ListSessions("conn1")
	two, _ := s.ListSessions("conn2")
	if len(one) != 0 {
		t.Errorf("conn1 sessions = %d, want 0", len(one))
	}
	if len(two) != 1 {
		t.Errorf("conn2 sessions = %d, want 1 untouched", len(two))
	}
}

func TestClearAll(t *testing.T) {
	s := testStore(t)
	s.CreateSession("conn1", "a") //nolint:errcheck
	s.CreateSession("conn2", "b") //nolint:errcheck

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	for _, conn := range []string{"conn1", "conn2"} {
		sessions, _ := s.ListSessions(conn)
		if len(sessions) != 0 {
			t.Errorf("%s sessions = %d, want 0", conn, len(sessions))
		}
	}
}

// seedLegacy writes a pre-session flat message array for conn1.
func seedLegacy(t *testing.T) *kv.MemStore {
	t.Helper()
	mem := kv.NewMemStore()
	legacy := map[string]any{
		"conn1": []map[string]any{
			{"id": "m1", "role": "user", "content": "show me all users", "createdAt": "2026-01-10T10:00:00Z"},
			{"id": "m2", "role": "assistant", "content": "SELECT * FROM users", "createdAt": "2026-01-10T10:00:05Z"},
		},
	}
	if err := mem.Set("ai-chat-history", legacy); err != nil {
		t.Fatal(err)
	}
	return mem
}

// persistedIsLegacy reports whether conn1's stored value is still the
// pre-session shape.
func persistedIsLegacy(t *testing.T, mem *kv.MemStore) bool {
	t.Helper()
	raw, ok, err := mem.Get("ai-chat-history")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	return isLegacyMessages(doc["conn1"])
}

func TestLegacyMigration(t *testing.T) {
	mem := seedLegacy(t)
	s := NewStore(mem)
	sessions, err := s.ListSessions("conn1")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("len = %d, want one synthesized session", len(sessions))
	}

	got := sessions[0]
	if got.ID == "" {
		t.Error("migrated session must get an id")
	}
	if got.Title != "show me all users" {
		t.Errorf("Title = %q, want derived from first user message", got.Title)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(got.Messages))
	}
	wantCreated := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	wantUpdated := time.Date(2026, 1, 10, 10, 0, 5, 0, time.UTC)
	if !got.CreatedAt.Equal(wantCreated) {
		t.Errorf("CreatedAt = %v, want first message time %v", got.CreatedAt, wantCreated)
	}
	if !got.UpdatedAt.Equal(wantUpdated) {
		t.Errorf("UpdatedAt = %v, want last message time %v", got.UpdatedAt, wantUpdated)
	}

	// The migrated shape must have been persisted.
	if persistedIsLegacy(t, mem) {
		t.Error("persisted document still in legacy shape")
	}

	// A second read must not synthesize a new session.
	again, err := s.ListSessions("conn1")
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 1 || again[0].ID != got.ID {
		t.Error("migration is not idempotent")
	}
}

func TestLegacyMigrationPersistsOnMissingSession(t *testing.T) {
	t.Run("update", func(t *testing.T) {
		mem := seedLegacy(t)
		s := NewStore(mem)

		got, err := s.UpdateSession("conn1", "no-such-id", SessionUpdate{})
		if err != nil {
			t.Fatalf("UpdateSession: %v", err)
		}
		if got != nil {
			t.Errorf("got = %+v, want nil for missing session", got)
		}
		if persistedIsLegacy(t, mem) {
			t.Error("migration discarded when the session id was not found")
		}
	})

	t.Run("delete", func(t *testing.T) {
		mem := seedLegacy(t)
		s := NewStore(mem)

		existed, err := s.DeleteSession("conn1", "no-such-id")
		if err != nil {
			t.Fatalf("DeleteSession: %v", err)
		}
		if existed {
			t.Error("existed = true for a session that never existed")
		}
		if persistedIsLegacy(t, mem) {
			t.Error("migration discarded when the session id was not found")
		}
	})
}

func TestLegacyDetection(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"flat messages", `[{"id":"m1","role":"user","content":"hi"}]`, true},
		{"session list", `[{"id":"s1","title":"t","messages":[]}]`, false},
		{"empty array", `[]`, false},
		{"not an array", `{"role":"user"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isLegacyMessages(json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("isLegacyMessages = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionsRoundTripThroughStore(t *testing.T) {
	mem := kv.NewMemStore()
	s := NewStore(mem)

	created, err := s.CreateSession("conn1", "Inventory checks")
	if err != nil {
		t.Fatal(err)
	}
	messages := []Message{
		{ID: "m1", Role: RoleUser, Content: "count items", CreatedAt: time.Now().UTC()},
		{ID: "m2", Role: RoleAssistant, Content: "SELECT count(*) FROM items",
			ToolInvocations: []ToolInvocation{{Name: "structured_response"}}},
	}
	if _, err := s.UpdateSession("conn1", created.ID, SessionUpdate{Messages: &messages}); err != nil {
		t.Fatal(err)
	}

	// Fresh store over the same backend sees the same data.
	reloaded, err := NewStore(mem).GetSession("conn1", created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded == nil {
		t.Fatal("session lost across store instances")
	}
	if reloaded.Title != "Inventory checks" {
		t.Errorf("Title = %q", reloaded.Title)
	}
	if len(reloaded.Messages) != 2 || len(reloaded.Messages[1].ToolInvocations) != 1 {
		t.Errorf("messages did not survive the round trip: %+v", reloaded.Messages)
	}
}
