// ask.go implements the AI turn from the command line: load the
// connection, fetch schema context, run the generation pipeline, and
// persist the exchange into the connection's chat session.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/DachengChen/pgstudio/ai"
	"github.com/DachengChen/pgstudio/chat"
	"github.com/DachengChen/pgstudio/db"
)

var (
	askConnectionID string
	askSessionID    string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the AI assistant a question about the connected database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		ctx := cmd.Context()

		legacy, err := theApp.aiConfig.DeriveLegacy()
		if err != nil {
			return err
		}
		if legacy == nil {
			return fmt.Errorf("no AI provider configured; run 'pgstudio providers set' first")
		}
		if key := envAPIKey(string(legacy.Provider)); key != "" {
			legacy.APIKey = key
		}

		conn, ok, err := theApp.connections.Get(askConnectionID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("connection %q not found", askConnectionID)
		}

		database, err := db.Connect(ctx, conn.DBConfig())
		if err != nil {
			return err
		}
		defer database.Close()

		meta, err := database.FetchSchema(ctx)
		if err != nil {
			return fmt.Errorf("fetch schema: %w", err)
		}

		session, err := resolveSession(conn.ID)
		if err != nil {
			return err
		}

		userMsg := chat.Message{
			ID:        uuid.NewString(),
			Role:      chat.RoleUser,
			Content:   question,
			CreatedAt: time.Now(),
		}
		history := append(append([]chat.Message{}, session.Messages...), userMsg)

		resp, err := ai.Generate(ctx, *legacy, history, meta, "PostgreSQL")
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		respJSON := string(out)

		assistantMsg := chat.Message{
			ID:        uuid.NewString(),
			Role:      chat.RoleAssistant,
			Content:   respJSON,
			CreatedAt: time.Now(),
		}
		messages := append(history, assistantMsg)
		if _, err := theApp.chats.UpdateSession(conn.ID, session.ID, chat.SessionUpdate{Messages: &messages}); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, respJSON)
		return nil
	},
}

// resolveSession returns the requested session, or creates a fresh one
// when no session id was given.
func resolveSession(connectionID string) (*chat.Session, error) {
	if askSessionID != "" {
		session, err := theApp.chats.GetSession(connectionID, askSessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, fmt.Errorf("session %q not found", askSessionID)
		}
		return session, nil
	}
	return theApp.chats.CreateSession(connectionID, "")
}

func init() {
	askCmd.Flags().StringVarP(&askConnectionID, "connection", "c", "", "saved connection id (required)")
	askCmd.Flags().StringVarP(&askSessionID, "session", "s", "", "continue an existing chat session")
	askCmd.MarkFlagRequired("connection") //nolint:errcheck
}
