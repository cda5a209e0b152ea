// sessions.go manages persisted chat sessions per connection.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsConnectionID string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions for a connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := theApp.chats.ListSessions(sessionsConnectionID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%d messages\t%s\n",
				s.ID, s.Title, len(s.Messages), s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print one session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := theApp.chats.GetSession(sessionsConnectionID, args[0])
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("session %q not found", args[0])
		}
		out, err := json.MarshalIndent(session, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete one session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := theApp.chats.DeleteSession(sessionsConnectionID, args[0])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Println("nothing to delete")
		}
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all sessions for a connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return theApp.chats.ClearSessions(sessionsConnectionID)
	},
}

func init() {
	sessionsCmd.PersistentFlags().StringVarP(&sessionsConnectionID, "connection", "c", "", "saved connection id (required)")
	sessionsCmd.MarkPersistentFlagRequired("connection") //nolint:errcheck

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
}
