// Package cmd contains all Cobra commands for pgstudio.
//
// Design decision: the stores are constructed once in setup() and
// passed to subcommands through the app struct — command handlers
// never reach for global state. The CLI plays the role the desktop
// shell plays in the full product: it owns process lifetime and wires
// the stores and the AI pipeline together.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DachengChen/pgstudio/applog"
	"github.com/DachengChen/pgstudio/chat"
	"github.com/DachengChen/pgstudio/config"
	"github.com/DachengChen/pgstudio/kv"
)

// app holds the process-lifetime stores shared by all commands.
type app struct {
	store       kv.Store
	aiConfig    *config.AIConfigStore
	chats       *chat.Store
	connections *config.ConnectionStore
}

var theApp *app

// setup opens the encrypted store and constructs the stores.
// Runs once, before any subcommand.
func setup() error {
	if theApp != nil {
		return nil
	}

	dir, err := kv.DefaultDir()
	if err != nil {
		return fmt.Errorf("resolve store dir: %w", err)
	}
	key, err := kv.LoadOrCreateKey(filepath.Join(filepath.Dir(dir), "store.key"))
	if err != nil {
		return fmt.Errorf("load store key: %w", err)
	}
	store, err := kv.NewFileStore(dir, key)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	theApp = &app{
		store:       store,
		aiConfig:    config.NewAIConfigStore(store),
		chats:       chat.NewStore(store),
		connections: config.NewConnectionStore(store),
	}
	applog.Info("stores initialized")
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "pgstudio",
	Short: "PostgreSQL client core with AI-assisted query generation",
	Long: `pgstudio is the headless core of an AI-assisted PostgreSQL client:
  • Multi-provider AI query generation (OpenAI, Anthropic, Google, Groq, Ollama)
  • Persisted chat sessions per database connection
  • Schema introspection, query execution, CSV/JSON export
  • Optional SSH tunnel for remote servers`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

// Execute runs the root command.
func Execute() error {
	defer applog.Close()
	if err := rootCmd.Execute(); err != nil {
		applog.Error("command failed: %v", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(connectionsCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(queryCmd)
}

// envAPIKey returns the conventional environment variable override for
// a provider's API key, or "".
func envAPIKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "google":
		return os.Getenv("GEMINI_API_KEY")
	case "groq":
		return os.Getenv("GROQ_API_KEY")
	}
	return ""
}
