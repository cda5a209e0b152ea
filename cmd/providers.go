// providers.go manages AI provider configuration: list the registry,
// set/remove credentials, pick the active provider and model, and
// validate a key with a live call.
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DachengChen/pgstudio/ai"
	"github.com/DachengChen/pgstudio/config"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage AI providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported providers and their models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := theApp.aiConfig.Get()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()
		for _, p := range ai.Providers() {
			marker := " "
			if cfg != nil && cfg.ActiveProvider == p.ID {
				marker = "*"
			}
			configured := ""
			if cfg != nil {
				if _, ok := cfg.Providers[p.ID]; ok {
					configured = "configured"
				}
			}
			fmt.Fprintf(w, "%s %s\t%s\t%s\n", marker, p.ID, p.Name, configured)
			for _, m := range p.Models {
				rec := ""
				if m.Recommended {
					rec = "(recommended)"
				}
				fmt.Fprintf(w, "\t  %s\t%s\n", m.ID, rec)
			}
		}
		return nil
	},
}

var (
	providerAPIKey  string
	providerBaseURL string
)

var providersSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Configure a provider's API key and endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ai.ProviderID(args[0])
		return theApp.aiConfig.SetProviderConfig(id, config.ProviderConfig{
			APIKey:  providerAPIKey,
			BaseURL: providerBaseURL,
		})
	},
}

var providersRemoveCmd = &cobra.Command{
	Use:   "remove <provider>",
	Short: "Remove a provider's configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return theApp.aiConfig.RemoveProviderConfig(ai.ProviderID(args[0]))
	},
}

var providersUseCmd = &cobra.Command{
	Use:   "use <provider>",
	Short: "Make a provider the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return theApp.aiConfig.SetActiveProvider(ai.ProviderID(args[0]))
	},
}

var providersModelCmd = &cobra.Command{
	Use:   "model <provider> <model>",
	Short: "Set the active model for a provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return theApp.aiConfig.SetActiveModel(ai.ProviderID(args[0]), args[1])
	},
}

var providersValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the active provider's credentials with a live call",
	RunE: func(cmd *cobra.Command, args []string) error {
		legacy, err := theApp.aiConfig.DeriveLegacy()
		if err != nil {
			return err
		}
		if legacy == nil {
			return fmt.Errorf("no AI provider configured")
		}
		if key := envAPIKey(string(legacy.Provider)); key != "" {
			legacy.APIKey = key
		}

		result := ai.ValidateKey(cmd.Context(), *legacy)
		if result.Valid {
			fmt.Println("API key is valid")
			return nil
		}
		fmt.Printf("validation failed: %s\n", result.Error)
		return nil
	},
}

func init() {
	providersSetCmd.Flags().StringVar(&providerAPIKey, "api-key", "", "provider API key")
	providersSetCmd.Flags().StringVar(&providerBaseURL, "base-url", "", "override the provider endpoint")

	providersCmd.AddCommand(providersListCmd)
	providersCmd.AddCommand(providersSetCmd)
	providersCmd.AddCommand(providersRemoveCmd)
	providersCmd.AddCommand(providersUseCmd)
	providersCmd.AddCommand(providersModelCmd)
	providersCmd.AddCommand(providersValidateCmd)
}
