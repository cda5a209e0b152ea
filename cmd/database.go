// database.go implements connection profile CRUD, schema inspection,
// and query execution with CSV/JSON export.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DachengChen/pgstudio/config"
	"github.com/DachengChen/pgstudio/db"
)

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Manage saved database connections",
}

var connectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		conns, err := theApp.connections.List()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()
		for _, c := range conns {
			fmt.Fprintf(w, "%s\t%s\n", c.ID, c.String())
		}
		return nil
	},
}

var addConn config.Connection

var connectionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new connection profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, err := theApp.connections.Save(addConn)
		if err != nil {
			return err
		}
		fmt.Println(saved.ID)
		return nil
	},
}

var connectionsRemoveCmd = &cobra.Command{
	Use:   "remove <connection-id>",
	Short: "Delete a saved connection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := theApp.connections.Delete(args[0])
		if err != nil {
			return err
		}
		if !removed {
			fmt.Println("nothing to delete")
		}
		return nil
	},
}

var (
	schemaConnectionID string
	schemaNamespace    string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the database schema metadata as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := connectByID(cmd, schemaConnectionID)
		if err != nil {
			return err
		}
		defer database.Close()

		meta, err := database.FetchSchema(cmd.Context())
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var schemaTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables in a schema with estimated row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := connectByID(cmd, schemaConnectionID)
		if err != nil {
			return err
		}
		defer database.Close()

		tables, err := database.ListTables(cmd.Context(), schemaNamespace)
		if err != nil {
			return err
		}
		printTableInfos(tables)
		return nil
	},
}

var schemaViewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List views in a schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := connectByID(cmd, schemaConnectionID)
		if err != nil {
			return err
		}
		defer database.Close()

		views, err := database.ListViews(cmd.Context(), schemaNamespace)
		if err != nil {
			return err
		}
		printTableInfos(views)
		return nil
	},
}

func printTableInfos(infos []db.TableInfo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	for _, t := range infos {
		fmt.Fprintf(w, "%s.%s\t%s\t~%d rows\n", t.Schema, t.Name, t.Type, t.RowCount)
	}
}

var (
	queryConnectionID string
	queryFormat       string
	queryLimit        int
	queryOffset       int
	queryExplain      bool
	queryAnalyze      bool
	queryRollback     bool
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run SQL and print the result as a table, CSV, or JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sql := strings.Join(args, " ")
		database, err := connectByID(cmd, queryConnectionID)
		if err != nil {
			return err
		}
		defer database.Close()

		if queryExplain || queryAnalyze {
			plan, err := database.Explain(cmd.Context(), sql, queryAnalyze)
			if err != nil {
				return err
			}
			fmt.Println(plan)
			return nil
		}

		var result *db.QueryResult
		switch {
		case queryRollback:
			result, err = database.ExecuteRollback(cmd.Context(), sql)
		case queryLimit > 0:
			result, err = database.ExecutePage(cmd.Context(), sql, queryLimit, queryOffset)
		default:
			result, err = database.Execute(cmd.Context(), sql)
		}
		if err != nil {
			return err
		}

		switch queryFormat {
		case "csv":
			return result.WriteCSV(os.Stdout)
		case "json":
			return result.WriteJSON(os.Stdout)
		default:
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join(result.Columns, "\t"))
			for _, row := range result.Rows {
				fmt.Fprintln(w, strings.Join(row, "\t"))
			}
			w.Flush()
			fmt.Println(result.Status)
			return nil
		}
	},
}

func connectByID(cmd *cobra.Command, id string) (*db.DB, error) {
	conn, ok, err := theApp.connections.Get(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("connection %q not found", id)
	}
	return db.Connect(cmd.Context(), conn.DBConfig())
}

func init() {
	defaults := config.DefaultConnection()
	connectionsAddCmd.Flags().StringVar(&addConn.Name, "name", "", "profile name")
	connectionsAddCmd.Flags().StringVar(&addConn.Host, "host", defaults.Host, "database host")
	connectionsAddCmd.Flags().IntVar(&addConn.Port, "port", defaults.Port, "database port")
	connectionsAddCmd.Flags().StringVar(&addConn.User, "user", defaults.User, "database user")
	connectionsAddCmd.Flags().StringVar(&addConn.Password, "password", "", "database password")
	connectionsAddCmd.Flags().StringVar(&addConn.Database, "database", defaults.Database, "database name")
	connectionsAddCmd.Flags().StringVar(&addConn.SSLMode, "sslmode", defaults.SSLMode, "sslmode")
	connectionsAddCmd.Flags().BoolVar(&addConn.SSH.Enabled, "ssh", false, "connect through an SSH tunnel")
	connectionsAddCmd.Flags().StringVar(&addConn.SSH.Host, "ssh-host", "", "SSH host")
	connectionsAddCmd.Flags().IntVar(&addConn.SSH.Port, "ssh-port", defaults.SSH.Port, "SSH port")
	connectionsAddCmd.Flags().StringVar(&addConn.SSH.User, "ssh-user", "", "SSH user")
	connectionsAddCmd.Flags().StringVar(&addConn.SSH.KeyPath, "ssh-key", "", "SSH private key path")

	connectionsCmd.AddCommand(connectionsListCmd)
	connectionsCmd.AddCommand(connectionsAddCmd)
	connectionsCmd.AddCommand(connectionsRemoveCmd)

	schemaCmd.PersistentFlags().StringVarP(&schemaConnectionID, "connection", "c", "", "saved connection id (required)")
	schemaCmd.MarkPersistentFlagRequired("connection") //nolint:errcheck
	schemaTablesCmd.Flags().StringVar(&schemaNamespace, "schema", "public", "schema namespace")
	schemaViewsCmd.Flags().StringVar(&schemaNamespace, "schema", "public", "schema namespace")
	schemaCmd.AddCommand(schemaTablesCmd)
	schemaCmd.AddCommand(schemaViewsCmd)

	queryCmd.Flags().StringVarP(&queryConnectionID, "connection", "c", "", "saved connection id (required)")
	queryCmd.MarkFlagRequired("connection") //nolint:errcheck
	queryCmd.Flags().StringVarP(&queryFormat, "format", "f", "table", "output format: table, csv, json")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "page size (0 = no paging)")
	queryCmd.Flags().IntVar(&queryOffset, "offset", 0, "page offset")
	queryCmd.Flags().BoolVar(&queryExplain, "explain", false, "print the query plan instead of running the query")
	queryCmd.Flags().BoolVar(&queryAnalyze, "analyze", false, "explain with ANALYZE (executes the query)")
	queryCmd.Flags().BoolVar(&queryRollback, "rollback", false, "run inside a transaction and roll back")
}
