package cmd

import "testing"

func TestSchemaCatalogSubcommands(t *testing.T) {
	subs := map[string]bool{}
	for _, c := range schemaCmd.Commands() {
		subs[c.Name()] = true
	}
	for _, want := range []string{"tables", "views"} {
		if !subs[want] {
			t.Errorf("schema command missing %q subcommand", want)
		}
	}
	// Subcommands inherit the connection flag from the parent.
	if schemaCmd.PersistentFlags().Lookup("connection") == nil {
		t.Error("schema command missing persistent --connection flag")
	}
}

func TestQueryCommandFlags(t *testing.T) {
	for _, name := range []string{"format", "limit", "offset", "explain", "analyze", "rollback"} {
		if queryCmd.Flags().Lookup(name) == nil {
			t.Errorf("query command missing --%s flag", name)
		}
	}
}
