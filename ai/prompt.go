// prompt.go renders the system prompt: a compact schema context block
// plus the fixed output-shape instructions from contract.go.
//
// Deterministic by construction — same schema metadata and dialect
// always produce the same text. FetchedAt is deliberately not embedded.
package ai

import (
	"fmt"
	"strings"

	"github.com/DachengChen/pgstudio/db"
)

// BuildSystemPrompt renders schema context for every schema, table, and
// column, then appends the response contract instructions.
//
// Column descriptor format, one line per column:
//
//	name: type (PK) -> referencedTable.referencedColumn
//
// with the (PK) and -> suffixes only when applicable.
func BuildSystemPrompt(meta *db.SchemaMetadata, dialect string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a %s expert assistant embedded in a database client.\n", dialect)
	sb.WriteString("You answer questions about the connected database and generate ")
	sb.WriteString(dialect)
	sb.WriteString("-dialect SQL against the schema below.\n\n")

	hasTables := false
	if meta != nil {
		for _, schema := range meta.Schemas {
			if len(schema.Tables) > 0 {
				hasTables = true
				break
			}
		}
	}

	if !hasTables {
		sb.WriteString(messageOnlyInstructions)
		return sb.String()
	}

	sb.WriteString("Database schema:\n")
	for _, schema := range meta.Schemas {
		for _, table := range schema.Tables {
			fmt.Fprintf(&sb, "\n%s.%s (%s)\n", schema.Name, table.Name, table.Type)
			for _, col := range table.Columns {
				sb.WriteString("  ")
				sb.WriteString(col.Name)
				sb.WriteString(": ")
				sb.WriteString(col.DataType)
				if col.IsPrimaryKey {
					sb.WriteString(" (PK)")
				}
				if col.ForeignKey != nil {
					fmt.Fprintf(&sb, " -> %s.%s", col.ForeignKey.Table, col.ForeignKey.Column)
				}
				sb.WriteString("\n")
			}
		}
	}

	sb.WriteString("\n")
	sb.WriteString(responseInstructions)
	return sb.String()
}
