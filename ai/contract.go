// contract.go holds the generation-time output contract: the JSON
// schema sent to providers that support constrained decoding, and the
// matching instruction block appended to every system prompt.
//
// The schema, the instruction block, and Normalize in response.go
// describe the same kind/field table; change one, change all three.
package ai

// responseJSONSchema is the closed schema for the structured response.
// Every field is listed as required with a nullable type, so strict
// decoders (OpenAI json_schema strict mode) emit explicit nulls rather
// than omitting fields.
func responseJSONSchema() map[string]any {
	nullable := func(t string, extra map[string]any) map[string]any {
		s := map[string]any{"type": []string{t, "null"}}
		for k, v := range extra {
			s[k] = v
		}
		return s
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"kind": map[string]any{
				"type": "string",
				"enum": []string{"query", "chart", "metric", "schema", "message"},
			},
			"message":     map[string]any{"type": "string"},
			"sql":         nullable("string", nil),
			"explanation": nullable("string", nil),
			"warning":     nullable("string", nil),
			"requiresConfirmation": nullable("boolean", nil),
			"title":       nullable("string", nil),
			"chartType": nullable("string", map[string]any{
				"enum": []any{"bar", "line", "pie", "area", nil},
			}),
			"xKey": nullable("string", nil),
			"yKeys": nullable("array", map[string]any{
				"items": map[string]any{"type": "string"},
			}),
			"description": nullable("string", nil),
			"label":       nullable("string", nil),
			"format": nullable("string", map[string]any{
				"enum": []any{"number", "currency", "percent", "duration", nil},
			}),
			"tables": nullable("array", map[string]any{
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"description": nullable("string", nil),
						"columns": nullable("array", map[string]any{
							"items": map[string]any{"type": "string"},
						}),
					},
					"required": []string{"name", "description", "columns"},
				},
			}),
		},
		"required": []string{
			"kind", "message", "sql", "explanation", "warning",
			"requiresConfirmation", "title", "chartType", "xKey", "yKeys",
			"description", "label", "format", "tables",
		},
	}
}

// responseInstructions is the fixed instruction block appended to every
// system prompt. It enumerates the five kinds and, for each, which
// fields must be filled, which may be filled, and which must be null.
const responseInstructions = `Respond with a single JSON object with this exact field set:
kind, message, sql, explanation, warning, requiresConfirmation, title, chartType, xKey, yKeys, description, label, format, tables.
Every field must be present. Fields not used by the chosen kind must be null.

Choose exactly one kind:

kind "query" — the user wants data or a SQL statement.
  Fill: message, sql, explanation.
  May fill: warning (caveats), requiresConfirmation (true only when sql is a mutating or destructive statement such as UPDATE, DELETE, DROP, or TRUNCATE).
  Null: title, chartType, xKey, yKeys, description, label, format, tables.

kind "chart" — the user asked for a visualization.
  Fill: message, sql, title, chartType (one of "bar", "line", "pie", "area"), xKey (the column for the x axis), yKeys (the columns to plot).
  May fill: description.
  Null: explanation, warning, requiresConfirmation, label, format, tables.

kind "metric" — the user asked for a single number.
  Fill: message, sql (must return exactly one row with one value), label, format (one of "number", "currency", "percent", "duration").
  Null: explanation, warning, requiresConfirmation, title, chartType, xKey, yKeys, description, tables.

kind "schema" — the user asked about database structure.
  Fill: message, tables (name, description, columns per table).
  Null: sql, explanation, warning, requiresConfirmation, title, chartType, xKey, yKeys, description, label, format.

kind "message" — anything else (greetings, clarification, refusals).
  Fill: message.
  Null: every other field.`

// messageOnlyInstructions replaces the kind list when the connected
// database has no tables: without schema context, generated SQL would
// be guesswork.
const messageOnlyInstructions = `The connected database has no tables. Respond with a single JSON object with this exact field set:
kind, message, sql, explanation, warning, requiresConfirmation, title, chartType, xKey, yKeys, description, label, format, tables.
Set kind to "message", fill message explaining that the database has no tables to query, and set every other field to null.`
