// query.go implements SQL execution and the catalog listings behind
// the schema explorer.
//
// All functions accept a context and return structured results that the
// UI layer can render. Errors are returned, never logged or printed.
package db

import (
	"context"
	"fmt"
	"strings"

	pgx "github.com/jackc/pgx/v5"
)

// TableInfo represents a database object (table or view).
type TableInfo struct {
	Schema   string
	Name     string
	Type     string // "table", "view"
	RowCount int64  // estimated row count (from pg_class.reltuples)
}

// QueryResult holds the output of an arbitrary SQL query.
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	RowCount int
	Status   string // e.g. "(5 rows)"
}

// ListTables lists tables in a schema with estimated row counts.
func (d *DB) ListTables(ctx context.Context, schema string) ([]TableInfo, error) {
	if schema == "" {
		schema = "public"
	}
	query := `
		SELECT t.table_schema, t.table_name, 'table'::text AS type,
		       GREATEST(COALESCE(c.reltuples, 0), 0)::bigint
		FROM information_schema.tables t
		LEFT JOIN pg_class c
		  ON c.relname = t.table_name
		  AND c.relnamespace = (SELECT oid FROM pg_namespace WHERE nspname = t.table_schema)
		WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name`
	rows, err := d.Pool.Query(ctx, query, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Schema, &t.Name, &t.Type, &t.RowCount); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// ListViews lists views in a schema.
func (d *DB) ListViews(ctx context.Context, schema string) ([]TableInfo, error) {
	if schema == "" {
		schema = "public"
	}
	query := `
		SELECT table_schema, table_name, 'view'::text AS type, 0::bigint
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'VIEW'
		ORDER BY table_name`
	rows, err := d.Pool.Query(ctx, query, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Schema, &t.Name, &t.Type, &t.RowCount); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

// Execute runs an arbitrary SQL statement and returns results.
func (d *DB) Execute(ctx context.Context, sql string) (*QueryResult, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, fmt.Errorf("empty query")
	}
	return d.executeQuery(ctx, d.Pool, sql)
}

// ExecuteRollback runs a statement inside a transaction that is always
// rolled back, so mutating SQL can be previewed without committing.
func (d *DB) ExecuteRollback(ctx context.Context, sql string) (*QueryResult, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, fmt.Errorf("empty query")
	}
	tx, err := d.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck
	return d.executeQuery(ctx, tx, sql)
}

// ExecutePage runs a SELECT wrapped with LIMIT/OFFSET for paged results.
// The statement is executed as a subquery so caller-supplied ORDER BY
// is preserved.
func (d *DB) ExecutePage(ctx context.Context, sql string, limit, offset int) (*QueryResult, error) {
	sql = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), ";"))
	if sql == "" {
		return nil, fmt.Errorf("empty query")
	}
	if limit <= 0 {
		limit = 100
	}
	paged := fmt.Sprintf("SELECT * FROM (%s) AS paged LIMIT %d OFFSET %d", sql, limit, offset)
	return d.executeQuery(ctx, d.Pool, paged)
}

// Explain runs EXPLAIN (FORMAT JSON) on a query, optionally with ANALYZE.
func (d *DB) Explain(ctx context.Context, sql string, analyze bool) (string, error) {
	prefix := "EXPLAIN (FORMAT JSON)"
	if analyze {
		prefix = "EXPLAIN (ANALYZE, FORMAT JSON)"
	}

	var jsonPlan string
	if err := d.Pool.QueryRow(ctx, prefix+" "+sql).Scan(&jsonPlan); err != nil {
		return "", err
	}
	return jsonPlan, nil
}

// querier abstracts the pool and a transaction for executeQuery.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// executeQuery is the internal workhorse for running SQL and collecting results.
func (d *DB) executeQuery(ctx context.Context, q querier, sql string, args ...any) (*QueryResult, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &QueryResult{}

	// Extract column names
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	// Collect rows
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = fmt.Sprintf("%v", v)
		}
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.Status = fmt.Sprintf("(%d row%s)", result.RowCount, plural(result.RowCount))
	return result, nil
}

// Begin starts a transaction. ExecuteRollback uses it for dry runs;
// callers needing multi-statement work manage the Tx themselves.
func (d *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	return d.Pool.Begin(ctx)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
