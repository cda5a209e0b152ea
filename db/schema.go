// schema.go fetches full database schema metadata for the AI prompt
// context and the schema explorer.
//
// The introspection is fixed SQL against information_schema:
//   - columns (name, type, nullable, default, ordinal position)
//   - primary keys (table_constraints + key_column_usage)
//   - foreign keys (key_column_usage + constraint_column_usage)
//
// System schemas (pg_catalog, information_schema) are excluded.
package db

import (
	"context"
	"fmt"
	"time"
)

// ForeignKeyRef describes the target of a foreign-key column.
type ForeignKeyRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Column describes a single column in a table or view.
type Column struct {
	Name            string         `json:"name"`
	DataType        string         `json:"dataType"`
	IsNullable      bool           `json:"isNullable"`
	IsPrimaryKey    bool           `json:"isPrimaryKey"`
	DefaultValue    string         `json:"defaultValue,omitempty"`
	OrdinalPosition int            `json:"ordinalPosition"`
	ForeignKey      *ForeignKeyRef `json:"foreignKey,omitempty"`
}

// Table describes a table or view with its columns.
type Table struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"` // "table" or "view"
	Columns []Column `json:"columns"`
}

// Schema groups the tables of one namespace.
type Schema struct {
	Name   string  `json:"name"`
	Tables []Table `json:"tables"`
}

// SchemaMetadata is the full introspection result consumed by the
// prompt builder and the schema explorer.
type SchemaMetadata struct {
	Schemas   []Schema  `json:"schemas"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// FetchSchema retrieves all user schemas with their tables, columns,
// primary keys, and foreign keys.
func (d *DB) FetchSchema(ctx context.Context) (*SchemaMetadata, error) {
	pks, err := d.fetchPrimaryKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("primary keys: %w", err)
	}
	fks, err := d.fetchForeignKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}

	query := `
		SELECT c.table_schema, c.table_name,
		       CASE WHEN t.table_type = 'VIEW' THEN 'view' ELSE 'table' END,
		       c.column_name, c.data_type, c.is_nullable,
		       COALESCE(c.column_default, ''), c.ordinal_position
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY c.table_schema, c.table_name, c.ordinal_position`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	defer rows.Close()

	meta := &SchemaMetadata{FetchedAt: time.Now()}
	var curSchema *Schema
	var curTable *Table

	flushTable := func() {
		if curTable != nil {
			curSchema.Tables = append(curSchema.Tables, *curTable)
			curTable = nil
		}
	}
	flushSchema := func() {
		flushTable()
		if curSchema != nil {
			meta.Schemas = append(meta.Schemas, *curSchema)
			curSchema = nil
		}
	}

	for rows.Next() {
		var schemaName, tableName, tableType, colName, dataType, nullable, def string
		var ordinal int
		if err := rows.Scan(&schemaName, &tableName, &tableType, &colName, &dataType, &nullable, &def, &ordinal); err != nil {
			return nil, err
		}

		if curSchema == nil || curSchema.Name != schemaName {
			flushSchema()
			curSchema = &Schema{Name: schemaName}
		}
		if curTable == nil || curTable.Name != tableName {
			flushTable()
			curTable = &Table{Name: tableName, Type: tableType}
		}

		col := Column{
			Name:            colName,
			DataType:        dataType,
			IsNullable:      nullable == "YES",
			DefaultValue:    def,
			OrdinalPosition: ordinal,
			IsPrimaryKey:    pks[columnKey{schemaName, tableName, colName}],
		}
		if ref, ok := fks[columnKey{schemaName, tableName, colName}]; ok {
			col.ForeignKey = &ref
		}
		curTable.Columns = append(curTable.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	flushSchema()

	return meta, nil
}

// columnKey identifies one column across the whole database.
type columnKey struct {
	Schema string
	Table  string
	Column string
}

func (d *DB) fetchPrimaryKeys(ctx context.Context) (map[columnKey]bool, error) {
	query := `
		SELECT kcu.table_schema, kcu.table_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		  AND kcu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema NOT IN ('pg_catalog', 'information_schema')`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pks := make(map[columnKey]bool)
	for rows.Next() {
		var k columnKey
		if err := rows.Scan(&k.Schema, &k.Table, &k.Column); err != nil {
			return nil, err
		}
		pks[k] = true
	}
	return pks, rows.Err()
}

func (d *DB) fetchForeignKeys(ctx context.Context) (map[columnKey]ForeignKeyRef, error) {
	query := `
		SELECT kcu.table_schema, kcu.table_name, kcu.column_name,
		       ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		  AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		  AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema NOT IN ('pg_catalog', 'information_schema')`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fks := make(map[columnKey]ForeignKeyRef)
	for rows.Next() {
		var k columnKey
		var ref ForeignKeyRef
		if err := rows.Scan(&k.Schema, &k.Table, &k.Column, &ref.Table, &ref.Column); err != nil {
			return nil, err
		}
		fks[k] = ref
	}
	return fks, rows.Err()
}
