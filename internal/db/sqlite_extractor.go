package db

import (
	"context"
	"fmt"

	"github.com/tordrt/sqldia/internal/schema"
)

// SQLiteExtractor handles schema extraction from SQLite
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite schema extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// ExtractSchema extracts the tables of the database
// If tables is empty, extracts all tables in the database
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	return extractTables(ctx, tableNames, e.extractTable)
}

// Close closes the underlying connection
func (e *SQLiteExtractor) Close() error {
	return e.client.Close()
}

// getTableNames returns the list of tables to extract
func (e *SQLiteExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	return queryStrings(ctx, e.client.db, query)
}

// extractTable reads a table's columns from table_info. SQLite reports a
// non-zero pk position for every primary key column.
func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	query := `
		SELECT name, type, "notnull", pk
		FROM pragma_table_info(?)
		ORDER BY cid
	`

	rows, err := e.client.db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var notNull, pk int

		if err := rows.Scan(&col.Name, &col.Type, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("failed to extract columns: %w", err)
		}

		col.IsNullable = notNull == 0
		col.IsPrimary = pk > 0
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", tableName)
	}

	return &schema.Table{Name: tableName, Columns: columns}, nil
}
