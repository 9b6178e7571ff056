package db

import (
	"context"
	"fmt"

	"github.com/tordrt/sqldia/internal/schema"
)

// MySQLExtractor handles schema extraction from MySQL
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
}

// NewMySQLExtractor creates a new MySQL schema extractor
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// ExtractSchema extracts the tables of the database
// If tables is empty, extracts all tables in the schema
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	return extractTables(ctx, tableNames, e.extractTable)
}

// Close closes the underlying connection
func (e *MySQLExtractor) Close() error {
	return e.client.Close()
}

// getTableNames returns the list of tables to extract
func (e *MySQLExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	return queryStrings(ctx, e.client.db, query, e.schemaName)
}

// extractTable extracts columns and primary key of a single table.
// column_type keeps the declared length, e.g. int(11) or varchar(255).
func (e *MySQLExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	query := `
		SELECT
			column_name,
			column_type,
			is_nullable,
			column_key
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := e.client.db.QueryContext(ctx, query, e.schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable, columnKey string

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &columnKey); err != nil {
			return nil, fmt.Errorf("failed to extract columns: %w", err)
		}

		col.IsNullable = nullable == "YES"
		col.IsPrimary = columnKey == "PRI"
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
