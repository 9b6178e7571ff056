package db

import (
	"context"
	"fmt"

	"github.com/tordrt/sqldia/internal/schema"
)

const varcharType = "varchar"

// PostgresExtractor handles schema extraction from PostgreSQL
type PostgresExtractor struct {
	client *PostgresClient
	schema string
}

// NewPostgresExtractor creates a new schema extractor for one PostgreSQL schema
func NewPostgresExtractor(client *PostgresClient, schemaName string) *PostgresExtractor {
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
	}
}

// ExtractSchema extracts the tables of the schema
// If tables is empty, extracts all tables in the schema
func (e *PostgresExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	return extractTables(ctx, tableNames, e.extractTable)
}

// Close closes the underlying connection
func (e *PostgresExtractor) Close() error {
	return e.client.Close(context.Background())
}

// getTableNames returns the list of tables to extract
func (e *PostgresExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	return e.client.queryStrings(ctx, query, e.schema)
}

// extractTable extracts columns and primary key of a single table
func (e *PostgresExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	columns, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", tableName)
	}

	pk, err := e.extractPrimaryKey(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	markPrimaryKey(columns, pk)

	return &schema.Table{Name: tableName, Columns: columns}, nil
}

// normalizePostgresType maps verbose SQL type names to commonly-used PostgreSQL equivalents
func normalizePostgresType(dataType, udtName string, charMaxLength, precision, scale *int) string {
	switch dataType {
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "time with time zone":
		return "timetz"
	case "time without time zone":
		return "time"
	case "character varying":
		if charMaxLength != nil {
			return fmt.Sprintf("varchar(%d)", *charMaxLength)
		}
		return varcharType
	case "character":
		if charMaxLength != nil {
			return fmt.Sprintf("char(%d)", *charMaxLength)
		}
		return "char"
	case "numeric":
		if precision != nil && scale != nil {
			return fmt.Sprintf("numeric(%d,%d)", *precision, *scale)
		}
		return "numeric"
	case "ARRAY":
		// udt_name has underscore prefix for arrays (e.g., "_text" for text[])
		if len(udtName) > 0 && udtName[0] == '_' {
			return normalizeUdtName(udtName[1:]) + "[]"
		}
		return "array"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

// normalizeUdtName converts PostgreSQL internal type names to more readable forms
func normalizeUdtName(udtName string) string {
	switch udtName {
	case "int4":
		return "integer"
	case "int8":
		return "bigint"
	case "int2":
		return "smallint"
	case "float4":
		return "real"
	case "float8":
		return "double precision"
	case "bool":
		return "boolean"
	default:
		return udtName
	}
}

// extractColumns extracts column information for a table
func (e *PostgresExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			udt_name,
			character_maximum_length,
			numeric_precision,
			numeric_scale
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.client.conn.Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var dataType, nullable, udtName string
		var charMaxLength, precision, scale *int

		if err := rows.Scan(&col.Name, &dataType, &nullable, &udtName, &charMaxLength, &precision, &scale); err != nil {
			return nil, err
		}

		col.IsNullable = nullable == "YES"
		col.Type = normalizePostgresType(dataType, udtName, charMaxLength, precision, scale)
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// extractPrimaryKey extracts primary key columns
func (e *PostgresExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`
	return e.client.queryStrings(ctx, query, e.schema, tableName)
}
