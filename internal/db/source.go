// Package db reads table and column metadata from live PostgreSQL, MySQL and
// SQLite databases into the same model the SQL text parser produces.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/sqldia/internal/schema"
)

// Database types
const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// Source extracts a schema from an open database connection
type Source interface {
	// ExtractSchema extracts the given tables, or every table when tables is empty.
	ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error)
	Close() error
}

// ParseDatabaseURL detects database type and returns connection string
func ParseDatabaseURL(url string) (dbType, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return TypePostgres, url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// The Go MySQL driver takes a DSN without scheme
		return TypeMySQL, strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		return TypeSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)")
}

// ParseDatabaseName returns the database name of a MySQL DSN
func ParseDatabaseName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("MySQL DSN has no database name")
	}
	return cfg.DBName, nil
}

// Open connects to the database behind databaseURL. schemaName selects the
// PostgreSQL schema ("public" when empty) or the MySQL database (taken from the
// DSN when empty); SQLite ignores it.
func Open(ctx context.Context, databaseURL, schemaName string, logger *slog.Logger) (Source, error) {
	dbType, connStr, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch dbType {
	case TypePostgres:
		if schemaName == "" {
			schemaName = "public"
		}
		client, err := NewPostgresClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		logger.Debug("connected", slog.String("type", dbType), slog.String("schema", schemaName))
		return NewPostgresExtractor(client, schemaName), nil

	case TypeMySQL:
		if schemaName == "" {
			schemaName, err = ParseDatabaseName(connStr)
			if err != nil {
				return nil, fmt.Errorf("failed to determine database name: %w (please specify a schema name)", err)
			}
		}
		client, err := NewMySQLClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		logger.Debug("connected", slog.String("type", dbType), slog.String("schema", schemaName))
		return NewMySQLExtractor(client, schemaName), nil

	default:
		client, err := NewSQLiteClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		logger.Debug("connected", slog.String("type", dbType), slog.String("path", connStr))
		return NewSQLiteExtractor(client), nil
	}
}

// markPrimaryKey flags the columns named in pk
func markPrimaryKey(columns []schema.Column, pk []string) {
	pkSet := make(map[string]bool, len(pk))
	for _, name := range pk {
		pkSet[name] = true
	}
	for i := range columns {
		columns[i].IsPrimary = pkSet[columns[i].Name]
	}
}

// extractTables runs extract for every table name in order
func extractTables(ctx context.Context, tableNames []string, extract func(context.Context, string) (*schema.Table, error)) (*schema.Schema, error) {
	extractedTables := make([]schema.Table, 0, len(tableNames))
	for _, tableName := range tableNames {
		table, err := extract(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		extractedTables = append(extractedTables, *table)
	}
	return &schema.Schema{Tables: extractedTables}, nil
}
