package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens an existing database file read-only
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := openAndPing(ctx, "sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// sqliteDSN builds a read-only URI filename for path. The path is escaped so
// '?', '#' and '%' in file names are not read as URI syntax.
func sqliteDSN(path string) string {
	u := url.URL{Path: path}
	return "file:" + u.EscapedPath() + "?mode=ro"
}
